package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "tally",
		Short: "Reconcile bot payout claims into a contributor ledger",
		Long: `A CLI tool that scans an organization's issue comments for bot payout
claims and reconciles them into per-contributor balances, a full payment
list, and a manual-review list.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTally(cmd, opts)
		},
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addTallyFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdCache())
	rootCmd.AddCommand(NewCmdVersion())
	rootCmd.AddCommand(NewCmdRateLimit())

	return rootCmd
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/ubq-audit/tally/config"
	"github.com/ubq-audit/tally/internal/cache"
	"github.com/ubq-audit/tally/internal/claim"
	"github.com/ubq-audit/tally/internal/duration"
	"github.com/ubq-audit/tally/internal/ghclient"
	"github.com/ubq-audit/tally/internal/log"
	"github.com/ubq-audit/tally/internal/model"
	"github.com/ubq-audit/tally/internal/output"
	"github.com/ubq-audit/tally/internal/reconcile"
	"github.com/ubq-audit/tally/internal/tui"
)

// tallyRuntime bundles TUI-related state threaded through the run.
type tallyRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// startTUI initializes and starts the TUI goroutine if TUI mode is enabled.
func (rt *tallyRuntime) startTUI() {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events)
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *tallyRuntime) close() {
	if rt.events == nil {
		return
	}
	tui.SendEvent(rt.events, tui.DoneEvent{})
	close(rt.events)
	rt.events = nil
	if rt.tuiDone != nil {
		if err := <-rt.tuiDone; err != nil {
			log.Warn("progress display failed", "error", err)
		}
		rt.tuiDone = nil
	}
}

// sendEvent sends a task event to the TUI channel if it exists.
func (rt *tallyRuntime) sendEvent(task tui.TaskID, status tui.TaskStatus, opts ...tui.TaskEventOption) {
	tui.SendTaskEvent(rt.events, task, status, opts...)
}

// githubSource adapts the GitHub client to the engine's source boundary.
type githubSource struct {
	client *ghclient.Client
}

func (s githubSource) ListRepositories(ctx context.Context, org string) ([]model.Repository, error) {
	return s.client.ListRepositories(ctx, org)
}

func (s githubSource) Issues(org, repo string, since time.Time) reconcile.IssuePager {
	return s.client.Issues(org, repo, since)
}

// addTallyFlags adds the reconciliation flags to a command.
func addTallyFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVar(&opts.Org, "org", "", "GitHub organization to scan (default from config)")
	cmd.Flags().StringVarP(&opts.Repo, "repo", "r", "", "Restrict the scan to a single repository")
	cmd.Flags().StringVarP(&opts.Since, "since", "s", "", "Scan issues active since (e.g., 2023-01-01, 30d, 6mo)")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (csv, json)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", "", "Directory for report artifacts")
	cmd.Flags().BoolVar(&opts.Separate, "separate", false, "Write one artifact set per repository")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Skip the repository scan cache")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")

	// Profiling flags
	cmd.Flags().StringVar(&opts.CPUProfile, "cpuprofile", "", "Write CPU profile to file")
	cmd.Flags().StringVar(&opts.MemProfile, "memprofile", "", "Write memory profile to file")
	cmd.Flags().StringVar(&opts.Trace, "trace", "", "Write execution trace to file")
}

func runTally(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()

	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return err
	}
	defer profiler.Stop()

	rt := &tallyRuntime{useTUI: shouldUseTUI(opts)}

	// Suppress logs during TUI to avoid interleaving with the display
	if rt.useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, os.Stderr)
	}
	rt.startTUI()

	report, err := runScan(ctx, opts, rt)
	rt.close()
	if err != nil {
		if errors.Is(err, reconcile.ErrNoData) {
			return fmt.Errorf("no payment data found: refusing to write an empty report")
		}
		return err
	}

	output.PrintSummary(os.Stdout, report)
	return nil
}

// runScan drives config loading, authentication, the scan, and artifact
// writing, reporting progress through the runtime.
func runScan(ctx context.Context, opts *Options, rt *tallyRuntime) (*model.Report, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	applyConfigDefaults(opts, cfg)

	since, err := duration.Parse(opts.Since)
	if err != nil {
		return nil, err
	}

	rt.sendEvent(tui.TaskAuth, tui.StatusRunning)
	client, err := ghclient.NewClient(ctx, cfg.GetGitHubToken())
	if err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return nil, err
	}
	user, err := client.AuthenticatedUser(ctx)
	if err != nil {
		rt.sendEvent(tui.TaskAuth, tui.StatusError, tui.WithError(err))
		return nil, err
	}
	rt.sendEvent(tui.TaskAuth, tui.StatusComplete, tui.WithMessage(user))

	engine := buildEngine(opts, cfg, client, rt)

	rt.sendEvent(tui.TaskRepos, tui.StatusRunning)
	results, err := engine.Scan(ctx, since)
	if err != nil {
		rt.sendEvent(tui.TaskScan, tui.StatusError, tui.WithError(err))
		return nil, err
	}
	rt.sendEvent(tui.TaskScan, tui.StatusComplete, tui.WithCount(len(results)))

	report, err := reconcile.Aggregate(results)
	if err != nil {
		return nil, err
	}

	rt.sendEvent(tui.TaskWrite, tui.StatusRunning)
	if err := writeArtifacts(opts, report, results); err != nil {
		rt.sendEvent(tui.TaskWrite, tui.StatusError, tui.WithError(err))
		return nil, err
	}
	rt.sendEvent(tui.TaskWrite, tui.StatusComplete)

	return report, nil
}

// applyConfigDefaults fills unset options from the merged config.
func applyConfigDefaults(opts *Options, cfg *config.Config) {
	if opts.Org == "" {
		opts.Org = cfg.Org
	}
	if opts.Since == "" {
		opts.Since = cfg.DefaultSince
	}
	if opts.Format == "" {
		opts.Format = cfg.DefaultFormat
	}
	if opts.OutputDir == "" {
		opts.OutputDir = cfg.OutputDir
	}
}

// buildEngine assembles the reconciliation engine from the options.
func buildEngine(opts *Options, cfg *config.Config, client *ghclient.Client, rt *tallyRuntime) *reconcile.Engine {
	parser := claim.NewParser(cfg.BotAccounts...)

	engineOpts := []reconcile.EngineOption{
		reconcile.WithProgress(func(done, total int, repo model.Repository) {
			rt.sendEvent(tui.TaskScan, tui.StatusRunning,
				tui.WithMessage(repo.Name),
				tui.WithProgress(float64(done)/float64(total)))
			if done == 1 {
				rt.sendEvent(tui.TaskRepos, tui.StatusComplete, tui.WithCount(total))
			}
		}),
	}
	if opts.Repo != "" {
		engineOpts = append(engineOpts, reconcile.WithRepoFilter(opts.Repo))
	}
	if len(cfg.ExcludeRepos) > 0 {
		engineOpts = append(engineOpts, reconcile.WithExcludedRepos(cfg.ExcludeRepos))
	}
	if !opts.NoCache {
		if c, err := cache.New(); err != nil {
			log.Warn("failed to initialize cache", "error", err)
		} else {
			engineOpts = append(engineOpts, reconcile.WithCache(c))
		}
	}

	return reconcile.NewEngine(githubSource{client: client}, parser, opts.Org, engineOpts...)
}

// writeArtifacts renders the combined report, or one artifact set per
// repository in separate mode.
func writeArtifacts(opts *Options, report *model.Report, results []*model.RepoResult) error {
	if !output.ValidFormat(opts.Format) {
		return fmt.Errorf("invalid output format: %s (must be csv or json)", opts.Format)
	}
	writer := output.NewWriter(opts.OutputDir, output.Format(opts.Format))

	if !opts.Separate {
		return writer.Write(report)
	}

	for _, res := range results {
		if err := writer.WriteRepo(res.Repo.Name, repoReport(res)); err != nil {
			return err
		}
	}
	return nil
}

// repoReport shapes one repository's scan result as a standalone report.
func repoReport(res *model.RepoResult) *model.Report {
	report := &model.Report{
		Contributors:       res.Contributors,
		AllPayments:        res.Claims,
		NoAssigneePayments: res.NoAssignee,
	}
	if res.NoPayment != nil {
		report.NoPayments = []model.NoPaymentRecord{*res.NoPayment}
	}
	return report
}

package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/ubq-audit/tally/internal/model"
	"golang.org/x/term"
)

const topContributors = 10

// PrintSummary writes a human-readable run summary to w: totals plus the
// top contributor balances.
func PrintSummary(w io.Writer, report *model.Report) {
	bold := color.New(color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	var total float64
	for _, balance := range report.Contributors {
		total += balance
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s across %s payments to %s contributors\n",
		bold("Tallied"),
		green(formatAmount(total)),
		bold(fmt.Sprintf("%d", len(report.AllPayments))),
		bold(fmt.Sprintf("%d", len(report.Contributors))))

	if n := len(report.NoAssigneePayments); n > 0 {
		fmt.Fprintf(w, "%s %d payment(s) need manual review (no assignee)\n", yellow("!"), n)
	}
	if n := len(report.NoPayments); n > 0 {
		fmt.Fprintf(w, "  %d repositories had no payments\n", n)
	}

	printTopContributors(w, report.Contributors)
}

func printTopContributors(w io.Writer, balances model.ContributorBalances) {
	if len(balances) == 0 {
		return
	}

	type row struct {
		payee   string
		balance float64
	}
	rows := make([]row, 0, len(balances))
	for payee, balance := range balances {
		rows = append(rows, row{payee, balance})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].balance != rows[j].balance {
			return rows[i].balance > rows[j].balance
		}
		return rows[i].payee < rows[j].payee
	})
	if len(rows) > topContributors {
		rows = rows[:topContributors]
	}

	nameWidth := len("Username")
	for _, r := range rows {
		if w := runewidth.StringWidth(r.payee); w > nameWidth {
			nameWidth = w
		}
	}
	nameWidth = clampWidth(nameWidth)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %s\n", padRight("Username", nameWidth), "Balance")
	fmt.Fprintf(w, "  %s\n", strings.Repeat("-", nameWidth+10))
	for _, r := range rows {
		fmt.Fprintf(w, "  %s  %s\n", padRight(r.payee, nameWidth), formatAmount(r.balance))
	}
}

// clampWidth keeps the username column within the terminal width.
func clampWidth(width int) int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		return width
	}
	if max := termWidth - 14; width > max && max > 0 {
		return max
	}
	return width
}

// padRight pads s with spaces to the target display width.
func padRight(s string, width int) string {
	if w := runewidth.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

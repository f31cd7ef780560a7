package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/ubq-audit/tally/internal/model"
)

// Each CSV artifact starts with its group name, then a header row. The
// shapes match the bot-audit sheets downstream tooling already consumes.

var (
	contributorHeaders = []string{"Username", "Balance"}
	paymentHeaders     = []string{"Repository", "Issue #", "Amount", "Currency", "Payee", "Type", "URL"}
	noPaymentHeaders   = []string{"Repository", "Archived", "Last Commit", "Message", "URL"}
)

// writeContributorsCSV renders balances sorted by amount descending.
func writeContributorsCSV(w io.Writer, balances model.ContributorBalances) error {
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

	cw, err := newGroupWriter(w, "Contributors", contributorHeaders)
	if err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.payee, formatAmount(r.balance)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writePaymentsCSV renders all payments followed by the manual-review
// payments, as the audit sheet historically did.
func writePaymentsCSV(w io.Writer, payments, noAssignee []model.PaymentClaim) error {
	cw, err := newGroupWriter(w, "All Payments", paymentHeaders)
	if err != nil {
		return err
	}
	for _, p := range payments {
		if err := cw.Write(paymentRow(p)); err != nil {
			return err
		}
	}
	for _, p := range noAssignee {
		if err := cw.Write(paymentRow(p)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeNoPaymentsCSV renders repositories that yielded no claims.
func writeNoPaymentsCSV(w io.Writer, records []model.NoPaymentRecord) error {
	cw, err := newGroupWriter(w, "No Payments", noPaymentHeaders)
	if err != nil {
		return err
	}
	for _, r := range records {
		lastCommit := ""
		if r.LastCommitDate != nil {
			lastCommit = r.LastCommitDate.UTC().Format("2006-01-02")
		}
		row := []string{r.RepoName, strconv.FormatBool(r.Archived), lastCommit, r.Message, r.URL}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func paymentRow(p model.PaymentClaim) []string {
	return []string{
		p.RepoName,
		strconv.Itoa(p.IssueNumber),
		formatAmount(p.Amount),
		string(p.Currency),
		p.Payee,
		string(p.Type),
		p.URL,
	}
}

// formatAmount renders amounts without trailing zeros ("18.6", "25").
func formatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

// newGroupWriter emits the group name line and header row, returning the
// csv writer for the data rows.
func newGroupWriter(w io.Writer, group string, headers []string) (*csv.Writer, error) {
	if _, err := fmt.Fprintln(w, group); err != nil {
		return nil, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return nil, err
	}
	return cw, nil
}

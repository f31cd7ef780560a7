package model

import (
	"fmt"
	"time"
)

// Repository is one organization repository as reported by the data source.
type Repository struct {
	Name           string     `json:"name"`
	IsArchived     bool       `json:"isArchived"`
	LastCommitDate *time.Time `json:"lastCommitDate,omitempty"`
}

// Comment is a single issue comment. Consumed once per issue.
type Comment struct {
	Body        string `json:"body"`
	AuthorLogin string `json:"authorLogin,omitempty"`
}

// Issue is one issue with its comments, immutable per processing pass.
// AssigneeLogin carries the NoAssignee sentinel when the issue had no
// assignee.
type Issue struct {
	Number        int       `json:"number"`
	AuthorLogin   string    `json:"authorLogin,omitempty"`
	AssigneeLogin string    `json:"assigneeLogin"`
	Comments      []Comment `json:"comments"`
}

// Report is the aggregated output handed to the report writer: balances,
// payments sorted by repository, manual-review payments, and no-payment
// records sorted by last commit date descending.
type Report struct {
	Contributors       ContributorBalances `json:"contributors"`
	AllPayments        []PaymentClaim      `json:"allPayments"`
	NoAssigneePayments []PaymentClaim      `json:"noAssigneePayments"`
	NoPayments         []NoPaymentRecord   `json:"noPayments"`
}

// Empty reports whether the report carries no data at all.
func (r *Report) Empty() bool {
	return len(r.Contributors) == 0 &&
		len(r.AllPayments) == 0 &&
		len(r.NoAssigneePayments) == 0 &&
		len(r.NoPayments) == 0
}

// RepoResult is the outcome of scanning one repository.
type RepoResult struct {
	Repo         Repository
	Claims       []PaymentClaim
	NoAssignee   []PaymentClaim
	Contributors ContributorBalances
	NoPayment    *NoPaymentRecord
}

// IssueURL builds the canonical GitHub URL for an issue.
func IssueURL(org, repo string, number int) string {
	return fmt.Sprintf("https://github.com/%s/%s/issues/%d", org, repo, number)
}

// RepoURL builds the canonical GitHub URL for a repository.
func RepoURL(org, repo string) string {
	return fmt.Sprintf("https://github.com/%s/%s", org, repo)
}

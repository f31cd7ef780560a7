// Package model contains domain types for the tally application.
// These types are independent of any external GitHub library.
package model

import "time"

// Currency is the token a payout claim was denominated in.
type Currency string

const (
	CurrencyXDAI  Currency = "XDAI"
	CurrencyDAI   Currency = "DAI"
	CurrencyWXDAI Currency = "WXDAI"
)

// AllCurrencies contains every currency the bot has ever paid out in.
// This is the single source of truth for valid currency values.
var AllCurrencies = []Currency{
	CurrencyXDAI,
	CurrencyDAI,
	CurrencyWXDAI,
}

// ClaimType categorizes what a payout rewarded.
type ClaimType string

const (
	// ClaimAssignee rewards the user assigned to the issue.
	ClaimAssignee ClaimType = "assignee"
	// ClaimCreator rewards the user who opened the issue.
	ClaimCreator ClaimType = "creator"
	// ClaimConversation rewards a participant in the issue conversation.
	ClaimConversation ClaimType = "conversation"
)

// NoAssignee is the sentinel payee recorded when an issue had no assignee at
// claim time. Claims resolving to it are routed to the manual-review set.
const NoAssignee = "No assignee"

// NoPaymentsMessage is the message recorded for repositories that yielded
// zero claims.
const NoPaymentsMessage = "No payments found"

// PaymentClaim is one reconciled payout line item extracted from a bot
// comment.
type PaymentClaim struct {
	RepoName    string    `json:"repoName"`
	IssueNumber int       `json:"issueNumber"`
	Amount      float64   `json:"paymentAmount"`
	Currency    Currency  `json:"currency"`
	Payee       string    `json:"payee"`
	Type        ClaimType `json:"type"`
	URL         string    `json:"url"`
}

// NeedsReview reports whether the claim belongs in the manual-review set.
func (c PaymentClaim) NeedsReview() bool {
	return c.Payee == NoAssignee
}

// NoPaymentRecord marks a repository that yielded zero claims.
type NoPaymentRecord struct {
	RepoName       string     `json:"repoName"`
	Archived       bool       `json:"archived"`
	LastCommitDate *time.Time `json:"lastCommitDate"`
	Message        string     `json:"message"`
	URL            string     `json:"url"`
}

// ContributorBalances maps a payee login to their cumulative payout amount
// across every processed repository and issue.
type ContributorBalances map[string]float64

// Add folds a payment amount into the payee's running balance.
func (b ContributorBalances) Add(payee string, amount float64) {
	if payee == "" {
		return
	}
	b[payee] += amount
}

// Merge additively folds other into b.
func (b ContributorBalances) Merge(other ContributorBalances) {
	for payee, amount := range other {
		b[payee] += amount
	}
}

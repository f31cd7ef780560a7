package reconcile

import (
	"errors"
	"testing"
	"time"

	"github.com/ubq-audit/tally/internal/model"
)

func repoResult(name string, claims ...model.PaymentClaim) *model.RepoResult {
	res := &model.RepoResult{
		Repo:         model.Repository{Name: name},
		Claims:       claims,
		Contributors: model.ContributorBalances{},
	}
	for _, c := range claims {
		res.Contributors.Add(c.Payee, c.Amount)
		if c.NeedsReview() {
			res.NoAssignee = append(res.NoAssignee, c)
		}
	}
	if len(claims) == 0 {
		res.NoPayment = &model.NoPaymentRecord{
			RepoName: name,
			Message:  model.NoPaymentsMessage,
		}
	}
	return res
}

func TestAggregateBalancesAdditive(t *testing.T) {
	// carol earns 10 in one repo and 5 in another: combined balance is 15
	// regardless of processing order.
	a := repoResult("a", model.PaymentClaim{RepoName: "a", IssueNumber: 1, Payee: "carol", Amount: 10})
	b := repoResult("b", model.PaymentClaim{RepoName: "b", IssueNumber: 2, Payee: "carol", Amount: 5})

	for _, order := range [][]*model.RepoResult{{a, b}, {b, a}} {
		report, err := Aggregate(order)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := report.Contributors["carol"]; got != 15 {
			t.Errorf("carol balance = %v, want 15", got)
		}
	}
}

func TestAggregateSortsPaymentsByRepo(t *testing.T) {
	results := []*model.RepoResult{
		repoResult("zeta", model.PaymentClaim{RepoName: "zeta", IssueNumber: 1, Payee: "a", Amount: 1}),
		repoResult("alpha",
			model.PaymentClaim{RepoName: "alpha", IssueNumber: 2, Payee: "b", Amount: 2},
			model.PaymentClaim{RepoName: "alpha", IssueNumber: 3, Payee: "c", Amount: 3},
		),
	}

	report, err := Aggregate(results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotRepos := make([]string, len(report.AllPayments))
	for i, p := range report.AllPayments {
		gotRepos[i] = p.RepoName
	}
	want := []string{"alpha", "alpha", "zeta"}
	for i := range want {
		if gotRepos[i] != want[i] {
			t.Fatalf("payment order = %v, want %v", gotRepos, want)
		}
	}
	// Stable: insertion order preserved within a repo.
	if report.AllPayments[0].IssueNumber != 2 || report.AllPayments[1].IssueNumber != 3 {
		t.Errorf("tie-break must preserve insertion order, got %+v", report.AllPayments[:2])
	}
}

func TestAggregateSortsNoPaymentsByCommitDateDesc(t *testing.T) {
	old := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	unknown := repoResult("unknown")
	older := repoResult("older")
	older.NoPayment.LastCommitDate = &old
	newer := repoResult("newer")
	newer.NoPayment.LastCommitDate = &recent

	report, err := Aggregate([]*model.RepoResult{unknown, older, newer})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make([]string, len(report.NoPayments))
	for i, np := range report.NoPayments {
		got[i] = np.RepoName
	}
	want := []string{"newer", "older", "unknown"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("no-payment order = %v, want %v", got, want)
		}
	}
}

func TestAggregateRepoSetsMutuallyExclusive(t *testing.T) {
	paid := repoResult("paid", model.PaymentClaim{RepoName: "paid", IssueNumber: 1, Payee: "a", Amount: 1})
	empty := repoResult("empty")

	report, err := Aggregate([]*model.RepoResult{paid, empty})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inNoPayments := map[string]int{}
	for _, np := range report.NoPayments {
		inNoPayments[np.RepoName]++
	}
	if inNoPayments["paid"] != 0 {
		t.Error("repo with payments must not appear in noPayments")
	}
	if inNoPayments["empty"] != 1 {
		t.Errorf("empty repo must appear exactly once in noPayments, got %d", inNoPayments["empty"])
	}
	for _, p := range report.AllPayments {
		if p.RepoName == "empty" {
			t.Error("empty repo must not appear in allPayments")
		}
	}
}

func TestAggregateEmptyIsError(t *testing.T) {
	if _, err := Aggregate(nil); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for empty input, got %v", err)
	}
}

func TestAggregateNoAssigneeSubset(t *testing.T) {
	res := repoResult("r",
		model.PaymentClaim{RepoName: "r", IssueNumber: 1, Payee: model.NoAssignee, Amount: 2},
		model.PaymentClaim{RepoName: "r", IssueNumber: 2, Payee: "dave", Amount: 3},
	)

	report, err := Aggregate([]*model.RepoResult{res})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(report.NoAssigneePayments) != 1 || report.NoAssigneePayments[0].IssueNumber != 1 {
		t.Fatalf("manual-review set = %+v, want only issue 1", report.NoAssigneePayments)
	}
	if len(report.AllPayments) != 2 {
		t.Fatalf("review claims stay in the main set too, got %d payments", len(report.AllPayments))
	}
}

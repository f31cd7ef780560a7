package cache

import (
	"testing"
	"time"

	"github.com/ubq-audit/tally/internal/model"
)

func testCache(t *testing.T) *Cache {
	t.Helper()
	c, err := NewWithDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func testResult(repo string) *model.RepoResult {
	return &model.RepoResult{
		Repo: model.Repository{Name: repo},
		Claims: []model.PaymentClaim{
			{RepoName: repo, IssueNumber: 1, Amount: 10, Currency: model.CurrencyWXDAI, Payee: "carol", Type: model.ClaimAssignee},
		},
		Contributors: model.ContributorBalances{"carol": 10},
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	c := testCache(t)
	since := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	commit := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := model.Repository{Name: "tally", LastCommitDate: &commit}

	if _, ok := c.Get("Ubiquity", repo, since); ok {
		t.Fatal("empty cache must miss")
	}

	if err := c.Set("Ubiquity", repo, since, testResult("tally")); err != nil {
		t.Fatal(err)
	}

	got, ok := c.Get("Ubiquity", repo, since)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got.Claims) != 1 || got.Claims[0].Payee != "carol" {
		t.Errorf("cached result = %+v", got)
	}
	if got.Contributors["carol"] != 10 {
		t.Errorf("balance = %v, want 10", got.Contributors["carol"])
	}
}

func TestNewCommitsInvalidate(t *testing.T) {
	c := testCache(t)
	since := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	commit := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	repo := model.Repository{Name: "tally", LastCommitDate: &commit}

	if err := c.Set("Ubiquity", repo, since, testResult("tally")); err != nil {
		t.Fatal(err)
	}

	newer := commit.Add(48 * time.Hour)
	repo.LastCommitDate = &newer
	if _, ok := c.Get("Ubiquity", repo, since); ok {
		t.Error("entry must be invalidated after new commits")
	}
}

func TestSinceIsPartOfKey(t *testing.T) {
	c := testCache(t)
	repo := model.Repository{Name: "tally"}
	jan := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	jun := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)

	if err := c.Set("Ubiquity", repo, jan, testResult("tally")); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Get("Ubiquity", repo, jun); ok {
		t.Error("a different since window must miss")
	}
	if _, ok := c.Get("Ubiquity", repo, jan); !ok {
		t.Error("the original since window must hit")
	}
}

func TestClearAndStats(t *testing.T) {
	c := testCache(t)
	since := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, name := range []string{"a", "b"} {
		if err := c.Set("Ubiquity", model.Repository{Name: name}, since, testResult(name)); err != nil {
			t.Fatal(err)
		}
	}

	total, fresh, err := c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || fresh != 2 {
		t.Errorf("stats = (%d, %d), want (2, 2)", total, fresh)
	}

	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	total, _, err = c.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("expected empty cache after clear, got %d entries", total)
	}
}

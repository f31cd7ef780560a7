package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ubq-audit/tally/internal/claim"
	"github.com/ubq-audit/tally/internal/model"
)

// fakeSource serves canned repositories and issues.
type fakeSource struct {
	repos    []model.Repository
	listErr  error
	issues   map[string][]model.Issue
	issueErr map[string]error
	pagers   []*slicePager
}

func (s *fakeSource) ListRepositories(_ context.Context, _ string) ([]model.Repository, error) {
	return s.repos, s.listErr
}

func (s *fakeSource) Issues(_, repo string, _ time.Time) IssuePager {
	p := &slicePager{err: s.issueErr[repo]}
	if issues := s.issues[repo]; len(issues) > 0 {
		p.pages = [][]model.Issue{issues}
	}
	s.pagers = append(s.pagers, p)
	return p
}

func paidIssue(number int, assignee string, amount string) model.Issue {
	return model.Issue{
		Number:        number,
		AssigneeLogin: assignee,
		Comments:      []model.Comment{botComment("[ CLAIM " + amount + " WXDAI ]")},
	}
}

func newEngine(src Source, opts ...EngineOption) *Engine {
	return NewEngine(src, claim.NewParser(bot), "Ubiquity", opts...)
}

func TestEngineRun(t *testing.T) {
	src := &fakeSource{
		repos: []model.Repository{{Name: "a"}, {Name: "b"}, {Name: "quiet"}},
		issues: map[string][]model.Issue{
			"a": {paidIssue(1, "carol", "10")},
			"b": {paidIssue(2, "carol", "5")},
		},
	}

	report, err := newEngine(src).Run(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := report.Contributors["carol"]; got != 15 {
		t.Errorf("carol balance = %v, want 15", got)
	}
	if len(report.AllPayments) != 2 {
		t.Errorf("expected 2 payments, got %d", len(report.AllPayments))
	}
	if len(report.NoPayments) != 1 || report.NoPayments[0].RepoName != "quiet" {
		t.Errorf("expected quiet in noPayments, got %+v", report.NoPayments)
	}
}

func TestEngineNoRepositories(t *testing.T) {
	src := &fakeSource{}
	if _, err := newEngine(src).Run(context.Background(), time.Time{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestEngineListFailureIsFatal(t *testing.T) {
	wantErr := errors.New("api down")
	src := &fakeSource{listErr: wantErr}
	if _, err := newEngine(src).Run(context.Background(), time.Time{}); !errors.Is(err, wantErr) {
		t.Fatalf("expected list error to propagate, got %v", err)
	}
}

func TestEngineFetchFailureAbortsRun(t *testing.T) {
	wantErr := errors.New("fetch failed")
	src := &fakeSource{
		repos: []model.Repository{{Name: "a"}, {Name: "b"}},
		issues: map[string][]model.Issue{
			"a": {paidIssue(1, "carol", "10")},
		},
		issueErr: map[string]error{"b": wantErr},
	}

	_, err := newEngine(src).Run(context.Background(), time.Time{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected fetch error to abort the run, got %v", err)
	}
}

func TestEngineRepoFilter(t *testing.T) {
	src := &fakeSource{
		repos: []model.Repository{{Name: "a"}, {Name: "b"}},
		issues: map[string][]model.Issue{
			"a": {paidIssue(1, "carol", "10")},
			"b": {paidIssue(2, "dave", "5")},
		},
	}

	results, err := newEngine(src, WithRepoFilter("b")).Scan(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 || results[0].Repo.Name != "b" {
		t.Fatalf("expected only repo b, got %+v", results)
	}
}

func TestEngineExcludedRepos(t *testing.T) {
	src := &fakeSource{
		repos: []model.Repository{{Name: "a"}, {Name: "sandbox"}, {Name: "b"}},
		issues: map[string][]model.Issue{
			"a": {paidIssue(1, "carol", "10")},
			"b": {paidIssue(2, "dave", "5")},
		},
	}

	results, err := newEngine(src, WithExcludedRepos([]string{"sandbox"})).Scan(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for _, res := range results {
		if res.Repo.Name == "sandbox" {
			t.Error("excluded repo must not be scanned")
		}
	}
}

func TestEngineRepoFilterUnknown(t *testing.T) {
	src := &fakeSource{repos: []model.Repository{{Name: "a"}}}
	_, err := newEngine(src, WithRepoFilter("nope")).Scan(context.Background(), time.Time{})
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData for unknown repo filter, got %v", err)
	}
}

// memCache is a trivial ResultCache for engine tests.
type memCache struct {
	entries map[string]*model.RepoResult
	sets    int
}

func (c *memCache) key(org string, repo model.Repository) string { return org + "/" + repo.Name }

func (c *memCache) Get(org string, repo model.Repository, _ time.Time) (*model.RepoResult, bool) {
	res, ok := c.entries[c.key(org, repo)]
	return res, ok
}

func (c *memCache) Set(org string, repo model.Repository, _ time.Time, res *model.RepoResult) error {
	if c.entries == nil {
		c.entries = map[string]*model.RepoResult{}
	}
	c.entries[c.key(org, repo)] = res
	c.sets++
	return nil
}

func TestEngineUsesCache(t *testing.T) {
	cache := &memCache{entries: map[string]*model.RepoResult{
		"Ubiquity/a": {
			Repo:         model.Repository{Name: "a"},
			Claims:       []model.PaymentClaim{{RepoName: "a", IssueNumber: 1, Payee: "carol", Amount: 10}},
			Contributors: model.ContributorBalances{"carol": 10},
		},
	}}
	src := &fakeSource{repos: []model.Repository{{Name: "a"}}}

	report, err := newEngine(src, WithCache(cache)).Run(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(src.pagers) != 0 {
		t.Error("cached repo must not be fetched")
	}
	if got := report.Contributors["carol"]; got != 10 {
		t.Errorf("carol balance = %v, want 10", got)
	}
}

func TestEngineProgressCallback(t *testing.T) {
	src := &fakeSource{repos: []model.Repository{{Name: "a"}, {Name: "b"}}}

	var calls []int
	_, err := newEngine(src, WithProgress(func(done, total int, _ model.Repository) {
		if total != 2 {
			t.Errorf("total = %d, want 2", total)
		}
		calls = append(calls, done)
	})).Scan(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Errorf("progress calls = %v, want [1 2]", calls)
	}
}

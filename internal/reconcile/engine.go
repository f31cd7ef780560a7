package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/ubq-audit/tally/internal/claim"
	"github.com/ubq-audit/tally/internal/log"
	"github.com/ubq-audit/tally/internal/model"
)

// Engine drives a full reconciliation run: list repositories, scan each one
// sequentially, and hand the results to the aggregator. Repositories are
// processed strictly in arrival order; a fetch failure aborts the run.
type Engine struct {
	source Source
	parser *claim.Parser
	org    string

	repoFilter string
	excluded   map[string]bool
	cache      ResultCache
	onRepo     func(done, total int, repo model.Repository)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRepoFilter restricts the run to a single repository by name.
func WithRepoFilter(name string) EngineOption {
	return func(e *Engine) {
		e.repoFilter = name
	}
}

// WithExcludedRepos drops the named repositories from the scan.
func WithExcludedRepos(names []string) EngineOption {
	return func(e *Engine) {
		if len(names) == 0 {
			return
		}
		e.excluded = make(map[string]bool, len(names))
		for _, n := range names {
			e.excluded[n] = true
		}
	}
}

// WithCache reuses cached repository scans when the cache deems them valid.
func WithCache(c ResultCache) EngineOption {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithProgress registers a callback invoked after each repository finishes.
func WithProgress(fn func(done, total int, repo model.Repository)) EngineOption {
	return func(e *Engine) {
		e.onRepo = fn
	}
}

// NewEngine creates an engine over the given source.
func NewEngine(source Source, parser *claim.Parser, org string, opts ...EngineOption) *Engine {
	e := &Engine{source: source, parser: parser, org: org}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan lists the organization's repositories and processes each in order.
// It returns one result per repository, or ErrNoData when the source yields
// no repositories at all.
func (e *Engine) Scan(ctx context.Context, since time.Time) ([]*model.RepoResult, error) {
	repos, err := e.source.ListRepositories(ctx, e.org)
	if err != nil {
		return nil, fmt.Errorf("listing repositories for %s: %w", e.org, err)
	}
	if e.repoFilter != "" {
		repos = filterRepos(repos, e.repoFilter)
	}
	if e.excluded != nil {
		repos = dropExcluded(repos, e.excluded)
	}
	if len(repos) == 0 {
		return nil, ErrNoData
	}

	proc := NewProcessor(e.org, e.parser)
	results := make([]*model.RepoResult, 0, len(repos))

	for i, repo := range repos {
		res, err := e.scanRepo(ctx, proc, repo, since)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
		if e.onRepo != nil {
			e.onRepo(i+1, len(repos), repo)
		}
	}

	return results, nil
}

// Run is the end-to-end form: scan every repository and aggregate.
func (e *Engine) Run(ctx context.Context, since time.Time) (*model.Report, error) {
	results, err := e.Scan(ctx, since)
	if err != nil {
		return nil, err
	}
	return Aggregate(results)
}

func (e *Engine) scanRepo(ctx context.Context, proc *Processor, repo model.Repository, since time.Time) (*model.RepoResult, error) {
	if e.cache != nil {
		if res, ok := e.cache.Get(e.org, repo, since); ok {
			log.Info("using cached scan", "repo", repo.Name)
			return res, nil
		}
	}

	log.Info("scanning repository", "repo", repo.Name)
	res, err := proc.Process(ctx, repo, e.source.Issues(e.org, repo.Name, since))
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		if err := e.cache.Set(e.org, repo, since, res); err != nil {
			log.Warn("caching scan failed", "repo", repo.Name, "error", err)
		}
	}
	return res, nil
}

func filterRepos(repos []model.Repository, name string) []model.Repository {
	for _, r := range repos {
		if r.Name == name {
			return []model.Repository{r}
		}
	}
	return nil
}

func dropExcluded(repos []model.Repository, excluded map[string]bool) []model.Repository {
	kept := repos[:0:0]
	for _, r := range repos {
		if excluded[r.Name] {
			log.Debug("skipping excluded repository", "repo", r.Name)
			continue
		}
		kept = append(kept, r)
	}
	return kept
}

// Package reconcile turns per-repository issue comment streams into the
// organization-wide payment report: it walks issues through the claim
// parser, deduplicates retained claims, and folds repository results into
// contributor balances.
package reconcile

import (
	"context"
	"time"

	"github.com/ubq-audit/tally/internal/model"
)

// Source is the engine's boundary toward the repository data provider.
// Implementations must preserve arrival order of repositories, issues and
// comments; since is an inclusive lower bound on issue activity.
type Source interface {
	ListRepositories(ctx context.Context, org string) ([]model.Repository, error)
	Issues(org, repo string, since time.Time) IssuePager
}

// IssuePager is a restartable, finite, page-driven issue sequence. Next
// returns the next page in original order without re-fetching consumed
// pages, and (nil, nil) once the sequence is exhausted.
type IssuePager interface {
	Next(ctx context.Context) ([]model.Issue, error)
}

// ResultCache stores completed repository scans so unchanged repositories
// can be skipped on re-runs. Implementations decide validity (commit date,
// schema version, age).
type ResultCache interface {
	Get(org string, repo model.Repository, since time.Time) (*model.RepoResult, bool)
	Set(org string, repo model.Repository, since time.Time, res *model.RepoResult) error
}

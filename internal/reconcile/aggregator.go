package reconcile

import (
	"errors"
	"sort"

	"github.com/ubq-audit/tally/internal/model"
)

// ErrNoData is returned when a run produced nothing to report: either the
// source yielded no repositories or the aggregate is empty. The engine
// refuses to write empty artifacts.
var ErrNoData = errors.New("no data found processing repositories")

// Aggregator folds per-repository results into organization-wide totals.
// It is a plain accumulator: Add in repository order, then Finalize once.
type Aggregator struct {
	report model.Report
	added  int
}

// NewAggregator creates an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{
		report: model.Report{Contributors: model.ContributorBalances{}},
	}
}

// Add folds one repository result into the running totals. Lists are
// concatenated in call order; balances merge additively.
func (a *Aggregator) Add(res *model.RepoResult) {
	a.added++
	a.report.AllPayments = append(a.report.AllPayments, res.Claims...)
	a.report.NoAssigneePayments = append(a.report.NoAssigneePayments, res.NoAssignee...)
	if res.NoPayment != nil {
		a.report.NoPayments = append(a.report.NoPayments, *res.NoPayment)
	}
	a.report.Contributors.Merge(res.Contributors)
}

// Finalize sorts the report for stable output and returns it. Payment lists
// sort by repository name (stable, so encounter order breaks ties);
// no-payment records sort by last commit date descending with unknown dates
// last. An empty aggregate returns ErrNoData.
func (a *Aggregator) Finalize() (*model.Report, error) {
	if a.added == 0 || a.report.Empty() {
		return nil, ErrNoData
	}

	sortByRepo(a.report.AllPayments)
	sortByRepo(a.report.NoAssigneePayments)

	sort.SliceStable(a.report.NoPayments, func(i, j int) bool {
		di, dj := a.report.NoPayments[i].LastCommitDate, a.report.NoPayments[j].LastCommitDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		default:
			return di.After(*dj)
		}
	})

	return &a.report, nil
}

func sortByRepo(claims []model.PaymentClaim) {
	sort.SliceStable(claims, func(i, j int) bool {
		return claims[i].RepoName < claims[j].RepoName
	})
}

// Aggregate is the one-shot form: fold results in order and finalize.
func Aggregate(results []*model.RepoResult) (*model.Report, error) {
	agg := NewAggregator()
	for _, res := range results {
		agg.Add(res)
	}
	return agg.Finalize()
}

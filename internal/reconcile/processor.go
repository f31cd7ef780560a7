package reconcile

import (
	"context"
	"fmt"

	"github.com/ubq-audit/tally/internal/claim"
	"github.com/ubq-audit/tally/internal/log"
	"github.com/ubq-audit/tally/internal/model"
)

// Processor scans one repository's issues for payout claims.
type Processor struct {
	org    string
	parser *claim.Parser
}

// NewProcessor creates a processor for the given organization.
func NewProcessor(org string, parser *claim.Parser) *Processor {
	return &Processor{org: org, parser: parser}
}

// Process walks every issue page of one repository through the claim parser
// and payee resolver.
//
// At most one claim is retained per issue number, first encounter wins; the
// manual-review subset is drawn from retained claims. Malformed comments
// are logged and skipped without aborting the scan. A page fetch error is
// fatal for the whole run and is returned as-is.
func (p *Processor) Process(ctx context.Context, repo model.Repository, pager IssuePager) (*model.RepoResult, error) {
	res := &model.RepoResult{
		Repo:         repo,
		Contributors: model.ContributorBalances{},
	}
	seen := make(map[int]bool)

	for {
		issues, err := pager.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching issues for %s: %w", repo.Name, err)
		}
		if issues == nil {
			break
		}

		for _, issue := range issues {
			p.processIssue(issue, seen, res)
		}
	}

	for _, c := range res.Claims {
		res.Contributors.Add(c.Payee, c.Amount)
	}

	if len(res.Claims) == 0 {
		res.NoPayment = &model.NoPaymentRecord{
			RepoName:       repo.Name,
			Archived:       repo.IsArchived,
			LastCommitDate: repo.LastCommitDate,
			Message:        model.NoPaymentsMessage,
			URL:            model.RepoURL(p.org, repo.Name),
		}
	}

	return res, nil
}

// processIssue extracts and retains the claims of a single issue.
func (p *Processor) processIssue(issue model.Issue, seen map[int]bool, res *model.RepoResult) {
	for _, comment := range issue.Comments {
		matches, err := p.parser.Parse(comment)
		if err != nil {
			log.Warn("skipping malformed claim comment",
				"repo", res.Repo.Name,
				"issue", issue.Number,
				"error", err)
			continue
		}

		for _, m := range matches {
			if seen[issue.Number] {
				log.Debug("duplicate claim for issue, keeping first",
					"repo", res.Repo.Name,
					"issue", issue.Number)
				continue
			}
			seen[issue.Number] = true

			payee, typ := claim.Resolve(m, issue)
			pc := model.PaymentClaim{
				RepoName:    res.Repo.Name,
				IssueNumber: issue.Number,
				Amount:      m.Amount,
				Currency:    m.Currency,
				Payee:       payee,
				Type:        typ,
				URL:         model.IssueURL(p.org, res.Repo.Name, issue.Number),
			}

			res.Claims = append(res.Claims, pc)
			if pc.NeedsReview() {
				res.NoAssignee = append(res.NoAssignee, pc)
			}
		}
	}
}

package ghclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ubq-audit/tally/internal/constants"
	"github.com/ubq-audit/tally/internal/log"
	"github.com/ubq-audit/tally/internal/model"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// graphqlRequest represents a GraphQL request payload.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphqlResponse represents a generic GraphQL response.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// graphql executes one query and decodes the data payload into out.
func (c *Client) graphql(ctx context.Context, query string, vars map[string]any, out any) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encoding GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, graphqlEndpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GraphQL request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading GraphQL response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GraphQL request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(body, &gqlResp); err != nil {
		return fmt.Errorf("decoding GraphQL response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, "; "))
	}

	return json.Unmarshal(gqlResp.Data, out)
}

const repositoriesQuery = `
query ($org: String!, $pageSize: Int!, $cursor: String) {
  organization(login: $org) {
    repositories(first: $pageSize, after: $cursor) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          name
          isArchived
          defaultBranchRef {
            target {
              ... on Commit {
                history(first: 1) {
                  edges {
                    node {
                      committedDate
                    }
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

type repositoriesData struct {
	Organization struct {
		Repositories struct {
			PageInfo pageInfo `json:"pageInfo"`
			Edges    []struct {
				Node struct {
					Name             string `json:"name"`
					IsArchived       bool   `json:"isArchived"`
					DefaultBranchRef *struct {
						Target struct {
							History struct {
								Edges []struct {
									Node struct {
										CommittedDate time.Time `json:"committedDate"`
									} `json:"node"`
								} `json:"edges"`
							} `json:"history"`
						} `json:"target"`
					} `json:"defaultBranchRef"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"repositories"`
	} `json:"organization"`
}

// repositories converts one decoded page into domain repositories.
func (d *repositoriesData) repositories() []model.Repository {
	repos := make([]model.Repository, 0, len(d.Organization.Repositories.Edges))
	for _, edge := range d.Organization.Repositories.Edges {
		repo := model.Repository{
			Name:       edge.Node.Name,
			IsArchived: edge.Node.IsArchived,
		}
		if ref := edge.Node.DefaultBranchRef; ref != nil && len(ref.Target.History.Edges) > 0 {
			date := ref.Target.History.Edges[0].Node.CommittedDate
			repo.LastCommitDate = &date
		}
		repos = append(repos, repo)
	}
	return repos
}

// ListRepositories fetches every repository of the organization in arrival
// order, following pagination to exhaustion.
func (c *Client) ListRepositories(ctx context.Context, org string) ([]model.Repository, error) {
	var (
		repos  []model.Repository
		cursor *string
	)

	for {
		vars := map[string]any{
			"org":      org,
			"pageSize": constants.PageSize,
		}
		if cursor != nil {
			vars["cursor"] = *cursor
		}

		var data repositoriesData
		if err := c.graphql(ctx, repositoriesQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("listing repositories for %s: %w", org, err)
		}

		page := data.repositories()
		repos = append(repos, page...)
		log.Debug("fetched repository page", "org", org, "count", len(page))

		info := data.Organization.Repositories.PageInfo
		if !info.HasNextPage {
			return repos, nil
		}
		cursor = &info.EndCursor
	}
}

const issuesQuery = `
query ($org: String!, $repoName: String!, $pageSize: Int!, $commentPageSize: Int!, $cursor: String, $since: DateTime) {
  repository(owner: $org, name: $repoName) {
    issues(first: $pageSize, after: $cursor, filterBy: { since: $since, states: [CLOSED, OPEN] }) {
      pageInfo {
        hasNextPage
        endCursor
      }
      edges {
        node {
          number
          author {
            login
          }
          assignees(first: 1) {
            edges {
              node {
                login
              }
            }
          }
          comments(first: $commentPageSize) {
            edges {
              node {
                body
                author {
                  login
                }
              }
            }
          }
        }
      }
    }
  }
}`

type issuesData struct {
	Repository struct {
		Issues struct {
			PageInfo pageInfo `json:"pageInfo"`
			Edges    []struct {
				Node struct {
					Number int `json:"number"`
					Author *struct {
						Login string `json:"login"`
					} `json:"author"`
					Assignees struct {
						Edges []struct {
							Node *struct {
								Login string `json:"login"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"assignees"`
					Comments struct {
						Edges []struct {
							Node struct {
								Body   string `json:"body"`
								Author *struct {
									Login string `json:"login"`
								} `json:"author"`
							} `json:"node"`
						} `json:"edges"`
					} `json:"comments"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"issues"`
	} `json:"repository"`
}

// issues converts one decoded page into domain issues, preserving comment
// order.
func (d *issuesData) issues() []model.Issue {
	out := make([]model.Issue, 0, len(d.Repository.Issues.Edges))
	for _, edge := range d.Repository.Issues.Edges {
		node := edge.Node
		issue := model.Issue{Number: node.Number}
		if node.Author != nil {
			issue.AuthorLogin = node.Author.Login
		}
		if len(node.Assignees.Edges) > 0 && node.Assignees.Edges[0].Node != nil {
			issue.AssigneeLogin = node.Assignees.Edges[0].Node.Login
		}
		for _, c := range node.Comments.Edges {
			comment := model.Comment{Body: c.Node.Body}
			if c.Node.Author != nil {
				comment.AuthorLogin = c.Node.Author.Login
			}
			issue.Comments = append(issue.Comments, comment)
		}
		out = append(out, issue)
	}
	return out
}

// IssuePager pages through one repository's issues. Each Next call fetches
// the following page; consumed pages are never re-fetched.
type IssuePager struct {
	client *Client
	org    string
	repo   string
	since  time.Time

	cursor *string
	done   bool
}

// Issues returns a pager over the repository's issues with activity at or
// after since.
func (c *Client) Issues(org, repo string, since time.Time) *IssuePager {
	return &IssuePager{client: c, org: org, repo: repo, since: since}
}

// Next returns the next page of issues in arrival order, or (nil, nil) once
// the sequence is exhausted.
func (p *IssuePager) Next(ctx context.Context) ([]model.Issue, error) {
	if p.done {
		return nil, nil
	}

	vars := map[string]any{
		"org":             p.org,
		"repoName":        p.repo,
		"pageSize":        constants.PageSize,
		"commentPageSize": constants.CommentPageSize,
		"since":           p.since.UTC().Format(time.RFC3339),
	}
	if p.cursor != nil {
		vars["cursor"] = *p.cursor
	}

	var data issuesData
	if err := p.client.graphql(ctx, issuesQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("fetching issues for %s/%s: %w", p.org, p.repo, err)
	}

	info := data.Repository.Issues.PageInfo
	if info.HasNextPage {
		p.cursor = &info.EndCursor
	} else {
		p.done = true
	}

	page := data.issues()
	log.Debug("fetched issue page", "repo", p.repo, "count", len(page))
	if len(page) == 0 && !p.done {
		// An empty page with hasNextPage set would loop forever.
		p.done = true
	}
	return page, nil
}

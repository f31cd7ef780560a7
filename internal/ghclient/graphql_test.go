package ghclient

import (
	"encoding/json"
	"testing"
	"time"
)

func TestRepositoriesDecode(t *testing.T) {
	payload := `{
		"organization": {
			"repositories": {
				"pageInfo": {"hasNextPage": true, "endCursor": "abc"},
				"edges": [
					{
						"node": {
							"name": "tally",
							"isArchived": false,
							"defaultBranchRef": {
								"target": {
									"history": {
										"edges": [
											{"node": {"committedDate": "2023-04-01T12:00:00Z"}}
										]
									}
								}
							}
						}
					},
					{
						"node": {
							"name": "dormant",
							"isArchived": true,
							"defaultBranchRef": null
						}
					}
				]
			}
		}
	}`

	var data repositoriesData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	repos := data.repositories()
	if len(repos) != 2 {
		t.Fatalf("expected 2 repositories, got %d", len(repos))
	}

	if repos[0].Name != "tally" || repos[0].IsArchived {
		t.Errorf("repos[0] = %+v", repos[0])
	}
	wantDate := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	if repos[0].LastCommitDate == nil || !repos[0].LastCommitDate.Equal(wantDate) {
		t.Errorf("LastCommitDate = %v, want %v", repos[0].LastCommitDate, wantDate)
	}

	if repos[1].Name != "dormant" || !repos[1].IsArchived {
		t.Errorf("repos[1] = %+v", repos[1])
	}
	if repos[1].LastCommitDate != nil {
		t.Errorf("repo without default branch must have no commit date, got %v", repos[1].LastCommitDate)
	}

	info := data.Organization.Repositories.PageInfo
	if !info.HasNextPage || info.EndCursor != "abc" {
		t.Errorf("pageInfo = %+v", info)
	}
}

func TestIssuesDecode(t *testing.T) {
	payload := `{
		"repository": {
			"issues": {
				"pageInfo": {"hasNextPage": false, "endCursor": ""},
				"edges": [
					{
						"node": {
							"number": 42,
							"author": {"login": "alice"},
							"assignees": {"edges": [{"node": {"login": "bob"}}]},
							"comments": {"edges": [
								{"node": {"body": "[ CLAIM 25 WXDAI ]", "author": {"login": "ubiquibot"}}},
								{"node": {"body": "nice", "author": null}}
							]}
						}
					},
					{
						"node": {
							"number": 43,
							"author": null,
							"assignees": {"edges": []},
							"comments": {"edges": []}
						}
					}
				]
			}
		}
	}`

	var data issuesData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	issues := data.issues()
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(issues))
	}

	first := issues[0]
	if first.Number != 42 || first.AuthorLogin != "alice" || first.AssigneeLogin != "bob" {
		t.Errorf("issues[0] = %+v", first)
	}
	if len(first.Comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(first.Comments))
	}
	if first.Comments[0].AuthorLogin != "ubiquibot" || first.Comments[0].Body != "[ CLAIM 25 WXDAI ]" {
		t.Errorf("comments[0] = %+v", first.Comments[0])
	}
	if first.Comments[1].AuthorLogin != "" {
		t.Errorf("deleted comment author should decode to empty login, got %q", first.Comments[1].AuthorLogin)
	}

	second := issues[1]
	if second.AuthorLogin != "" || second.AssigneeLogin != "" {
		t.Errorf("issues[1] should have empty author/assignee, got %+v", second)
	}
}

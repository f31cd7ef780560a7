package claim

import "github.com/ubq-audit/tally/internal/model"

// Resolve determines the payee and claim type for a raw match using the
// enclosing issue's author/assignee context.
//
// Inline claims name their payee explicitly for creator and conversation
// rewards; when no name is present the award belongs to the issue assignee
// (or the NoAssignee sentinel). Bracketed claims name the payee via the
// paired mention and the type is derived by comparing that user against the
// issue's assignee and author.
func Resolve(m Match, issue model.Issue) (payee string, typ model.ClaimType) {
	switch m.Dialect {
	case DialectBracketed:
		payee = m.Mention
		switch payee {
		case assignee(issue):
			typ = model.ClaimAssignee
		case issue.AuthorLogin:
			typ = model.ClaimCreator
		default:
			typ = model.ClaimConversation
		}
		return payee, typ

	default: // DialectInline
		payee = m.ExplicitPayee
		if payee == "" {
			payee = assignee(issue)
		}
		switch {
		case m.CreatorHint:
			typ = model.ClaimCreator
		case m.ConversationHint:
			typ = model.ClaimConversation
		default:
			typ = model.ClaimAssignee
		}
		return payee, typ
	}
}

// assignee returns the issue assignee, defaulting to the NoAssignee
// sentinel.
func assignee(issue model.Issue) string {
	if issue.AssigneeLogin == "" {
		return model.NoAssignee
	}
	return issue.AssigneeLogin
}

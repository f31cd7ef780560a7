// Package claim recognizes bot payout claims embedded in issue comment text
// and resolves who each claim paid.
//
// Two historical comment formats exist because the bot's output changed over
// time: an inline "[ CLAIM <amount> <currency> ]" form and a newer bracketed
// "[ [ <amount> <currency> ]]" form that lists one or more @user headings.
// Each format has its own recognizer returning a structured match-or-none
// result so that a future third format stays an additive change.
package claim

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ubq-audit/tally/internal/log"
	"github.com/ubq-audit/tally/internal/model"
)

// Dialect identifies which claim format a match came from.
type Dialect int

const (
	// DialectInline is the older "[ CLAIM 12.5 DAI ]" format, typically the
	// assignee's award. At most one claim per comment.
	DialectInline Dialect = iota
	// DialectBracketed is the newer "[ [ **12.5 DAI** ]]" format carrying
	// one amount per "###### @user" heading mention.
	DialectBracketed
)

func (d Dialect) String() string {
	switch d {
	case DialectInline:
		return "inline"
	case DialectBracketed:
		return "bracketed"
	default:
		return "unknown"
	}
}

// ErrMismatchedMentions is returned when a bracketed claim's mention list
// and amount list differ in length. The pairing is positional, so guessing
// an alignment would misattribute payouts; the comment is surfaced as
// malformed instead.
var ErrMismatchedMentions = errors.New("mention and amount counts differ")

var (
	inlineRe       = regexp.MustCompile(`\[ CLAIM (\d+(\.\d+)?) (XDAI|DAI|WXDAI) \]`)
	inlineAmountRe = regexp.MustCompile(`CLAIM (\d+(\.\d+)?) (XDAI|DAI|WXDAI)`)
	bracketedRe    = regexp.MustCompile(`\[ \[ \*?(\d+(\.\d+)?) \*?(XDAI|DAI|WXDAI)\*? \]\]`)
	mentionRe      = regexp.MustCompile(`###### @(\w+)`)
	payoutRe       = regexp.MustCompile(`\*?(\d+(\.\d+)?) \*?(XDAI|DAI|WXDAI)\*?`)
)

// Substrings distinguishing reward categories in inline claim comments.
const (
	creatorRewardMarker      = "Task Creator Reward"
	conversationRewardMarker = "Conversation Reward"
	explicitPayeeMarker      = ": [ CLAIM"
)

// Match is one recognized raw claim. The payee fields are raw text; turning
// them into a (payee, type) pair requires issue context and happens in
// Resolve.
type Match struct {
	Dialect  Dialect
	Amount   float64
	Currency model.Currency

	// ExplicitPayee is the name preceding ": [ CLAIM" in an inline claim,
	// stripped of markup. Empty when the claim names no payee.
	ExplicitPayee string
	// CreatorHint and ConversationHint record which reward-category marker
	// the comment body carried, if any.
	CreatorHint      bool
	ConversationHint bool

	// Mention is the @user this amount pairs with in a bracketed claim.
	Mention string
}

// Parser recognizes claims in comment bodies. Inline claims are only
// trusted when authored by one of the configured bot accounts; bracketed
// claims are accepted from any author, matching the bot-format history.
type Parser struct {
	bots map[string]struct{}
}

// NewParser creates a parser trusting the given bot logins.
func NewParser(bots ...string) *Parser {
	p := &Parser{bots: make(map[string]struct{}, len(bots))}
	for _, b := range bots {
		p.bots[b] = struct{}{}
	}
	return p
}

// IsBot reports whether login is a configured bot account.
func (p *Parser) IsBot(login string) bool {
	_, ok := p.bots[login]
	return ok
}

// Parse extracts zero or more raw claim matches from one comment.
// A comment matching neither dialect yields (nil, nil). A comment that
// matches a dialect but cannot be decoded coherently returns an error; the
// caller logs and skips it without aborting the repository scan.
func (p *Parser) Parse(c model.Comment) ([]Match, error) {
	inline := inlineRe.MatchString(c.Body)
	bracketed := bracketedRe.MatchString(c.Body)

	if inline && bracketed {
		// Overlapping content is rare and usually means a mangled comment.
		// Inline takes precedence; make the collision visible.
		log.Warn("comment matches both claim dialects, using inline",
			"author", c.AuthorLogin)
	}

	switch {
	case inline:
		return p.parseInline(c)
	case bracketed:
		return parseBracketed(c)
	default:
		return nil, nil
	}
}

// parseInline handles DialectInline. Only bot comments carry trustworthy
// inline claims; anything else yields nothing.
func (p *Parser) parseInline(c model.Comment) ([]Match, error) {
	if !p.IsBot(c.AuthorLogin) {
		return nil, nil
	}

	sub := inlineAmountRe.FindStringSubmatch(c.Body)
	if sub == nil {
		// Unreachable while inlineAmountRe is a subset of inlineRe, but a
		// pattern edit must not turn this into a silent drop.
		return nil, fmt.Errorf("inline claim matched but amount capture failed")
	}

	amount, err := strconv.ParseFloat(sub[1], 64)
	if err != nil {
		return nil, fmt.Errorf("parsing inline claim amount %q: %w", sub[1], err)
	}

	m := Match{
		Dialect:          DialectInline,
		Amount:           amount,
		Currency:         model.Currency(sub[3]),
		CreatorHint:      strings.Contains(c.Body, creatorRewardMarker),
		ConversationHint: strings.Contains(c.Body, conversationRewardMarker),
	}

	if strings.Contains(c.Body, explicitPayeeMarker) {
		m.ExplicitPayee = stripPayeeMarkup(strings.SplitN(c.Body, ":", 2)[0])
	}

	return []Match{m}, nil
}

// parseBracketed handles DialectBracketed: the Nth "###### @user" mention
// pairs with the Nth amount/currency occurrence in the body.
func parseBracketed(c model.Comment) ([]Match, error) {
	mentions := mentionRe.FindAllStringSubmatch(c.Body, -1)
	payouts := payoutRe.FindAllStringSubmatch(c.Body, -1)

	if len(mentions) == 0 {
		return nil, fmt.Errorf("bracketed claim without @user mentions: %w", ErrMismatchedMentions)
	}
	if len(mentions) != len(payouts) {
		return nil, fmt.Errorf("%d mentions vs %d amounts: %w",
			len(mentions), len(payouts), ErrMismatchedMentions)
	}

	matches := make([]Match, 0, len(mentions))
	for i, mention := range mentions {
		amount, err := strconv.ParseFloat(payouts[i][1], 64)
		if err != nil {
			return nil, fmt.Errorf("parsing bracketed claim amount %q: %w", payouts[i][1], err)
		}
		matches = append(matches, Match{
			Dialect:  DialectBracketed,
			Amount:   amount,
			Currency: model.Currency(payouts[i][3]),
			Mention:  mention[1],
		})
	}
	return matches, nil
}

// stripPayeeMarkup removes the bold/heading markup the bot wraps payee names
// in ("**gitcoindev" or "### gitcoindev"). An unknown prefix is kept as-is
// but logged so malformed comments stay visible.
func stripPayeeMarkup(raw string) string {
	switch {
	case strings.Contains(raw, "**"):
		return strings.SplitN(raw, "**", 2)[1]
	case strings.Contains(raw, "###"):
		return strings.TrimSpace(strings.SplitN(raw, "###", 2)[1])
	default:
		log.Debug("payee prefix without expected markup", "prefix", raw)
		return raw
	}
}

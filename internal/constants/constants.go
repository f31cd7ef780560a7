// Package constants holds shared defaults for the tally application.
package constants

import "time"

const (
	// DefaultOrg is the GitHub organization scanned when none is configured.
	DefaultOrg = "Ubiquity"

	// DefaultBotLogin is the bot account whose comments carry payout claims.
	DefaultBotLogin = "ubiquibot"

	// DefaultSince is the inclusive lower bound on issue activity when no
	// --since flag or config value is given.
	DefaultSince = "2023-01-01"

	// PageSize is the number of repositories or issues requested per
	// GraphQL page.
	PageSize = 100

	// CommentPageSize is the number of comments requested per issue.
	CommentPageSize = 100

	// RepoCacheTTL bounds how long a cached repository scan is trusted even
	// when the repository shows no new commits.
	RepoCacheTTL = 7 * 24 * time.Hour

	// RateLimitLowWatermark triggers a debug warning when the remaining
	// GitHub API quota drops below it.
	RateLimitLowWatermark = 100
)

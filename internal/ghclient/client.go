// Package ghclient implements the GitHub data source for tally: a REST
// client for account and rate limit queries and a GraphQL client for the
// paginated repository and issue/comment scans.
package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/ubq-audit/tally/internal/constants"
	"github.com/ubq-audit/tally/internal/log"
	"golang.org/x/oauth2"
)

// ErrRateLimited is returned when GitHub reports an exhausted API quota.
var ErrRateLimited = errors.New("GitHub API rate limit exceeded")

// rateLimitTransport wraps an http.RoundTripper to surface GitHub rate
// limit exhaustion as ErrRateLimited instead of an opaque 403.
type rateLimitTransport struct {
	base http.RoundTripper
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	if remaining := resp.Header.Get("X-RateLimit-Remaining"); remaining != "" {
		var rem int
		if _, err := fmt.Sscanf(remaining, "%d", &rem); err == nil && rem <= constants.RateLimitLowWatermark && rem > 0 {
			log.Debug("rate limit low", "remaining", rem)
		}
	}

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			return nil, ErrRateLimited
		}
	}

	return resp, nil
}

// Client wraps the GitHub REST and GraphQL APIs.
type Client struct {
	rest *gh.Client
	http *http.Client
	// token is intentionally unexported. NEVER add String(), MarshalJSON(),
	// or any method that could expose this value in logs or serialized output.
	token string
}

// NewClient creates a client using a personal access token, falling back to
// the GITHUB_TOKEN environment variable.
func NewClient(ctx context.Context, token string) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set the GITHUB_TOKEN environment variable")
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Transport = &rateLimitTransport{base: tc.Transport}
	tc.Timeout = 30 * time.Second

	return &Client{
		rest:  gh.NewClient(tc),
		http:  tc,
		token: token,
	}, nil
}

// AuthenticatedUser returns the authenticated user's login.
func (c *Client) AuthenticatedUser(ctx context.Context) (string, error) {
	user, _, err := c.rest.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	return user.GetLogin(), nil
}

// RateLimits fetches the current GitHub API rate limit status.
func (c *Client) RateLimits(ctx context.Context) (*gh.RateLimits, error) {
	limits, _, err := c.rest.RateLimit.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limits: %w", err)
	}
	return limits, nil
}

// Package cache stores completed repository scans on disk so re-runs can
// skip repositories with no new commits.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ubq-audit/tally/internal/constants"
	"github.com/ubq-audit/tally/internal/log"
	"github.com/ubq-audit/tally/internal/model"
)

// Version invalidates every existing entry when the cached schema or the
// claim recognition logic changes.
const Version = 1

// Entry is one cached repository scan.
type Entry struct {
	Version        int              `json:"version"`
	CachedAt       time.Time        `json:"cachedAt"`
	Since          time.Time        `json:"since"`
	LastCommitDate *time.Time       `json:"lastCommitDate,omitempty"`
	Result         model.RepoResult `json:"result"`
}

// Cache is a directory of JSON entries, one per (org, repo, since) triple.
type Cache struct {
	dir string
}

// New creates a cache rooted in the user cache directory.
func New() (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, err
	}

	cacheDir = filepath.Join(cacheDir, "tally", "repos")
	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return &Cache{dir: cacheDir}, nil
}

// NewWithDir creates a cache rooted at dir (useful for testing).
func NewWithDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// entryPath generates a file name for one (org, repo, since) triple.
func (c *Cache) entryPath(org string, repo model.Repository, since time.Time) string {
	name := fmt.Sprintf("%s_%s_%s.json",
		strings.ReplaceAll(org, "/", "_"),
		strings.ReplaceAll(repo.Name, "/", "_"),
		since.UTC().Format("2006-01-02"),
	)
	return filepath.Join(c.dir, name)
}

// Get retrieves a cached scan when it is still valid: same schema version,
// unchanged last commit date, and younger than the TTL.
func (c *Cache) Get(org string, repo model.Repository, since time.Time) (*model.RepoResult, bool) {
	data, err := os.ReadFile(c.entryPath(org, repo, since))
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Version != Version {
		log.Debug("cache version mismatch", "cached", entry.Version, "current", Version, "repo", repo.Name)
		return nil, false
	}
	if !sameCommitDate(entry.LastCommitDate, repo.LastCommitDate) {
		log.Debug("cache invalidated by new commits", "repo", repo.Name)
		return nil, false
	}
	if time.Since(entry.CachedAt) > constants.RepoCacheTTL {
		return nil, false
	}

	return &entry.Result, true
}

// Set caches one repository scan.
func (c *Cache) Set(org string, repo model.Repository, since time.Time, res *model.RepoResult) error {
	if res == nil {
		return nil
	}

	entry := Entry{
		Version:        Version,
		CachedAt:       time.Now(),
		Since:          since,
		LastCommitDate: repo.LastCommitDate,
		Result:         *res,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(c.entryPath(org, repo, since), data, 0600)
}

// Clear removes all cached entries.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns the number of cached scans and how many are still fresh.
func (c *Cache) Stats() (total, fresh int, err error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return 0, 0, err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		total++

		data, err := os.ReadFile(filepath.Join(c.dir, e.Name()))
		if err != nil {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		if entry.Version == Version && time.Since(entry.CachedAt) <= constants.RepoCacheTTL {
			fresh++
		}
	}

	return total, fresh, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

func sameCommitDate(a, b *time.Time) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	default:
		return a.Equal(*b)
	}
}

package models

import (
	"time"

	"github.com/google/uuid"

	"pagewatch/internal/detect"
)

// Target is a watched entity: a set of pages and the keywords to look for.
type Target struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	URLs        []string   `json:"urls"`
	Keywords    []string   `json:"keywords"`
	NotifyEmail string     `json:"notify_email"`
	Active      bool       `json:"active"`
	LastRunAt   *time.Time `json:"last_run_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// PageRecords holds the last snapshot per URL, keyed by the literal URL.
	PageRecords map[string]PageSnapshot `json:"page_records,omitempty"`
}

// Snapshot returns the stored snapshot for url and whether one exists.
func (t *Target) Snapshot(url string) (PageSnapshot, bool) {
	s, ok := t.PageRecords[url]
	return s, ok
}

// PageSnapshot is what was last seen on one URL for one target.
// Hash and KeywordCounts always describe the same version of the page.
type PageSnapshot struct {
	URL           string        `json:"url"`
	Hash          string        `json:"hash"`
	KeywordCounts detect.Counts `json:"keyword_counts"`
	CheckedAt     time.Time     `json:"checked_at"`
}

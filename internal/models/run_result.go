package models

import (
	"time"

	"github.com/google/uuid"
)

// Page check outcome constants
const (
	OutcomeUnchanged = "unchanged"
	OutcomeChanged   = "changed"
	OutcomeEmpty     = "empty"
	OutcomeError     = "error"
)

// PageResult describes what happened to one URL during a run.
type PageResult struct {
	URL     string   `json:"url"`
	Outcome string   `json:"outcome"`
	Hash    string   `json:"hash,omitempty"`
	Notable []string `json:"notable,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// RunResult summarizes one pass over a target's URLs.
type RunResult struct {
	TargetID   uuid.UUID    `json:"target_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Pages      []PageResult `json:"pages"`
}

// Alerted returns the number of pages that produced notable keywords.
func (r *RunResult) Alerted() int {
	n := 0
	for _, p := range r.Pages {
		if len(p.Notable) > 0 {
			n++
		}
	}
	return n
}

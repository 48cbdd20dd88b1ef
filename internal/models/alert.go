package models

import (
	"time"

	"github.com/google/uuid"

	"pagewatch/internal/detect"
)

// Alert records notable keywords found on a changed page.
type Alert struct {
	ID        uuid.UUID             `json:"id"`
	TargetID  uuid.UUID             `json:"target_id"`
	URL       string                `json:"url"`
	Keywords  []string              `json:"keywords"`
	Matches   []detect.KeywordMatch `json:"matches"`
	CreatedAt time.Time             `json:"created_at"`
}

// ContextsFor returns the context windows recorded for keyword.
func (a *Alert) ContextsFor(keyword string) []string {
	var out []string
	for _, m := range a.Matches {
		if m.Keyword == keyword {
			out = append(out, m.ContextText)
		}
	}
	return out
}

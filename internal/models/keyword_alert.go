package models

import "time"

// KeywordAlertCount is the number of alerts a keyword has taken part in.
type KeywordAlertCount struct {
	Keyword    string
	Count      int64
	LastSeenAt time.Time
}

package models

// PagesResponse lists the stored snapshots of a target.
type PagesResponse struct {
	TargetID string         `json:"target_id"`
	Pages    []PageSnapshot `json:"pages"`
}

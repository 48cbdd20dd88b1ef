package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"pagewatch/internal/models"
)

// GetPageRecords returns a target's snapshots keyed by the literal URL.
func (d *DB) GetPageRecords(ctx context.Context, targetID uuid.UUID) (map[string]models.PageSnapshot, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT url, hash, keyword_counts, checked_at
		FROM page_records
		WHERE target_id = $1
	`, targetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make(map[string]models.PageSnapshot)
	for rows.Next() {
		var s models.PageSnapshot
		var counts []byte
		if err := rows.Scan(&s.URL, &s.Hash, &counts, &s.CheckedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(counts, &s.KeywordCounts); err != nil {
			return nil, fmt.Errorf("failed to decode keyword counts for %s: %w", s.URL, err)
		}
		records[s.URL] = s
	}
	return records, rows.Err()
}

// SavePageSnapshot replaces the snapshot for one URL of a target. The hash and
// keyword counts are written in a single statement so they never disagree.
func (d *DB) SavePageSnapshot(ctx context.Context, targetID uuid.UUID, snapshot models.PageSnapshot) error {
	counts, err := json.Marshal(snapshot.KeywordCounts)
	if err != nil {
		return fmt.Errorf("failed to encode keyword counts: %w", err)
	}

	_, err = d.Pool.Exec(ctx, `
		INSERT INTO page_records (target_id, url, hash, keyword_counts, checked_at)
		VALUES ($1, $2, $3, $4::jsonb, $5)
		ON CONFLICT (target_id, url) DO UPDATE
		SET hash = EXCLUDED.hash, keyword_counts = EXCLUDED.keyword_counts, checked_at = EXCLUDED.checked_at
	`, targetID, snapshot.URL, snapshot.Hash, string(counts), snapshot.CheckedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", snapshot.URL, err)
	}
	return nil
}

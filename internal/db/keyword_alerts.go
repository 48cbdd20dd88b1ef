package db

import (
	"context"

	"pagewatch/internal/models"
)

// IncrementKeywordAlert bumps the alert count for a keyword.
func (d *DB) IncrementKeywordAlert(ctx context.Context, keyword string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO keyword_alert_counts (keyword, count, last_seen_at)
		VALUES ($1, 1, NOW())
		ON CONFLICT (keyword) DO UPDATE
		SET count = keyword_alert_counts.count + 1, last_seen_at = NOW()
	`, keyword)
	return err
}

// GetAllKeywordAlertCounts returns all keyword alert rows for metrics export.
func (d *DB) GetAllKeywordAlertCounts(ctx context.Context) ([]models.KeywordAlertCount, error) {
	rows, err := d.Pool.Query(ctx, `SELECT keyword, count, last_seen_at FROM keyword_alert_counts`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.KeywordAlertCount
	for rows.Next() {
		var c models.KeywordAlertCount
		if err := rows.Scan(&c.Keyword, &c.Count, &c.LastSeenAt); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

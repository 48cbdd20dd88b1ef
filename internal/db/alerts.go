package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"pagewatch/internal/models"
)

// CreateAlert stores an alert and fills in its ID and timestamp.
func (d *DB) CreateAlert(ctx context.Context, a *models.Alert) error {
	matches, err := json.Marshal(a.Matches)
	if err != nil {
		return fmt.Errorf("failed to encode matches: %w", err)
	}

	return d.Pool.QueryRow(ctx, `
		INSERT INTO alerts (target_id, url, keywords, matches)
		VALUES ($1, $2, $3, $4::jsonb)
		RETURNING id, created_at
	`, a.TargetID, a.URL, a.Keywords, string(matches)).Scan(&a.ID, &a.CreatedAt)
}

// GetAlertByID returns a single alert.
func (d *DB) GetAlertByID(ctx context.Context, id uuid.UUID) (*models.Alert, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, target_id, url, keywords, matches, created_at
		FROM alerts WHERE id = $1
	`, id)
	if err != nil {
		return nil, err
	}
	alerts, err := scanAlerts(rows)
	if err != nil {
		return nil, err
	}
	if len(alerts) == 0 {
		return nil, ErrAlertNotFound
	}
	return &alerts[0], nil
}

// ListAlerts returns a target's most recent alerts, newest first.
func (d *DB) ListAlerts(ctx context.Context, targetID uuid.UUID, limit int) ([]models.Alert, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT id, target_id, url, keywords, matches, created_at
		FROM alerts
		WHERE target_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, targetID, limit)
	if err != nil {
		return nil, err
	}
	return scanAlerts(rows)
}

func scanAlerts(rows pgx.Rows) ([]models.Alert, error) {
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		var matches []byte
		if err := rows.Scan(&a.ID, &a.TargetID, &a.URL, &a.Keywords, &matches, &a.CreatedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, ErrAlertNotFound
			}
			return nil, err
		}
		if err := json.Unmarshal(matches, &a.Matches); err != nil {
			return nil, fmt.Errorf("failed to decode matches: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

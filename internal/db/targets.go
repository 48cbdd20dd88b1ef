package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pagewatch/internal/models"
)

// targetColumns is the standard column list for target queries.
const targetColumns = `id, name, urls, keywords, notify_email, active, last_run_at, created_at, updated_at`

// scanTarget scans a row into a Target struct.
func scanTarget(row pgx.Row) (*models.Target, error) {
	var t models.Target
	err := row.Scan(
		&t.ID,
		&t.Name,
		&t.URLs,
		&t.Keywords,
		&t.NotifyEmail,
		&t.Active,
		&t.LastRunAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTargetNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// scanTargets scans multiple rows into a slice of Targets.
func scanTargets(rows pgx.Rows) ([]models.Target, error) {
	defer rows.Close()

	targets := []models.Target{}
	for rows.Next() {
		var t models.Target
		if err := rows.Scan(
			&t.ID,
			&t.Name,
			&t.URLs,
			&t.Keywords,
			&t.NotifyEmail,
			&t.Active,
			&t.LastRunAt,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}

	return targets, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateTarget inserts a new target.
func (d *DB) CreateTarget(ctx context.Context, t *models.Target) error {
	query := `
		INSERT INTO targets (name, urls, keywords, notify_email, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := d.Pool.QueryRow(ctx, query,
		t.Name,
		t.URLs,
		t.Keywords,
		t.NotifyEmail,
		t.Active,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTargetName
		}
		return err
	}
	return nil
}

// UpsertTargetByName creates a target or replaces the URLs, keywords and
// settings of the existing target with the same name. Used for YAML seeding.
func (d *DB) UpsertTargetByName(ctx context.Context, t *models.Target) error {
	query := `
		INSERT INTO targets (name, urls, keywords, notify_email, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET urls = EXCLUDED.urls, keywords = EXCLUDED.keywords,
			notify_email = EXCLUDED.notify_email, active = EXCLUDED.active, updated_at = NOW()
		RETURNING ` + targetColumns

	saved, err := scanTarget(d.Pool.QueryRow(ctx, query, t.Name, t.URLs, t.Keywords, t.NotifyEmail, t.Active))
	if err != nil {
		return fmt.Errorf("failed to upsert target %s: %w", t.Name, err)
	}

	if err := d.prunePageRecords(ctx, saved.ID, saved.URLs); err != nil {
		return err
	}

	*t = *saved
	return nil
}

// GetTargetByID returns a target together with its page records.
func (d *DB) GetTargetByID(ctx context.Context, id uuid.UUID) (*models.Target, error) {
	t, err := scanTarget(d.Pool.QueryRow(ctx, `SELECT `+targetColumns+` FROM targets WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	records, err := d.GetPageRecords(ctx, id)
	if err != nil {
		return nil, err
	}
	t.PageRecords = records
	return t, nil
}

// ListTargets returns targets ordered by name.
func (d *DB) ListTargets(ctx context.Context, limit, offset int) ([]models.Target, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+targetColumns+`
		FROM targets
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanTargets(rows)
}

// ListTargetsDue returns active targets, least recently run first.
// Page records are not loaded.
func (d *DB) ListTargetsDue(ctx context.Context, limit int) ([]models.Target, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+targetColumns+`
		FROM targets
		WHERE active = TRUE AND cardinality(urls) > 0
		ORDER BY last_run_at ASC NULLS FIRST
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return scanTargets(rows)
}

// UpdateTarget replaces a target's editable fields. Page records for URLs the
// target no longer watches are removed in the same transaction.
func (d *DB) UpdateTarget(ctx context.Context, t *models.Target) error {
	tx, err := d.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE targets
		SET name = $1, urls = $2, keywords = $3, notify_email = $4, active = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING updated_at
	`, t.Name, t.URLs, t.Keywords, t.NotifyEmail, t.Active, t.ID).Scan(&t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTargetNotFound
		}
		if isUniqueViolation(err) {
			return ErrDuplicateTargetName
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
		DELETE FROM page_records WHERE target_id = $1 AND NOT (url = ANY($2))
	`, t.ID, t.URLs); err != nil {
		return fmt.Errorf("failed to prune page records: %w", err)
	}

	return tx.Commit(ctx)
}

// DeleteTarget removes a target; its page records and alerts cascade.
func (d *DB) DeleteTarget(ctx context.Context, id uuid.UUID) error {
	result, err := d.Pool.Exec(ctx, `DELETE FROM targets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTargetNotFound
	}
	return nil
}

// MarkTargetRun records when a target was last checked.
func (d *DB) MarkTargetRun(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := d.Pool.Exec(ctx, `UPDATE targets SET last_run_at = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTargetNotFound
	}
	return nil
}

func (d *DB) prunePageRecords(ctx context.Context, targetID uuid.UUID, urls []string) error {
	if _, err := d.Pool.Exec(ctx, `
		DELETE FROM page_records WHERE target_id = $1 AND NOT (url = ANY($2))
	`, targetID, urls); err != nil {
		return fmt.Errorf("failed to prune page records: %w", err)
	}
	return nil
}

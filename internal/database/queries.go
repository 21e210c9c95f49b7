package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ListRecencyEntries returns every stored entry ordered by URL, users in delivery order
func (db *DB) ListRecencyEntries(ctx context.Context) ([]RecencyEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT e.url, e.title, e.company, e.first_seen, e.last_seen, u.username
		FROM recency_entries e
		LEFT JOIN recency_users u ON u.url = e.url
		ORDER BY e.url, u.position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []RecencyEntry
	for rows.Next() {
		var (
			e        RecencyEntry
			username sql.NullString
		)
		if err := rows.Scan(&e.URL, &e.Title, &e.Company, &e.FirstSeen, &e.LastSeen, &username); err != nil {
			return nil, err
		}

		n := len(entries)
		if n == 0 || entries[n-1].URL != e.URL {
			e.ShownTo = []string{}
			entries = append(entries, e)
			n++
		}
		if username.Valid {
			entries[n-1].ShownTo = append(entries[n-1].ShownTo, username.String)
		}
	}
	return entries, rows.Err()
}

// ReplaceRecencyEntries replaces the stored cache with entries in one transaction
func (db *DB) ReplaceRecencyEntries(ctx context.Context, entries []RecencyEntry) error {
	return db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recency_users`); err != nil {
			return fmt.Errorf("failed to clear recency users: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recency_entries`); err != nil {
			return fmt.Errorf("failed to clear recency entries: %w", err)
		}

		entryStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recency_entries (url, title, company, first_seen, last_seen)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer entryStmt.Close()

		userStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO recency_users (url, username, position) VALUES (?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer userStmt.Close()

		for _, e := range entries {
			if _, err := entryStmt.ExecContext(ctx, e.URL, e.Title, e.Company, e.FirstSeen, e.LastSeen); err != nil {
				return fmt.Errorf("failed to insert entry %s: %w", e.URL, err)
			}
			for i, user := range e.ShownTo {
				if _, err := userStmt.ExecContext(ctx, e.URL, user, i); err != nil {
					return fmt.Errorf("failed to insert user for %s: %w", e.URL, err)
				}
			}
		}
		return nil
	})
}

// CreateMatchRun inserts a run summary
func (db *DB) CreateMatchRun(ctx context.Context, r *MatchRun) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO match_runs (
			id, started_at, finished_at, input_count, unique_count, user_count,
			selected, delivered, error_count, overrun, schedule
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID, r.StartedAt, r.FinishedAt, r.Input, r.Unique, r.Users,
		r.Selected, r.Delivered, r.Errors, r.Overrun, NullString(r.Schedule),
	)
	return err
}

// GetMatchRun retrieves a run by ID
func (db *DB) GetMatchRun(ctx context.Context, id string) (*MatchRun, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, started_at, finished_at, input_count, unique_count, user_count,
		       selected, delivered, error_count, overrun, schedule
		FROM match_runs WHERE id = ?
	`, id)

	r, err := scanMatchRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListMatchRuns retrieves runs, newest first
func (db *DB) ListMatchRuns(ctx context.Context, opts RunListOptions) ([]MatchRun, error) {
	query := `
		SELECT id, started_at, finished_at, input_count, unique_count, user_count,
		       selected, delivered, error_count, overrun, schedule
		FROM match_runs WHERE 1=1
	`
	args := []interface{}{}

	if opts.Since != nil {
		query += " AND started_at >= ?"
		args = append(args, *opts.Since)
	}

	query += " ORDER BY started_at DESC"

	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []MatchRun
	for rows.Next() {
		r, err := scanMatchRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// GetRunStats returns aggregate run history
func (db *DB) GetRunStats(ctx context.Context, since *time.Time) (*RunStats, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(delivered), 0),
		       COALESCE(SUM(error_count), 0),
		       COALESCE(SUM(CASE WHEN overrun THEN 1 ELSE 0 END), 0)
		FROM match_runs
	`
	args := []interface{}{}
	if since != nil {
		query += " WHERE started_at >= ?"
		args = append(args, *since)
	}

	stats := &RunStats{}
	err := db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalRuns, &stats.TotalDelivered, &stats.TotalErrors, &stats.Overruns,
	)
	if err != nil {
		return nil, err
	}

	if stats.TotalRuns > 0 {
		runs, err := db.ListMatchRuns(ctx, RunListOptions{Since: since, Limit: 1})
		if err != nil {
			return nil, err
		}
		if len(runs) > 0 {
			stats.LastRunAt = &runs[0].StartedAt
		}
	}

	return stats, nil
}

// DeleteMatchRunsBefore removes run history older than cutoff
func (db *DB) DeleteMatchRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM match_runs WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatchRun(row rowScanner) (*MatchRun, error) {
	r := &MatchRun{}
	var schedule sql.NullString

	err := row.Scan(
		&r.ID, &r.StartedAt, &r.FinishedAt, &r.Input, &r.Unique, &r.Users,
		&r.Selected, &r.Delivered, &r.Errors, &r.Overrun, &schedule,
	)
	if err != nil {
		return nil, err
	}

	r.Schedule = StringPtr(schedule)
	return r, nil
}

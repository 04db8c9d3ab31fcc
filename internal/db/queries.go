package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

// InsertReading journals a recorded reading. A reading whose bucket is
// already journaled for the same type is ignored and reported as false.
func (db *DB) InsertReading(ctx context.Context, entry *models.JournalEntry) (bool, error) {
	query := `
		INSERT OR IGNORE INTO readings (reading_type, bucket_ts, value, native_value, recorded_at)
		VALUES (?, ?, ?, ?, ?)
	`

	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		entry.Type.String(),
		entry.Timestamp,
		entry.Value,
		entry.NativeValue,
		recordedAt.UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert reading: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil || affected == 0 {
		return false, nil
	}

	if id, err := result.LastInsertId(); err == nil {
		entry.ID = id
	}
	return true, nil
}

// CountReadings returns the number of journaled readings of a type.
func (db *DB) CountReadings(ctx context.Context, t models.ReadingType) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM readings WHERE reading_type = ?", t.String(),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count readings: %w", err)
	}
	return count, nil
}

// LatestReading returns the newest journaled bucket of a type, or nil when
// none exists.
func (db *DB) LatestReading(ctx context.Context, t models.ReadingType) (*models.JournalEntry, error) {
	entries, err := db.RecentReadings(ctx, t, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// RecentReadings returns up to limit journaled readings of a type, newest
// first.
func (db *DB) RecentReadings(ctx context.Context, t models.ReadingType, limit int) ([]models.JournalEntry, error) {
	query := `
		SELECT id, bucket_ts, value, native_value,
			   CAST(strftime('%s', recorded_at) AS INTEGER)
		FROM readings
		WHERE reading_type = ?
		ORDER BY bucket_ts DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, t.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent readings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []models.JournalEntry
	for rows.Next() {
		entry := models.JournalEntry{Type: t}
		var recordedAt sql.NullInt64

		if err := rows.Scan(&entry.ID, &entry.Timestamp, &entry.Value, &entry.NativeValue, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reading: %w", err)
		}
		if recordedAt.Valid {
			entry.RecordedAt = time.Unix(recordedAt.Int64, 0).UTC()
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// InsertFetchFailure journals a failed poll.
func (db *DB) InsertFetchFailure(ctx context.Context, failure *models.FetchFailure) error {
	query := `
		INSERT INTO fetch_errors (reading_type, kind, status_code, message, occurred_at)
		VALUES (?, ?, ?, ?, ?)
	`

	occurredAt := failure.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	result, err := db.ExecContext(ctx, query,
		failure.Type.String(),
		failure.Kind,
		failure.StatusCode,
		nullString(failure.Message),
		occurredAt.UTC().Format(sqlTimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch failure: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		failure.ID = id
	}
	return nil
}

// RecentFetchFailures returns up to limit failures, newest first.
func (db *DB) RecentFetchFailures(ctx context.Context, limit int) ([]models.FetchFailure, error) {
	query := `
		SELECT id, reading_type, kind, status_code, message,
			   CAST(strftime('%s', occurred_at) AS INTEGER)
		FROM fetch_errors
		ORDER BY occurred_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch failures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var failures []models.FetchFailure
	for rows.Next() {
		var f models.FetchFailure
		var typeName string
		var message sql.NullString
		var occurredAt sql.NullInt64

		if err := rows.Scan(&f.ID, &typeName, &f.Kind, &f.StatusCode, &message, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch failure: %w", err)
		}
		if t, err := models.ParseReadingType(typeName); err == nil {
			f.Type = t
		}
		f.Message = message.String
		if occurredAt.Valid {
			f.OccurredAt = time.Unix(occurredAt.Int64, 0).UTC()
		}
		failures = append(failures, f)
	}

	return failures, rows.Err()
}

// Stats summarizes the journal.
func (db *DB) Stats(ctx context.Context) (*models.JournalStats, error) {
	stats := &models.JournalStats{Path: db.path}

	err := db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(MIN(bucket_ts), 0), COALESCE(MAX(bucket_ts), 0)
		FROM readings
	`).Scan(&stats.Readings, &stats.OldestEntry, &stats.NewestEntry)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal stats: %w", err)
	}

	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM fetch_errors").Scan(&stats.Failures); err != nil {
		return nil, fmt.Errorf("failed to count fetch failures: %w", err)
	}

	return stats, nil
}

// PruneBefore deletes journal rows older than cutoff and returns how many
// readings were removed.
func (db *DB) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM readings WHERE bucket_ts < ?", cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune readings: %w", err)
	}
	removed, _ := result.RowsAffected()

	if _, err := db.ExecContext(ctx,
		"DELETE FROM fetch_errors WHERE occurred_at < ?", cutoff.UTC().Format(sqlTimeLayout),
	); err != nil {
		return removed, fmt.Errorf("failed to prune fetch failures: %w", err)
	}

	return removed, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

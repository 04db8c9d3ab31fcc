package db

import (
	"context"
	"fmt"
)

// normalizeTimestamps trims Go's default time.Time rendering
// ("2006-01-02 15:04:05 +0000 UTC") left by older writers so SQLite's
// datetime functions keep working on the journal.
func (db *DB) normalizeTimestamps() error {
	queries := []string{
		`UPDATE readings
		 SET recorded_at = SUBSTR(recorded_at, 1, 19)
		 WHERE length(recorded_at) > 19 AND recorded_at LIKE '% UTC'`,

		`UPDATE fetch_errors
		 SET occurred_at = SUBSTR(occurred_at, 1, 19)
		 WHERE length(occurred_at) > 19 AND occurred_at LIKE '% UTC'`,
	}

	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query); err != nil {
			return fmt.Errorf("failed to normalize timestamps: %w", err)
		}
	}

	return nil
}

package models

import (
	"errors"
	"time"
)

// ErrJournalDisabled is returned by journal queries when the journal is off.
var ErrJournalDisabled = errors.New("journal disabled")

// JournalEntry is one reading as written to the journal.
type JournalEntry struct {
	RecordedAt  time.Time   `json:"recorded_at"`
	ID          int64       `json:"id"`
	Timestamp   int64       `json:"timestamp"`
	Value       float64     `json:"value"`
	NativeValue float64     `json:"native_value"`
	Type        ReadingType `json:"type"`
}

// FetchFailure is a failed poll as written to the journal.
type FetchFailure struct {
	OccurredAt time.Time   `json:"occurred_at"`
	Kind       string      `json:"kind"`
	Message    string      `json:"message"`
	ID         int64       `json:"id"`
	StatusCode int         `json:"status_code"`
	Type       ReadingType `json:"type"`
}

// JournalReadings is the journal view of one reading type.
type JournalReadings struct {
	Latest *JournalEntry  `json:"latest"`
	Recent []JournalEntry `json:"recent"`
	Count  int64          `json:"count"`
	Type   ReadingType    `json:"type"`
}

// JournalStats summarizes the journal contents.
type JournalStats struct {
	Path        string `json:"path"`
	Readings    int64  `json:"readings"`
	Failures    int64  `json:"failures"`
	OldestEntry int64  `json:"oldest_entry"`
	NewestEntry int64  `json:"newest_entry"`
}

package meter

import (
	"time"

	"github.com/j-veylop/manx-utilities-tui/internal/models"
)

// reportingDelay is how far behind real time the provider publishes buckets.
const reportingDelay = time.Hour

// bucketLength is the size of one provider bucket.
const bucketLength = 30 * time.Minute

// ComputeWindow returns the 30-minute bucket one hour before now, in UTC.
// Polls within the same half hour map to the same bucket.
func ComputeWindow(now time.Time) models.Window {
	t := now.UTC().Add(-reportingDelay)
	start := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
	if t.Minute() >= 30 {
		start = start.Add(bucketLength)
	}
	return models.Window{
		From: start,
		To:   start.Add(bucketLength - time.Second),
	}
}

package stats

import (
	"sort"

	"github.com/coffeetrack/coffeetrack/server/internal/model"
)

// Bounds applied to the latest-readings limit.
const (
	MinLimit = 1
	MaxLimit = 200
)

// ClampLimit forces limit into [MinLimit, MaxLimit].
func ClampLimit(limit int) int {
	if limit < MinLimit {
		return MinLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// SelectLatest returns up to ClampLimit(limit) readings ordered by
// RecordedAt, newest first. Readings without a timestamp (nil or zero) sort as the oldest.
// Equal timestamps keep their input order. The input slice is not modified.
func SelectLatest(readings []model.SensorReading, limit int) []model.SensorReading {
	sorted := make([]model.SensorReading, len(readings))
	copy(sorted, readings)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].RecordedAt, sorted[j].RecordedAt
		switch {
		case missing(a):
			return false
		case missing(b):
			return true
		default:
			return a.After(b.Time)
		}
	})

	if n := ClampLimit(limit); len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func missing(t *model.Timestamp) bool { return t == nil || t.IsZero() }

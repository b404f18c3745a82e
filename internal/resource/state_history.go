package resource

import (
	"context"
	"time"
)

// HistoryEntry is a single recorded property change.
//
// Each entry stores one published value for one (resource, key) pair.
// The history gives a local audit trail even when the time-series
// database is unavailable.
type HistoryEntry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// ResourceID is the id of the resource that changed.
	ResourceID string `json:"resource_id"`

	// ResourceKind is the resource's kind at recording time.
	ResourceKind Kind `json:"resource_kind"`

	// ResourceName is the display name at recording time.
	ResourceName string `json:"resource_name"`

	// Key is the property key that changed.
	Key string `json:"key"`

	// Value is the published value, JSON-decoded.
	Value any `json:"value"`

	// RecordedAt is the timestamp of the change (UTC).
	RecordedAt time.Time `json:"recorded_at"`
}

// HistoryRepository stores and retrieves property-change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type HistoryRepository interface {
	// RecordChange persists one published property change.
	RecordChange(ctx context.Context, ev ChangeEvent) error

	// GetHistory returns recent changes for a resource, newest first.
	// An empty key matches all properties. Implementations may clamp
	// the limit.
	GetHistory(ctx context.Context, resourceID, key string, limit int) ([]HistoryEntry, error)

	// PruneHistory deletes entries older than the retention window and
	// returns the number of rows removed.
	PruneHistory(ctx context.Context, olderThan time.Duration) (int64, error)
}

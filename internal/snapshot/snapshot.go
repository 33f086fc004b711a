// Package snapshot builds the point-in-time variable context alert
// conditions are evaluated against.
package snapshot

import (
	"context"
	"fmt"
	"time"
)

// Snapshot maps variable names to typed values (float64, bool, time.Time or
// string). A snapshot is built once per sweep, is never mutated afterwards,
// and is shared read-only by every definition evaluated in that sweep.
type Snapshot map[string]any

// Builder produces the current variable values. Failure aborts the current
// tick's evaluation; the next tick retries independently.
type Builder interface {
	BuildSnapshot(ctx context.Context) (Snapshot, error)
}

// FormatValue renders a snapshot value for notification text.
func FormatValue(v any) string {
	switch t := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", t)
	case time.Time:
		return t.UTC().Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", t)
	}
}

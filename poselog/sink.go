// Package poselog persists the pose records a visual odometry session
// emits: JSON lines for quick inspection, sqlite for querying, and a
// fan-out combining them.
package poselog

import (
	"context"

	"github.com/PNisargkumar/Project-drone/odometry"
)

// A Sink receives pose records. Implementations are driven by a single
// runner goroutine.
type Sink interface {
	Publish(ctx context.Context, record *odometry.PoseRecord) error
	Close() error
}

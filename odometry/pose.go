package odometry

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// PoseRecord is the camera pose emitted for one processed frame pair.
type PoseRecord struct {
	FrameIndex  int         `json:"frame_index"`
	Time        time.Time   `json:"time"`
	Position    r3.Vector   `json:"position"`
	Orientation quat.Number `json:"orientation"`
}

// PoseSink receives the pose records a runner produces.
type PoseSink interface {
	Publish(ctx context.Context, record *PoseRecord) error
}

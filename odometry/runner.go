package odometry

import (
	"context"
	"io"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/PNisargkumar/Project-drone/imagesource"
)

// defaultPollInterval is the frame polling cadence, 20Hz.
const defaultPollInterval = 50 * time.Millisecond

// Runner polls an image source at a fixed rate and feeds each frame to a
// session, publishing every resolved pose to a sink. Frames arriving faster
// than the polling rate are dropped at the source, last writer wins; the
// session never sees a queue.
type Runner struct {
	session  *Session
	source   imagesource.ImageSource
	sink     PoseSink
	logger   golog.Logger
	clock    clock.Clock
	interval time.Duration
}

// NewRunner returns a runner polling source every interval. A non-positive
// interval falls back to the 20Hz default.
func NewRunner(session *Session, source imagesource.ImageSource, sink PoseSink, interval time.Duration, logger golog.Logger) *Runner {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Runner{
		session:  session,
		source:   source,
		sink:     sink,
		logger:   logger,
		clock:    clock.New(),
		interval: interval,
	}
}

// Run processes frames until the context is canceled or the source is
// exhausted. Skipped cycles and estimation failures are logged and never
// stop the loop; source and sink failures do.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.clock.Ticker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		img, release, err := r.source.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) ||
				errors.Is(err, context.Canceled) ||
				errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		record, err := r.session.ProcessFrame(ctx, img)
		if release != nil {
			release()
		}
		if err != nil {
			r.logger.Errorw("failed to process frame", "error", err)
			continue
		}
		if record == nil {
			continue
		}
		if err := r.sink.Publish(ctx, record); err != nil {
			return errors.Wrap(err, "failed to publish pose record")
		}
	}
}

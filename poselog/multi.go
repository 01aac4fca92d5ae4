package poselog

import (
	"context"

	"go.uber.org/multierr"

	"github.com/PNisargkumar/Project-drone/odometry"
)

// MultiSink fans every record out to a set of sinks.
type MultiSink struct {
	sinks []Sink
}

// NewMultiSink returns a sink writing to all of sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Publish forwards record to every sink and combines their failures.
func (ms *MultiSink) Publish(ctx context.Context, record *odometry.PoseRecord) error {
	var err error
	for _, sink := range ms.sinks {
		err = multierr.Append(err, sink.Publish(ctx, record))
	}
	return err
}

// Close closes every sink and combines their failures.
func (ms *MultiSink) Close() error {
	var err error
	for _, sink := range ms.sinks {
		err = multierr.Append(err, sink.Close())
	}
	return err
}

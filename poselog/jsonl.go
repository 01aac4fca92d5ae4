package poselog

import (
	"context"
	"encoding/json"
	"io"

	"github.com/PNisargkumar/Project-drone/odometry"
)

// JSONLWriter writes one JSON pose record per line.
type JSONLWriter struct {
	w   io.WriteCloser
	enc *json.Encoder
}

// NewJSONLWriter returns a sink encoding records onto w, one per line.
func NewJSONLWriter(w io.WriteCloser) *JSONLWriter {
	return &JSONLWriter{w: w, enc: json.NewEncoder(w)}
}

// Publish writes record as one JSON line.
func (jw *JSONLWriter) Publish(ctx context.Context, record *odometry.PoseRecord) error {
	return jw.enc.Encode(record)
}

// Close closes the underlying writer.
func (jw *JSONLWriter) Close() error {
	return jw.w.Close()
}

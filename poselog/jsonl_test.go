package poselog

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"

	"github.com/PNisargkumar/Project-drone/odometry"
)

type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (cb *closeBuffer) Close() error {
	cb.closed = true
	return nil
}

func testRecord(idx int) *odometry.PoseRecord {
	return &odometry.PoseRecord{
		FrameIndex:  idx,
		Time:        time.Date(2021, 5, 4, 12, 0, idx, 0, time.UTC),
		Position:    r3.Vector{X: 0.01 * float64(idx), Y: -0.02, Z: 0.97},
		Orientation: quat.Number{Real: 1},
	}
}

func TestJSONLWriter(t *testing.T) {
	buf := &closeBuffer{}
	sink := NewJSONLWriter(buf)

	test.That(t, sink.Publish(context.Background(), testRecord(1)), test.ShouldBeNil)
	test.That(t, sink.Publish(context.Background(), testRecord(4)), test.ShouldBeNil)
	test.That(t, sink.Close(), test.ShouldBeNil)
	test.That(t, buf.closed, test.ShouldBeTrue)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	test.That(t, lines, test.ShouldHaveLength, 2)
	test.That(t, lines[0], test.ShouldContainSubstring, `"frame_index":1`)

	var decoded odometry.PoseRecord
	test.That(t, json.Unmarshal([]byte(lines[1]), &decoded), test.ShouldBeNil)
	test.That(t, decoded.FrameIndex, test.ShouldEqual, 4)
	test.That(t, decoded.Time.Equal(testRecord(4).Time), test.ShouldBeTrue)
	test.That(t, decoded.Position.X, test.ShouldAlmostEqual, 0.04)
	test.That(t, decoded.Orientation.Real, test.ShouldAlmostEqual, 1)
}

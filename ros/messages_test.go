package ros

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/color"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func validImageMessage() ImageMessage {
	var msg ImageMessage
	msg.Data.Height = 2
	msg.Data.Width = 2
	msg.Data.Encoding = ImageEncodingBGR8
	msg.Data.Step = 6
	msg.Data.Data = []byte{
		10, 20, 30, 40, 50, 60,
		70, 80, 90, 100, 110, 120,
	}
	return msg
}

func TestImageMessageJSONDecode(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte{
		10, 20, 30, 40, 50, 60,
		70, 80, 90, 100, 110, 120,
	})
	doc := fmt.Sprintf(`{
		"meta": {"secs": 12, "nsecs": 340000000},
		"data": {
			"header": {"seq": 7, "stamp": {"secs": 12, "nsecs": 340000000}, "frame_id": "camera"},
			"height": 2,
			"width": 2,
			"encoding": "bgr8",
			"is_bigendian": 0,
			"step": 6,
			"data": %q
		}
	}`, payload)

	var msg ImageMessage
	test.That(t, json.Unmarshal([]byte(doc), &msg), test.ShouldBeNil)
	test.That(t, msg.Meta.Secs, test.ShouldEqual, 12)
	test.That(t, msg.Data.Header.Seq, test.ShouldEqual, 7)
	test.That(t, msg.Data.Header.FrameId, test.ShouldEqual, "camera")
	test.That(t, msg.Data.Encoding, test.ShouldEqual, ImageEncodingBGR8)
	test.That(t, msg.Data.Step, test.ShouldEqual, 6)
	test.That(t, msg.Data.Data, test.ShouldHaveLength, 12)
}

func TestImageMessageImage(t *testing.T) {
	msg := validImageMessage()
	img, err := msg.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 2)
	test.That(t, img.Bounds().Dy(), test.ShouldEqual, 2)
	// bgr8 rows carry B, G, R triplets
	test.That(t, img.At(0, 0), test.ShouldResemble, color.RGBA{R: 30, G: 20, B: 10, A: 255})
	test.That(t, img.At(1, 0), test.ShouldResemble, color.RGBA{R: 60, G: 50, B: 40, A: 255})
	test.That(t, img.At(0, 1), test.ShouldResemble, color.RGBA{R: 90, G: 80, B: 70, A: 255})
	test.That(t, img.At(1, 1), test.ShouldResemble, color.RGBA{R: 120, G: 110, B: 100, A: 255})
}

func TestImageMessageImagePaddedStep(t *testing.T) {
	msg := validImageMessage()
	msg.Data.Step = 8
	msg.Data.Data = []byte{
		10, 20, 30, 40, 50, 60, 0, 0,
		70, 80, 90, 100, 110, 120, 0, 0,
	}
	img, err := msg.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.At(1, 1), test.ShouldResemble, color.RGBA{R: 120, G: 110, B: 100, A: 255})
}

func TestImageMessageImageErrors(t *testing.T) {
	msg := validImageMessage()
	msg.Data.Encoding = "rgb8"
	_, err := msg.Image()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unsupported image encoding")

	msg = validImageMessage()
	msg.Data.Width = 0
	_, err = msg.Image()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid image dimensions")

	msg = validImageMessage()
	msg.Data.Step = 5
	_, err = msg.Image()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "row step")

	msg = validImageMessage()
	msg.Data.Data = msg.Data.Data[:7]
	_, err = msg.Image()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "need 12")
}

func TestReadBagMissingFile(t *testing.T) {
	_, err := ReadBag(filepath.Join(t.TempDir(), "missing.bag"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unable to open input file")
}

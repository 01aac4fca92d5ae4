package ros

import (
	"image"
	"image/color"

	"github.com/pkg/errors"
)

// ImageEncodingBGR8 is the sensor_msgs/Image encoding this package decodes,
// the one the camera node publishes.
const ImageEncodingBGR8 = "bgr8"

// ImageMessage is a sensor_msgs/Image message together with its bag
// metadata, in the JSON shape gobag produces.
type ImageMessage struct {
	Meta struct {
		Secs  int
		Nsecs int
	}
	Data struct {
		Header struct {
			Seq   int
			Stamp struct {
				Secs  int
				Nsecs int
			}
			FrameId string `json:"frame_id"`
		}
		Height      int
		Width       int
		Encoding    string
		IsBigendian int `json:"is_bigendian"`
		Step        int
		Data        []byte
	}
}

// Image converts the message pixels into an image.Image.
func (m *ImageMessage) Image() (image.Image, error) {
	d := &m.Data
	if d.Encoding != ImageEncodingBGR8 {
		return nil, errors.Errorf("unsupported image encoding %q, expected %q", d.Encoding, ImageEncodingBGR8)
	}
	if d.Width <= 0 || d.Height <= 0 {
		return nil, errors.Errorf("invalid image dimensions %dx%d", d.Width, d.Height)
	}
	if d.Step < 3*d.Width {
		return nil, errors.Errorf("row step %d too small for width %d", d.Step, d.Width)
	}
	if len(d.Data) < d.Step*d.Height {
		return nil, errors.Errorf("image data carries %d bytes, need %d", len(d.Data), d.Step*d.Height)
	}
	img := image.NewRGBA(image.Rect(0, 0, d.Width, d.Height))
	for y := 0; y < d.Height; y++ {
		row := d.Data[y*d.Step : (y+1)*d.Step]
		for x := 0; x < d.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{R: row[3*x+2], G: row[3*x+1], B: row[3*x], A: 255})
		}
	}
	return img, nil
}

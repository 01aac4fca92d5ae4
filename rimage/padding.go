package rimage

import (
	"image"

	"github.com/pkg/errors"
)

// BorderPad is the type of padding applied outside the original image bounds.
type BorderPad int

const (
	// BorderConstant pads with zero values.
	BorderConstant BorderPad = iota
	// BorderReplicate pads by replicating the border pixel.
	BorderReplicate
	// BorderReflect pads by mirroring the image at its border.
	BorderReflect
)

// PaddingGray pads img so a kernel of size kernelSize anchored at anchor can be
// evaluated at every original pixel. The original image starts at
// (anchor.X, anchor.Y) in the returned image.
func PaddingGray(img *image.Gray, kernelSize, anchor image.Point, border BorderPad) (*image.Gray, error) {
	if kernelSize.X <= 0 || kernelSize.Y <= 0 {
		return nil, errors.Errorf("invalid kernel size %v", kernelSize)
	}
	if anchor.X < 0 || anchor.Y < 0 || anchor.X >= kernelSize.X || anchor.Y >= kernelSize.Y {
		return nil, errors.Errorf("anchor %v outside kernel %v", anchor, kernelSize)
	}
	left, top := anchor.X, anchor.Y
	right := kernelSize.X - anchor.X - 1
	bottom := kernelSize.Y - anchor.Y - 1

	size := img.Bounds().Size()
	w, h := size.X, size.Y
	padded := image.NewGray(image.Rect(0, 0, w+left+right, h+top+bottom))

	reflect := func(p, n int) int {
		// mirror without repeating the border pixel, clamped for deep padding
		for p < 0 || p >= n {
			if p < 0 {
				p = -p
			}
			if p >= n {
				p = 2*n - p - 2
			}
		}
		return p
	}

	for y := 0; y < h+top+bottom; y++ {
		for x := 0; x < w+left+right; x++ {
			srcX, srcY := x-left, y-top
			switch {
			case srcX >= 0 && srcX < w && srcY >= 0 && srcY < h:
				padded.SetGray(x, y, img.GrayAt(srcX, srcY))
			case border == BorderConstant:
				// zero value already set
			case border == BorderReplicate:
				cx := srcX
				if cx < 0 {
					cx = 0
				} else if cx >= w {
					cx = w - 1
				}
				cy := srcY
				if cy < 0 {
					cy = 0
				} else if cy >= h {
					cy = h - 1
				}
				padded.SetGray(x, y, img.GrayAt(cx, cy))
			case border == BorderReflect:
				padded.SetGray(x, y, img.GrayAt(reflect(srcX, w), reflect(srcY, h)))
			}
		}
	}
	return padded, nil
}

// Package keypoints implements the feature correspondence stage of the visual
// odometry pipeline: FAST keypoints, BRIEF descriptors, ORB features over an
// image pyramid, and approximate descriptor matching with a multi-probe
// locality-sensitive hashing index.
package keypoints

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/PNisargkumar/Project-drone/rimage"
)

type (
	// KeyPoint is an image.Point that contains coordinates of a kp.
	KeyPoint image.Point
	// KeyPoints is a slice of image.Point that contains several kps.
	KeyPoints []image.Point
	// Descriptor is a binary descriptor packed into 64-bit words.
	Descriptor []uint64
	// Descriptors is a slice of descriptors.
	Descriptors []Descriptor
)

// RescaleKeypoints rescales keypoint coordinates detected in a downscaled
// image back to the original image resolution.
func RescaleKeypoints(kps KeyPoints, scale int) KeyPoints {
	rescaled := make(KeyPoints, len(kps))
	for i, kp := range kps {
		rescaled[i] = image.Point{kp.X * scale, kp.Y * scale}
	}
	return rescaled
}

// computeMaskOrientationFAST creates the disk mask used to compute orientations of corners.
func computeMaskOrientationFAST() *image.Gray {
	mask := image.NewGray(image.Rect(0, 0, 31, 31))
	indices := []int{15, 15, 15, 15, 14, 14, 14, 13, 13, 12, 11, 10, 9, 8, 6, 3}
	for i := -15; i < 16; i++ {
		for j := -indices[int(math.Abs(float64(i)))]; j < indices[int(math.Abs(float64(i)))]+1; j++ {
			mask.Set(j+15, i+15, color.Gray{1})
		}
	}
	return mask
}

// computeKeypointsOrientations computes the intensity centroid orientation of
// each keypoint in a 31x31 disk.
func computeKeypointsOrientations(img *image.Gray, kps KeyPoints) ([]float64, error) {
	nRows, nCols := 31, 31
	nRows2 := (nRows - 1) / 2
	nCols2 := (nCols - 1) / 2
	mask := computeMaskOrientationFAST()
	padded, err := rimage.PaddingGray(img, image.Point{nCols, nRows}, image.Point{nCols2, nRows2}, rimage.BorderConstant)
	if err != nil {
		return nil, err
	}
	orientations := make([]float64, len(kps))
	for i, kp := range kps {
		m01, m10 := 0, 0
		for y := 0; y < nRows; y++ {
			m01Temp := 0
			for x := 0; x < nCols; x++ {
				if mask.GrayAt(x, y).Y > 0 {
					pixVal := int(padded.GrayAt(x+kp.X, y+kp.Y).Y)
					m10 += pixVal * (x - nCols2)
					m01Temp += pixVal
				}
			}
			m01 += m01Temp * (y - nRows2)
		}
		orientations[i] = math.Atan2(float64(m01), float64(m10))
	}
	return orientations, nil
}

// PlotKeypoints plots keypoints on image.
func PlotKeypoints(img *image.Gray, kps KeyPoints, outName string) error {
	w, h := img.Bounds().Max.X, img.Bounds().Max.Y

	dc := gg.NewContext(w, h)
	dc.DrawImage(img, 0, 0)

	dc.SetRGBA(0, 0, 1, 0.5)
	for _, p := range kps {
		dc.DrawCircle(float64(p.X), float64(p.Y), 3.0)
		dc.Fill()
	}
	return dc.SavePNG(outName)
}

// PlotMatchedKeypoints draws two images side by side with lines joining the
// matched keypoint pairs.
func PlotMatchedKeypoints(im1, im2 *image.Gray, kps1, kps2 KeyPoints, outName string) error {
	w1, h1 := im1.Bounds().Max.X, im1.Bounds().Max.Y
	w2, h2 := im2.Bounds().Max.X, im2.Bounds().Max.Y
	h := h1
	if h2 > h {
		h = h2
	}
	dc := gg.NewContext(w1+w2, h)
	dc.DrawImage(im1, 0, 0)
	dc.DrawImage(im2, w1, 0)

	dc.SetRGBA(0, 1, 0, 0.5)
	dc.SetLineWidth(1.25)
	for i := range kps1 {
		if i >= len(kps2) {
			break
		}
		x1, y1 := float64(kps1[i].X), float64(kps1[i].Y)
		x2, y2 := float64(kps2[i].X+w1), float64(kps2[i].Y)
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
	}
	return dc.SavePNG(outName)
}

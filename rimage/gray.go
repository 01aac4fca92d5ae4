// Package rimage provides the image operations the visual odometry pipeline
// needs before feature extraction: grayscale conversion, border padding,
// convolution, Gaussian smoothing and image pyramids.
package rimage

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/golang/geo/r2"
)

// SameImgSize compares two images to see if they're the same size.
func SameImgSize(g1, g2 image.Image) bool {
	if (g1.Bounds().Max.X != g2.Bounds().Max.X) || (g1.Bounds().Max.Y != g2.Bounds().Max.Y) {
		return false
	}
	return true
}

// MakeGray takes an image and well... makes it gray (image.Gray).
func MakeGray(pic image.Image) *image.Gray {
	if g, ok := pic.(*image.Gray); ok {
		return g
	}
	result := image.NewGray(pic.Bounds())
	draw.Draw(result, result.Bounds(), pic, pic.Bounds().Min, draw.Src)
	return result
}

// NearestNeighborGray takes a point in the continuous image space and returns
// the gray value of the closest pixel, or nil if the point rounds to outside
// the image bounds.
func NearestNeighborGray(point r2.Point, img *image.Gray) *color.Gray {
	x := int(math.Round(point.X))
	y := int(math.Round(point.Y))
	if !(image.Point{x, y}).In(img.Bounds()) {
		return nil
	}
	c := img.GrayAt(x, y)
	return &c
}

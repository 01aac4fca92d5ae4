package rimage

import (
	"image"

	"github.com/pkg/errors"
)

// Kernel is a 2 dimensional matrix used mainly for convolution.
type Kernel struct {
	Content [][]float64
	Width   int
	Height  int
}

// NewKernel creates a new Kernel with the given width and height, initialized to zero.
func NewKernel(width, height int) (*Kernel, error) {
	if width < 0 || height < 0 {
		return nil, errors.Errorf("negative kernel dimensions %d x %d", width, height)
	}
	content := make([][]float64, height)
	for i := range content {
		content[i] = make([]float64, width)
	}
	return &Kernel{content, width, height}, nil
}

// At returns the kernel value at position (x, y), x indexing columns.
func (k *Kernel) At(x, y int) float64 {
	return k.Content[y][x]
}

// Set sets the kernel value at position (x, y).
func (k *Kernel) Set(x, y int, value float64) {
	k.Content[y][x] = value
}

// Size returns the size of the kernel as an image.Point.
func (k *Kernel) Size() image.Point {
	return image.Point{k.Width, k.Height}
}

// Sum returns the sum of all elements in the kernel.
func (k *Kernel) Sum() float64 {
	sum := 0.
	for y := 0; y < k.Height; y++ {
		for x := 0; x < k.Width; x++ {
			sum += k.Content[y][x]
		}
	}
	return sum
}

// Normalize returns a copy of the kernel scaled so its elements sum to 1.
// A kernel summing to zero is returned unchanged.
func (k *Kernel) Normalize() *Kernel {
	sum := k.Sum()
	normalized, err := NewKernel(k.Width, k.Height)
	if err != nil {
		return nil
	}
	if sum == 0 {
		sum = 1
	}
	for y := 0; y < k.Height; y++ {
		for x := 0; x < k.Width; x++ {
			normalized.Content[y][x] = k.Content[y][x] / sum
		}
	}
	return normalized
}

package rimage

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// ImagePyramid contains a set of downscaled versions of one image, level 0
// being the original, plus the integer scale of each level.
type ImagePyramid struct {
	Images []*image.Gray
	Scales []int
}

// GetImagePyramid computes a pyramid of nLevels images, each downscaled from the
// previous one by downscaleFactor. Fewer levels are returned if the image
// becomes too small to downscale further.
func GetImagePyramid(im *image.Gray, downscaleFactor, nLevels int) (*ImagePyramid, error) {
	if nLevels < 1 {
		return nil, errors.Errorf("number of levels should be >= 1, got %d", nLevels)
	}
	if downscaleFactor < 2 {
		return nil, errors.Errorf("downscale factor should be >= 2, got %d", downscaleFactor)
	}
	images := []*image.Gray{im}
	scales := []int{1}
	current := im
	scale := 1
	for i := 1; i < nLevels; i++ {
		size := current.Bounds().Size()
		w, h := size.X/downscaleFactor, size.Y/downscaleFactor
		if w < downscaleFactor || h < downscaleFactor {
			break
		}
		resized := imaging.Resize(current, w, h, imaging.Box)
		current = MakeGray(resized)
		scale *= downscaleFactor
		images = append(images, current)
		scales = append(scales, scale)
	}
	return &ImagePyramid{Images: images, Scales: scales}, nil
}

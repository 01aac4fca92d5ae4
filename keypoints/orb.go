package keypoints

import (
	"encoding/json"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/PNisargkumar/Project-drone/rimage"
)

// ORBConfig contains the parameters / configs needed to compute ORB features.
type ORBConfig struct {
	Layers          int          `json:"n_layers"`
	DownscaleFactor int          `json:"downscale_factor"`
	MaxFeatures     int          `json:"max_features"`
	FastConf        *FASTConfig  `json:"fast"`
	BRIEFConf       *BRIEFConfig `json:"brief"`
}

// LoadORBConfiguration loads a ORBConfig from a json file.
func LoadORBConfiguration(file string) (*ORBConfig, error) {
	var config ORBConfig
	filePath := filepath.Clean(file)
	configFile, err := os.Open(filePath) //nolint:gosec
	defer utils.UncheckedErrorFunc(configFile.Close)
	if err != nil {
		return nil, err
	}
	jsonParser := json.NewDecoder(configFile)
	err = jsonParser.Decode(&config)
	if err != nil {
		return nil, err
	}
	err = config.Validate(file)
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate ensures all parts of the ORBConfig are valid.
func (config *ORBConfig) Validate(path string) error {
	if config.Layers < 1 {
		return utils.NewConfigValidationError(path, errors.New("n_layers should be >= 1"))
	}
	if config.DownscaleFactor <= 1 {
		return utils.NewConfigValidationError(path, errors.New("downscale_factor should be greater than 1"))
	}
	if config.MaxFeatures < 0 {
		return utils.NewConfigValidationError(path, errors.New("max_features should be >= 0"))
	}
	if config.FastConf == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "fast")
	}
	if config.BRIEFConf == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "brief")
	}
	return nil
}

// ComputeORBKeypoints computes ORB keypoints and descriptors on gray image im.
// Keypoints are detected and described on every level of an image pyramid,
// then rescaled to the original image coordinates. When cfg.MaxFeatures is
// set, only the highest scored keypoints are kept.
func ComputeORBKeypoints(im *image.Gray, sp *SamplePairs, cfg *ORBConfig) (Descriptors, KeyPoints, error) {
	pyramid, err := rimage.GetImagePyramid(im, cfg.DownscaleFactor, cfg.Layers)
	if err != nil {
		return nil, nil, err
	}
	if len(pyramid.Scales) < cfg.Layers {
		return nil, nil, fmt.Errorf("image size does not allow for %d levels of downscaling", cfg.Layers)
	}
	orbDescriptors := make(Descriptors, 0)
	orbPoints := make(KeyPoints, 0)
	orbScores := make([]float64, 0)
	for level := 0; level < cfg.Layers; level++ {
		currentImage := pyramid.Images[level]
		currentScale := pyramid.Scales[level]
		fastKps, err := NewFASTKeypointsFromImage(currentImage, cfg.FastConf)
		if err != nil {
			return nil, nil, err
		}
		descs, kept, err := ComputeBRIEFDescriptors(currentImage, sp, fastKps, cfg.BRIEFConf)
		if err != nil {
			return nil, nil, err
		}
		rescaledKps := RescaleKeypoints(kept.Points, currentScale)
		orbPoints = append(orbPoints, rescaledKps...)
		orbDescriptors = append(orbDescriptors, descs...)
		orbScores = append(orbScores, kept.Scores...)
	}
	if cfg.MaxFeatures > 0 && len(orbPoints) > cfg.MaxFeatures {
		orbDescriptors, orbPoints = selectStrongestKeypoints(orbDescriptors, orbPoints, orbScores, cfg.MaxFeatures)
	}
	return orbDescriptors, orbPoints, nil
}

// selectStrongestKeypoints keeps the n keypoints with the highest FAST scores.
func selectStrongestKeypoints(descs Descriptors, kps KeyPoints, scores []float64, n int) (Descriptors, KeyPoints) {
	indices := make([]int, len(kps))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		return scores[indices[i]] > scores[indices[j]]
	})
	outDescs := make(Descriptors, 0, n)
	outKps := make(KeyPoints, 0, n)
	for _, idx := range indices[:n] {
		outDescs = append(outDescs, descs[idx])
		outKps = append(outKps, kps[idx])
	}
	return outDescs, outKps
}

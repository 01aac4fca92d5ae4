package keypoints

import (
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/floats"
)

// MatchingConfig contains the parameters for matching descriptors.
type MatchingConfig struct {
	RatioThreshold float64         `json:"ratio_threshold"`
	Indexing       *IndexingConfig `json:"indexing"`
}

// NewMatchingConfig returns the default matching parameters.
func NewMatchingConfig() *MatchingConfig {
	return &MatchingConfig{
		RatioThreshold: 0.5,
		Indexing:       NewIndexingConfig(),
	}
}

// Validate ensures all parts of the MatchingConfig are valid.
func (config *MatchingConfig) Validate(path string) error {
	if config.RatioThreshold <= 0 || config.RatioThreshold > 1 {
		return utils.NewConfigValidationError(path, errors.New("ratio_threshold should be in (0, 1]"))
	}
	if config.Indexing == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "indexing")
	}
	return config.Indexing.Validate(path)
}

// DescriptorMatch pairs the index of a descriptor in the first set with the
// index of its nearest neighbor in the second set.
type DescriptorMatch struct {
	Idx1     int
	Idx2     int
	Distance int
}

// MatchDescriptors takes 2 sets of descriptors and performs matching: for
// every descriptor in desc1, its 2 approximate nearest neighbors in desc2
// are looked up in a multi-probe LSH index, and the best one is kept when it
// passes the distance ratio test. Descriptors with fewer than 2 neighbors
// are dropped. Matches are returned sorted by increasing distance.
func MatchDescriptors(desc1, desc2 Descriptors, cfg *MatchingConfig, logger golog.Logger) ([]DescriptorMatch, error) {
	index, err := NewLSHIndex(desc2, cfg.Indexing)
	if err != nil {
		return nil, err
	}
	matches := make([]DescriptorMatch, 0, len(desc1))
	nNoNeighbors := 0
	for i, desc := range desc1 {
		neighbors, err := index.KNearestNeighbors(desc, 2)
		if err != nil {
			return nil, err
		}
		if len(neighbors) < 2 {
			nNoNeighbors++
			continue
		}
		if float64(neighbors[0].Distance) < cfg.RatioThreshold*float64(neighbors[1].Distance) {
			matches = append(matches, DescriptorMatch{
				Idx1:     i,
				Idx2:     neighbors[0].Index,
				Distance: neighbors[0].Distance,
			})
		}
	}
	logger.Debugf("ratio test kept %d / %d descriptors (%d had fewer than 2 neighbors)",
		len(matches), len(desc1), nNoNeighbors)
	// sort by distance
	dist := make([]float64, len(matches))
	for i, m := range matches {
		dist[i] = float64(m.Distance)
	}
	sortedIndices := make([]int, len(matches))
	floats.Argsort(dist, sortedIndices)
	sorted := make([]DescriptorMatch, len(matches))
	for i, idx := range sortedIndices {
		sorted[i] = matches[idx]
	}
	return sorted, nil
}

// GetMatchingKeyPoints takes the matches and the keypoints of both images and
// returns the corresponding keypoint pairs, index-aligned.
func GetMatchingKeyPoints(matches []DescriptorMatch, kps1, kps2 KeyPoints) (KeyPoints, KeyPoints, error) {
	matchedKps1 := make(KeyPoints, len(matches))
	matchedKps2 := make(KeyPoints, len(matches))
	for i, match := range matches {
		if match.Idx1 >= len(kps1) {
			return nil, nil, errors.Errorf("match %d refers to keypoint %d, but first set has %d", i, match.Idx1, len(kps1))
		}
		if match.Idx2 >= len(kps2) {
			return nil, nil, errors.Errorf("match %d refers to keypoint %d, but second set has %d", i, match.Idx2, len(kps2))
		}
		matchedKps1[i] = kps1[match.Idx1]
		matchedKps2[i] = kps2[match.Idx2]
	}
	return matchedKps1, matchedKps2, nil
}

package transform

import (
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	uts "github.com/PNisargkumar/Project-drone/utils"
)

// RANSACConfig stores the parameters of the robust essential matrix
// estimation.
type RANSACConfig struct {
	MaxIterations     int     `json:"max_iterations"`
	InlierThresholdPx float64 `json:"inlier_threshold_px"`
}

// NewRANSACConfig returns the default estimation parameters.
func NewRANSACConfig() *RANSACConfig {
	return &RANSACConfig{
		MaxIterations:     512,
		InlierThresholdPx: 1.0,
	}
}

// Validate ensures all parts of the RANSACConfig are valid.
func (config *RANSACConfig) Validate(path string) error {
	if config.MaxIterations < 1 {
		return utils.NewConfigValidationError(path, errors.New("max_iterations should be >= 1"))
	}
	if config.InlierThresholdPx <= 0 {
		return utils.NewConfigValidationError(path, errors.New("inlier_threshold_px should be > 0"))
	}
	return nil
}

// EstimateEssentialMatrix robustly estimates the essential matrix relating
// two calibrated views of the same scene from pixel correspondences. Minimal
// 8-point models are sampled from a fixed seed, scored with the Sampson
// distance, and the best consensus set is refit with all of its inliers. The
// returned mask marks the correspondences consistent with the final model;
// callers are free to ignore it. Degenerate configurations are not detected
// and yield a numerically valid but low quality estimate.
func EstimateEssentialMatrix(
	pts1, pts2 []r2.Point,
	k *mat.Dense,
	cfg *RANSACConfig,
	logger golog.Logger,
) (*mat.Dense, []bool, error) {
	if len(pts1) != len(pts2) {
		return nil, nil, errors.New("sets of points pts1 and pts2 must have the same number of elements")
	}
	nPoints := len(pts1)
	if nPoints < 8 {
		return nil, nil, errors.Errorf("essential matrix estimation needs at least 8 correspondences, got %d", nPoints)
	}

	sqThreshold := cfg.InlierThresholdPx * cfg.InlierThresholdPx
	bestF := (*mat.Dense)(nil)
	bestInliers := 0

	if nPoints == 8 {
		f, err := ComputeFundamentalMatrixAllPoints(pts1, pts2, true)
		if err != nil {
			return nil, nil, err
		}
		bestF = f
	} else {
		//nolint:gosec
		r := rand.New(rand.NewSource(1))
		samplePts1 := make([]r2.Point, 8)
		samplePts2 := make([]r2.Point, 8)
		for iter := 0; iter < cfg.MaxIterations; iter++ {
			for i, idx := range sampleDistinctIndices(8, nPoints, r) {
				samplePts1[i] = pts1[idx]
				samplePts2[i] = pts2[idx]
			}
			f, err := ComputeFundamentalMatrixAllPoints(samplePts1, samplePts2, true)
			if err != nil {
				continue
			}
			currentInliers := 0
			for i := range pts1 {
				if sampsonDistance(f, pts1[i], pts2[i]) < sqThreshold {
					currentInliers++
				}
			}
			if currentInliers > bestInliers {
				bestF = f
				bestInliers = currentInliers
			}
		}
	}
	if bestF == nil {
		return nil, nil, errors.New("no valid fundamental matrix model found")
	}

	// refit on the consensus set when it is large enough for a stable solve
	if bestInliers >= 8 {
		inPts1 := make([]r2.Point, 0, bestInliers)
		inPts2 := make([]r2.Point, 0, bestInliers)
		for i := range pts1 {
			if sampsonDistance(bestF, pts1[i], pts2[i]) < sqThreshold {
				inPts1 = append(inPts1, pts1[i])
				inPts2 = append(inPts2, pts2[i])
			}
		}
		if f, err := ComputeFundamentalMatrixAllPoints(inPts1, inPts2, true); err == nil {
			bestF = f
		}
	}

	mask := make([]bool, nPoints)
	nInliers := 0
	for i := range pts1 {
		if sampsonDistance(bestF, pts1[i], pts2[i]) < sqThreshold {
			mask[i] = true
			nInliers++
		}
	}
	logger.Debugf("essential matrix estimation kept %d / %d correspondences as inliers", nInliers, nPoints)

	essMat, err := GetEssentialMatrixFromFundamental(k, k, bestF)
	if err != nil {
		return nil, nil, err
	}
	return essMat, mask, nil
}

// sampleDistinctIndices draws n distinct integers in [0, max).
func sampleDistinctIndices(n, max int, r *rand.Rand) []int {
	seen := make(map[int]bool, n)
	indices := make([]int, 0, n)
	for len(indices) < n {
		idx := uts.SampleRandomIntRange(0, max-1, r)
		if !seen[idx] {
			seen[idx] = true
			indices = append(indices, idx)
		}
	}
	return indices
}

package keypoints

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"sort"

	"go.viam.com/utils"
)

// FASTConfig holds the parameters necessary to compute the FAST keypoints.
type FASTConfig struct {
	NMatchesCircle int     `json:"n_matches_circle"`
	NMSWinSize     int     `json:"nms_win_size_px"`
	Threshold      float64 `json:"threshold"`
	Oriented       bool    `json:"oriented"`
}

// PixelNeighborhood is a set of relative coordinates around a pixel of interest.
type PixelNeighborhood []image.Point

var (
	// CrossIdx contains the neighbors of a pixel used for the fast corner pre-test (down, right, up, left).
	CrossIdx = PixelNeighborhood{{0, 3}, {3, 0}, {0, -3}, {-3, 0}}
	// CircleIdx contains the 16 neighbors on the Bresenham circle of radius 3,
	// ordered clockwise from the top.
	CircleIdx = PixelNeighborhood{
		{0, -3}, {1, -3}, {2, -2}, {3, -1}, {3, 0}, {3, 1}, {2, 2}, {1, 3},
		{0, 3}, {-1, 3}, {-2, 2}, {-3, 1}, {-3, 0}, {-3, -1}, {-2, -2}, {-1, -3},
	}
)

// LoadFASTConfiguration loads a FASTConfig from a json file.
func LoadFASTConfiguration(file string) *FASTConfig {
	var config FASTConfig
	filePath := filepath.Clean(file)
	configFile, err := os.Open(filePath) //nolint:gosec
	defer utils.UncheckedErrorFunc(configFile.Close)
	if err != nil {
		return nil
	}
	jsonParser := json.NewDecoder(configFile)
	err = jsonParser.Decode(&config)
	if err != nil {
		return nil
	}
	return &config
}

// GetPointValuesInNeighborhood returns the image values of the neighborhood of point pt.
func GetPointValuesInNeighborhood(img *image.Gray, pt image.Point, neighborhood PixelNeighborhood) []float64 {
	vals := make([]float64, len(neighborhood))
	for i, n := range neighborhood {
		vals[i] = float64(img.GrayAt(pt.X+n.X, pt.Y+n.Y).Y)
	}
	return vals
}

// getBrighterValues returns a binary slice marking values strictly brighter than t.
func getBrighterValues(s []float64, t float64) []float64 {
	brighter := make([]float64, len(s))
	for i := range s {
		if s[i] > t {
			brighter[i] = 1
		}
	}
	return brighter
}

// getDarkerValues returns a binary slice marking values strictly darker than t.
func getDarkerValues(s []float64, t float64) []float64 {
	darker := make([]float64, len(s))
	for i := range s {
		if s[i] < t {
			darker[i] = 1
		}
	}
	return darker
}

// isValidSliceVals returns true if the binary slice contains a circularly
// contiguous run of ones strictly longer than n.
func isValidSliceVals(s []float64, n int) bool {
	if len(s) == 0 {
		return false
	}
	longest := 0
	current := 0
	// doubled pass handles runs wrapping around the circle
	for i := 0; i < 2*len(s); i++ {
		if s[i%len(s)] == 1 {
			current++
			if current > longest {
				longest = current
			}
			if longest > n {
				return true
			}
		} else {
			current = 0
		}
	}
	return longest > n
}

func sumOfPositiveValuesSlice(s []float64) float64 {
	sum := 0.
	for _, v := range s {
		if v > 0 {
			sum += v
		}
	}
	return sum
}

func sumOfNegativeValuesSlice(s []float64) float64 {
	sum := 0.
	for _, v := range s {
		if v < 0 {
			sum += v
		}
	}
	return sum
}

type fastCandidate struct {
	point image.Point
	score float64
}

// computeFASTCandidates runs the segment test at every pixel and returns the
// corner candidates with their scores, strongest first, after non-maximum
// suppression.
func computeFASTCandidates(img *image.Gray, cfg *FASTConfig) []fastCandidate {
	bounds := img.Bounds().Size()
	w, h := bounds.X, bounds.Y
	threshold := cfg.Threshold * 255.

	candidates := make([]fastCandidate, 0, 256)
	for y := 3; y < h-3; y++ {
		for x := 3; x < w-3; x++ {
			p := image.Point{x, y}
			center := float64(img.GrayAt(x, y).Y)
			up, down := center+threshold, center-threshold

			// cross pre-test: a valid arc always covers at least 2 of the
			// 4 cross pixels
			crossVals := GetPointValuesInNeighborhood(img, p, CrossIdx)
			nBright := sumOfPositiveValuesSlice(getBrighterValues(crossVals, up))
			nDark := sumOfPositiveValuesSlice(getDarkerValues(crossVals, down))
			if nBright < 2 && nDark < 2 {
				continue
			}

			circleVals := GetPointValuesInNeighborhood(img, p, CircleIdx)
			brighter := getBrighterValues(circleVals, up)
			darker := getDarkerValues(circleVals, down)
			if !isValidSliceVals(brighter, cfg.NMatchesCircle) && !isValidSliceVals(darker, cfg.NMatchesCircle) {
				continue
			}
			diffs := make([]float64, len(circleVals))
			for i, v := range circleVals {
				diffs[i] = v - center
			}
			scoreBright := sumOfPositiveValuesSlice(diffs)
			scoreDark := -sumOfNegativeValuesSlice(diffs)
			score := scoreBright
			if scoreDark > score {
				score = scoreDark
			}
			candidates = append(candidates, fastCandidate{p, score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	return nonMaximumSuppression(candidates, cfg.NMSWinSize)
}

// nonMaximumSuppression keeps, in score order, only candidates with no stronger
// candidate inside a winSize x winSize window.
func nonMaximumSuppression(sorted []fastCandidate, winSize int) []fastCandidate {
	if winSize <= 1 {
		return sorted
	}
	half := winSize / 2
	kept := make([]fastCandidate, 0, len(sorted))
	for _, c := range sorted {
		suppressed := false
		for _, k := range kept {
			dx := c.point.X - k.point.X
			dy := c.point.Y - k.point.Y
			if dx < 0 {
				dx = -dx
			}
			if dy < 0 {
				dy = -dy
			}
			if dx <= half && dy <= half {
				suppressed = true
				break
			}
		}
		if !suppressed {
			kept = append(kept, c)
		}
	}
	return kept
}

// ComputeFAST computes the location of FAST keypoints.
func ComputeFAST(img *image.Gray, cfg *FASTConfig) KeyPoints {
	candidates := computeFASTCandidates(img, cfg)
	kps := make(KeyPoints, len(candidates))
	for i, c := range candidates {
		kps[i] = c.point
	}
	return kps
}

// FASTKeypoints stores keypoint locations, their scores and, if requested,
// their orientations.
type FASTKeypoints struct {
	Points       KeyPoints
	Orientations []float64
	Scores       []float64
}

// IsOriented returns true if the FASTKeypoints instance has orientations.
func (kps *FASTKeypoints) IsOriented() bool {
	return kps.Orientations != nil
}

// NewFASTKeypointsFromImage returns a pointer to a FASTKeypoints struct containing
// keypoints locations and orientations if Oriented is set to true in the config.
func NewFASTKeypointsFromImage(img *image.Gray, cfg *FASTConfig) (*FASTKeypoints, error) {
	candidates := computeFASTCandidates(img, cfg)
	points := make(KeyPoints, len(candidates))
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		points[i] = c.point
		scores[i] = c.score
	}
	var orientations []float64
	if cfg.Oriented {
		var err error
		orientations, err = computeKeypointsOrientations(img, points)
		if err != nil {
			return nil, err
		}
	}
	return &FASTKeypoints{points, orientations, scores}, nil
}

// Package odometry implements monocular visual odometry: ORB features are
// matched between consecutive frames, the essential matrix relating the two
// views is estimated and decomposed, and the camera pose is resolved by
// cheirality with the relative scale recovered from triangulated scene
// points.
package odometry

import (
	"encoding/json"
	"image"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"github.com/PNisargkumar/Project-drone/keypoints"
	"github.com/PNisargkumar/Project-drone/rimage"
	"github.com/PNisargkumar/Project-drone/transform"
)

const (
	defaultMinMatches      = 20
	defaultPositionDivisor = 100.

	// matching is not attempted unless both frames carry strictly more
	// keypoints than this.
	minKeypointsToMatch = 6
)

// Config gathers the parameters of the visual odometry pipeline: feature
// detection and matching, camera model, robust estimation, and pose emission.
type Config struct {
	KeyPointCfg     *keypoints.ORBConfig               `json:"kps"`
	MatchingCfg     *keypoints.MatchingConfig          `json:"matching"`
	RANSACCfg       *transform.RANSACConfig            `json:"ransac"`
	CamIntrinsics   *transform.PinholeCameraIntrinsics `json:"intrinsic_parameters,omitempty"`
	CameraModelFile string                             `json:"camera_model_file,omitempty"`
	MinMatches      int                                `json:"min_matches"`
	PositionDivisor float64                            `json:"position_divisor"`
	FlipHorizontal  bool                               `json:"flip_horizontal"`
}

// LoadEstimationConfig loads the pipeline configuration from a json file,
// fills the optional fields left empty with their defaults, and validates
// the result.
func LoadEstimationConfig(path string) (*Config, error) {
	var config Config
	filePath := filepath.Clean(path)
	configFile, err := os.Open(filePath) //nolint:gosec
	defer utils.UncheckedErrorFunc(configFile.Close)
	if err != nil {
		return nil, err
	}
	jsonParser := json.NewDecoder(configFile)
	if err = jsonParser.Decode(&config); err != nil {
		return nil, err
	}
	config.fillDefaults()
	if err = config.Validate(path); err != nil {
		return nil, err
	}
	return &config, nil
}

// fillDefaults sets the optional fields left empty to their default values.
func (config *Config) fillDefaults() {
	if config.MatchingCfg == nil {
		config.MatchingCfg = keypoints.NewMatchingConfig()
	}
	if config.RANSACCfg == nil {
		config.RANSACCfg = transform.NewRANSACConfig()
	}
	if config.MinMatches == 0 {
		config.MinMatches = defaultMinMatches
	}
	if config.PositionDivisor == 0 {
		config.PositionDivisor = defaultPositionDivisor
	}
}

// Validate ensures all parts of the Config are valid.
func (config *Config) Validate(path string) error {
	if config.KeyPointCfg == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "kps")
	}
	if err := config.KeyPointCfg.Validate(path); err != nil {
		return err
	}
	if config.MatchingCfg == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "matching")
	}
	if err := config.MatchingCfg.Validate(path); err != nil {
		return err
	}
	if config.RANSACCfg == nil {
		return utils.NewConfigValidationFieldRequiredError(path, "ransac")
	}
	if err := config.RANSACCfg.Validate(path); err != nil {
		return err
	}
	if config.CamIntrinsics == nil && config.CameraModelFile == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "intrinsic_parameters")
	}
	if config.CamIntrinsics != nil {
		if err := config.CamIntrinsics.CheckValid(); err != nil {
			return err
		}
	}
	if config.MinMatches < 8 {
		return utils.NewConfigValidationError(path, errors.New("min_matches should be >= 8"))
	}
	if config.PositionDivisor <= 0 {
		return utils.NewConfigValidationError(path, errors.New("position_divisor should be > 0"))
	}
	return nil
}

// CameraModel returns the pinhole camera model the config points at: the
// model loaded from camera_model_file when set, the inline intrinsics with
// no distortion otherwise.
func (config *Config) CameraModel() (*transform.PinholeCameraModel, error) {
	if config.CameraModelFile != "" {
		return transform.NewPinholeCameraModelFromJSONFile(config.CameraModelFile)
	}
	if config.CamIntrinsics == nil {
		return nil, errors.New("config carries neither inline intrinsics nor a camera model file")
	}
	return &transform.PinholeCameraModel{PinholeCameraIntrinsics: config.CamIntrinsics}, nil
}

// Motion3D contains the estimated 3D rotation and translation from 2 frames.
type Motion3D struct {
	Rotation    *mat.Dense
	Translation *mat.Dense
}

// NewMotion3DFromRotationTranslation returns a new pointer to Motion3D from a rotation and a translation matrix.
func NewMotion3DFromRotationTranslation(rotation, translation *mat.Dense) *Motion3D {
	return &Motion3D{
		Rotation:    rotation,
		Translation: translation,
	}
}

// TransformationMatrix returns the motion as a 4x4 homogeneous transform.
func (m *Motion3D) TransformationMatrix() *mat.Dense {
	return transform.NewCamPose(m.Rotation, m.Translation).TransformationMatrix()
}

// EstimateMotionFrom2Frames estimates the 3D motion of the camera between
// frame im1 and frame im2. The returned translation carries the relative
// scale recovered from the scene points triangulated for the winning pose
// candidate.
func EstimateMotionFrom2Frames(im1, im2 image.Image, cfg *Config, logger golog.Logger) (*Motion3D, error) {
	camModel, err := cfg.CameraModel()
	if err != nil {
		return nil, err
	}
	gray1 := rimage.MakeGray(im1)
	gray2 := rimage.MakeGray(im2)
	matched1, matched2, err := MatchFrames(gray1, gray2, cfg, logger)
	if err != nil {
		return nil, err
	}
	if matched1 == nil {
		return nil, errors.New("not enough keypoints to match the two frames")
	}
	ransacCfg := cfg.RANSACCfg
	if ransacCfg == nil {
		ransacCfg = transform.NewRANSACConfig()
	}
	pts1 := convertImagePointSliceToFloatPointSlice(matched1)
	pts2 := convertImagePointSliceToFloatPointSlice(matched2)
	resolved, err := estimatePose(pts1, pts2, camModel.GetCameraMatrix(), ransacCfg, logger)
	if err != nil {
		return nil, err
	}
	return NewMotion3DFromRotationTranslation(resolved.Pose.Rotation, resolved.Pose.Translation), nil
}

// MatchFrames detects ORB keypoints in two gray frames and matches their
// descriptors. The two returned sets are index-aligned; nil results with a
// nil error mean one of the frames did not carry enough keypoints for
// matching to be attempted.
func MatchFrames(im1, im2 *image.Gray, cfg *Config, logger golog.Logger) (keypoints.KeyPoints, keypoints.KeyPoints, error) {
	briefCfg := cfg.KeyPointCfg.BRIEFConf
	samplePoints := keypoints.GenerateSamplePairs(briefCfg.Sampling, briefCfg.N, briefCfg.PatchSize)
	return matchFrames(im1, im2, samplePoints, cfg, logger)
}

func matchFrames(im1, im2 *image.Gray, samplePoints *keypoints.SamplePairs, cfg *Config, logger golog.Logger,
) (keypoints.KeyPoints, keypoints.KeyPoints, error) {
	orb1, kps1, err := keypoints.ComputeORBKeypoints(im1, samplePoints, cfg.KeyPointCfg)
	if err != nil {
		return nil, nil, err
	}
	orb2, kps2, err := keypoints.ComputeORBKeypoints(im2, samplePoints, cfg.KeyPointCfg)
	if err != nil {
		return nil, nil, err
	}
	if len(kps1) <= minKeypointsToMatch || len(kps2) <= minKeypointsToMatch {
		return nil, nil, nil
	}
	matches, err := keypoints.MatchDescriptors(orb1, orb2, cfg.MatchingCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return keypoints.GetMatchingKeyPoints(matches, kps1, kps2)
}

// estimatePose runs the epipolar pipeline on two sets of matched pixel
// coordinates: essential matrix estimation, pose candidate extraction, and
// cheirality resolution with scale recovery.
func estimatePose(pts1, pts2 []r2.Point, k *mat.Dense, cfg *transform.RANSACConfig, logger golog.Logger,
) (*transform.ResolvedPose, error) {
	essMat, _, err := transform.EstimateEssentialMatrix(pts1, pts2, k, cfg, logger)
	if err != nil {
		return nil, err
	}
	candidates, err := transform.PoseCandidatesFromEssential(essMat)
	if err != nil {
		return nil, err
	}
	return transform.ResolveCameraPose(candidates, pts1, pts2, k)
}

// convertImagePointSliceToFloatPointSlice is a helper to convert slice of image.Point to a slice of r2.Point.
func convertImagePointSliceToFloatPointSlice(pts []image.Point) []r2.Point {
	ptsOut := make([]r2.Point, len(pts))
	for i, pt := range pts {
		ptsOut[i] = r2.Point{
			X: float64(pt.X),
			Y: float64(pt.Y),
		}
	}
	return ptsOut
}

package odometry

import (
	"image"
	"image/color"
	"math"
	"math/rand"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/PNisargkumar/Project-drone/keypoints"
	"github.com/PNisargkumar/Project-drone/transform"
)

// texturedFrame renders a deterministic scatter of bright squares on a dark
// background, shifted by (dx, dy) pixels. Frames rendered with different
// shifts are translated copies of each other away from the borders, so their
// ORB descriptors match.
func texturedFrame(dx, dy int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 320, 240))
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		x := 30 + r.Intn(200)
		y := 30 + r.Intn(120)
		size := 4 + r.Intn(5)
		level := uint8(90 + r.Intn(166))
		for py := y; py < y+size; py++ {
			for px := x; px < x+size; px++ {
				img.SetGray(px+dx, py+dy, color.Gray{Y: level})
			}
		}
	}
	return img
}

// solidFrame has no corners at all.
func solidFrame() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, 320, 240))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	return img
}

func testEstimationConfig() *Config {
	return &Config{
		KeyPointCfg: &keypoints.ORBConfig{
			Layers:          2,
			DownscaleFactor: 2,
			MaxFeatures:     500,
			FastConf: &keypoints.FASTConfig{
				NMatchesCircle: 9,
				NMSWinSize:     7,
				Threshold:      0.15,
				Oriented:       true,
			},
			BRIEFConf: &keypoints.BRIEFConfig{
				N:              256,
				Sampling:       1,
				UseOrientation: true,
				PatchSize:      48,
			},
		},
		MatchingCfg: keypoints.NewMatchingConfig(),
		RANSACCfg:   transform.NewRANSACConfig(),
		CamIntrinsics: &transform.PinholeCameraIntrinsics{
			Width: 320, Height: 240,
			Fx: 250, Fy: 250, Ppx: 160, Ppy: 120,
		},
		MinMatches:      8,
		PositionDivisor: 100,
	}
}

func TestLoadEstimationConfig(t *testing.T) {
	cfg, err := LoadEstimationConfig("vo_config.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.KeyPointCfg.Layers, test.ShouldEqual, 2)
	test.That(t, cfg.KeyPointCfg.BRIEFConf.PatchSize, test.ShouldEqual, 48)
	test.That(t, cfg.MatchingCfg.RatioThreshold, test.ShouldEqual, 0.5)
	test.That(t, cfg.CamIntrinsics.Width, test.ShouldEqual, 640)
	test.That(t, cfg.FlipHorizontal, test.ShouldBeTrue)

	// fields left out of the file get their defaults
	test.That(t, cfg.MinMatches, test.ShouldEqual, 20)
	test.That(t, cfg.PositionDivisor, test.ShouldEqual, 100.)
	test.That(t, cfg.RANSACCfg, test.ShouldNotBeNil)
	test.That(t, cfg.RANSACCfg.MaxIterations, test.ShouldEqual, 512)

	_, err = LoadEstimationConfig("no_such_config.json")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestConfigValidate(t *testing.T) {
	cfg := testEstimationConfig()
	test.That(t, cfg.Validate(""), test.ShouldBeNil)

	noKps := *cfg
	noKps.KeyPointCfg = nil
	test.That(t, noKps.Validate(""), test.ShouldNotBeNil)

	noMatching := *cfg
	noMatching.MatchingCfg = nil
	test.That(t, noMatching.Validate(""), test.ShouldNotBeNil)

	noRANSAC := *cfg
	noRANSAC.RANSACCfg = nil
	test.That(t, noRANSAC.Validate(""), test.ShouldNotBeNil)

	noIntrinsics := *cfg
	noIntrinsics.CamIntrinsics = nil
	noIntrinsics.CameraModelFile = ""
	err := noIntrinsics.Validate("")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "intrinsic_parameters")

	lowMinMatches := *cfg
	lowMinMatches.MinMatches = 5
	err = lowMinMatches.Validate("")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "min_matches")

	badDivisor := *cfg
	badDivisor.PositionDivisor = -1
	err = badDivisor.Validate("")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "position_divisor")
}

func TestConfigFillDefaults(t *testing.T) {
	var cfg Config
	cfg.fillDefaults()
	test.That(t, cfg.MinMatches, test.ShouldEqual, 20)
	test.That(t, cfg.PositionDivisor, test.ShouldEqual, 100.)
	test.That(t, cfg.MatchingCfg, test.ShouldNotBeNil)
	test.That(t, cfg.RANSACCfg, test.ShouldNotBeNil)

	// explicit values survive
	cfg2 := testEstimationConfig()
	cfg2.fillDefaults()
	test.That(t, cfg2.MinMatches, test.ShouldEqual, 8)
}

func TestConfigCameraModel(t *testing.T) {
	cfg := testEstimationConfig()
	model, err := cfg.CameraModel()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Distortion, test.ShouldBeNil)
	k := model.GetCameraMatrix()
	test.That(t, k.At(0, 0), test.ShouldEqual, 250)
	test.That(t, k.At(1, 2), test.ShouldEqual, 120)

	fromFile := testEstimationConfig()
	fromFile.CameraModelFile = "camera_model.json"
	model, err = fromFile.CameraModel()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Width, test.ShouldEqual, 8)
	test.That(t, model.Distortion, test.ShouldNotBeNil)

	var empty Config
	_, err = empty.CameraModel()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMotion3DTransformationMatrix(t *testing.T) {
	rot := mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})
	tr := mat.NewDense(3, 1, []float64{1, 2, 3})
	motion := NewMotion3DFromRotationTranslation(rot, tr)

	tf := motion.TransformationMatrix()
	nRows, nCols := tf.Dims()
	test.That(t, nRows, test.ShouldEqual, 4)
	test.That(t, nCols, test.ShouldEqual, 4)
	test.That(t, tf.At(0, 3), test.ShouldEqual, 1)
	test.That(t, tf.At(1, 3), test.ShouldEqual, 2)
	test.That(t, tf.At(2, 3), test.ShouldEqual, 3)
	test.That(t, tf.At(3, 3), test.ShouldEqual, 1)
	test.That(t, tf.At(3, 0), test.ShouldEqual, 0)
}

func TestMatchFrames(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := testEstimationConfig()

	matched1, matched2, err := MatchFrames(texturedFrame(0, 0), texturedFrame(4, 0), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(matched1), test.ShouldEqual, len(matched2))
	test.That(t, len(matched1), test.ShouldBeGreaterThan, cfg.MinMatches)

	// a frame with no corners yields no matchable keypoints
	matched1, matched2, err = MatchFrames(texturedFrame(0, 0), solidFrame(), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, matched1, test.ShouldBeNil)
	test.That(t, matched2, test.ShouldBeNil)
}

func TestEstimateMotionFrom2Frames(t *testing.T) {
	logger := golog.NewTestLogger(t)
	cfg := testEstimationConfig()

	motion, err := EstimateMotionFrom2Frames(texturedFrame(0, 0), texturedFrame(4, 0), cfg, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, motion, test.ShouldNotBeNil)

	nRows, nCols := motion.Rotation.Dims()
	test.That(t, nRows, test.ShouldEqual, 3)
	test.That(t, nCols, test.ShouldEqual, 3)
	nRows, nCols = motion.Translation.Dims()
	test.That(t, nRows, test.ShouldEqual, 3)
	test.That(t, nCols, test.ShouldEqual, 1)
	for i := 0; i < 3; i++ {
		test.That(t, math.IsNaN(motion.Translation.At(i, 0)), test.ShouldBeFalse)
		test.That(t, math.IsInf(motion.Translation.At(i, 0), 0), test.ShouldBeFalse)
	}

	_, err = EstimateMotionFrom2Frames(solidFrame(), solidFrame(), cfg, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not enough keypoints")
}

package odometry

import (
	"context"
	"image"

	"github.com/benbjohnson/clock"
	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/PNisargkumar/Project-drone/keypoints"
	"github.com/PNisargkumar/Project-drone/rimage"
	"github.com/PNisargkumar/Project-drone/transform"
)

// Session holds the cross-frame state of a visual odometry run: the previous
// frame, the last resolved pose, the scene points triangulated for it, and
// the frame counter.
type Session struct {
	cfg          *Config
	logger       golog.Logger
	clock        clock.Clock
	camModel     *transform.PinholeCameraModel
	camMat       *mat.Dense
	samplePoints *keypoints.SamplePairs

	prevFrame   *image.Gray
	lastPose    *transform.CamPose
	worldPoints []r3.Vector
	frameIndex  int
}

// NewSession validates the config and returns a session ready to process
// frames. Optional config fields left empty are filled with their defaults.
func NewSession(cfg *Config, logger golog.Logger) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("cannot create a session from a nil config")
	}
	cfg.fillDefaults()
	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}
	camModel, err := cfg.CameraModel()
	if err != nil {
		return nil, err
	}
	if err := camModel.CheckValid(); err != nil {
		return nil, err
	}
	briefCfg := cfg.KeyPointCfg.BRIEFConf
	return &Session{
		cfg:          cfg,
		logger:       logger,
		clock:        clock.New(),
		camModel:     camModel,
		camMat:       camModel.GetCameraMatrix(),
		samplePoints: keypoints.GenerateSamplePairs(briefCfg.Sampling, briefCfg.N, briefCfg.PatchSize),
	}, nil
}

// ProcessFrame runs one odometry cycle pairing the previous frame with img
// and returns the pose record of the pair. A nil record with a nil error
// means the cycle was skipped: first frame, not enough keypoints in one of
// the frames, or not enough matches between them. The previous-frame
// reference is updated exactly once per cycle, after the estimation used it.
func (s *Session) ProcessFrame(ctx context.Context, img image.Image) (*PoseRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	idx := s.frameIndex
	s.frameIndex++
	gray, err := s.prepareFrame(img)
	if err != nil {
		return nil, err
	}
	defer func() {
		s.prevFrame = gray
	}()
	if s.prevFrame == nil {
		return nil, nil
	}
	matched1, matched2, err := matchFrames(s.prevFrame, gray, s.samplePoints, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	if matched1 == nil {
		s.logger.Debugw("skipping frame pair, not enough keypoints to match", "frame", idx)
		return nil, nil
	}
	if len(matched1) <= s.cfg.MinMatches || len(matched2) <= s.cfg.MinMatches {
		s.logger.Debugw("skipping frame pair, not enough matches", "frame", idx, "matches", len(matched1))
		return nil, nil
	}
	pts1 := convertImagePointSliceToFloatPointSlice(matched1)
	pts2 := convertImagePointSliceToFloatPointSlice(matched2)
	resolved, err := estimatePose(pts1, pts2, s.camMat, s.cfg.RANSACCfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.lastPose = resolved.Pose
	s.worldPoints = resolved.WorldPoints
	t := resolved.Pose.Translation
	return &PoseRecord{
		FrameIndex: idx,
		Time:       s.clock.Now(),
		Position: r3.Vector{
			X: t.At(0, 0) / s.cfg.PositionDivisor,
			Y: t.At(1, 0) / s.cfg.PositionDivisor,
			Z: t.At(2, 0) / s.cfg.PositionDivisor,
		},
		Orientation: resolved.Pose.Quaternion(),
	}, nil
}

// prepareFrame converts an incoming frame into the gray image the feature
// stage works on, applying the configured horizontal flip and the camera
// model's undistortion when one is set.
func (s *Session) prepareFrame(img image.Image) (*image.Gray, error) {
	if s.cfg.FlipHorizontal {
		img = imaging.FlipH(img)
	}
	gray := rimage.MakeGray(img)
	if s.camModel.Distortion != nil {
		return s.camModel.UndistortImage(gray)
	}
	return gray, nil
}

// LastPose returns the pose resolved for the most recent successfully
// processed frame pair, or nil when no pair has been resolved yet.
func (s *Session) LastPose() *transform.CamPose {
	return s.lastPose
}

// WorldPoints returns the scene points triangulated alongside the last
// resolved pose.
func (s *Session) WorldPoints() []r3.Vector {
	return s.worldPoints
}

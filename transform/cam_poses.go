package transform

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"github.com/PNisargkumar/Project-drone/spatialmath"
)

// CamPose stores the rotation and translation of a camera with respect to
// another view of the same scene.
type CamPose struct {
	Rotation    *mat.Dense
	Translation *mat.Dense
}

// NewCamPose creates a CamPose from a 3x3 rotation matrix and a 3x1 translation vector.
func NewCamPose(rotation, translation *mat.Dense) *CamPose {
	return &CamPose{
		Rotation:    rotation,
		Translation: translation,
	}
}

// NewCamPoseFromTransform creates a CamPose from a 4x4 homogeneous transformation matrix.
func NewCamPoseFromTransform(pose *mat.Dense) *CamPose {
	t := mat.NewDense(3, 1, []float64{pose.At(0, 3), pose.At(1, 3), pose.At(2, 3)})
	rot := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot.Set(i, j, pose.At(i, j))
		}
	}
	return &CamPose{
		Rotation:    rot,
		Translation: t,
	}
}

// TransformationMatrix returns the pose as a 4x4 homogeneous transformation matrix.
func (cp *CamPose) TransformationMatrix() *mat.Dense {
	tf := eye(4)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			tf.Set(i, j, cp.Rotation.At(i, j))
		}
		tf.Set(i, 3, cp.Translation.At(i, 0))
	}
	return tf
}

// Quaternion returns the rotation of the pose as a unit quaternion.
func (cp *CamPose) Quaternion() quat.Number {
	return spatialmath.QuaternionFromRotationMatrix(cp.Rotation)
}

// PoseCandidatesFromEssential computes the four pose hypotheses a camera motion
// could have given the essential matrix relating two of its views. The physically
// valid one can be selected with ResolveCameraPose.
func PoseCandidatesFromEssential(essMat *mat.Dense) ([]*CamPose, error) {
	r1, r2, t, err := DecomposeEssentialMatrix(essMat)
	if err != nil {
		return nil, err
	}
	var tOpp mat.Dense
	tOpp.Scale(-1, t)
	return []*CamPose{
		NewCamPose(r1, t),
		NewCamPose(r1, &tOpp),
		NewCamPose(r2, t),
		NewCamPose(r2, &tOpp),
	}, nil
}

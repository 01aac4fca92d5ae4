package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

const angleEpsilon = 1e-7

// RotationMatrixToAxisAngle extracts the axis angle from a 3x3 rotation matrix.
func RotationMatrixToAxisAngle(r *mat.Dense) *R4AA {
	trace := r.At(0, 0) + r.At(1, 1) + r.At(2, 2)
	cosTheta := (trace - 1.) / 2.
	// numerical noise can push the trace slightly out of range
	if cosTheta > 1. {
		cosTheta = 1.
	}
	if cosTheta < -1. {
		cosTheta = -1.
	}
	theta := math.Acos(cosTheta)

	if theta < angleEpsilon {
		return NewR4AA()
	}
	if math.Pi-theta < angleEpsilon {
		// at theta == pi the off-diagonal differences vanish, recover the
		// axis from the diagonal of (R + I) / 2 instead
		bXX := (r.At(0, 0) + 1.) / 2.
		bYY := (r.At(1, 1) + 1.) / 2.
		bZZ := (r.At(2, 2) + 1.) / 2.
		var x, y, z float64
		switch {
		case bXX >= bYY && bXX >= bZZ:
			x = math.Sqrt(math.Max(bXX, 0))
			y = (r.At(0, 1) + r.At(1, 0)) / (4. * x)
			z = (r.At(0, 2) + r.At(2, 0)) / (4. * x)
		case bYY >= bZZ:
			y = math.Sqrt(math.Max(bYY, 0))
			x = (r.At(0, 1) + r.At(1, 0)) / (4. * y)
			z = (r.At(1, 2) + r.At(2, 1)) / (4. * y)
		default:
			z = math.Sqrt(math.Max(bZZ, 0))
			x = (r.At(0, 2) + r.At(2, 0)) / (4. * z)
			y = (r.At(1, 2) + r.At(2, 1)) / (4. * z)
		}
		aa := &R4AA{Theta: theta, RX: x, RY: y, RZ: z}
		aa.Normalize()
		return aa
	}

	denom := 2. * math.Sin(theta)
	aa := &R4AA{
		Theta: theta,
		RX:    (r.At(2, 1) - r.At(1, 2)) / denom,
		RY:    (r.At(0, 2) - r.At(2, 0)) / denom,
		RZ:    (r.At(1, 0) - r.At(0, 1)) / denom,
	}
	aa.Normalize()
	return aa
}

// QuaternionFromRotationMatrix converts a 3x3 rotation matrix to a unit quaternion.
func QuaternionFromRotationMatrix(r *mat.Dense) quat.Number {
	return RotationMatrixToAxisAngle(r).ToQuat()
}

// RotationMatrixFromQuaternion converts a unit quaternion to a 3x3 rotation matrix.
func RotationMatrixFromQuaternion(q quat.Number) *mat.Dense {
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return mat.NewDense(3, 3, []float64{
		1 - 2*y*y - 2*z*z, 2*x*y - 2*z*w, 2*x*z + 2*y*w,
		2*x*y + 2*z*w, 1 - 2*x*x - 2*z*z, 2*y*z - 2*x*w,
		2*x*z - 2*y*w, 2*y*z + 2*x*w, 1 - 2*x*x - 2*y*y,
	})
}

package transform

import (
	"gonum.org/v1/gonum/mat"
)

// GetEssentialMatrixFromFundamental returns the essential matrix from the
// fundamental matrix and the intrinsic matrices of the two cameras. The
// returned matrix has its rank 2 constraint enforced, with both non-zero
// singular values set to 1.
func GetEssentialMatrixFromFundamental(k1, k2, f *mat.Dense) (*mat.Dense, error) {
	var essMat, tmp mat.Dense
	tmp.Mul(transposeDense(k2), f)
	essMat.Mul(&tmp, k1)

	mats, err := performSVD(&essMat)
	if err != nil {
		return nil, err
	}
	S := eye(3)
	S.Set(2, 2, 0)
	essMat.Mul(mats.U, S)
	essMat.Mul(&essMat, mats.VT)
	return &essMat, nil
}

// DecomposeEssentialMatrix decomposes the essential matrix into its two
// possible 3D rotations and a translation direction whose sign is
// undetermined, yielding the four candidate poses (R1, t), (R1, -t),
// (R2, t), (R2, -t).
func DecomposeEssentialMatrix(essMat *mat.Dense) (*mat.Dense, *mat.Dense, *mat.Dense, error) {
	mats, err := performSVD(essMat)
	if err != nil {
		return nil, nil, nil, err
	}
	// rotations must have determinant +1
	if mat.Det(mats.U) < 0 {
		mats.U.Scale(-1, mats.U)
	}
	if mat.Det(mats.VT) < 0 {
		mats.VT.Scale(-1, mats.VT)
	}
	W := mat.NewDense(3, 3, []float64{
		0, 1, 0,
		-1, 0, 0,
		0, 0, 1,
	})
	var R1, R2 mat.Dense
	// U @ W @ V^T
	R1.Mul(mats.U, W)
	R1.Mul(&R1, mats.VT)
	// U @ W^T @ V^T
	R2.Mul(mats.U, transposeDense(W))
	R2.Mul(&R2, mats.VT)

	U3 := mats.U.ColView(2)
	t := mat.NewDense(3, 1, []float64{U3.AtVec(0), U3.AtVec(1), U3.AtVec(2)})
	return &R1, &R2, t, nil
}

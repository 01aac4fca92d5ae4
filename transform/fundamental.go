package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ComputeFundamentalMatrixAllPoints computes the fundamental matrix relating
// two views from all given point correspondences with the linear 8-point
// method. Estimation is degenerate below 8 pairs.
func ComputeFundamentalMatrixAllPoints(pts1, pts2 []r2.Point, normalize bool) (*mat.Dense, error) {
	if len(pts1) != len(pts2) {
		return nil, errors.New("sets of points pts1 and pts2 must have the same number of elements")
	}
	if len(pts1) < 8 {
		return nil, errors.New("sets of points must have at least 8 elements")
	}
	nPoints := len(pts1)

	var points1, points2 []r2.Point
	var T1, T2 *mat.Dense

	if normalize {
		points1, T1 = normalizePoints(pts1)
		points2, T2 = normalizePoints(pts2)
	} else {
		points1 = make([]r2.Point, nPoints)
		copy(points1, pts1)
		points2 = make([]r2.Point, nPoints)
		copy(points2, pts2)
		T1 = eye(3)
		T2 = eye(3)
	}

	m := mat.NewDense(nPoints, 9, nil)
	for i := range points1 {
		v1 := points1[i]
		v2 := points2[i]
		m.SetRow(i, []float64{
			v2.X * v1.X, v2.X * v1.Y, v2.X,
			v2.Y * v1.X, v2.Y * v1.Y, v2.Y,
			v1.X, v1.Y, 1,
		})
	}

	matsM, err := performSVD(m)
	if err != nil {
		return nil, err
	}
	// solution is the right singular vector with the smallest singular value
	lastColV := matsM.V.ColView(8)
	lastColVdata := make([]float64, 9)
	for i := range lastColVdata {
		lastColVdata[i] = lastColV.AtVec(i)
	}
	F := mat.NewDense(3, 3, lastColVdata)

	// enforce rank 2 of F
	matsF, err := performSVD(F)
	if err != nil {
		return nil, err
	}
	S := matsF.S
	S.Set(2, 2, 0)
	Fhat := mat.NewDense(3, 3, nil)
	Fhat.Mul(matsF.U, S)
	F.Mul(Fhat, matsF.VT)

	// rescale F: T2^T @ F @ T1
	F.Mul(transposeDense(T2), F)
	F.Mul(F, T1)

	// F is defined up to scale, so the division is only cosmetic; certain
	// motions (e.g. pure axis-aligned translation) make F[2,2] vanish
	if f22 := F.At(2, 2); f22 != 0 {
		F.Scale(1/f22, F)
	}

	return F, nil
}

// normalizePoints translates and scales points so that their centroid is at
// the origin and their average distance to it is sqrt(2), as described in
// Multiple View Geometry, Alg 11.1. It returns the transformed points and the
// applied 3x3 transform.
func normalizePoints(pts []r2.Point) ([]r2.Point, *mat.Dense) {
	nPoints := len(pts)
	mu := r2.Point{}
	for _, pt := range pts {
		mu.X += pt.X
		mu.Y += pt.Y
	}
	mu = mu.Mul(1. / float64(nPoints))

	d := 0.0
	for _, pt := range pts {
		x2 := (pt.X - mu.X) * (pt.X - mu.X)
		y2 := (pt.Y - mu.Y) * (pt.Y - mu.Y)
		d += math.Sqrt(x2+y2) / float64(nPoints)
	}
	scale := math.Sqrt(2) / d
	T := mat.NewDense(3, 3, []float64{
		scale, 0, -scale * mu.X,
		0, scale, -scale * mu.Y,
		0, 0, 1,
	})
	pointsTransformed := make([]r2.Point, nPoints)
	for i := range pointsTransformed {
		pointsTransformed[i] = r2.Point{X: scale * (pts[i].X - mu.X), Y: scale * (pts[i].Y - mu.Y)}
	}
	return pointsTransformed, T
}

// sampsonDistance computes the first-order geometric error of the
// correspondence (p1, p2) under the fundamental matrix f.
func sampsonDistance(f *mat.Dense, p1, p2 r2.Point) float64 {
	x1 := mat.NewVecDense(3, []float64{p1.X, p1.Y, 1})
	x2 := mat.NewVecDense(3, []float64{p2.X, p2.Y, 1})
	var fx1, ftx2 mat.VecDense
	fx1.MulVec(f, x1)
	ftx2.MulVec(f.T(), x2)
	num := mat.Dot(x2, &fx1)
	num *= num
	den := fx1.AtVec(0)*fx1.AtVec(0) + fx1.AtVec(1)*fx1.AtVec(1) +
		ftx2.AtVec(0)*ftx2.AtVec(0) + ftx2.AtVec(1)*ftx2.AtVec(1)
	return num / den
}

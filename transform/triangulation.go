package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// translation components that come out non-finite after rescaling are replaced
// with this value
const nonFiniteTranslationFill = 1e-5

// projectionFromIntrinsics returns the 3x4 projection matrix K[I|0] of a camera
// with intrinsic matrix k placed at the origin.
func projectionFromIntrinsics(k *mat.Dense) *mat.Dense {
	p := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			p.Set(i, j, k.At(i, j))
		}
	}
	return p
}

// TriangulatePoints computes the 3D points whose projections through the 3x4
// projection matrices p1 and p2 are the matched image points pts1 and pts2, with
// the linear cross product method. The points are returned as the columns of a
// 4xN matrix in homogeneous coordinates, left unnormalized.
func TriangulatePoints(p1, p2 *mat.Dense, pts1, pts2 []r2.Point) (*mat.Dense, error) {
	if len(pts1) != len(pts2) {
		return nil, errors.New("the 2 sets of points don't have the same number of elements")
	}
	if len(pts1) == 0 {
		return nil, errors.New("need at least one point pair to triangulate")
	}
	homPts := mat.NewDense(4, len(pts1), nil)
	for i := range pts1 {
		x1Cross := getCrossProductMatFromPoint(r3.Vector{X: pts1[i].X, Y: pts1[i].Y, Z: 1})
		x2Cross := getCrossProductMatFromPoint(r3.Vector{X: pts2[i].X, Y: pts2[i].Y, Z: 1})
		x1CrossP1 := mat.NewDense(3, 4, nil)
		x1CrossP1.Mul(x1Cross, p1)
		x2CrossP2 := mat.NewDense(3, 4, nil)
		x2CrossP2.Mul(x2Cross, p2)
		var a mat.Dense
		a.Stack(x1CrossP1, x2CrossP2)
		svd, err := performSVD(&a)
		if err != nil {
			return nil, err
		}
		// the solution is the right singular vector of the smallest singular value
		for j := 0; j < 4; j++ {
			homPts.Set(j, i, svd.V.At(j, 3))
		}
	}
	return homPts, nil
}

// unhomogenizePoints divides out the homogeneous coordinate of every column of a
// 4xN matrix of homogeneous 3D points.
func unhomogenizePoints(homPts *mat.Dense) []r3.Vector {
	_, nPoints := homPts.Dims()
	pts := make([]r3.Vector, nPoints)
	for i := 0; i < nPoints; i++ {
		w := homPts.At(3, i)
		pts[i] = r3.Vector{
			X: homPts.At(0, i) / w,
			Y: homPts.At(1, i) / w,
			Z: homPts.At(2, i) / w,
		}
	}
	return pts
}

// GetNumberPositiveDepth returns the number of points lying in front of both
// cameras, pts1 being the scene seen from the first camera and pts2 the same
// scene seen from the second one.
func GetNumberPositiveDepth(pts1, pts2 []r3.Vector) int {
	nPositiveDepth := 0
	for _, pt := range pts1 {
		if pt.Z > 0 {
			nPositiveDepth++
		}
	}
	for _, pt := range pts2 {
		if pt.Z > 0 {
			nPositiveDepth++
		}
	}
	return nPositiveDepth
}

// RelativeScale estimates the scale ratio between two triangulations of the same
// scene as the mean ratio of the distances between consecutive points. Ratios
// that are not finite, from coincident or degenerate points, are left out of the
// mean. Returns NaN when no finite ratio remains.
func RelativeScale(pts1, pts2 []r3.Vector) float64 {
	sum := 0.
	nRatios := 0
	for i := 0; i+1 < len(pts1) && i+1 < len(pts2); i++ {
		d1 := pts1[i].Sub(pts1[i+1]).Norm()
		d2 := pts2[i].Sub(pts2[i+1]).Norm()
		ratio := d1 / d2
		if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
			continue
		}
		sum += ratio
		nRatios++
	}
	if nRatios == 0 {
		return math.NaN()
	}
	return sum / float64(nRatios)
}

// ResolvedPose is the camera pose hypothesis selected by the positive depth
// check, with the triangulated scene points supporting it.
type ResolvedPose struct {
	Pose           *CamPose
	NPositiveDepth int
	Scale          float64
	WorldPoints    []r3.Vector
}

// ResolveCameraPose selects among the pose candidates the one maximizing the
// number of triangulated points with positive depth in both cameras, the first
// candidate winning ties, and rescales its translation with the relative scale
// of the two triangulations. pts1 and pts2 are the matched image points of the
// two views and k the camera intrinsic matrix.
func ResolveCameraPose(candidates []*CamPose, pts1, pts2 []r2.Point, k *mat.Dense) (*ResolvedPose, error) {
	if len(candidates) == 0 {
		return nil, errors.New("no pose candidate to resolve")
	}
	p1 := projectionFromIntrinsics(k)
	bestIdx := -1
	bestNPositiveDepth := -1
	bestScale := math.NaN()
	for i, candidate := range candidates {
		tf := candidate.TransformationMatrix()
		p2 := mat.NewDense(3, 4, nil)
		p2.Mul(p1, tf)
		homPts1, err := TriangulatePoints(p1, p2, pts1, pts2)
		if err != nil {
			return nil, err
		}
		var homPts2 mat.Dense
		homPts2.Mul(tf, homPts1)
		q1 := unhomogenizePoints(homPts1)
		q2 := unhomogenizePoints(&homPts2)
		nPositiveDepth := GetNumberPositiveDepth(q1, q2)
		if nPositiveDepth > bestNPositiveDepth {
			bestIdx = i
			bestNPositiveDepth = nPositiveDepth
			bestScale = RelativeScale(q1, q2)
		}
	}
	best := candidates[bestIdx]
	t := mat.NewDense(3, 1, nil)
	t.Scale(bestScale, best.Translation)
	for i := 0; i < 3; i++ {
		if v := t.At(i, 0); math.IsNaN(v) || math.IsInf(v, 0) {
			t.Set(i, 0, nonFiniteTranslationFill)
		}
	}
	resolved := NewCamPose(mat.DenseCopyOf(best.Rotation), t)
	// re-triangulate against the rescaled projection, used here for both views,
	// to get the scene points of the resolved pose
	tf := resolved.TransformationMatrix()
	p2 := mat.NewDense(3, 4, nil)
	p2.Mul(p1, tf)
	homPts, err := TriangulatePoints(p2, p2, pts1, pts2)
	if err != nil {
		return nil, err
	}
	return &ResolvedPose{
		Pose:           resolved,
		NPositiveDepth: bestNPositiveDepth,
		Scale:          bestScale,
		WorldPoints:    unhomogenizePoints(homPts),
	}, nil
}

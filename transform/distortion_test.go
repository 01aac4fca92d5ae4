package transform

import (
	"testing"

	"go.viam.com/test"
)

func TestNewBrownConrady(t *testing.T) {
	bc, err := NewBrownConrady(nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc, test.ShouldResemble, &BrownConrady{})

	// missing trailing parameters are zero filled
	bc, err = NewBrownConrady([]float64{0.1, -0.2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, bc.RadialK1, test.ShouldEqual, 0.1)
	test.That(t, bc.RadialK2, test.ShouldEqual, -0.2)
	test.That(t, bc.RadialK3, test.ShouldEqual, 0.)
	test.That(t, bc.TangentialP1, test.ShouldEqual, 0.)
	test.That(t, bc.TangentialP2, test.ShouldEqual, 0.)

	_, err = NewBrownConrady([]float64{1, 2, 3, 4, 5, 6})
	test.That(t, err, test.ShouldNotBeNil)

	test.That(t, bc.ModelType(), test.ShouldEqual, BrownConradyDistortionType)
	test.That(t, bc.CheckValid(), test.ShouldBeNil)
	test.That(t, bc.Parameters(), test.ShouldResemble, []float64{0.1, -0.2, 0., 0., 0.})
}

func TestBrownConradyTransform(t *testing.T) {
	// pure radial distortion
	bc := &BrownConrady{RadialK1: 0.1}
	xd, yd := bc.Transform(0.1, 0)
	test.That(t, xd, test.ShouldAlmostEqual, 0.1001)
	test.That(t, yd, test.ShouldAlmostEqual, 0)

	// pure tangential distortion
	bc = &BrownConrady{TangentialP1: 0.01}
	xd, yd = bc.Transform(0, 0.1)
	test.That(t, xd, test.ShouldAlmostEqual, 0)
	test.That(t, yd, test.ShouldAlmostEqual, 0.1003)

	// a zero model changes nothing
	bc = &BrownConrady{}
	xd, yd = bc.Transform(0.25, -0.3)
	test.That(t, xd, test.ShouldEqual, 0.25)
	test.That(t, yd, test.ShouldEqual, -0.3)
}

func TestBrownConradyNilReceiver(t *testing.T) {
	var bc *BrownConrady
	x, y := bc.Transform(0.5, -0.5)
	test.That(t, x, test.ShouldEqual, 0.5)
	test.That(t, y, test.ShouldEqual, -0.5)
	test.That(t, bc.CheckValid(), test.ShouldNotBeNil)
	test.That(t, bc.Parameters(), test.ShouldResemble, []float64{})
}

func TestNewDistorter(t *testing.T) {
	distorter, err := NewDistorter(BrownConradyDistortionType, []float64{0.1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, distorter.ModelType(), test.ShouldEqual, BrownConradyDistortionType)

	_, err = NewDistorter(DistortionType("fisheye"), nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "fisheye")
}

package transform

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"go.viam.com/test"
)

func TestPinholeCameraIntrinsicsCheckValid(t *testing.T) {
	var nilParams *PinholeCameraIntrinsics
	err := nilParams.CheckValid()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrNoIntrinsics), test.ShouldBeTrue)

	params := &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 500, Fy: 500, Ppx: 320, Ppy: 240}
	test.That(t, params.CheckValid(), test.ShouldBeNil)

	params.Width = 0
	test.That(t, params.CheckValid(), test.ShouldNotBeNil)
	params.Width = 640
	params.Fx = 0
	test.That(t, params.CheckValid(), test.ShouldNotBeNil)
	params.Fx = 500
	params.Ppy = -1
	test.That(t, params.CheckValid(), test.ShouldNotBeNil)
}

func TestNewPinholeCameraIntrinsicsFromJSONFile(t *testing.T) {
	params, err := NewPinholeCameraIntrinsicsFromJSONFile("intrinsics.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, params.CheckValid(), test.ShouldBeNil)
	test.That(t, params.Width, test.ShouldEqual, 640)
	test.That(t, params.Height, test.ShouldEqual, 480)
	test.That(t, params.Fx, test.ShouldEqual, 500.)
	test.That(t, params.Fy, test.ShouldEqual, 500.)
	test.That(t, params.Ppx, test.ShouldEqual, 320.)
	test.That(t, params.Ppy, test.ShouldEqual, 240.)

	_, err = NewPinholeCameraIntrinsicsFromJSONFile("does_not_exist.json")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestGetCameraMatrix(t *testing.T) {
	params := &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 500, Fy: 400, Ppx: 320, Ppy: 240}
	k := params.GetCameraMatrix()
	test.That(t, k.At(0, 0), test.ShouldEqual, 500.)
	test.That(t, k.At(1, 1), test.ShouldEqual, 400.)
	test.That(t, k.At(0, 2), test.ShouldEqual, 320.)
	test.That(t, k.At(1, 2), test.ShouldEqual, 240.)
	test.That(t, k.At(2, 2), test.ShouldEqual, 1.)
	test.That(t, k.At(1, 0), test.ShouldEqual, 0.)

	var nilParams *PinholeCameraIntrinsics
	test.That(t, nilParams.GetCameraMatrix(), test.ShouldBeNil)
}

func TestPixelProjectionRoundTrip(t *testing.T) {
	params := &PinholeCameraIntrinsics{Width: 640, Height: 480, Fx: 500, Fy: 500, Ppx: 320, Ppy: 240}

	x, y, z := params.PixelToPoint(420, 340, 2)
	test.That(t, x, test.ShouldAlmostEqual, 0.4)
	test.That(t, y, test.ShouldAlmostEqual, 0.4)
	test.That(t, z, test.ShouldAlmostEqual, 2.)

	xPx, yPx := params.PointToPixel(x, y, z)
	test.That(t, xPx, test.ShouldAlmostEqual, 420)
	test.That(t, yPx, test.ShouldAlmostEqual, 340)

	// zero depth projects out of bounds
	xPx, yPx = params.PointToPixel(0.4, 0.4, 0)
	test.That(t, xPx, test.ShouldEqual, -1.)
	test.That(t, yPx, test.ShouldEqual, -1.)
}

func TestNewPinholeCameraModelFromJSONFile(t *testing.T) {
	model, err := NewPinholeCameraModelFromJSONFile("camera_model.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.CheckValid(), test.ShouldBeNil)
	test.That(t, model.Distortion, test.ShouldNotBeNil)
	test.That(t, model.Distortion.ModelType(), test.ShouldEqual, BrownConradyDistortionType)
	test.That(t, model.Distortion.Parameters(), test.ShouldResemble, []float64{0.1, -0.05, 0.01, 0.001, 0.002})

	// a plain intrinsics file loads with no distortion model
	model, err = NewPinholeCameraModelFromJSONFile("intrinsics.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Distortion, test.ShouldBeNil)

	_, err = NewPinholeCameraModelFromJSONFile("does_not_exist.json")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestUndistortImage(t *testing.T) {
	params := &PinholeCameraModel{
		PinholeCameraIntrinsics: &PinholeCameraIntrinsics{Width: 8, Height: 8, Fx: 4, Fy: 4, Ppx: 4, Ppy: 4},
		Distortion:              &BrownConrady{},
	}
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x*8 + y)})
		}
	}

	// an all zero distortion model leaves the image untouched
	undistorted, err := params.UndistortImage(img)
	test.That(t, err, test.ShouldBeNil)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			test.That(t, undistorted.GrayAt(x, y), test.ShouldResemble, img.GrayAt(x, y))
		}
	}

	_, err = params.UndistortImage(nil)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = params.UndistortImage(image.NewGray(image.Rect(0, 0, 4, 4)))
	test.That(t, err, test.ShouldNotBeNil)

	params.Distortion = nil
	_, err = params.UndistortImage(img)
	test.That(t, err, test.ShouldNotBeNil)
}

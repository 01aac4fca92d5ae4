package imagesource

import (
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func writeGrayPNG(t *testing.T, path string, level uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, png.Encode(f, img), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)
}

func writeGrayJPEG(t *testing.T, path string, level uint8) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	for i := range img.Pix {
		img.Pix[i] = level
	}
	f, err := os.Create(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, jpeg.Encode(f, img, nil), test.ShouldBeNil)
	test.That(t, f.Close(), test.ShouldBeNil)
}

func grayLevelAt(img image.Image, x, y int) int {
	return int(color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y)
}

func TestStaticSource(t *testing.T) {
	source := NewStaticSource(nil)
	_, _, err := source.Next(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no image set")

	first := image.NewGray(image.Rect(0, 0, 2, 2))
	source.SetImage(first)
	img, release, err := source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, release, test.ShouldNotBeNil)
	test.That(t, img, test.ShouldEqual, first)
	release()

	second := image.NewGray(image.Rect(0, 0, 3, 3))
	source.SetImage(second)
	img, _, err = source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img, test.ShouldEqual, second)

	test.That(t, source.Close(), test.ShouldBeNil)
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	writeGrayPNG(t, filepath.Join(dir, "frame_001.png"), 40)
	writeGrayJPEG(t, filepath.Join(dir, "frame_002.jpg"), 150)
	writeGrayPNG(t, filepath.Join(dir, "frame_003.png"), 220)
	// neither of these may be served
	test.That(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600), test.ShouldBeNil)
	test.That(t, os.Mkdir(filepath.Join(dir, "nested"), 0o700), test.ShouldBeNil)

	source, err := NewFileSource(dir)
	test.That(t, err, test.ShouldBeNil)

	img, release, err := source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, release, test.ShouldNotBeNil)
	test.That(t, grayLevelAt(img, 0, 0), test.ShouldEqual, 40)

	img, _, err = source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	// jpeg is lossy on a uniform patch only by a rounding step
	test.That(t, grayLevelAt(img, 0, 0), test.ShouldBeGreaterThanOrEqualTo, 145)
	test.That(t, grayLevelAt(img, 0, 0), test.ShouldBeLessThanOrEqualTo, 155)

	img, _, err = source.Next(context.Background())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, grayLevelAt(img, 0, 0), test.ShouldEqual, 220)

	_, _, err = source.Next(context.Background())
	test.That(t, err, test.ShouldEqual, io.EOF)

	test.That(t, source.Close(), test.ShouldBeNil)
}

func TestFileSourceErrors(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "missing"))
	test.That(t, err, test.ShouldNotBeNil)

	empty := t.TempDir()
	_, err = NewFileSource(empty)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no image files found")

	corrupt := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(corrupt, "bad.png"), []byte("not a png"), 0o600), test.ShouldBeNil)
	source, err := NewFileSource(corrupt)
	test.That(t, err, test.ShouldBeNil)
	_, _, err = source.Next(context.Background())
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode frame")
}

package keypoints

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestLoadORBConfiguration(t *testing.T) {
	cfg, err := LoadORBConfiguration("orbconfig.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldNotBeNil)
	test.That(t, cfg.Layers, test.ShouldEqual, 4)
	test.That(t, cfg.DownscaleFactor, test.ShouldEqual, 2)
	test.That(t, cfg.MaxFeatures, test.ShouldEqual, 3000)
	test.That(t, cfg.FastConf.Threshold, test.ShouldEqual, 0.15)
	test.That(t, cfg.BRIEFConf.N, test.ShouldEqual, 256)

	_, err = LoadORBConfiguration("no_such_file.json")
	test.That(t, err, test.ShouldNotBeNil)
}

func TestORBConfigValidate(t *testing.T) {
	cfg, err := LoadORBConfiguration("orbconfig.json")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Validate(""), test.ShouldBeNil)

	badLayers := *cfg
	badLayers.Layers = 0
	test.That(t, badLayers.Validate(""), test.ShouldNotBeNil)

	badFactor := *cfg
	badFactor.DownscaleFactor = 1
	test.That(t, badFactor.Validate(""), test.ShouldNotBeNil)

	badFeatures := *cfg
	badFeatures.MaxFeatures = -1
	test.That(t, badFeatures.Validate(""), test.ShouldNotBeNil)

	noFast := *cfg
	noFast.FastConf = nil
	test.That(t, noFast.Validate(""), test.ShouldNotBeNil)

	noBrief := *cfg
	noBrief.BRIEFConf = nil
	test.That(t, noBrief.Validate(""), test.ShouldNotBeNil)
}

func TestComputeORBKeypoints(t *testing.T) {
	cfg, err := LoadORBConfiguration("orbconfig.json")
	test.That(t, err, test.ShouldBeNil)
	img := createTestImage()
	sp := GenerateSamplePairs(cfg.BRIEFConf.Sampling, cfg.BRIEFConf.N, cfg.BRIEFConf.PatchSize)

	descs, kps, err := ComputeORBKeypoints(img, sp, cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(descs), test.ShouldEqual, len(kps))
	// the four corners at full resolution, plus at least the two bottom
	// corners of the first downscaled level
	test.That(t, len(kps), test.ShouldBeGreaterThanOrEqualTo, 6)
	bounds := img.Bounds()
	for _, kp := range kps {
		test.That(t, kp.In(bounds), test.ShouldBeTrue)
	}
	for _, desc := range descs {
		test.That(t, len(desc), test.ShouldEqual, cfg.BRIEFConf.N/64)
	}

	// too many pyramid levels for the image size
	tiny := image.NewGray(image.Rect(0, 0, 16, 16))
	smallCfg := *cfg
	smallCfg.Layers = 10
	_, _, err = ComputeORBKeypoints(tiny, sp, &smallCfg)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestComputeORBKeypointsMaxFeatures(t *testing.T) {
	cfg, err := LoadORBConfiguration("orbconfig.json")
	test.That(t, err, test.ShouldBeNil)
	cfg.Layers = 2
	cfg.MaxFeatures = 5
	img := createTestImage()
	sp := GenerateSamplePairs(cfg.BRIEFConf.Sampling, cfg.BRIEFConf.N, cfg.BRIEFConf.PatchSize)

	descs, kps, err := ComputeORBKeypoints(img, sp, cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(kps), test.ShouldEqual, 5)
	test.That(t, len(descs), test.ShouldEqual, 5)
	// the full resolution corners all score highest
	test.That(t, kps, test.ShouldContain, image.Point{50, 30})
	test.That(t, kps, test.ShouldContain, image.Point{99, 30})
	test.That(t, kps, test.ShouldContain, image.Point{50, 149})
	test.That(t, kps, test.ShouldContain, image.Point{99, 149})
}

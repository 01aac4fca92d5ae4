// Package main serves a visualization of the feature matches and the
// estimated motion between two frames.
package main

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"github.com/PNisargkumar/Project-drone/imagesource"
	"github.com/PNisargkumar/Project-drone/keypoints"
	"github.com/PNisargkumar/Project-drone/odometry"
	"github.com/PNisargkumar/Project-drone/rimage"
)

var (
	logger = golog.NewDevelopmentLogger("motionviz")

	pageTemplate = `<!DOCTYPE html>
<html lang="en"><head><title>motion between frames</title></head>
<body>
<pre>rotation:
{{.Rotation}}</pre>
<pre>translation:
{{.Translation}}</pre>
<img src="data:image/png;base64,{{.Keypoints}}">
<img src="data:image/png;base64,{{.Matches}}">
</body>
</html>
`
)

type pageData struct {
	Rotation    string
	Translation string
	Keypoints   string
	Matches     string
}

func main() {
	if err := realMain(os.Args[1:]); err != nil {
		logger.Fatal(err)
	}
}

func realMain(args []string) error {
	if len(args) < 3 {
		return errors.New("usage: motionviz <config.json> <frame1> <frame2>")
	}
	viz := &visualizer{configPath: args[0], framePath1: args[1], framePath2: args[2]}
	http.HandleFunc("/orb/", viz.handle)
	logger.Info("listening on :8080")
	logger.Info("matches can be visualized at http://localhost:8080/orb/")
	return http.ListenAndServe(":8080", nil)
}

type visualizer struct {
	configPath string
	framePath1 string
	framePath2 string
}

func (v *visualizer) handle(w http.ResponseWriter, r *http.Request) {
	if err := v.render(w); err != nil {
		logger.Errorw("cannot render the motion page", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (v *visualizer) render(w http.ResponseWriter) error {
	cfg, err := odometry.LoadEstimationConfig(v.configPath)
	if err != nil {
		return err
	}
	im1, err := imagesource.ReadImageFile(v.framePath1)
	if err != nil {
		return err
	}
	im2, err := imagesource.ReadImageFile(v.framePath2)
	if err != nil {
		return err
	}
	gray1, gray2 := rimage.MakeGray(im1), rimage.MakeGray(im2)

	matched1, matched2, err := odometry.MatchFrames(gray1, gray2, cfg, logger)
	if err != nil {
		return err
	}
	if matched1 == nil {
		return errors.New("not enough keypoints to match the two frames")
	}

	dir, err := os.MkdirTemp("", "motionviz")
	if err != nil {
		return err
	}
	defer utils.UncheckedErrorFunc(func() error { return os.RemoveAll(dir) })
	kpPath := filepath.Join(dir, "keypoints.png")
	matchPath := filepath.Join(dir, "matches.png")
	if err := keypoints.PlotKeypoints(gray1, matched1, kpPath); err != nil {
		return err
	}
	if err := keypoints.PlotMatchedKeypoints(gray1, gray2, matched1, matched2, matchPath); err != nil {
		return err
	}

	motion, err := odometry.EstimateMotionFrom2Frames(im1, im2, cfg, logger)
	if err != nil {
		return err
	}
	logger.Infow("estimated motion", "rotation", formatMatrix(motion.Rotation), "translation", formatMatrix(motion.Translation))

	kpImage, err := base64EncodeFile(kpPath)
	if err != nil {
		return err
	}
	matchImage, err := base64EncodeFile(matchPath)
	if err != nil {
		return err
	}

	tmpl, err := template.New("motion").Parse(pageTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, pageData{
		Rotation:    formatMatrix(motion.Rotation),
		Translation: formatMatrix(motion.Translation),
		Keypoints:   kpImage,
		Matches:     matchImage,
	})
}

func formatMatrix(m *mat.Dense) string {
	rows, cols := m.Dims()
	var b strings.Builder
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			fmt.Fprintf(&b, "% .4f ", m.At(i, j))
		}
		if i < rows-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func base64EncodeFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

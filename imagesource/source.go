// Package imagesource provides the frame inputs a visual odometry runner
// polls: a static in-memory source, a directory of image files, and rosbag
// camera replay.
package imagesource

import (
	"context"
	"image"
	_ "image/jpeg" // register jpeg
	_ "image/png"  // register png
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// An ImageSource produces the frames an odometry session consumes. Next
// returns the source's current frame together with a release function for
// its backing buffer, and io.EOF once a replay source is exhausted.
type ImageSource interface {
	Next(ctx context.Context) (image.Image, func(), error)
	Close() error
}

// StaticSource serves the frame it currently holds. A producer may overwrite
// the held frame at its own pace; the consumer always gets the latest one.
type StaticSource struct {
	mu  sync.Mutex
	img image.Image
}

// NewStaticSource returns a StaticSource holding img.
func NewStaticSource(img image.Image) *StaticSource {
	return &StaticSource{img: img}
}

// SetImage replaces the held frame.
func (ss *StaticSource) SetImage(img image.Image) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.img = img
}

// Next returns the held frame.
func (ss *StaticSource) Next(ctx context.Context) (image.Image, func(), error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	if ss.img == nil {
		return nil, nil, errors.New("no image set on the static source")
	}
	return ss.img, func() {}, nil
}

// Close is a no-op, the source holds no resources.
func (ss *StaticSource) Close() error {
	return nil
}

// -----

// FileSource replays the image files of a directory, one file per call, in
// lexical file name order.
type FileSource struct {
	paths []string
	next  int
}

// NewFileSource lists the png and jpeg files under dir and returns a source
// replaying them.
func NewFileSource(dir string) (*FileSource, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot list frame directory %q", dir)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, errors.Errorf("no image files found under %q", dir)
	}
	return &FileSource{paths: paths}, nil
}

// Next decodes and returns the next frame, or io.EOF once every file has
// been served.
func (fs *FileSource) Next(ctx context.Context) (image.Image, func(), error) {
	if fs.next >= len(fs.paths) {
		return nil, nil, io.EOF
	}
	path := fs.paths[fs.next]
	fs.next++
	img, err := ReadImageFile(path)
	if err != nil {
		return nil, nil, err
	}
	return img, func() {}, nil
}

// Close is a no-op, the files are opened one frame at a time.
func (fs *FileSource) Close() error {
	return nil
}

// ReadImageFile decodes the png or jpeg file at path.
func ReadImageFile(path string) (image.Image, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, err
	}
	defer utils.UncheckedErrorFunc(f.Close)
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode frame %q", path)
	}
	return img, nil
}

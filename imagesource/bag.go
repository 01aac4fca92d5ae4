package imagesource

import (
	"context"
	"image"
	"io"

	"github.com/PNisargkumar/Project-drone/ros"
)

// DefaultImageTopic is the camera topic bag replay reads when none is
// configured.
const DefaultImageTopic = "/camera"

// BagSource replays the image messages recorded on one topic of a rosbag.
type BagSource struct {
	msgs []ros.ImageMessage
	next int
}

// NewBagSource reads the bag at path and prepares the messages of topic for
// replay. An empty topic falls back to DefaultImageTopic.
func NewBagSource(path, topic string) (*BagSource, error) {
	if topic == "" {
		topic = DefaultImageTopic
	}
	rb, err := ros.ReadBag(path)
	if err != nil {
		return nil, err
	}
	msgs, err := ros.ImageMessagesFromBag(rb, topic)
	if err != nil {
		return nil, err
	}
	return &BagSource{msgs: msgs}, nil
}

// Next decodes and returns the next recorded frame, or io.EOF once the
// topic is exhausted.
func (bs *BagSource) Next(ctx context.Context) (image.Image, func(), error) {
	if bs.next >= len(bs.msgs) {
		return nil, nil, io.EOF
	}
	msg := &bs.msgs[bs.next]
	bs.next++
	img, err := msg.Image()
	if err != nil {
		return nil, nil, err
	}
	return img, func() {}, nil
}

// Close drops the decoded messages.
func (bs *BagSource) Close() error {
	bs.msgs = nil
	return nil
}

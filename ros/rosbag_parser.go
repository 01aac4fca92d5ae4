// Package ros implements the rosbag side of frame ingestion: reading bag
// files and decoding the image messages recorded on a camera topic.
package ros

import (
	"encoding/json"
	"io"
	"os"

	"github.com/edaniels/gobag/rosbag"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ReadBag reads the contents of a rosbag into a gobag data structure.
func ReadBag(filename string) (*rosbag.RosBag, error) {
	//nolint:gosec
	f, err := os.Open(filename)
	defer utils.UncheckedErrorFunc(f.Close)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input file")
	}

	rb := rosbag.NewRosBag()

	if err := rb.Read(f); err != nil {
		return nil, errors.Wrapf(err, "unable to create ros bag, error")
	}

	return rb, nil
}

// messagesForTopic extracts the raw JSON messages recorded on topic, in bag
// order.
func messagesForTopic(rb *rosbag.RosBag, topic string) ([][]byte, error) {
	if err := rb.ParseTopicsToJSON(
		"",
		func(int64) bool { return true },
		func(t string) bool { return t == topic },
		false,
	); err != nil {
		return nil, errors.Wrapf(err, "error while parsing bag to JSON")
	}

	msgs := rb.TopicsAsJSON[topic]
	if msgs == nil {
		return nil, errors.Errorf("no messages for topic %s", topic)
	}

	all := [][]byte{}
	for {
		data, err := msgs.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		all = append(all, data)
	}

	return all, nil
}

// ImageMessagesFromBag decodes every image message recorded on topic, in bag
// order.
func ImageMessagesFromBag(rb *rosbag.RosBag, topic string) ([]ImageMessage, error) {
	raw, err := messagesForTopic(rb, topic)
	if err != nil {
		return nil, err
	}
	msgs := make([]ImageMessage, 0, len(raw))
	for i, data := range raw {
		var message ImageMessage
		if err := json.Unmarshal(data, &message); err != nil {
			return nil, errors.Wrapf(err, "cannot decode image message %d on topic %s", i, topic)
		}
		msgs = append(msgs, message)
	}
	return msgs, nil
}

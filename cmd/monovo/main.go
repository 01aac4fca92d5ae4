// Package main runs monocular visual odometry over a recorded frame
// source and logs the estimated camera poses.
package main

import (
	"context"
	"os"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/PNisargkumar/Project-drone/imagesource"
	"github.com/PNisargkumar/Project-drone/odometry"
	"github.com/PNisargkumar/Project-drone/poselog"
)

var logger = golog.NewDevelopmentLogger("monovo")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	ConfigFile string `flag:"0,required,usage=motion estimation config file"`
	FrameDir   string `flag:"frames,usage=directory of frames to replay"`
	BagFile    string `flag:"bag,usage=rosbag to replay"`
	BagTopic   string `flag:"topic,usage=bag image topic (default /camera)"`
	JSONLFile  string `flag:"jsonl,usage=write pose records to this JSON lines file"`
	SQLiteFile string `flag:"db,usage=write pose records to this sqlite database"`
	IntervalMS int    `flag:"interval,usage=frame poll interval in milliseconds (default 50)"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	cfg, err := odometry.LoadEstimationConfig(argsParsed.ConfigFile)
	if err != nil {
		return err
	}
	return runOdometry(ctx, cfg, &argsParsed, logger)
}

func runOdometry(ctx context.Context, cfg *odometry.Config, args *Arguments, logger golog.Logger) (err error) {
	source, err := openSource(args)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, source.Close())
	}()

	sink, err := openSink(args, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, sink.Close())
	}()

	session, err := odometry.NewSession(cfg, logger)
	if err != nil {
		return err
	}
	interval := time.Duration(args.IntervalMS) * time.Millisecond
	runner := odometry.NewRunner(session, source, sink, interval, logger)
	return runner.Run(ctx)
}

func openSource(args *Arguments) (imagesource.ImageSource, error) {
	switch {
	case args.FrameDir != "" && args.BagFile != "":
		return nil, errors.New("specify a frame directory or a rosbag, not both")
	case args.FrameDir != "":
		return imagesource.NewFileSource(args.FrameDir)
	case args.BagFile != "":
		return imagesource.NewBagSource(args.BagFile, args.BagTopic)
	default:
		return nil, errors.New("specify a frame directory or a rosbag to replay")
	}
}

func openSink(args *Arguments, cfg *odometry.Config, logger golog.Logger) (poselog.Sink, error) {
	var sinks []poselog.Sink
	if args.JSONLFile != "" {
		f, err := os.Create(args.JSONLFile)
		if err != nil {
			return nil, errors.Wrap(err, "cannot create pose log file")
		}
		sinks = append(sinks, poselog.NewJSONLWriter(f))
	}
	if args.SQLiteFile != "" {
		store, err := poselog.NewSQLiteStore(args.SQLiteFile, cfg)
		if err != nil {
			return nil, err
		}
		logger.Infow("pose database session", "session", store.SessionID())
		sinks = append(sinks, store)
	}
	if len(sinks) == 0 {
		// no sink configured, print records to stdout
		sinks = append(sinks, poselog.NewJSONLWriter(os.Stdout))
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return poselog.NewMultiSink(sinks...), nil
}

package operations

import (
	"context"

	"github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Segment returns the command that segments a single series file and
// prints the result.
func Segment() cli.Command {
	return cli.Command{
		Name:   "segment",
		Usage:  "find the change points of one series",
		Flags:  mergeFlags(baseFlags(), addPathFlag(), inputFlags(), segmentationFlags(), addOutputFlags()),
		Before: setFlagOrFirstPositional(pathFlagName),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			conf, err := loadConfiguration(c)
			if err != nil {
				return errors.WithStack(err)
			}

			path := c.String(pathFlagName)
			series, err := model.ReadSeriesFile(ctx, path, readOptions(c))
			if err != nil {
				return errors.WithStack(err)
			}

			segmenter, err := segmentation.NewSegmenter(conf.SegmentationOptions())
			if err != nil {
				return errors.WithStack(err)
			}

			result, err := segmenter.Segment(ctx, series.Values)
			if err != nil {
				return errors.Wrapf(err, "problem segmenting '%s'", path)
			}

			record := model.CreateSegmentation(utility.RandomString(), series.Name, result, conf.IncludeProfiles)
			grip.Info(message.Fields{
				"message":       "segmented series",
				"path":          path,
				"series":        series.Name,
				"length":        record.Length,
				"window":        record.WindowLength,
				"change_points": record.ChangePoints,
			})

			return writeOutput(c, record)
		},
	}
}

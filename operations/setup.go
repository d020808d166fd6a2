package operations

import (
	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/evergreen-ci/clasp/util"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// loadConfiguration reads the configuration file, when given, and
// applies the command line overrides on top of it.
func loadConfiguration(c *cli.Context) (*clasp.Configuration, error) {
	conf := clasp.DefaultConfiguration()
	if fn := c.String(configFlag); fn != "" {
		var err error
		if conf, err = clasp.LoadConfiguration(fn); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	if c.IsSet(numWorkersFlag) {
		conf.NumWorkers = c.Int(numWorkersFlag)
	}
	if c.IsSet(servicePortFlag) {
		conf.Service.Port = c.Int(servicePortFlag)
	}
	if c.Bool(profileFlag) {
		conf.IncludeProfiles = true
	}

	conf.Segmentation = segmentationOptions(c, conf.Segmentation)

	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "problem setting up configuration")
	}

	return conf, nil
}

func segmentationOptions(c *cli.Context, opts segmentation.Options) segmentation.Options {
	if c.IsSet(periodLengthFlag) {
		opts.PeriodLength = c.Int(periodLengthFlag)
	}
	if c.IsSet(changePointsFlag) {
		opts.NChangePoints = c.Int(changePointsFlag)
	}
	if c.IsSet(exclusionFactorFlag) {
		opts.ExclusionFactor = c.Float64(exclusionFactorFlag)
	}
	if c.IsSet(thresholdFlag) {
		opts.AcceptanceThreshold = c.Float64(thresholdFlag)
	}
	if c.IsSet(permutationsFlag) {
		opts.Permutations = c.Int(permutationsFlag)
	}
	if c.IsSet(significanceFlag) {
		opts.SignificanceLevel = c.Float64(significanceFlag)
	}
	if c.IsSet(seedFlag) {
		opts.Seed = c.Int64(seedFlag)
	}
	if c.IsSet(minWindowFlag) {
		opts.MinWindow = c.Int(minWindowFlag)
	}
	if c.Bool(detrendFlag) {
		opts.Detrend = true
	}
	if c.Bool(denseFlag) {
		opts.Format = segmentation.FormatDense
	}

	return opts
}

func readOptions(c *cli.Context) model.SeriesReadOptions {
	return model.SeriesReadOptions{
		Format:     model.InputFormat(c.String(inputFormatFlag)),
		Name:       c.String(seriesNameFlag),
		Metric:     c.String(metricFlag),
		Cumulative: c.Bool(cumulativeFlag),
	}
}

// writeOutput writes data to the output flag's path, or to the app's
// writer when the flag is unset.
func writeOutput(c *cli.Context, data interface{}) error {
	format := c.String(outputFormatFlag)
	if fn := c.String(outputFlagName); fn != "" {
		return errors.Wrapf(util.WriteFile(fn, format, data), "problem writing '%s'", fn)
	}

	return errors.WithStack(util.Print(c.App.Writer, format, data))
}

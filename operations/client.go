package operations

import (
	"context"

	"github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/rest"
	restmodel "github.com/evergreen-ci/clasp/rest/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const (
	clientHostFlag  = "host"
	clientAsyncFlag = "async"
	resultIDFlag    = "id"
)

// Client returns the command group that talks to a running clasp
// service.
func Client() cli.Command {
	return cli.Command{
		Name:  "client",
		Usage: "run a simple clasp client",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  clientHostFlag,
				Usage: "host for the remote clasp instance.",
				Value: "http://localhost",
			},
			cli.IntFlag{
				Name:  servicePortFlag,
				Usage: "port for the remote clasp service.",
				Value: 3000,
			},
		},
		Subcommands: []cli.Command{
			printStatus(),
			remoteSegment(),
			getSegmentation(),
		},
	}
}

func newClient(c *cli.Context) (*rest.Client, error) {
	client, err := rest.NewClient(rest.ClientOptions{
		Host:   c.Parent().String(clientHostFlag),
		Port:   c.Parent().Int(servicePortFlag),
		Prefix: "rest",
	})
	return client, errors.Wrap(err, "problem creating REST client")
}

func printStatus() cli.Command {
	return cli.Command{
		Name:  "status",
		Usage: "prints the status of the service",
		Flags: addOutputFlags(),
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}

			status, err := client.GetStatus(context.Background())
			if err != nil {
				return errors.WithStack(err)
			}

			return writeOutput(c, status)
		},
	}
}

func remoteSegment() cli.Command {
	return cli.Command{
		Name:   "segment",
		Usage:  "segment a series file on the service",
		Flags:  mergeFlags(addPathFlag(), inputFlags(), addOutputFlags(), remoteSegmentationFlags()),
		Before: setFlagOrFirstPositional(pathFlagName),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			client, err := newClient(c)
			if err != nil {
				return err
			}

			series, err := model.ReadSeriesFile(ctx, c.String(pathFlagName), readOptions(c))
			if err != nil {
				return errors.WithStack(err)
			}

			req := restmodel.SegmentRequest{
				Name:           series.Name,
				Values:         series.Values,
				Options:        remoteOptions(c),
				IncludeProfile: c.Bool(profileFlag),
			}

			if c.Bool(clientAsyncFlag) {
				job, err := client.SegmentAsync(ctx, req)
				if err != nil {
					return errors.WithStack(err)
				}
				return writeOutput(c, job)
			}

			result, err := client.Segment(ctx, req)
			if err != nil {
				return errors.WithStack(err)
			}

			return writeOutput(c, result)
		},
	}
}

func getSegmentation() cli.Command {
	return cli.Command{
		Name:   "get",
		Usage:  "fetch a segmentation result by id",
		Flags:  addOutputFlags(cli.StringFlag{Name: resultIDFlag, Usage: "id of the result"}),
		Before: setFlagOrFirstPositional(resultIDFlag),
		Action: func(c *cli.Context) error {
			client, err := newClient(c)
			if err != nil {
				return err
			}

			result, err := client.GetSegmentation(context.Background(), c.String(resultIDFlag))
			if err != nil {
				return errors.WithStack(err)
			}

			return writeOutput(c, result)
		},
	}
}

// remoteSegmentationFlags are the segmentation flags that can override
// the defaults of the service.
func remoteSegmentationFlags() []cli.Flag {
	return append(segmentationFlags(), cli.BoolFlag{
		Name:  clientAsyncFlag,
		Usage: "queue the segmentation and print its id instead of waiting",
	})
}

// remoteOptions forwards only the flags that were set so the service
// keeps its own defaults for the rest.
func remoteOptions(c *cli.Context) *restmodel.APISegmentationOptions {
	opts := &restmodel.APISegmentationOptions{}
	if c.IsSet(periodLengthFlag) {
		v := c.Int(periodLengthFlag)
		opts.PeriodLength = &v
	}
	if c.IsSet(changePointsFlag) {
		v := c.Int(changePointsFlag)
		opts.NChangePoints = &v
	}
	if c.IsSet(exclusionFactorFlag) {
		v := c.Float64(exclusionFactorFlag)
		opts.ExclusionFactor = &v
	}
	if c.IsSet(thresholdFlag) {
		v := c.Float64(thresholdFlag)
		opts.AcceptanceThreshold = &v
	}
	if c.IsSet(permutationsFlag) {
		v := c.Int(permutationsFlag)
		opts.Permutations = &v
	}
	if c.IsSet(significanceFlag) {
		v := c.Float64(significanceFlag)
		opts.SignificanceLevel = &v
	}
	if c.IsSet(seedFlag) {
		v := c.Int64(seedFlag)
		opts.Seed = &v
	}
	if c.IsSet(minWindowFlag) {
		v := c.Int(minWindowFlag)
		opts.MinWindow = &v
	}
	if c.Bool(detrendFlag) {
		v := true
		opts.Detrend = &v
	}
	if c.Bool(denseFlag) {
		v := string(segmentation.FormatDense)
		opts.Format = &v
	}

	return opts
}

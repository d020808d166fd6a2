package operations

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

////////////////////////////////////////////////////////////////////////
//
// Flag Name Constants

const (
	configFlag       = "config"
	pathFlagName     = "path"
	outputFlagName   = "output"
	outputFormatFlag = "outputFormat"

	inputFormatFlag = "format"
	seriesNameFlag  = "name"
	metricFlag      = "metric"
	cumulativeFlag  = "cumulative"

	periodLengthFlag    = "window"
	changePointsFlag    = "changePoints"
	exclusionFactorFlag = "exclusion"
	thresholdFlag       = "threshold"
	permutationsFlag    = "permutations"
	significanceFlag    = "significance"
	seedFlag            = "seed"
	denseFlag           = "dense"
	detrendFlag         = "detrend"
	minWindowFlag       = "minWindow"
	profileFlag         = "profile"

	numWorkersFlag  = "workers"
	servicePortFlag = "port"

	configFileEnv = "CLASP_CONFIG_FILE"
)

////////////////////////////////////////////////////////////////////////
//
// Utility Functions

func joinFlagNames(ids ...string) string { return strings.Join(ids, ", ") }

func mergeFlags(in ...[]cli.Flag) []cli.Flag {
	out := []cli.Flag{}

	for idx := range in {
		out = append(out, in[idx]...)
	}

	return out
}

func setFlagOrFirstPositional(name string) cli.BeforeFunc {
	return func(c *cli.Context) error {
		val := c.String(name)
		if val == "" {
			if c.NArg() != 1 {
				return errors.Errorf("must specify exactly one positional argument for '%s'", name)
			}

			val = c.Args().Get(0)
		}

		return c.Set(name, val)
	}
}

////////////////////////////////////////////////////////////////////////
//
// Flag Groups

func addPathFlag(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:  joinFlagNames(pathFlagName, "filename", "file", "f"),
		Usage: "path to the series file",
	})
}

func addOutputFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  joinFlagNames(outputFlagName, "o"),
			Usage: "write the result to this path instead of standard output",
		},
		cli.StringFlag{
			Name:  outputFormatFlag,
			Usage: "encoding of the result: json or yaml",
			Value: "json",
		})
}

func inputFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.StringFlag{
			Name:  inputFormatFlag,
			Usage: "input format (json, yaml, csv, ftdc); inferred from the file extension by default",
		},
		cli.StringFlag{
			Name:  seriesNameFlag,
			Usage: "override the name of the series",
		},
		cli.StringFlag{
			Name:  metricFlag,
			Usage: "name of the metric to read from ftdc input",
		},
		cli.BoolFlag{
			Name:  cumulativeFlag,
			Usage: "use the deltas of a cumulative ftdc metric",
		})
}

func segmentationFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags,
		cli.IntFlag{
			Name:  joinFlagNames(periodLengthFlag, "w"),
			Usage: "window length; estimated from the dominant frequency when unset",
		},
		cli.IntFlag{
			Name:  joinFlagNames(changePointsFlag, "k"),
			Usage: "maximum number of change points",
			Value: 1,
		},
		cli.Float64Flag{
			Name:  exclusionFactorFlag,
			Usage: "exclusion radius as a multiple of the window length",
		},
		cli.Float64Flag{
			Name:  thresholdFlag,
			Usage: "minimum score a change point must exceed",
		},
		cli.IntFlag{
			Name:  permutationsFlag,
			Usage: "shuffled copies a split must beat before it is accepted, 0 disables the test",
		},
		cli.Float64Flag{
			Name:  significanceFlag,
			Usage: "largest permutation p-value at which a split is accepted",
		},
		cli.Int64Flag{
			Name:  seedFlag,
			Usage: "seed for the cross-validation folds and the permutations",
		},
		cli.IntFlag{
			Name:  minWindowFlag,
			Usage: "lower bound of the estimated window length",
		},
		cli.BoolFlag{
			Name:  detrendFlag,
			Usage: "remove the rolling median before estimating the window length",
		},
		cli.BoolFlag{
			Name:  denseFlag,
			Usage: "report a segment label per sample instead of change point indexes",
		},
		cli.BoolFlag{
			Name:  profileFlag,
			Usage: "include the whole-sequence score profile in the result",
		})
}

func baseFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.StringFlag{
		Name:   configFlag,
		Usage:  "path to a yaml configuration file",
		EnvVar: configFileEnv,
	})
}

func queueFlags(flags ...cli.Flag) []cli.Flag {
	return append(flags, cli.IntFlag{
		Name:  numWorkersFlag,
		Usage: "specify the number of worker jobs this process will have",
	})
}

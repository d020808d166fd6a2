package operations

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Config groups the commands that inspect the application
// configuration.
func Config() cli.Command {
	return cli.Command{
		Name:  "conf",
		Usage: "clasp application configuration",
		Subcommands: []cli.Command{
			dumpConfig(),
		},
	}
}

func dumpConfig() cli.Command {
	return cli.Command{
		Name:  "dump",
		Usage: "write the effective configuration, after defaults and flags, as yaml or json",
		Flags: mergeFlags(baseFlags(), queueFlags(), segmentationFlags(),
			[]cli.Flag{
				cli.StringFlag{
					Name:  joinFlagNames(outputFlagName, "o"),
					Usage: "write the configuration to this path instead of standard output",
				},
				cli.StringFlag{
					Name:  outputFormatFlag,
					Usage: "encoding of the configuration: yaml or json",
					Value: "yaml",
				},
				cli.IntFlag{
					Name:  servicePortFlag,
					Usage: "service port",
				},
			}),
		Action: func(c *cli.Context) error {
			conf, err := loadConfiguration(c)
			if err != nil {
				return errors.WithStack(err)
			}

			return writeOutput(c, conf)
		},
	}
}

package main

import (
	"os"

	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/operations"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

func main() {
	app := buildApp()
	err := app.Run(os.Args)
	grip.CatchEmergencyFatal(err)
}

func buildApp() *cli.App {
	app := cli.NewApp()

	app.Name = "clasp"
	app.Usage = "time series segmentation with classification score profiles"
	app.Version = "0.1.0"
	if clasp.BuildRevision != "" {
		app.Version += "-" + clasp.BuildRevision
	}

	app.Commands = []cli.Command{
		operations.Segment(),
		operations.Batch(),
		operations.Service(),
		operations.Client(),
		operations.Config(),
	}

	// These are global options. Use this to configure logging or
	// other options independent from specific sub commands.
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "level",
			Value: "info",
			Usage: "Specify lowest visible loglevel as string: 'emergency|alert|critical|error|warning|notice|info|debug'",
		},
	}

	app.Before = func(c *cli.Context) error {
		return errors.WithStack(loggingSetup(app.Name, c.String("level")))
	}

	return app
}

// logging setup is separate to make it unit testable
func loggingSetup(name, logLevel string) error {
	lvl := level.FromString(logLevel)
	if !lvl.IsValid() {
		return errors.Errorf("invalid log level '%s'", logLevel)
	}

	sender := grip.GetSender()
	sender.SetName(name)

	threshold := sender.Level()
	threshold.Threshold = lvl
	return errors.WithStack(sender.SetLevel(threshold))
}

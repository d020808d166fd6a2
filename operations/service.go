package operations

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/rest"
	"github.com/mongodb/grip"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Service returns the ./clasp service sub-command object, which is
// responsible for starting the REST API.
func Service() cli.Command {
	return cli.Command{
		Name:  "service",
		Usage: "run the clasp api service",
		Flags: mergeFlags(baseFlags(), queueFlags(), segmentationFlags(),
			[]cli.Flag{
				cli.IntFlag{
					Name:   joinFlagNames(servicePortFlag, "p"),
					Usage:  "specify a port to run the service on",
					EnvVar: "CLASP_SERVICE_PORT",
				},
			}),
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			conf, err := loadConfiguration(c)
			if err != nil {
				return errors.WithStack(err)
			}

			env := clasp.GetEnvironment()
			if err = env.Configure(conf); err != nil {
				return errors.WithStack(err)
			}

			service := &rest.Service{
				Environment: env,
				Port:        conf.Service.Port,
				Prefix:      "rest",
			}

			if err = service.Validate(); err != nil {
				return errors.Wrap(err, "problem validating service")
			}

			grip.Noticef("starting clasp service on :%d", service.Port)
			if err = service.Start(ctx); err != nil {
				return errors.Wrap(err, "problem running service")
			}

			grip.Info("completed service, terminating.")
			return nil
		},
	}
}

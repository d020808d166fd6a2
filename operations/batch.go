package operations

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/units"
	"github.com/mongodb/amboy"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

const outputDirFlag = "outputDir"

// Batch returns the command that segments every series file given as
// an argument on a local queue, writing one result file per input.
func Batch() cli.Command {
	return cli.Command{
		Name:      "batch",
		Usage:     "segment many series files in parallel",
		ArgsUsage: "<path> [<path>...]",
		Flags: mergeFlags(baseFlags(), queueFlags(), inputFlags(), segmentationFlags(),
			[]cli.Flag{
				cli.StringFlag{
					Name:  joinFlagNames(outputDirFlag, "d"),
					Usage: "directory for the result files",
					Value: ".",
				},
				cli.StringFlag{
					Name:  outputFormatFlag,
					Usage: "encoding of the results: json or yaml",
					Value: "json",
				},
			}),
		Action: func(c *cli.Context) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			paths := c.Args()
			if len(paths) == 0 {
				return errors.New("must specify at least one series file")
			}

			conf, err := loadConfiguration(c)
			if err != nil {
				return errors.WithStack(err)
			}

			outputDir := c.String(outputDirFlag)
			if err = os.MkdirAll(outputDir, 0755); err != nil {
				return errors.Wrapf(err, "problem creating output directory '%s'", outputDir)
			}

			env := clasp.GetEnvironment()
			if err = env.Configure(conf); err != nil {
				return errors.WithStack(err)
			}

			return errors.WithStack(runBatch(ctx, env, paths, batchOptions{
				read:      readOptions(c),
				outputDir: outputDir,
				format:    c.String(outputFormatFlag),
			}))
		},
	}
}

type batchOptions struct {
	read      model.SeriesReadOptions
	outputDir string
	format    string
}

// runBatch queues one job per path, waits for all of them and reports
// the ones that failed.
func runBatch(ctx context.Context, env clasp.Environment, paths []string, opts batchOptions) error {
	conf, err := env.GetConf()
	if err != nil {
		return errors.WithStack(err)
	}

	q, err := env.GetQueue()
	if err != nil {
		return errors.WithStack(err)
	}

	if err = q.Start(ctx); err != nil {
		return errors.Wrap(err, "problem starting queue")
	}

	ids := batchIDs(paths)
	for i, path := range paths {
		output := filepath.Join(opts.outputDir, fmt.Sprintf("%s.%s", ids[i], opts.format))
		j := units.NewSegmentFileJob(ids[i], path, opts.read, output, opts.format, conf.SegmentationOptions())
		j.IncludeProfile = conf.IncludeProfiles
		if err = q.Put(ctx, j); err != nil {
			return errors.Wrapf(err, "problem queueing '%s'", path)
		}
	}

	start := time.Now()
	if !amboy.WaitInterval(ctx, q, 100*time.Millisecond) {
		return errors.New("batch did not complete")
	}

	cache, err := env.GetCache()
	if err != nil {
		return errors.WithStack(err)
	}

	catcher := grip.NewBasicCatcher()
	for i, path := range paths {
		value, ok := cache.Get(clasp.ResultKey(ids[i]))
		if !ok {
			catcher.Errorf("no result for '%s'", path)
			continue
		}
		if record, ok := value.(model.Segmentation); ok && record.Status == model.SegmentationFailed {
			catcher.Errorf("segmenting '%s': %s", path, record.Error)
		}
	}

	grip.Info(message.Fields{
		"message": "batch complete",
		"files":   len(paths),
		"failed":  catcher.Len(),
		"output":  opts.outputDir,
		"elapsed": time.Since(start).String(),
	})

	return catcher.Resolve()
}

// batchIDs names results after their input files, adding the position
// of the file when two inputs share a name.
func batchIDs(paths []string) []string {
	seen := map[string]bool{}
	out := make([]string, len(paths))
	for i, path := range paths {
		id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if seen[id] {
			id = fmt.Sprintf("%s-%d", id, i)
		}
		seen[id] = true
		out[i] = id
	}
	return out
}

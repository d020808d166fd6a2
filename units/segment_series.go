package units

import (
	"context"
	"fmt"

	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/evergreen-ci/clasp/util"
	"github.com/evergreen-ci/utility"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const segmentSeriesJobName = "segment-series"

// SegmentSeriesJob segments one series and stores the result in the
// environment's cache under clasp.ResultKey(ResultID). The series is
// either carried by the job or read from InputPath when it runs; the
// result is also written to OutputPath when set.
type SegmentSeriesJob struct {
	ResultID       string                   `bson:"result_id" json:"result_id" yaml:"result_id"`
	Series         model.Series             `bson:"series" json:"series" yaml:"series"`
	InputPath      string                   `bson:"input_path" json:"input_path" yaml:"input_path"`
	Input          model.SeriesReadOptions  `bson:"input" json:"input" yaml:"input"`
	OutputPath     string                   `bson:"output_path" json:"output_path" yaml:"output_path"`
	OutputFormat   string                   `bson:"output_format" json:"output_format" yaml:"output_format"`
	Options        segmentation.Options     `bson:"options" json:"options" yaml:"options"`
	IncludeProfile bool                     `bson:"include_profile" json:"include_profile" yaml:"include_profile"`
	*job.Base      `bson:"metadata" json:"metadata" yaml:"metadata"`

	env clasp.Environment
}

func init() {
	registry.AddJobType(segmentSeriesJobName, func() amboy.Job { return makeSegmentSeriesJob() })
}

func makeSegmentSeriesJob() *SegmentSeriesJob {
	j := &SegmentSeriesJob{
		Base: &job.Base{
			JobType: amboy.JobType{
				Name:    segmentSeriesJobName,
				Version: 1,
			},
		},
	}
	j.SetDependency(dependency.NewAlways())
	return j
}

// NewSegmentSeriesJob segments a series held in memory. An empty id is
// replaced by a random one.
func NewSegmentSeriesJob(id string, series model.Series, opts segmentation.Options, includeProfile bool) *SegmentSeriesJob {
	j := makeSegmentSeriesJob()
	j.setResultID(id)
	j.Series = series
	j.Options = opts
	j.IncludeProfile = includeProfile
	return j
}

// NewSegmentFileJob segments the series stored in a file and writes the
// result next to it, to output, in the given format.
func NewSegmentFileJob(id, input string, read model.SeriesReadOptions, output, format string, opts segmentation.Options) *SegmentSeriesJob {
	j := makeSegmentSeriesJob()
	j.setResultID(id)
	j.InputPath = input
	j.Input = read
	j.OutputPath = output
	j.OutputFormat = format
	j.Options = opts
	return j
}

func (j *SegmentSeriesJob) setResultID(id string) {
	if id == "" {
		id = utility.RandomString()
	}
	j.ResultID = id
	j.SetID(fmt.Sprintf("%s.%s", j.JobType.Name, id))
}

func (j *SegmentSeriesJob) fields(msg string) message.Fields {
	return message.Fields{
		"message":   msg,
		"job":       j.ID(),
		"result_id": j.ResultID,
		"series":    j.Series.Name,
		"input":     j.InputPath,
		"length":    len(j.Series.Values),
	}
}

func (j *SegmentSeriesJob) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = clasp.GetEnvironment()
	}

	cache, err := j.env.GetCache()
	if err != nil {
		j.AddError(errors.Wrap(err, "problem getting result cache"))
		return
	}

	record, err := j.segment(ctx)
	if err != nil {
		j.AddError(err)
		grip.Warning(message.WrapError(err, j.fields("segmentation failed")))
		cache.Put(clasp.ResultKey(j.ResultID), model.FailedSegmentation(j.ResultID, j.Series.Name, len(j.Series.Values), err))
		return
	}

	cache.Put(clasp.ResultKey(j.ResultID), record)

	if j.OutputPath != "" {
		if err = util.WriteFile(j.OutputPath, j.OutputFormat, record); err != nil {
			j.AddError(errors.Wrapf(err, "problem writing result to '%s'", j.OutputPath))
			return
		}
	}

	grip.Info(j.fields("segmented series"))
}

func (j *SegmentSeriesJob) segment(ctx context.Context) (model.Segmentation, error) {
	if j.InputPath != "" {
		series, err := model.ReadSeriesFile(ctx, j.InputPath, j.Input)
		if err != nil {
			return model.Segmentation{}, errors.WithStack(err)
		}
		j.Series = *series
	}

	if err := j.Series.Validate(); err != nil {
		return model.Segmentation{}, errors.WithStack(err)
	}

	segmenter, err := segmentation.NewSegmenter(j.Options)
	if err != nil {
		return model.Segmentation{}, errors.WithStack(err)
	}

	result, err := segmenter.Segment(ctx, j.Series.Values)
	if err != nil {
		return model.Segmentation{}, errors.Wrapf(err, "problem segmenting series '%s'", j.Series.Name)
	}

	return model.CreateSegmentation(j.ResultID, j.Series.Name, result, j.IncludeProfile), nil
}

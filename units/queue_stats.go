package units

import (
	"context"
	"fmt"

	"github.com/evergreen-ci/clasp"
	"github.com/mongodb/amboy"
	"github.com/mongodb/amboy/dependency"
	"github.com/mongodb/amboy/job"
	"github.com/mongodb/amboy/registry"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
)

const queueStatsCollectorJobName = "queue-stats-collector"

func init() {
	registry.AddJobType(queueStatsCollectorJobName,
		func() amboy.Job { return makeQueueStatsCollector() })
}

type queueStatsCollector struct {
	job.Base `bson:"job_base" json:"job_base" yaml:"job_base"`
	env      clasp.Environment
}

// NewQueueStatsCollector logs the statistics of the environment's queue
// and the size of its result cache.
func NewQueueStatsCollector(env clasp.Environment, id string) amboy.Job {
	j := makeQueueStatsCollector()
	j.env = env
	j.SetID(fmt.Sprintf("%s-%s", queueStatsCollectorJobName, id))
	return j
}

func makeQueueStatsCollector() *queueStatsCollector {
	j := &queueStatsCollector{
		Base: job.Base{
			JobType: amboy.JobType{
				Name:    queueStatsCollectorJobName,
				Version: 0,
			},
		},
	}

	j.SetDependency(dependency.NewAlways())
	return j
}

func (j *queueStatsCollector) Run(ctx context.Context) {
	defer j.MarkComplete()

	if j.env == nil {
		j.env = clasp.GetEnvironment()
	}

	q, err := j.env.GetQueue()
	if err != nil {
		j.AddError(err)
		return
	}

	msg := message.Fields{
		"message": "queue stats",
		"stats":   q.Stats(ctx),
	}

	if cache, err := j.env.GetCache(); err == nil {
		msg["cached_results"] = cache.Len()
	}

	grip.InfoWhen(q.Info().Started, msg)
}

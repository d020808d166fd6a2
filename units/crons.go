package units

import (
	"context"
	"time"

	"github.com/evergreen-ci/clasp"
	"github.com/mongodb/amboy"
	"github.com/mongodb/grip"
	"github.com/mongodb/grip/message"
	"github.com/pkg/errors"
)

const tsFormat = "2006-01-02.15-04-05"

// StartCrons queues a queue stats collector on the environment's queue
// every interval until ctx is canceled. The queue must be started.
func StartCrons(ctx context.Context, env clasp.Environment, interval time.Duration) error {
	q, err := env.GetQueue()
	if err != nil {
		return errors.WithStack(err)
	}

	opts := amboy.QueueOperationConfig{
		ContinueOnError: true,
		LogErrors:       true,
	}

	grip.Info(message.Fields{
		"message":  "starting background cron jobs",
		"interval": interval.String(),
		"started":  q.Info().Started,
	})

	amboy.IntervalQueueOperation(ctx, q, interval, time.Now(), opts, func(ctx context.Context, queue amboy.Queue) error {
		ts := time.Now().UTC().Format(tsFormat)
		return queue.Put(ctx, NewQueueStatsCollector(env, ts))
	})

	return nil
}

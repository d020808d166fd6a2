package units

import (
	"context"
	"testing"
	"time"

	"github.com/evergreen-ci/utility"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueStatsCollector(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("Run", func(t *testing.T) {
		j := NewQueueStatsCollector(testEnv(t), "one")
		assert.Equal(t, queueStatsCollectorJobName+"-one", j.ID())

		j.Run(ctx)
		assert.NoError(t, j.Error())
		assert.True(t, j.Status().Completed)
	})
	t.Run("Crons", func(t *testing.T) {
		env := testEnv(t)
		q, err := env.GetQueue()
		require.NoError(t, err)
		require.NoError(t, q.Start(ctx))

		cronCtx, cronCancel := context.WithCancel(ctx)
		defer cronCancel()
		require.NoError(t, StartCrons(cronCtx, env, 10*time.Millisecond))

		assert.NoError(t, utility.Retry(ctx, func() (bool, error) {
			if q.Stats(ctx).Completed == 0 {
				return true, errors.New("no stats collected")
			}
			return false, nil
		}, utility.RetryOptions{MaxAttempts: 20}))
	})
}

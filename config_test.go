package clasp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration(t *testing.T) {
	t.Run("DefaultsAreValid", func(t *testing.T) {
		conf := DefaultConfiguration()
		require.NoError(t, conf.Validate())
		assert.Equal(t, defaultServicePort, conf.Service.Port)
		assert.Equal(t, segmentation.FormatSparse, conf.SegmentationOptions().Format)
	})
	t.Run("FillsDefaults", func(t *testing.T) {
		conf := &Configuration{NumWorkers: 1, Segmentation: segmentation.Options{NChangePoints: 2}}
		require.NoError(t, conf.Validate())
		assert.Equal(t, defaultQueueSize, conf.QueueSize)
		assert.Equal(t, defaultMaxCachedResults, conf.MaxCachedResults)
		assert.Equal(t, segmentation.DefaultFolds, conf.Segmentation.Folds)
	})
	t.Run("Invalid", func(t *testing.T) {
		for name, conf := range map[string]*Configuration{
			"Workers":      {Segmentation: segmentation.DefaultOptions()},
			"Port":         {NumWorkers: 1, Service: ServiceConfig{Port: 70000}, Segmentation: segmentation.DefaultOptions()},
			"SeriesLength": {NumWorkers: 1, Service: ServiceConfig{MaxSeriesLength: -1}, Segmentation: segmentation.DefaultOptions()},
			"Segmentation": {NumWorkers: 1},
		} {
			t.Run(name, func(t *testing.T) {
				assert.Error(t, conf.Validate())
			})
		}
	})
	t.Run("Load", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "clasp.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
num_workers: 3
service:
  port: 8080
segmentation:
  n_change_points: 4
  format: dense
  period_length: 12
`), 0644))

		conf, err := LoadConfiguration(path)
		require.NoError(t, err)
		assert.Equal(t, 3, conf.NumWorkers)
		assert.Equal(t, 8080, conf.Service.Port)
		assert.Equal(t, defaultQueueSize, conf.QueueSize)
		assert.Equal(t, 4, conf.Segmentation.NChangePoints)
		assert.Equal(t, 12, conf.Segmentation.PeriodLength)
		assert.Equal(t, segmentation.FormatDense, conf.Segmentation.Format)
		assert.Equal(t, segmentation.DefaultExclusionFactor, conf.Segmentation.ExclusionFactor)
	})
	t.Run("LoadInvalid", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "clasp.yaml")
		require.NoError(t, os.WriteFile(path, []byte("segmentation:\n  n_change_points: -1\n"), 0644))

		_, err := LoadConfiguration(path)
		assert.Error(t, err)

		_, err = LoadConfiguration(filepath.Join(dir, "missing.yaml"))
		assert.Error(t, err)
	})
}

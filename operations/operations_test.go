package operations

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/evergreen-ci/clasp"
	"github.com/evergreen-ci/clasp/model"
	"github.com/evergreen-ci/clasp/segmentation"
	"github.com/evergreen-ci/clasp/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli"
	yaml "gopkg.in/yaml.v2"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := &bytes.Buffer{}
	app := cli.NewApp()
	app.Name = "clasp"
	app.Writer = buf
	app.ErrWriter = buf
	app.Commands = []cli.Command{Segment(), Batch(), Config(), Client()}

	err := app.Run(append([]string{"clasp"}, args...))
	return buf.String(), err
}

func writeSeries(t *testing.T, dir, name string, values ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(values, "\n")+"\n"), 0644))
	return path
}

func writeTinyStep(t *testing.T, dir, name string) string {
	return writeSeries(t, dir, name, "value", "0", "0", "0", "0", "0", "1", "1", "1", "1", "1")
}

func TestSegmentCommand(t *testing.T) {
	dir := t.TempDir()
	path := writeTinyStep(t, dir, "step.csv")

	t.Run("Stdout", func(t *testing.T) {
		out, err := runApp(t, "segment", "--window", "2", "--exclusion", "1", path)
		require.NoError(t, err)

		record := model.Segmentation{}
		require.NoError(t, json.Unmarshal([]byte(out), &record))
		assert.Equal(t, "value", record.Series)
		assert.Equal(t, model.SegmentationComplete, record.Status)
		assert.Equal(t, []int{5}, record.ChangePoints)
		assert.Equal(t, []float64{1.0}, record.Scores)
		assert.Nil(t, record.Profile)
	})
	t.Run("PathFlag", func(t *testing.T) {
		out, err := runApp(t, "segment", "-w", "2", "--exclusion", "1", "--name", "renamed", "--path", path)
		require.NoError(t, err)

		record := model.Segmentation{}
		require.NoError(t, json.Unmarshal([]byte(out), &record))
		assert.Equal(t, "renamed", record.Series)
	})
	t.Run("DenseYAMLFile", func(t *testing.T) {
		output := filepath.Join(dir, "out.yaml")
		_, err := runApp(t, "segment", "--window", "2", "--exclusion", "1", "--dense", "--profile",
			"--output", output, "--outputFormat", "yaml", path)
		require.NoError(t, err)

		record := model.Segmentation{}
		require.NoError(t, util.ReadFileYAML(output, &record))
		assert.Equal(t, segmentation.FormatDense, record.Format)
		assert.Equal(t, []int{0, 0, 0, 0, 0, 1, 1, 1, 1, 1}, record.Output)
		assert.Len(t, record.Profile, 10)
	})
	t.Run("ConfigFile", func(t *testing.T) {
		conf := filepath.Join(dir, "clasp.yaml")
		require.NoError(t, os.WriteFile(conf, []byte("segmentation:\n  period_length: 2\n  exclusion_factor: 1\n"), 0644))

		out, err := runApp(t, "segment", "--config", conf, path)
		require.NoError(t, err)

		record := model.Segmentation{}
		require.NoError(t, json.Unmarshal([]byte(out), &record))
		assert.Equal(t, 2, record.WindowLength)
		assert.Equal(t, []int{5}, record.ChangePoints)
	})
	t.Run("MissingPath", func(t *testing.T) {
		_, err := runApp(t, "segment", "--window", "2")
		assert.Error(t, err)
	})
	t.Run("TooShort", func(t *testing.T) {
		short := writeSeries(t, dir, "short.csv", "1", "2", "3")
		_, err := runApp(t, "segment", "--window", "2", short)
		assert.Error(t, err)
	})
	t.Run("InvalidBudget", func(t *testing.T) {
		_, err := runApp(t, "segment", "--window", "2", "--changePoints", "0", path)
		assert.Error(t, err)
	})
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "results")

	t.Run("AllSucceed", func(t *testing.T) {
		first := writeTinyStep(t, dir, "first.csv")
		second := writeTinyStep(t, dir, "second.csv")

		_, err := runApp(t, "batch", "--workers", "2", "--window", "2", "--exclusion", "1", "--outputDir", outputDir, first, second)
		require.NoError(t, err)

		for _, name := range []string{"first", "second"} {
			data, err := os.ReadFile(filepath.Join(outputDir, name+".json"))
			require.NoError(t, err)
			record := model.Segmentation{}
			require.NoError(t, json.Unmarshal(data, &record))
			assert.Equal(t, name, record.ID)
			assert.Equal(t, []int{5}, record.ChangePoints)
		}
	})
	t.Run("ReportsFailures", func(t *testing.T) {
		good := writeTinyStep(t, dir, "good.csv")
		bad := writeSeries(t, dir, "bad.csv", "1", "2", "3")

		_, err := runApp(t, "batch", "--window", "2", "--exclusion", "1", "--outputDir", outputDir, good, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.csv")
		assert.True(t, util.FileExists(filepath.Join(outputDir, "good.json")))
		assert.False(t, util.FileExists(filepath.Join(outputDir, "bad.json")))
	})
	t.Run("NoFiles", func(t *testing.T) {
		_, err := runApp(t, "batch")
		assert.Error(t, err)
	})
}

func TestBatchIDs(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "a-2"}, batchIDs([]string{"x/a.csv", "b.json", "y/a.csv"}))
}

func TestConfigDump(t *testing.T) {
	out, err := runApp(t, "conf", "dump", "--window", "7", "--workers", "3", "--port", "8080", "--dense")
	require.NoError(t, err)

	conf := clasp.Configuration{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &conf))
	assert.Equal(t, 3, conf.NumWorkers)
	assert.Equal(t, 8080, conf.Service.Port)
	assert.Equal(t, 7, conf.Segmentation.PeriodLength)
	assert.Equal(t, segmentation.FormatDense, conf.Segmentation.Format)
	assert.Equal(t, segmentation.DefaultFolds, conf.Segmentation.Folds)
}

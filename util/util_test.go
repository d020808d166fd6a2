package util

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name   string `json:"name" yaml:"name"`
	Points []int  `json:"points" yaml:"points"`
}

func TestReadFileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: foo\npoints: [1, 2]\n"), 0644))

	out := record{}
	require.NoError(t, ReadFileYAML(path, &out))
	assert.Equal(t, record{Name: "foo", Points: []int{1, 2}}, out)

	assert.Error(t, ReadFileYAML(filepath.Join(dir, "missing.yaml"), &out))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("name: [unterminated"), 0644))
	assert.Error(t, ReadFileYAML(bad, &out))
}

func TestFileExists(t *testing.T) {
	assert.False(t, FileExists(""))
	assert.False(t, FileExists(filepath.Join(t.TempDir(), "nope")))
	assert.True(t, FileExists(t.TempDir()))
}

func TestOutput(t *testing.T) {
	data := record{Name: "foo", Points: []int{3}}

	t.Run("JSON", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, Print(buf, OutputJSON, data))
		assert.Contains(t, buf.String(), `"name": "foo"`)
		assert.Equal(t, byte('\n'), buf.Bytes()[buf.Len()-1])
	})
	t.Run("YAML", func(t *testing.T) {
		buf := &bytes.Buffer{}
		require.NoError(t, Print(buf, "YAML", data))
		assert.Equal(t, "name: foo\npoints:\n- 3\n", buf.String())
	})
	t.Run("Unknown", func(t *testing.T) {
		assert.Error(t, Print(&bytes.Buffer{}, "xml", data))
	})
	t.Run("File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.json")
		require.NoError(t, WriteFile(path, OutputJSON, data))

		out := record{}
		require.NoError(t, ReadFileYAML(path, &out))
		assert.Equal(t, data, out)
	})
}

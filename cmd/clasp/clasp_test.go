package main

import (
	"testing"

	"github.com/mongodb/grip"
	"github.com/mongodb/grip/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildApp(t *testing.T) {
	app := buildApp()
	require.NotNil(t, app)
	assert.Equal(t, "clasp", app.Name)

	names := []string{}
	for _, cmd := range app.Commands {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"segment", "batch", "service", "client", "conf"}, names)
}

func TestLoggingSetup(t *testing.T) {
	original := grip.GetSender().Level()
	defer func() { assert.NoError(t, grip.GetSender().SetLevel(original)) }()

	require.NoError(t, loggingSetup("clasp.testing", "debug"))
	assert.Equal(t, level.Debug, grip.GetSender().Level().Threshold)
	assert.Equal(t, "clasp.testing", grip.GetSender().Name())

	require.NoError(t, loggingSetup("clasp.testing", "warning"))
	assert.Equal(t, level.Warning, grip.GetSender().Level().Threshold)

	assert.Error(t, loggingSetup("clasp.testing", "loud"))
}

package cmd

import (
	"testing"

	"swiftscope/internal/config"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initTestConfig loads the package configuration from defaults so
// command handlers can run without a config file.
func initTestConfig(t *testing.T) {
	t.Helper()

	v := viper.New()
	setDefaults(v)
	previous := cfg
	cfg = config.New(v)
	t.Cleanup(func() { cfg = previous })
}

func TestSetDefaultsProduceValidConfig(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	loaded := config.New(v)
	require.NotNil(t, loaded)

	assert.Equal(t, 5, loaded.Worker.Concurrency)
	assert.Equal(t, "analysis-workers", loaded.Worker.QueueGroup)
	assert.Equal(t, "nats://localhost:4222", loaded.NATS.URL)
	assert.Equal(t, "swiftscope", loaded.Database.Name)
	assert.Equal(t, "private", loaded.Analysis.MinVisibility)
	assert.True(t, loaded.Analysis.IncludeDocumentation)
	assert.True(t, loaded.Analysis.RespectGitignore)
	assert.Equal(t, "info", loaded.Log.Level)
	assert.Equal(t, "json", loaded.Log.Format)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("SWIFTSCOPE_WORKER_CONCURRENCY", "9")
	t.Setenv("SWIFTSCOPE_NATS_URL", "nats://queue.internal:4222")

	initConfig()

	loaded := GetConfig()
	require.NotNil(t, loaded)
	assert.Equal(t, 9, loaded.Worker.Concurrency)
	assert.Equal(t, "nats://queue.internal:4222", loaded.NATS.URL)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"outline", "edit", "diagnose", "index", "worker", "mcp", "migrate", "version"} {
		assert.True(t, names[want], "root command should register %q", want)
	}
}

func TestGetConfigReturnsLoadedConfig(t *testing.T) {
	initTestConfig(t)

	loaded := GetConfig()
	require.NotNil(t, loaded)
	assert.Equal(t, "private", loaded.Analysis.MinVisibility)
}

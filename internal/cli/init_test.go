package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mybalance/internal/config"
)

func TestSetupLoggerSetsDefaultLevel(t *testing.T) {
	logger := SetupLogger("debug")
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), -4))

	logger = SetupLogger("error")
	assert.False(t, logger.Enabled(context.Background(), 0))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("MYBALANCE_TEST_VALUE=from-dotenv\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Cleanup(func() { _ = os.Unsetenv("MYBALANCE_TEST_VALUE") })

	LoadEnvFile()
	assert.Equal(t, "from-dotenv", os.Getenv("MYBALANCE_TEST_VALUE"))
}

func TestInitBackendMemory(t *testing.T) {
	cfg := &config.Config{DataBackend: "memory", DataDirectory: t.TempDir(), DuplicatePolicy: "categorized"}
	result, backendCfg := InitBackend(context.Background(), SetupLogger("error"), cfg)
	require.NotNil(t, result.Store)
	assert.Equal(t, "memory", backendCfg.Type.String())
	assert.NoError(t, result.Cleanup())
}

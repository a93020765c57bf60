package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "./run", cfg.Input.Dir)
	require.True(t, cfg.MCP.Enabled)
	require.Equal(t, "stdio", cfg.MCP.Transport)
}

func TestLoadAppliesFileThenEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "director-runtime.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input:\n  dir: /from/file\nmcp:\n  transport: http\n"), 0o644))
	t.Setenv("DIRECTOR_RUNTIME_CONFIG_PATH", path)
	t.Setenv("DIRECTOR_OUTPUT_DIR", "/from/env")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/from/file", cfg.Input.Dir)
	require.Equal(t, "http", cfg.MCP.Transport)
	require.Equal(t, "/from/env", cfg.Runtime.OutputDir)
}

func TestLoadRejectsInvalidMCPPort(t *testing.T) {
	t.Setenv("DIRECTOR_MCP_PORT", "not-a-number")
	_, err := Load()
	require.Error(t, err)
}

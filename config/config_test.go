package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewFromEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROFILE", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("export ENGINE=gravel\nexport PORT=1\nexport IN_MEMORY=true\n"), 0o600))
	t.Setenv("PORT", "2")
	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "gravel", cfg.Engine)
	require.Equal(t, 2, cfg.Port, "environment must override the .env file")
	require.True(t, cfg.InMemory)
	require.Equal(t, filepath.Join(dir, "db"), cfg.DataDir)
}

func TestNewRejectsUnknownEngine(t *testing.T) {
	t.Setenv("PROFILE", t.TempDir())
	t.Setenv("ENGINE", "leveldb")
	_, err := New()
	require.Error(t, err)
}

func TestPrintEnvRoundTrip(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("PROFILE", dir)
	t.Setenv("ENGINE", "gravel")
	cfg, err := New()
	require.NoError(t, err)
	buf := new(bytes.Buffer)
	PrintEnv(cfg, buf)
	require.True(t, strings.Contains(buf.String(), "export ENGINE=gravel\n"))
	require.True(t, strings.HasPrefix(buf.String(), "#!/usr/bin/env bash\n"))
}

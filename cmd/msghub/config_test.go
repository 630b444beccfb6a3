package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.Equal(t, "chat.lobby", cfg.Topic)
	require.NotEmpty(t, cfg.Nick)
	require.Equal(t, Duration(30*time.Second), cfg.PresenceInterval)
}

func TestLoadConfig_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "msghub.yaml")
	require.NoError(t, os.WriteFile(path, []byte("topic: chat-42\nnick: ada\npresence_interval: 5s\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "chat-42", cfg.Topic)
	require.Equal(t, "ada", cfg.Nick)
	require.Equal(t, Duration(5*time.Second), cfg.PresenceInterval)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

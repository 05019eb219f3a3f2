package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestParseJSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	t.Run("present keys overlay, absent keys keep defaults", func(t *testing.T) {
		path := writeTempJSON(t, map[string]any{
			"username":      "it@example.com",
			"object":        "Lead",
			"operation":     "upsert",
			"poll_interval": "10s",
			"serial":        true,
		})
		os.Args = []string{"sfbulk", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJSON(cfg)

		assert.Equal(t, "it@example.com", cfg.Username)
		assert.Equal(t, "Lead", cfg.Object)
		assert.Equal(t, "upsert", cfg.Operation)
		assert.Equal(t, 10*time.Second, cfg.PollInterval)
		assert.True(t, cfg.Serial)
		// Untouched by the file.
		assert.Equal(t, "login", cfg.Domain)
		assert.Equal(t, 10000, cfg.BatchSize)
	})

	t.Run("no flag means no JSON layer", func(t *testing.T) {
		os.Args = []string{"sfbulk"}

		cfg := &Config{Username: "keep@example.com"}
		parseJSON(cfg)

		assert.Equal(t, "keep@example.com", cfg.Username)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{ nope`), 0o600))
		os.Args = []string{"sfbulk", "-config", path}

		require.Panics(t, func() { parseJSON(&Config{}) })
	})
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "grove.yaml", `
random: true
seed: 1234
timeout: 2s
format: json
log_level: debug
external_names: [db, clock]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Random)
	assert.Equal(t, uint64(1234), cfg.Seed)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"db", "clock"}, cfg.ExternalNames)
	assert.Equal(t, ":8080", cfg.Listen, "unset keys keep their default")
}

func TestLoad_JSONMilliseconds(t *testing.T) {
	path := writeFile(t, "grove.json", `{"timeout": 250, "listen": "127.0.0.1:9000"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "127.0.0.1:9000", cfg.Listen)
}

func TestLoad_Rejects(t *testing.T) {
	tests := map[string]string{
		"unknown key":    "retries: 3\n",
		"bad format":     "format: xml\n",
		"bad duration":   "timeout: soon\n",
		"negative":       "timeout: -1s\n",
		"malformed yaml": "random: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "grove.yaml", content))
			assert.Error(t, err)
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestLoadWithEnvUsesDefaultsWhenNothingSet(t *testing.T) {
	cfg, err := LoadWithEnv(fakeEnv(map[string]string{
		"HOME": t.TempDir(),
	}))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.SkipChecksums)
	assert.Equal(t, "scriptweaver.manifest.json", cfg.ManifestPath)
}

func TestLoadWithEnvOverridesFromEnvironment(t *testing.T) {
	cfg, err := LoadWithEnv(fakeEnv(map[string]string{
		"HOME":                         t.TempDir(),
		"SCRIPTWEAVER_LOG_LEVEL":       "debug",
		"SCRIPTWEAVER_SKIP_CHECKSUMS":  "1",
		"SCRIPTWEAVER_WORKING_DIR":     "/var/run/scriptweaver",
		"SCRIPTWEAVER_MANIFEST":        "custom.json",
	}))
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.SkipChecksums)
	assert.Equal(t, "/var/run/scriptweaver", cfg.WorkingDir)
	assert.Equal(t, "custom.json", cfg.ManifestPath)
}

func TestLoadWithEnvReadsExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\nskip_checksums: true\n"), 0o644))

	cfg, err := LoadWithEnv(fakeEnv(map[string]string{
		"HOME":               t.TempDir(),
		"SCRIPTWEAVER_CONFIG": path,
	}))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.True(t, cfg.SkipChecksums)
}

func TestSlogLevelDefaultsToInfoForUnknownValue(t *testing.T) {
	cfg := &Config{LogLevel: "not-a-real-level"}
	assert.Equal(t, "INFO", cfg.SlogLevel().String())
}

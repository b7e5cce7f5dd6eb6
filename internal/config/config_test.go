package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *GlobalConfig {
	t.Helper()
	wl := filepath.Join(t.TempDir(), "params.txt")
	require.NoError(t, os.WriteFile(wl, []byte("debug\n"), 0o644))

	cfg := NewDefaultGlobalConfig()
	cfg.FinderConfig.FindParams = true
	cfg.WordlistConfig.ParamWordlists = []string{wl}
	return cfg
}

func TestValidateConfig_Defaults(t *testing.T) {
	assert.NoError(t, ValidateConfig(validConfig(t)))
}

func TestValidateConfig_NoSurfaceEnabled(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no surface enabled")
}

func TestValidateConfig_MissingWordlist(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.FinderConfig.FindHeaders = true
	err := ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header_wordlists")
}

func TestValidateConfig_WordlistDoesNotExist(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.FinderConfig.FindCookies = true
	cfg.WordlistConfig.CookieWordlists = []string{"/missing/cookies.txt"}
	err := ValidateConfig(cfg)
	assert.Error(t, err)
}

func TestValidateConfig_BadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GlobalConfig)
	}{
		{"zero retry", func(c *GlobalConfig) { c.HTTPClientConfig.Retry = 0 }},
		{"negative timeout", func(c *GlobalConfig) { c.HTTPClientConfig.TimeoutSeconds = -1 }},
		{"zero threads", func(c *GlobalConfig) { c.FinderConfig.Threads = 0 }},
		{"negative delay", func(c *GlobalConfig) { c.HTTPClientConfig.DelaySeconds = -0.5 }},
		{"bad output format", func(c *GlobalConfig) { c.ReporterConfig.Format = "xml" }},
		{"verbosity out of range", func(c *GlobalConfig) { c.LogConfig.Verbosity = 9 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}

func TestLoadGlobalConfig(t *testing.T) {
	t.Run("empty path keeps defaults", func(t *testing.T) {
		cfg, err := LoadGlobalConfig("")
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.FinderConfig.Threads)
		assert.Equal(t, 2048, cfg.FinderConfig.ParamBucket)
	})

	t.Run("yaml overrides defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "finder_config:\n  threads: 3\nhttp_client_config:\n  retry: 5\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		cfg, err := LoadGlobalConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.FinderConfig.Threads)
		assert.Equal(t, 5, cfg.HTTPClientConfig.Retry)
		assert.Equal(t, 2048, cfg.FinderConfig.ParamBucket, "untouched sections keep defaults")
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := LoadGlobalConfig("/missing/config.yaml")
		assert.Error(t, err)
	})
}

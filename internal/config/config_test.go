package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("cardscout", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "https://magicmargins.ca", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Zero(t, cfg.Scrapers.CacheTTL)
	assert.Equal(t, 976, cfg.Preview.Width)
	assert.Equal(t, 1360, cfg.Preview.Height)
	assert.Equal(t, 28, cfg.Preview.Columns)
	assert.Equal(t, "cardscout.log", cfg.Log.File)
	assert.True(t, cfg.UI.AltScreen)
	assert.True(t, cfg.UI.Mouse)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CARDSCOUT_API_BASE_URL", "http://env.example")
	t.Setenv("CARDSCOUT_SCRAPERS_CACHE_TTL", "5m")

	cfg, err := Load(newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, "http://env.example", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Minute, cfg.Scrapers.CacheTTL)
	assert.Equal(t, 28, cfg.Preview.Columns, "unset flags must not clobber defaults")

	cfg, err = Load(newFlags(t, "--base-url", "http://flag.example", "--alt-screen=false", "--columns", "40"))
	require.NoError(t, err)
	assert.Equal(t, "http://flag.example", cfg.API.BaseURL)
	assert.False(t, cfg.UI.AltScreen)
	assert.Equal(t, 40, cfg.Preview.Columns)
}

func TestLoadExplicitConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.yaml")
	contents := []byte("api:\n  base_url: http://file.example\n  timeout: 15s\npreview:\n  columns: 32\nui:\n  mouse: false\n")
	require.NoError(t, os.WriteFile(path, contents, 0o644))

	cfg, err := Load(newFlags(t, "--config", path))
	require.NoError(t, err)
	assert.Equal(t, "http://file.example", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, 32, cfg.Preview.Columns)
	assert.False(t, cfg.UI.Mouse)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	t.Chdir(t.TempDir())
	_, err := Load(newFlags(t, "--config", filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{
		API:     APIConfig{BaseURL: "https://magicmargins.ca"},
		Preview: PreviewConfig{Width: 976, Height: 1360, Columns: 28},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"relative url", func(c *Config) { c.API.BaseURL = "magicmargins.ca" }},
		{"ftp url", func(c *Config) { c.API.BaseURL = "ftp://magicmargins.ca" }},
		{"negative timeout", func(c *Config) { c.API.Timeout = -time.Second }},
		{"negative ttl", func(c *Config) { c.Scrapers.CacheTTL = -time.Second }},
		{"zero width", func(c *Config) { c.Preview.Width = 0 }},
		{"narrow preview", func(c *Config) { c.Preview.Columns = 4 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

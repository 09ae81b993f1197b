package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 50, cfg.Fetch.PageSize)
	assert.Equal(t, 5*time.Second, cfg.Fetch.PageDelay)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts)
	assert.Equal(t, "utf-8", cfg.Naming.Encoding)
	assert.Equal(t, 250, cfg.Naming.MaxNameBytes)
	assert.False(t, cfg.Output.CSV)
	assert.Empty(t, cfg.Output.SaveFolder)
	assert.True(t, cfg.Output.OverwriteHTML)
	assert.True(t, cfg.Output.WriteMetadata)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TUMBLR_BACKUP_BASE_URL", "http://127.0.0.1:8080")
	t.Setenv("TUMBLR_BACKUP_SAVE_FOLDER", "/tmp/blog")
	t.Setenv("TUMBLR_BACKUP_CSV", "TRUE")
	t.Setenv("TUMBLR_BACKUP_PAGE_DELAY", "250ms")
	t.Setenv("TUMBLR_BACKUP_MAX_ATTEMPTS", "3")
	t.Setenv("TUMBLR_BACKUP_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "http://127.0.0.1:8080", cfg.Tumblr.BaseURL)
	assert.Equal(t, "/tmp/blog", cfg.Output.SaveFolder)
	assert.True(t, cfg.Output.CSV)
	assert.Equal(t, 250*time.Millisecond, cfg.Fetch.PageDelay)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalidDuration(t *testing.T) {
	t.Setenv("TUMBLR_BACKUP_PAGE_DELAY", "soon")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PAGE_DELAY")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
tumblr:
  base_url: http://mirror.local
fetch:
  page_delay: 1s
  timeout: 10s
output:
  csv: true
backup:
  start_post: 100
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "http://mirror.local", cfg.Tumblr.BaseURL)
	assert.Equal(t, time.Second, cfg.Fetch.PageDelay)
	assert.Equal(t, 10*time.Second, cfg.Fetch.Timeout)
	assert.True(t, cfg.Output.CSV)
	assert.Equal(t, 100, cfg.Backup.StartPost)
	assert.Equal(t, "warn", cfg.Logging.Level)
	// untouched values keep their defaults
	assert.Equal(t, 50, cfg.Fetch.PageSize)
}

func TestLoadFromFileErrors(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("fetch: [unclosed"), 0644))
	err = cfg.LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Backup.Account = "staff.tumblr.com"
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantError string
	}{
		{name: "valid config", mutate: func(*Config) {}},
		{name: "missing account", mutate: func(c *Config) { c.Backup.Account = "" }, wantError: "account is required"},
		{name: "account with path", mutate: func(c *Config) { c.Backup.Account = "http://x/y" }, wantError: "host name"},
		{name: "negative start", mutate: func(c *Config) { c.Backup.StartPost = -1 }, wantError: "start post"},
		{name: "page size too large", mutate: func(c *Config) { c.Fetch.PageSize = 51 }, wantError: "page size"},
		{name: "zero attempts", mutate: func(c *Config) { c.Retry.MaxAttempts = 0 }, wantError: "max attempts"},
		{name: "latin-1 encoding", mutate: func(c *Config) { c.Naming.Encoding = "latin-1" }, wantError: "unsupported encoding"},
		{name: "utf8 spelling accepted", mutate: func(c *Config) { c.Naming.Encoding = "UTF8" }},
		{name: "name budget too large", mutate: func(c *Config) { c.Naming.MaxNameBytes = 300 }, wantError: "max name bytes"},
		{name: "bad log level", mutate: func(c *Config) { c.Logging.Level = "loud" }, wantError: "invalid log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestMergeCommandLineFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MergeCommandLineFlags(map[string]interface{}{
		"account":     "  example.tumblr.com ",
		"save-folder": "/data/example",
		"csv":         true,
		"start-post":  60,
		"page-delay":  time.Duration(0),
		"log-level":   "error",
	})

	assert.Equal(t, "example.tumblr.com", cfg.Backup.Account)
	assert.Equal(t, "/data/example", cfg.Output.SaveFolder)
	assert.True(t, cfg.Output.CSV)
	assert.Equal(t, 60, cfg.Backup.StartPost)
	assert.Equal(t, time.Duration(0), cfg.Fetch.PageDelay)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestResolveSaveFolder(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backup.Account = "example.tumblr.com"

	wd, err := os.Getwd()
	require.NoError(t, err)

	folder, err := cfg.ResolveSaveFolder()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "example.tumblr.com"), folder)

	cfg.Output.SaveFolder = "/srv/backup"
	folder, err = cfg.ResolveSaveFolder()
	require.NoError(t, err)
	assert.Equal(t, "/srv/backup", folder)
}

func TestLoad(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	t.Run("missing account fails validation", func(t *testing.T) {
		_, err := Load("", map[string]interface{}{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "account is required")
	})

	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("TUMBLR_BACKUP_SAVE_FOLDER", "/from/env")
		cfg, err := Load("", map[string]interface{}{
			"account":     "example.tumblr.com",
			"save-folder": "/from/flag",
		})
		require.NoError(t, err)
		assert.Equal(t, "/from/flag", cfg.Output.SaveFolder)
	})
}

func TestSave(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backup.Account = "example.tumblr.com"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Backup.Account, loaded.Backup.Account)
	assert.Equal(t, cfg.Fetch.PageDelay, loaded.Fetch.PageDelay)
}

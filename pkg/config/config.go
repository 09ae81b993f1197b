package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	"tumblrbackup/pkg/naming"
)

// envPrefix is prepended to every environment variable the tool reads
const envPrefix = "TUMBLR_BACKUP_"

// Config holds all configuration options for a blog backup run
type Config struct {
	// Blog API settings
	Tumblr TumblrConfig `yaml:"tumblr" json:"tumblr"`

	// Page fetching
	Fetch FetchConfig `yaml:"fetch" json:"fetch"`

	// Media downloads
	Download DownloadConfig `yaml:"download" json:"download"`

	// Retry policy for HTTP calls
	Retry RetryConfig `yaml:"retry" json:"retry"`

	// Where and how posts are written
	Output OutputConfig `yaml:"output" json:"output"`

	// Run parameters
	Backup BackupConfig `yaml:"backup" json:"backup"`

	// File name derivation
	Naming NamingConfig `yaml:"naming" json:"naming"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// TumblrConfig holds API endpoint settings
type TumblrConfig struct {
	// BaseURL replaces http://<account> when set (mirrors, tests)
	BaseURL   string `yaml:"base_url" json:"base_url"`
	UserAgent string `yaml:"user_agent" json:"user_agent"`
}

// FetchConfig controls the page loop
type FetchConfig struct {
	PageSize  int           `yaml:"page_size" json:"page_size"`
	PageDelay time.Duration `yaml:"page_delay" json:"page_delay"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// DownloadConfig holds media download settings
type DownloadConfig struct {
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`
	MaxFileSize int64         `yaml:"max_file_size" json:"max_file_size"`
}

// RetryConfig holds retry settings. One attempt means no retry.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" json:"max_attempts"`
	BaseDelay   time.Duration `yaml:"base_delay" json:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay" json:"max_delay"`
}

// OutputConfig holds output location and format
type OutputConfig struct {
	// SaveFolder defaults to <cwd>/<account> when empty
	SaveFolder    string `yaml:"save_folder" json:"save_folder"`
	CSV           bool   `yaml:"csv" json:"csv"`
	OverwriteHTML bool   `yaml:"overwrite_html" json:"overwrite_html"`
	WriteMetadata bool   `yaml:"write_metadata" json:"write_metadata"`
}

// BackupConfig holds per-run parameters
type BackupConfig struct {
	Account   string `yaml:"account" json:"account"`
	StartPost int    `yaml:"start_post" json:"start_post"`
	FailFast  bool   `yaml:"fail_fast" json:"fail_fast"`
}

// NamingConfig holds the limits used to derive file names
type NamingConfig struct {
	Encoding     string `yaml:"encoding" json:"encoding"`
	MaxNameBytes int    `yaml:"max_name_bytes" json:"max_name_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Tumblr: TumblrConfig{
			UserAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
		},
		Fetch: FetchConfig{
			PageSize:  50,
			PageDelay: 5 * time.Second,
			Timeout:   30 * time.Second,
		},
		Download: DownloadConfig{
			Timeout:     2 * time.Minute,
			MaxFileSize: 0, // 0 means no limit
		},
		Retry: RetryConfig{
			MaxAttempts: 1,
			BaseDelay:   2 * time.Second,
			MaxDelay:    30 * time.Second,
		},
		Output: OutputConfig{
			OverwriteHTML: true,
			WriteMetadata: true,
		},
		Naming: NamingConfig{
			Encoding:     "utf-8",
			MaxNameBytes: 250,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv(envPrefix + "BASE_URL"); v != "" {
		c.Tumblr.BaseURL = v
	}
	if v := os.Getenv(envPrefix + "USER_AGENT"); v != "" {
		c.Tumblr.UserAgent = v
	}
	if v := os.Getenv(envPrefix + "SAVE_FOLDER"); v != "" {
		c.Output.SaveFolder = v
	}
	if v := os.Getenv(envPrefix + "CSV"); v != "" {
		c.Output.CSV = strings.ToLower(v) == "true"
	}
	if v := os.Getenv(envPrefix + "PAGE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sPAGE_DELAY: %w", envPrefix, err)
		}
		c.Fetch.PageDelay = d
	}
	if v := os.Getenv(envPrefix + "TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sTIMEOUT: %w", envPrefix, err)
		}
		c.Fetch.Timeout = d
	}
	if v := os.Getenv(envPrefix + "MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_ATTEMPTS: %w", envPrefix, err)
		}
		c.Retry.MaxAttempts = n
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(envPrefix + "LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".tumblr-backup.yaml",
		".tumblr-backup.yml",
		filepath.Join(home, ".config", "tumblr-backup", "config.yaml"),
		filepath.Join(home, ".config", "tumblr-backup", "config.yml"),
		filepath.Join(home, ".tumblr-backup.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Backup.Account) == "" {
		errs = append(errs, errors.New("account is required"))
	}
	if strings.Contains(c.Backup.Account, "/") {
		errs = append(errs, errors.New("account must be a host name, not a URL"))
	}
	if c.Backup.StartPost < 0 {
		errs = append(errs, errors.New("start post cannot be negative"))
	}

	if c.Fetch.PageSize <= 0 || c.Fetch.PageSize > 50 {
		errs = append(errs, errors.New("page size must be between 1 and 50"))
	}
	if c.Fetch.PageDelay < 0 {
		errs = append(errs, errors.New("page delay cannot be negative"))
	}
	if c.Fetch.Timeout <= 0 {
		errs = append(errs, errors.New("fetch timeout must be positive"))
	}
	if c.Download.Timeout <= 0 {
		errs = append(errs, errors.New("download timeout must be positive"))
	}
	if c.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry max attempts must be at least 1"))
	}

	if _, err := naming.NewOptions(c.Naming.Encoding, c.Naming.MaxNameBytes); err != nil {
		errs = append(errs, err)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// ResolveSaveFolder returns the configured save folder, or <cwd>/<account>
func (c *Config) ResolveSaveFolder() (string, error) {
	if c.Output.SaveFolder != "" {
		return c.Output.SaveFolder, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return filepath.Join(wd, c.Backup.Account), nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration.
// Only keys present in the map are applied.
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if account, ok := flags["account"].(string); ok && account != "" {
		c.Backup.Account = strings.TrimSpace(account)
	}
	if folder, ok := flags["save-folder"].(string); ok && folder != "" {
		c.Output.SaveFolder = folder
	}
	if useCSV, ok := flags["csv"].(bool); ok {
		c.Output.CSV = useCSV
	}
	if start, ok := flags["start-post"].(int); ok {
		c.Backup.StartPost = start
	}
	if failFast, ok := flags["fail-fast"].(bool); ok {
		c.Backup.FailFast = failFast
	}
	if baseURL, ok := flags["base-url"].(string); ok && baseURL != "" {
		c.Tumblr.BaseURL = baseURL
	}
	if delay, ok := flags["page-delay"].(time.Duration); ok {
		c.Fetch.PageDelay = delay
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files are optional
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".tumblr-backup.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

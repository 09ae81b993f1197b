package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tumblrbackup/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "disabled", cfg: &config.LoggingConfig{Level: "disabled"}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "shout"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewWithOptions(tt.cfg, Options{Console: &bytes.Buffer{}})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"INFO", zerolog.InfoLevel, false},
		{"", zerolog.InfoLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"verbose", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestConsoleOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOptions(&config.LoggingConfig{Level: "warn"}, Options{Console: &buf, NoColor: true})
	require.NoError(t, err)

	l.Info("hidden message")
	l.WithField("slug", "hello-world").Warn("visible message")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "slug=hello-world")
	assert.NotContains(t, out, "\033[")
}

func TestFileOutputWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "backup.log")
	l, err := NewWithOptions(&config.LoggingConfig{Level: "info", File: path}, Options{Console: &bytes.Buffer{}})
	require.NoError(t, err)

	l.InfoWithFields("Getting posts", map[string]interface{}{"offset": 50, "upper": 99})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "Getting posts", entry["message"])
	assert.Equal(t, "tumblr-backup", entry["app"])
	assert.EqualValues(t, 50, entry["offset"])
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	base, err := NewWithOptions(&config.LoggingConfig{Level: "info"}, Options{Console: &buf, NoColor: true})
	require.NoError(t, err)

	child := base.WithFields(map[string]interface{}{"post": "1"})
	child.Info("from child")
	base.Info("from base")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "post=1")
	assert.NotContains(t, lines[1], "post=1")
}

func TestWithErrorNil(t *testing.T) {
	l, err := NewWithOptions(&config.LoggingConfig{Level: "info"}, Options{Console: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Same(t, l, l.WithError(nil))
}

func TestTestLoggerCapturesDerivedLoggers(t *testing.T) {
	tl := NewTestLogger()
	cause := errors.New("boom")

	tl.WithField("slug", "a").WithError(cause).Warn("skipped post")
	tl.Info("plain")

	warns := tl.GetMessagesByLevel("WARN")
	require.Len(t, warns, 1)
	assert.Equal(t, "a", warns[0].Fields["slug"])
	assert.Equal(t, cause, warns[0].Error)
	assert.True(t, tl.HasMessage("plain"))

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogRequest(tl, "GET", "http://x/api/read", 200, 1.5)
	LogRequest(tl, "GET", "http://x/api/read", 404, 1.5)
	LogRequest(tl, "GET", "http://x/api/read", 503, 1.5)
	LogDownload(tl, "slug", "photo", "a.jpg", false, nil)
	LogDownload(tl, "slug", "photo", "a.jpg", true, nil)
	LogDownload(tl, "slug", "video", "b.mp4", false, errors.New("refused"))
	LogPageRange(tl, 50, 99, 120)

	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 2)
	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
	assert.True(t, tl.HasMessage("Download completed"))
	assert.True(t, tl.HasMessage("Download skipped, file exists"))
	assert.True(t, tl.HasMessage("Requesting page"))
}

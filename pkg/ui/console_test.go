package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConsoleMessages(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, Options{})

	c.Info("Getting basic information.")
	c.PageRange(0, 49)
	c.Downloading("photo")
	c.Downloading("video")
	c.Complete()

	want := "Getting basic information.\n" +
		"Getting posts 0 to 49.\n" +
		"Downloading a photo. This may take a moment.\n" +
		"Downloading a video. This may take a moment.\n" +
		"Backup Complete\n"
	assert.Equal(t, want, buf.String())
}

func TestConsoleCSVMode(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, Options{})

	c.CSVMode("blog/blog.csv")
	assert.Equal(t, "CSV mode activated.\nData will be saved to blog/blog.csv\n", buf.String())
}

func TestConsoleQuiet(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, Options{Quiet: true})

	c.Info("hidden")
	c.Complete()
	c.Summary("Summary", [][2]string{{"Posts", "3"}})
	c.Error("first page failed")

	assert.Equal(t, "first page failed\n", buf.String())
}

func TestConsoleNoColorForBuffers(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, Options{})
	assert.False(t, IsTerminal(&buf))

	c.Summary("Summary", [][2]string{{"Posts", "120"}, {"Media", "4"}})
	out := buf.String()
	assert.NotContains(t, out, "\033[")
	assert.Contains(t, out, "Posts  120")
	assert.Contains(t, out, "Media  4")
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "42s", FormatDuration(42*time.Second))
	assert.Equal(t, "2m5s", FormatDuration(125*time.Second))
	assert.Equal(t, "1h1m", FormatDuration(61*time.Minute))

	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.5 KB", FormatBytes(1536))
	assert.Equal(t, "2.0 MB", FormatBytes(2*1024*1024))
}

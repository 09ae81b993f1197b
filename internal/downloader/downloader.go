package downloader

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"tumblrbackup/pkg/logger"
)

// Job describes one media file to fetch
type Job struct {
	URL string
	// Dir is the save folder subdirectory, images or videos
	Dir  string
	Name string
	// Kind and Slug are only used for logging
	Kind string
	Slug string
}

// Result is the outcome of a Job
type Result struct {
	Job      Job
	Skipped  bool
	Error    error
	Duration time.Duration
	Size     int
}

// MediaClient fetches remote media
type MediaClient interface {
	Download(ctx context.Context, url string) ([]byte, error)
}

// MediaStorage is the part of the save folder the downloader needs
type MediaStorage interface {
	EnsureDir(sub string) (string, error)
	Exists(elems ...string) bool
	WriteFile(rel string, data []byte) error
}

// Stats counts results since the downloader was created
type Stats struct {
	Downloaded int
	Skipped    int
	Failed     int
	Bytes      int64
}

// Downloader fetches media one file at a time
type Downloader struct {
	client  MediaClient
	storage MediaStorage
	logger  logger.Logger
	onStart func(Job)
	stats   Stats
}

// New creates a Downloader
func New(client MediaClient, storage MediaStorage, log logger.Logger) *Downloader {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Downloader{client: client, storage: storage, logger: log}
}

// OnStart registers fn to run right before a network download begins.
// Skipped jobs do not trigger it.
func (d *Downloader) OnStart(fn func(Job)) {
	d.onStart = fn
}

// Fetch makes sure the job's directory exists, then downloads and saves
// the file unless one with the same name is already there. Errors are
// logged and returned in the Result; they never abort the caller.
func (d *Downloader) Fetch(ctx context.Context, job Job) Result {
	start := time.Now()
	result := Result{Job: job}

	if _, err := d.storage.EnsureDir(job.Dir); err != nil {
		return d.fail(result, start, err)
	}

	if d.storage.Exists(job.Dir, job.Name) {
		result.Skipped = true
		result.Duration = time.Since(start)
		d.stats.Skipped++
		logger.LogDownload(d.logger, job.Slug, job.Kind, job.Name, true, nil)
		return result
	}

	if d.onStart != nil {
		d.onStart(job)
	}

	data, err := d.client.Download(ctx, job.URL)
	if err != nil {
		return d.fail(result, start, fmt.Errorf("download failed: %w", err))
	}
	result.Size = len(data)

	if err := d.storage.WriteFile(filepath.Join(job.Dir, job.Name), data); err != nil {
		return d.fail(result, start, fmt.Errorf("save failed: %w", err))
	}

	result.Duration = time.Since(start)
	d.stats.Downloaded++
	d.stats.Bytes += int64(result.Size)

	d.logger.DebugWithFields("media saved", map[string]interface{}{
		"slug":     job.Slug,
		"name":     job.Name,
		"size":     result.Size,
		"duration": result.Duration,
	})
	logger.LogDownload(d.logger, job.Slug, job.Kind, job.Name, false, nil)
	return result
}

func (d *Downloader) fail(result Result, start time.Time, err error) Result {
	result.Error = err
	result.Duration = time.Since(start)
	d.stats.Failed++

	d.logger.WarnWithFields("media download failed", map[string]interface{}{
		"slug":  result.Job.Slug,
		"kind":  result.Job.Kind,
		"url":   result.Job.URL,
		"error": err.Error(),
	})
	return result
}

// Stats returns a snapshot of the counters
func (d *Downloader) Stats() Stats {
	return d.stats
}

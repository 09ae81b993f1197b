package backup

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"tumblrbackup/internal/downloader"
	"tumblrbackup/pkg/config"
	errs "tumblrbackup/pkg/errors"
	"tumblrbackup/pkg/logger"
	"tumblrbackup/pkg/materialize"
	"tumblrbackup/pkg/metadata"
	"tumblrbackup/pkg/naming"
	"tumblrbackup/pkg/ratelimit"
	"tumblrbackup/pkg/retry"
	"tumblrbackup/pkg/storage"
	"tumblrbackup/pkg/tumblr"
	"tumblrbackup/pkg/ui"
)

// Options carries the collaborators a Runner does not build from config
type Options struct {
	Console *ui.Console
	Logger  logger.Logger
	// Limiter overrides the fixed page delay from config
	Limiter ratelimit.Limiter
}

// Runner orchestrates one backup of one account
type Runner struct {
	cfg     *config.Config
	client  *tumblr.Client
	fetcher *tumblr.Fetcher
	naming  naming.Options
	console *ui.Console
	logger  logger.Logger
}

// New wires a Runner from cfg. Configuration problems are returned as
// config errors before any network access.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}
	console := opts.Console
	if console == nil {
		console = ui.NewConsole(nil, ui.Options{})
	}

	namingOpts, err := naming.NewOptions(cfg.Naming.Encoding, cfg.Naming.MaxNameBytes)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, err, "invalid naming options")
	}

	client := tumblr.NewClient(cfg.Fetch.Timeout, log)
	if cfg.Tumblr.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Tumblr.UserAgent)
	}
	client.SetRetryPolicy(retry.FromConfig(cfg.Retry, log))
	client.SetDownloadLimits(cfg.Download.Timeout, cfg.Download.MaxFileSize)

	limiter := opts.Limiter
	if limiter == nil {
		limiter = ratelimit.NewFixedDelay(cfg.Fetch.PageDelay)
	}

	fetcher := tumblr.NewFetcher(client, limiter, tumblr.FetcherOptions{
		BaseURL:  cfg.Tumblr.BaseURL,
		PageSize: cfg.Fetch.PageSize,
	}, log)

	return &Runner{
		cfg:     cfg,
		client:  client,
		fetcher: fetcher,
		naming:  namingOpts,
		console: console,
		logger:  log.WithField("account", cfg.Backup.Account),
	}, nil
}

// Run performs the backup. It returns an error only when the run could
// not start (save folder, first page), when fail_fast stops it at a bad
// post, or when ctx is cancelled. The summary is returned whenever the
// first page succeeded.
func (r *Runner) Run(ctx context.Context) (*metadata.Summary, error) {
	account := r.cfg.Backup.Account

	folder, err := r.cfg.ResolveSaveFolder()
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, err, "failed to resolve save folder")
	}

	if r.cfg.Output.CSV {
		r.console.CSVMode(filepath.Join(folder, account+".csv"))
	}
	r.console.Info("Getting basic information.")

	store, err := storage.NewManager(folder)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeIO, err, "failed to prepare save folder")
	}

	r.logger.InfoWithFields("Starting backup", map[string]interface{}{
		"save_folder": folder,
		"csv":         r.cfg.Output.CSV,
		"start_post":  r.cfg.Backup.StartPost,
	})

	blog, err := r.fetcher.FetchFirstPage(ctx, account)
	if err != nil {
		r.logger.WithError(err).Error("Failed to fetch blog information")
		return nil, fmt.Errorf("failed to fetch blog information: %w", err)
	}
	r.console.Info(strconv.Itoa(blog.TotalPosts))

	target, media, err := r.newTarget(store, blog)
	if err != nil {
		return nil, err
	}
	m := materialize.New(target, r.logger)

	summary := metadata.NewSummary(account, blog, r.cfg.Backup.StartPost, target.Name())

	pages := r.fetcher.Pages(account, r.cfg.Backup.StartPost, blog.TotalPosts)
	pages.OnRequest(func(offset, upper int) {
		r.console.PageRange(offset, upper)
	})

	runErr := r.walk(ctx, pages, m, summary)

	var mediaBytes int64
	if media != nil {
		mediaBytes = media.Stats().Bytes
	}
	summary.Finish(mediaBytes, metadata.OutputCounts{
		Files: store.FilesWritten(),
		Bytes: store.BytesWritten(),
	})

	if r.cfg.Output.WriteMetadata {
		if err := summary.Save(store); err != nil {
			r.logger.WithError(err).Warn("Failed to write run summary")
		}
	}

	if runErr != nil {
		return summary, runErr
	}

	r.printSummary(summary)
	r.console.Complete()

	r.logger.InfoWithFields("Backup finished", map[string]interface{}{
		"pages":        summary.Pages.Requested,
		"failed_pages": summary.Pages.Failed,
		"posts":        summary.Posts.Written,
		"failed_posts": summary.Posts.Failed,
		"duration":     summary.Duration().String(),
	})
	return summary, nil
}

// newTarget builds the CSV target, or the HTML target with its shared
// header and media downloader.
func (r *Runner) newTarget(store *storage.Manager, blog *tumblr.Blog) (materialize.Target, *downloader.Downloader, error) {
	if r.cfg.Output.CSV {
		target, err := materialize.NewCSVTarget(store, r.cfg.Backup.Account)
		if err != nil {
			return nil, nil, err
		}
		return target, nil, nil
	}

	media := downloader.New(r.client, store, r.logger)
	media.OnStart(func(job downloader.Job) {
		r.console.Downloading(job.Kind)
	})

	header := materialize.BuildHeader(blog, r.naming.Encoding())
	return materialize.NewHTMLTarget(store, media, r.naming, header, r.cfg.Output.OverwriteHTML, r.logger), media, nil
}

func (r *Runner) walk(ctx context.Context, pages *tumblr.PageIterator, m *materialize.Materializer, summary *metadata.Summary) error {
	for {
		page, ok := pages.Next(ctx)
		if !ok {
			break
		}
		summary.RecordPage(page)

		for i := range page.Posts {
			post := &page.Posts[i]
			outcome, err := m.Materialize(ctx, post)
			summary.RecordPost(post, outcome, err)
			if err == nil {
				continue
			}

			r.logger.WarnWithFields("failed to save post, skipping", map[string]interface{}{
				"slug":  post.Slug(),
				"type":  post.Type,
				"kind":  string(errs.TypeOf(err)),
				"error": err.Error(),
			})
			if r.cfg.Backup.FailFast {
				return fmt.Errorf("post %q: %w", post.Slug(), err)
			}
		}
	}

	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			r.console.Warn("Backup interrupted")
		}
		return err
	}
	return nil
}

func (r *Runner) printSummary(s *metadata.Summary) {
	rows := [][2]string{
		{"Blog", s.Title},
		{"Posts saved", fmt.Sprintf("%d", s.Posts.Written)},
	}
	if s.Posts.Unsupported > 0 {
		rows = append(rows, [2]string{"Posts skipped", fmt.Sprintf("%d", s.Posts.Unsupported)})
	}
	if s.Posts.Failed > 0 {
		rows = append(rows, [2]string{"Posts failed", fmt.Sprintf("%d", s.Posts.Failed)})
	}
	if s.Pages.Failed > 0 {
		rows = append(rows, [2]string{"Pages failed", fmt.Sprintf("%d of %d", s.Pages.Failed, s.Pages.Requested)})
	}
	if s.Format == "html" {
		rows = append(rows,
			[2]string{"Media downloaded", fmt.Sprintf("%d (%s)", s.Media.Downloaded, ui.FormatBytes(s.Media.Bytes))},
			[2]string{"Media already present", fmt.Sprintf("%d", s.Media.Skipped)},
		)
	}
	rows = append(rows,
		[2]string{"Files written", fmt.Sprintf("%d (%s)", s.Output.Files, ui.FormatBytes(s.Output.Bytes))},
		[2]string{"Duration", ui.FormatDuration(s.Duration())},
	)
	r.console.Summary("Summary", rows)
}

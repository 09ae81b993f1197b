package materialize

import (
	"context"
	"path"
	"strings"

	"tumblrbackup/internal/downloader"
	errs "tumblrbackup/pkg/errors"
	"tumblrbackup/pkg/logger"
	"tumblrbackup/pkg/naming"
	"tumblrbackup/pkg/storage"
	"tumblrbackup/pkg/tumblr"
)

const footer = "</body></html>"

// BuildHeader returns the markup every HTML post file starts with
func BuildHeader(blog *tumblr.Blog, encoding string) string {
	var b strings.Builder
	b.WriteString(`<html><meta http-equiv="content-type" content="text/html; charset=`)
	b.WriteString(encoding)
	b.WriteString(`"/>`)
	b.WriteString("<head><title>" + blog.Title + "</title></head><body>")
	b.WriteString("<h1>" + blog.Title + "</h1><h2>" + naming.Unescape(blog.Description) + "</h2>")
	return b.String()
}

// MediaFetcher downloads one media file into the save folder
type MediaFetcher interface {
	Fetch(ctx context.Context, job downloader.Job) downloader.Result
}

// HTMLTarget writes one HTML file per post and saves its media
type HTMLTarget struct {
	store     *storage.Manager
	media     MediaFetcher
	naming    naming.Options
	header    string
	overwrite bool
	logger    logger.Logger
}

// NewHTMLTarget creates an HTML target. header is shared by every file.
func NewHTMLTarget(store *storage.Manager, media MediaFetcher, opts naming.Options, header string, overwrite bool, log logger.Logger) *HTMLTarget {
	if log == nil {
		log = logger.GetLogger()
	}
	return &HTMLTarget{
		store:     store,
		media:     media,
		naming:    opts,
		header:    header,
		overwrite: overwrite,
		logger:    log,
	}
}

func (t *HTMLTarget) Name() string { return "html" }

// Save builds the post's block, fetches its media and writes
// <slug>.html atomically.
func (t *HTMLTarget) Save(ctx context.Context, post *tumblr.Post) (Outcome, error) {
	slug := t.naming.SafeSlug(post.URLWithSlug)
	outcome := Outcome{Slug: slug, Kind: post.Kind}

	var block string
	switch post.Kind {
	case tumblr.KindRegular:
		block = "<h3>" + naming.Unescape(post.Regular.Title.OrEmpty()) + "</h3>" +
			naming.Unescape(post.Regular.Body.OrEmpty())

	case tumblr.KindPhoto:
		src, name, err := PhotoFile(post)
		if err != nil {
			return outcome, shapeError(post, err)
		}
		t.fetch(ctx, &outcome, downloader.Job{URL: src, Dir: storage.ImagesDir, Name: name, Kind: "photo", Slug: slug})
		block = `<img src="` + path.Join(storage.ImagesDir, name) + `"/>` +
			naming.Unescape(post.Photo.Caption.OrEmpty())

	case tumblr.KindVideo:
		src, mimeType, err := VideoSource(post.Video.Player)
		if err != nil {
			return outcome, shapeError(post, err)
		}
		name, err := VideoFileName(src, mimeType)
		if err != nil {
			return outcome, shapeError(post, err)
		}
		t.fetch(ctx, &outcome, downloader.Job{URL: src, Dir: storage.VideosDir, Name: name, Kind: "video", Slug: slug})
		block = `<video controls src="` + path.Join(storage.VideosDir, name) + `"></video>` +
			naming.Unescape(post.Video.Caption.OrEmpty())

	default:
		t.logger.DebugWithFields("post kind has no HTML rendering, skipping", map[string]interface{}{
			"slug": slug,
			"type": post.Type,
		})
		outcome.Unsupported = true
		return outcome, nil
	}

	file := slug + ".html"
	if !t.overwrite && t.store.Exists(file) {
		outcome.File = file
		return outcome, nil
	}

	if err := t.store.WriteFile(file, []byte(t.header+block+footer)); err != nil {
		return outcome, errs.Wrap(errs.ErrorTypeIO, err, "failed to write %s", file)
	}
	outcome.File = file
	outcome.Written = true
	return outcome, nil
}

func (t *HTMLTarget) fetch(ctx context.Context, outcome *Outcome, job downloader.Job) {
	result := t.media.Fetch(ctx, job)
	outcome.Media = append(outcome.Media, MediaOutcome{
		Path:    path.Join(job.Dir, job.Name),
		URL:     job.URL,
		Skipped: result.Skipped,
		Failed:  result.Error != nil,
	})
}

func shapeError(post *tumblr.Post, cause error) error {
	e := errs.PostShape(post.Slug(), "%s post: %v", post.Type, cause)
	e.Err = cause
	return e
}

package materialize

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"

	errs "tumblrbackup/pkg/errors"
	"tumblrbackup/pkg/naming"
	"tumblrbackup/pkg/storage"
	"tumblrbackup/pkg/tumblr"
)

// CSVHeader is the first row of every CSV export
const CSVHeader = "Slug,Date (GMT),Regular Title,Regular Body,Photo Caption,Photo URL,Quote Text,Quote Source,Link Text,Link URL,Link Description,Tags\r\n"

// CSVTarget appends one row per post to <account>.csv
type CSVTarget struct {
	store *storage.Manager
	file  string
}

// NewCSVTarget creates the CSV file, replacing any previous export
// with just the header row.
func NewCSVTarget(store *storage.Manager, account string) (*CSVTarget, error) {
	t := &CSVTarget{store: store, file: account + ".csv"}
	if err := store.WriteFile(t.file, []byte(CSVHeader)); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeIO, err, "failed to create %s", t.file)
	}
	return t, nil
}

func (t *CSVTarget) Name() string { return "csv" }

// File returns the export's path relative to the save folder
func (t *CSVTarget) File() string { return t.file }

// Save appends the post's row. Media is referenced by URL only.
func (t *CSVTarget) Save(ctx context.Context, post *tumblr.Post) (Outcome, error) {
	outcome := Outcome{Slug: post.Slug(), Kind: post.Kind, File: t.file}

	row, err := encodeRow(Row(post))
	if err != nil {
		return outcome, errs.Wrap(errs.ErrorTypeIO, err, "failed to encode row for %q", outcome.Slug)
	}
	if err := t.store.Append(t.file, row); err != nil {
		return outcome, errs.Wrap(errs.ErrorTypeIO, err, "failed to append to %s", t.file)
	}
	outcome.Written = true
	return outcome, nil
}

// Row returns the twelve CSV columns for a post
func Row(post *tumblr.Post) []string {
	var photoURL string
	if post.Kind == tumblr.KindPhoto {
		photoURL, _ = post.Photo.FullResolution()
	}

	return []string{
		post.Slug(),
		post.DateGMT,
		naming.Unescape(post.Regular.Title.OrEmpty()),
		naming.Unescape(post.Regular.Body.OrEmpty()),
		naming.Unescape(post.Photo.Caption.OrEmpty()),
		photoURL,
		naming.Unescape(post.Quote.Text.OrEmpty()),
		naming.Unescape(post.Quote.Source.OrEmpty()),
		naming.Unescape(post.Link.Text.OrEmpty()),
		post.Link.URL.OrEmpty(),
		naming.Unescape(post.Link.Description.OrEmpty()),
		strings.Join(post.Tags, ", "),
	}
}

func encodeRow(fields []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.UseCRLF = true
	if err := w.Write(fields); err != nil {
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

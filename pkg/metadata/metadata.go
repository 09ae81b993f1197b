package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tumblrbackup/pkg/materialize"
	"tumblrbackup/pkg/tumblr"
)

// FileName is the summary written at the root of the save folder
const FileName = "backup.json"

// Summary records what a backup run did
type Summary struct {
	Account     string    `json:"account"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TotalPosts  int       `json:"total_posts"`
	StartPost   int       `json:"start_post"`
	Format      string    `json:"format"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`

	Pages  PageCounts   `json:"pages"`
	Posts  PostCounts   `json:"posts"`
	Media  MediaCounts  `json:"media"`
	Output OutputCounts `json:"output"`

	Entries []PostEntry `json:"entries,omitempty"`
}

type PageCounts struct {
	Requested int `json:"requested"`
	Failed    int `json:"failed"`
}

type PostCounts struct {
	Written     int `json:"written"`
	Unsupported int `json:"unsupported"`
	Failed      int `json:"failed"`
}

type MediaCounts struct {
	Downloaded int   `json:"downloaded"`
	Skipped    int   `json:"skipped"`
	Failed     int   `json:"failed"`
	Bytes      int64 `json:"bytes"`
}

// OutputCounts covers every file written to the save folder, media included
type OutputCounts struct {
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`
}

// PostEntry is one post seen during the run
type PostEntry struct {
	Slug  string   `json:"slug"`
	Type  string   `json:"type"`
	Date  string   `json:"date,omitempty"`
	File  string   `json:"file,omitempty"`
	Media []string `json:"media,omitempty"`
	Error string   `json:"error,omitempty"`
}

// NewSummary starts a summary for blog
func NewSummary(account string, blog *tumblr.Blog, startPost int, format string) *Summary {
	return &Summary{
		Account:     account,
		Title:       blog.Title,
		Description: blog.Description,
		TotalPosts:  blog.TotalPosts,
		StartPost:   startPost,
		Format:      format,
		StartedAt:   time.Now().UTC(),
	}
}

// RecordPage counts a requested page
func (s *Summary) RecordPage(page tumblr.Page) {
	s.Pages.Requested++
	if page.Err != nil {
		s.Pages.Failed++
	}
}

// RecordPost adds the outcome of materializing post. err is the post's
// failure, if any.
func (s *Summary) RecordPost(post *tumblr.Post, outcome materialize.Outcome, err error) {
	entry := PostEntry{
		Slug: outcome.Slug,
		Type: post.Type,
		Date: post.DateGMT,
		File: outcome.File,
	}
	if entry.Slug == "" {
		entry.Slug = post.Slug()
	}

	switch {
	case err != nil:
		s.Posts.Failed++
		entry.Error = err.Error()
	case outcome.Unsupported:
		s.Posts.Unsupported++
	default:
		s.Posts.Written++
	}

	for _, m := range outcome.Media {
		entry.Media = append(entry.Media, m.Path)
		switch {
		case m.Failed:
			s.Media.Failed++
		case m.Skipped:
			s.Media.Skipped++
		default:
			s.Media.Downloaded++
		}
	}

	s.Entries = append(s.Entries, entry)
}

// Finish stamps the end time and records the downloaded media bytes
// and the save folder totals.
func (s *Summary) Finish(mediaBytes int64, output OutputCounts) {
	s.FinishedAt = time.Now().UTC()
	s.Media.Bytes = mediaBytes
	s.Output = output
}

// Duration returns how long the run took
func (s *Summary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Writer stores a file relative to the save folder
type Writer interface {
	WriteFile(rel string, data []byte) error
}

// Save writes the summary as indented JSON
func (s *Summary) Save(w Writer) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := w.WriteFile(FileName, data); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	return nil
}

// Load reads a summary file
func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary file: %w", err)
	}

	var s Summary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
	}

	return &s, nil
}

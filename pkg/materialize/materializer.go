package materialize

import (
	"context"

	"tumblrbackup/pkg/logger"
	"tumblrbackup/pkg/tumblr"
)

// Target persists a single post
type Target interface {
	Name() string
	Save(ctx context.Context, post *tumblr.Post) (Outcome, error)
}

// MediaOutcome records one media file referenced by a post
type MediaOutcome struct {
	Path    string
	URL     string
	Skipped bool
	Failed  bool
}

// Outcome describes what saving a post produced
type Outcome struct {
	Slug string
	Kind tumblr.Kind
	// File is relative to the save folder; empty when nothing was written
	File    string
	Written bool
	Media   []MediaOutcome
	// Unsupported is set for post types that were skipped
	Unsupported bool
}

// Materializer dispatches posts to the run's output target
type Materializer struct {
	target Target
	logger logger.Logger
}

// New creates a Materializer for target
func New(target Target, log logger.Logger) *Materializer {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Materializer{target: target, logger: log}
}

// Target returns the output target
func (m *Materializer) Target() Target {
	return m.target
}

// Materialize saves post. Unsupported types are logged and skipped
// without error. A post missing an element its type requires returns a
// post_shape error; media download failures are not errors.
func (m *Materializer) Materialize(ctx context.Context, post *tumblr.Post) (Outcome, error) {
	if post.Kind == tumblr.KindUnsupported {
		m.logger.DebugWithFields("unsupported post type, skipping", map[string]interface{}{
			"slug": post.Slug(),
			"type": post.Type,
		})
		return Outcome{Slug: post.Slug(), Kind: post.Kind, Unsupported: true}, nil
	}

	return m.target.Save(ctx, post)
}

package materialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tumblrbackup/pkg/logger"
	"tumblrbackup/pkg/tumblr"
)

type recordingTarget struct {
	saved []string
}

func (r *recordingTarget) Name() string { return "recording" }

func (r *recordingTarget) Save(ctx context.Context, post *tumblr.Post) (Outcome, error) {
	r.saved = append(r.saved, post.Slug())
	return Outcome{Slug: post.Slug(), Kind: post.Kind, Written: true}, nil
}

func TestMaterializeDispatchesToTarget(t *testing.T) {
	target := &recordingTarget{}
	m := New(target, logger.NewNopLogger())

	outcome, err := m.Materialize(context.Background(), &tumblr.Post{Kind: tumblr.KindRegular, URLWithSlug: "http://b/post/1/a"})
	require.NoError(t, err)
	assert.True(t, outcome.Written)
	assert.Equal(t, []string{"a"}, target.saved)
	assert.Equal(t, target, m.Target())
}

func TestMaterializeSkipsUnsupported(t *testing.T) {
	target := &recordingTarget{}
	log := logger.NewTestLogger()
	m := New(target, log)

	outcome, err := m.Materialize(context.Background(), &tumblr.Post{Kind: tumblr.KindUnsupported, Type: "answer", URLWithSlug: "http://b/post/2/q"})
	require.NoError(t, err)
	assert.True(t, outcome.Unsupported)
	assert.Empty(t, target.saved)

	debug := log.GetMessagesByLevel("DEBUG")
	require.Len(t, debug, 1)
	assert.Equal(t, "answer", debug[0].Fields["type"])
}

package materialize

import (
	"context"
	"encoding/csv"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tumblrbackup/pkg/storage"
	"tumblrbackup/pkg/tumblr"
)

func TestCSVTargetWritesHeaderAndRows(t *testing.T) {
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.WriteFile("blog.csv", []byte("stale,data\r\n")))

	target, err := NewCSVTarget(store, "blog")
	require.NoError(t, err)
	assert.Equal(t, "blog.csv", target.File())

	posts := []*tumblr.Post{
		{
			Kind: tumblr.KindRegular, URLWithSlug: "http://b/post/1/first", DateGMT: "2012-01-01 10:00:00 GMT",
			Tags:    []string{"a", "b"},
			Regular: tumblr.RegularContent{Title: tumblr.Some("Title, with comma"), Body: tumblr.Some("&lt;p&gt;body&lt;/p&gt;")},
		},
		{
			Kind: tumblr.KindPhoto, URLWithSlug: "http://b/post/2/pic", DateGMT: "2012-01-02 10:00:00 GMT",
			Photo: tumblr.PhotoContent{Caption: tumblr.Some("cap"), URLs: map[string]string{"1280": "https://m/p_1280.jpg"}},
		},
		{
			Kind: tumblr.KindLink, URLWithSlug: "http://b/post/3/link", DateGMT: "2012-01-03 10:00:00 GMT",
			Link: tumblr.LinkContent{Text: tumblr.Some("Go"), URL: tumblr.Some("https://go.dev"), Description: tumblr.Some("lang")},
		},
	}
	for _, p := range posts {
		outcome, err := target.Save(context.Background(), p)
		require.NoError(t, err)
		assert.True(t, outcome.Written)
	}

	raw, err := os.ReadFile(store.Path("blog.csv"))
	require.NoError(t, err)
	content := string(raw)
	assert.True(t, strings.HasPrefix(content, CSVHeader))
	assert.NotContains(t, content, "stale")
	assert.Equal(t, 4, strings.Count(content, "\r\n"))

	records, err := csv.NewReader(strings.NewReader(content)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	for _, r := range records {
		assert.Len(t, r, 12)
	}

	assert.Equal(t, []string{"first", "2012-01-01 10:00:00 GMT", "Title, with comma", "<p>body</p>", "", "", "", "", "", "", "", "a, b"}, records[1])
	assert.Equal(t, "cap", records[2][4])
	assert.Equal(t, "https://m/p_1280.jpg", records[2][5])
	assert.Equal(t, []string{"Go", "https://go.dev", "lang"}, records[3][8:11])
}

func TestCSVTargetDoesNotDownloadMedia(t *testing.T) {
	store, err := storage.NewManager(t.TempDir())
	require.NoError(t, err)
	target, err := NewCSVTarget(store, "blog")
	require.NoError(t, err)

	post := &tumblr.Post{Kind: tumblr.KindPhoto, URLWithSlug: "http://b/post/1/p", Photo: tumblr.PhotoContent{URLs: map[string]string{"1280": "http://127.0.0.1:1/x.jpg"}}}
	outcome, err := target.Save(context.Background(), post)
	require.NoError(t, err)
	assert.Empty(t, outcome.Media)
	assert.False(t, store.Exists(storage.ImagesDir))
}

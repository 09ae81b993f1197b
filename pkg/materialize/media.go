package materialize

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"tumblrbackup/pkg/naming"
	"tumblrbackup/pkg/tumblr"
)

var (
	errNoFullResolution = errors.New("no 1280 photo-url")
	errNoPhotoName      = errors.New("photo url has no file name")
	errNoPlayer         = errors.New("empty video-player")
	errNoSource         = errors.New("video-player has no source element")
	errNoSourceURL      = errors.New("video source has no src")
	errBadMimeType      = errors.New("video source type has no subtype")
	errNoVideoName      = errors.New("video src has no usable path segment")
)

// minVideoStemLen is the shortest final segment, in characters, accepted
// as a video file stem; shorter ones are quality suffixes such as /480.
const minVideoStemLen = 5

// PhotoFile returns the full resolution URL of a photo post and the
// local file name it is saved under.
func PhotoFile(post *tumblr.Post) (string, string, error) {
	src, ok := post.Photo.FullResolution()
	if !ok {
		return "", "", errNoFullResolution
	}
	name := naming.LastSegment(src)
	if name == "" || name == "." || name == "/" {
		return "", "", errNoPhotoName
	}
	return src, name, nil
}

// VideoSource finds the first <source> in an embedded player and
// returns its src and type attributes.
func VideoSource(player string) (string, string, error) {
	if strings.TrimSpace(player) == "" {
		return "", "", errNoPlayer
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(naming.UnescapeAngles(player)))
	if err != nil {
		return "", "", err
	}

	source := doc.Find("source").First()
	if source.Length() == 0 {
		return "", "", errNoSource
	}

	src, ok := source.Attr("src")
	if !ok || strings.TrimSpace(src) == "" {
		return "", "", errNoSourceURL
	}
	mimeType, _ := source.Attr("type")
	return strings.TrimSpace(src), strings.TrimSpace(mimeType), nil
}

// VideoFileName derives the local name of a video from its source URL
// and MIME type. The stem is the last path segment, or the one before it
// when the last is shorter than five characters; the extension is the
// MIME subtype.
func VideoFileName(src, mimeType string) (string, error) {
	slash := strings.IndexByte(mimeType, '/')
	if slash < 0 {
		return "", errBadMimeType
	}
	ext := mimeType[slash+1:]
	if i := strings.IndexByte(ext, ';'); i >= 0 {
		ext = ext[:i]
	}
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return "", errBadMimeType
	}

	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	segments := strings.Split(src, "/")
	stem := segments[len(segments)-1]
	if utf8.RuneCountInString(stem) < minVideoStemLen && len(segments) > 1 {
		stem = segments[len(segments)-2]
	}
	if stem == "" {
		return "", errNoVideoName
	}

	return stem + "." + ext, nil
}

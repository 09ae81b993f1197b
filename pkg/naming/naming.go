// Package naming derives on-disk names from post URLs and cleans the
// escaped text the read API returns.
package naming

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"
)

// DefaultMaxNameBytes leaves room for a ".html" suffix under the common
// 255 byte file name limit.
const DefaultMaxNameBytes = 250

// ErrUnsupportedEncoding is returned for any encoding other than utf-8
var ErrUnsupportedEncoding = errors.New("unsupported encoding")

// Options controls file name derivation. It is immutable once built.
type Options struct {
	encoding     string
	maxNameBytes int
}

// NewOptions validates and builds naming options. Only utf-8 is accepted.
func NewOptions(encoding string, maxNameBytes int) (Options, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "utf-8", "utf8":
	default:
		return Options{}, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
	if maxNameBytes <= 0 || maxNameBytes > DefaultMaxNameBytes {
		return Options{}, fmt.Errorf("max name bytes must be between 1 and %d, got %d", DefaultMaxNameBytes, maxNameBytes)
	}
	return Options{encoding: "utf-8", maxNameBytes: maxNameBytes}, nil
}

// DefaultOptions returns utf-8 with a 250 byte budget
func DefaultOptions() Options {
	return Options{encoding: "utf-8", maxNameBytes: DefaultMaxNameBytes}
}

func (o Options) Encoding() string  { return o.encoding }
func (o Options) MaxNameBytes() int { return o.maxNameBytes }

// escapes are applied in order. Double-escaped angle brackets come first
// so "&amp;lt;" yields "<"; the bare ampersand goes last so "&amp;amp;"
// only loses one level.
var escapes = []struct{ from, to string }{
	{"&#13;", "\r"},
	{"&amp;lt;", "<"},
	{"&amp;gt;", ">"},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
}

// Unescape replaces the entities the read API leaves in post text
func Unescape(s string) string {
	if s == "" {
		return ""
	}
	for _, e := range escapes {
		s = strings.ReplaceAll(s, e.from, e.to)
	}
	return s
}

// UnescapeAngles only restores < and >. Used on embedded player markup
// before it is parsed again.
func UnescapeAngles(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	return strings.ReplaceAll(s, "&gt;", ">")
}

// Slug returns the text after the last "/" of a url-with-slug value
func Slug(urlWithSlug string) string {
	if i := strings.LastIndexByte(urlWithSlug, '/'); i >= 0 {
		return urlWithSlug[i+1:]
	}
	return urlWithSlug
}

// ByteTruncate cuts s to at most max bytes without splitting a
// multi-byte character.
func ByteTruncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	i := max
	for i > 0 && !utf8.RuneStart(s[i]) {
		i--
	}
	return s[:i]
}

// SafeSlug is Slug followed by ByteTruncate with the options' budget
func (o Options) SafeSlug(urlWithSlug string) string {
	return ByteTruncate(Slug(urlWithSlug), o.maxNameBytes)
}

// LastSegment returns the final path segment of a URL, ignoring any
// query string.
func LastSegment(rawURL string) string {
	if i := strings.IndexAny(rawURL, "?#"); i >= 0 {
		rawURL = rawURL[:i]
	}
	return path.Base(strings.TrimRight(rawURL, "/"))
}

package tumblr

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	// ReadEndpoint is the path of the v1 read API on every blog host
	ReadEndpoint = "/api/read"

	// MaxPageSize is the most posts the read API returns per request
	MaxPageSize = 50
)

// BaseURL returns the API root for account. A non-empty override
// replaces http://<account>.
func BaseURL(account, override string) string {
	if override != "" {
		return strings.TrimRight(override, "/")
	}
	return "http://" + account
}

// ReadURL builds the read API URL for num posts starting at start
func ReadURL(base string, num, start int) string {
	if num <= 0 || num > MaxPageSize {
		num = MaxPageSize
	}

	params := url.Values{}
	params.Set("num", fmt.Sprint(num))
	params.Set("start", fmt.Sprint(start))

	return fmt.Sprintf("%s%s?%s", base, ReadEndpoint, params.Encode())
}

// UpperBound returns the index of the last post a page starting at
// offset can hold, clamped to the last post of the blog.
func UpperBound(offset, total, pageSize int) int {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	upper := offset + pageSize - 1
	if upper > total-1 {
		upper = total - 1
	}
	return upper
}

// Offsets lists the page offsets from start up to total, stepping by
// the page size.
func Offsets(start, total, pageSize int) []int {
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	if start < 0 {
		start = 0
	}
	var offsets []int
	for i := start; i < total; i += pageSize {
		offsets = append(offsets, i)
	}
	return offsets
}

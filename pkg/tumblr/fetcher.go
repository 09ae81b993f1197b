package tumblr

import (
	"context"
	"errors"

	errs "tumblrbackup/pkg/errors"
	"tumblrbackup/pkg/logger"
	"tumblrbackup/pkg/ratelimit"
)

// FetcherOptions configures a Fetcher
type FetcherOptions struct {
	// BaseURL replaces http://<account> when set
	BaseURL  string
	PageSize int
}

// Fetcher turns the read API into a sequence of parsed pages
type Fetcher struct {
	client   *Client
	limiter  ratelimit.Limiter
	baseURL  string
	pageSize int
	logger   logger.Logger
}

// NewFetcher creates a Fetcher. A nil limiter disables pacing.
func NewFetcher(client *Client, limiter ratelimit.Limiter, opts FetcherOptions, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return &Fetcher{
		client:   client,
		limiter:  limiter,
		baseURL:  opts.BaseURL,
		pageSize: pageSize,
		logger:   log,
	}
}

// PageSize returns the number of posts requested per page
func (f *Fetcher) PageSize() int {
	return f.pageSize
}

// FetchFirstPage requests a single post to learn the blog's title,
// description and total post count. Errors are fatal for a run.
func (f *Fetcher) FetchFirstPage(ctx context.Context, account string) (*Blog, error) {
	url := ReadURL(BaseURL(account, f.baseURL), 1, 0)

	f.logger.DebugWithFields("fetching blog information", map[string]interface{}{
		"account": account,
		"url":     url,
	})

	body, err := f.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	resp, err := parseReadResponse(body)
	if err != nil {
		return nil, err
	}

	blog := resp.blog()
	if blog.Name == "" {
		blog.Name = account
	}
	if blog.TotalPosts < 0 {
		return nil, errs.New(errs.ErrorTypeParsing, 0, "negative posts total %d", blog.TotalPosts)
	}
	return blog, nil
}

// FetchPage waits the pacing delay, then requests the page at offset.
// Failures are logged and reported through Page.Err with no posts; the
// caller moves on to the next offset.
func (f *Fetcher) FetchPage(ctx context.Context, account string, offset, total int) Page {
	page := Page{
		Offset: offset,
		Upper:  UpperBound(offset, total, f.pageSize),
		Total:  total,
	}

	if err := f.limiter.Wait(ctx); err != nil {
		page.Err = err
		return page
	}

	url := ReadURL(BaseURL(account, f.baseURL), f.pageSize, offset)
	logger.LogPageRange(f.logger, page.Offset, page.Upper, total)

	body, err := f.client.Get(ctx, url)
	if err == nil {
		var resp *readResponse
		if resp, err = parseReadResponse(body); err == nil {
			page.Posts = resp.posts()
			return page
		}
	}

	page.Err = err
	if !errors.Is(err, context.Canceled) {
		var code int
		var typed *errs.Error
		if errors.As(err, &typed) {
			code = typed.Code
		}
		f.logger.WarnWithFields("failed to fetch page, skipping", map[string]interface{}{
			"offset": offset,
			"upper":  page.Upper,
			"url":    url,
			"kind":   string(errs.TypeOf(err)),
			"code":   code,
			"error":  err.Error(),
		})
	}
	return page
}

// Pages returns an iterator over the pages covering [start, total)
func (f *Fetcher) Pages(account string, start, total int) *PageIterator {
	return &PageIterator{
		fetcher: f,
		account: account,
		offsets: Offsets(start, total, f.pageSize),
		total:   total,
	}
}

// PageIterator yields pages in offset order. It cannot be restarted.
type PageIterator struct {
	fetcher   *Fetcher
	account   string
	offsets   []int
	total     int
	next      int
	onRequest func(offset, upper int)
}

// OnRequest registers fn to run before each page's pacing delay
func (it *PageIterator) OnRequest(fn func(offset, upper int)) {
	it.onRequest = fn
}

// Len returns the number of pages the iterator covers
func (it *PageIterator) Len() int {
	return len(it.offsets)
}

// Next fetches the next page. It returns false once every offset has
// been attempted or ctx is done.
func (it *PageIterator) Next(ctx context.Context) (Page, bool) {
	if it.next >= len(it.offsets) || ctx.Err() != nil {
		return Page{}, false
	}

	offset := it.offsets[it.next]
	it.next++

	if it.onRequest != nil {
		it.onRequest(offset, UpperBound(offset, it.total, it.fetcher.pageSize))
	}

	page := it.fetcher.FetchPage(ctx, it.account, offset, it.total)
	if page.Err != nil && ctx.Err() != nil {
		// cancelled mid-page; remaining offsets are not attempted
		it.next = len(it.offsets)
		return page, false
	}
	return page, true
}

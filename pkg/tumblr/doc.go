// Package tumblr reads a blog through the public v1 read API.
//
// The API serves XML at http://<account>/api/read with num and start
// query parameters, at most 50 posts per request. A run first asks for
// a single post to learn the total, then walks the offsets:
//
//	client := tumblr.NewClient(30*time.Second, log)
//	fetcher := tumblr.NewFetcher(client, ratelimit.NewFixedDelay(5*time.Second), tumblr.FetcherOptions{}, log)
//
//	blog, err := fetcher.FetchFirstPage(ctx, "staff.tumblr.com")
//	pages := fetcher.Pages("staff.tumblr.com", 0, blog.TotalPosts)
//	for page, ok := pages.Next(ctx); ok; page, ok = pages.Next(ctx) {
//	    for _, post := range page.Posts { ... }
//	}
//
// Page failures never stop the sequence; they are logged and surface
// as a Page with Err set.
package tumblr

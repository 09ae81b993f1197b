// Package downloader saves the images and videos a post references.
// Jobs run one at a time on the caller's goroutine; a file already on
// disk is never fetched again.
package downloader

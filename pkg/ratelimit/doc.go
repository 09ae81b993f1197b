// Package ratelimit paces requests to the read API.
//
// The API has no published quota, so the backup waits a fixed delay
// before every page request:
//
//	limiter := ratelimit.NewFixedDelay(5 * time.Second)
//	if err := limiter.Wait(ctx); err != nil {
//	    return err // cancelled
//	}
//
// Tests pass a zero delay or Nop.
package ratelimit

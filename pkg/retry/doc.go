// Package retry wraps network calls in a bounded retry loop.
//
// The backup makes a single attempt per request unless retry.max_attempts
// is raised in the config. Only network, rate limit and server errors
// from pkg/errors are retried:
//
//	policy := retry.FromConfig(cfg.Retry, log)
//	body, err := retry.DoWithResult(ctx, policy, func(ctx context.Context) ([]byte, error) {
//		return client.Get(ctx, url)
//	})
package retry

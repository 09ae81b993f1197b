package tumblr

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "tumblrbackup/pkg/errors"
	"tumblrbackup/pkg/logger"
	"tumblrbackup/pkg/retry"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

// Client performs GET requests against the read API and media hosts
type Client struct {
	httpClient      *http.Client
	headers         map[string]string
	downloadTimeout time.Duration
	maxFileSize     int64
	policy          *retry.Policy
	logger          logger.Logger
}

// NewClient creates a client whose requests time out after timeout
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent": DefaultUserAgent,
			"Accept":     "application/xml,text/xml;q=0.9,*/*;q=0.8",
		},
		policy: retry.SingleAttempt(),
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetRetryPolicy replaces the single-attempt default
func (c *Client) SetRetryPolicy(p *retry.Policy) {
	if p != nil {
		c.policy = p
	}
}

// SetDownloadLimits bounds media downloads. Zero values mean no extra
// timeout and no size limit.
func (c *Client) SetDownloadLimits(timeout time.Duration, maxFileSize int64) {
	c.downloadTimeout = timeout
	c.maxFileSize = maxFileSize
}

// doRequest performs an HTTP request with the configured headers
func (c *Client) doRequest(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeProtocol, err, "failed to create request for %s", rawURL)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, ctxErr
		}
		c.logger.WarnWithFields("HTTP request failed", map[string]interface{}{
			"url":         rawURL,
			"error":       err.Error(),
			"duration_ms": elapsed,
		})
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "request to %s failed", rawURL)
	}

	logger.LogRequest(c.logger, req.Method, rawURL, resp.StatusCode, elapsed)
	return resp, nil
}

// checkResponseStatus maps a non-2xx status to a typed error
func checkResponseStatus(resp *http.Response, rawURL string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	t := errs.TypeForStatus(resp.StatusCode)
	if t == errs.ErrorTypeUnknown {
		t = errs.ErrorTypeProtocol
	}
	return errs.New(t, resp.StatusCode, "unexpected status %d from %s", resp.StatusCode, rawURL)
}

// readBody issues one GET and returns the full body of a 2xx response
func (c *Client) readBody(ctx context.Context, rawURL string, limit int64) ([]byte, error) {
	resp, err := c.doRequest(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkResponseStatus(resp, rawURL); err != nil {
		return nil, err
	}

	var body io.Reader = resp.Body
	if limit > 0 {
		body = io.LimitReader(resp.Body, limit+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "failed to read response body from %s", rawURL)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, errs.New(errs.ErrorTypeIO, resp.StatusCode, "%s exceeds the %d byte limit", rawURL, limit)
	}
	return data, nil
}

// Get fetches rawURL under the client's retry policy
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return retry.DoWithResult(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.readBody(ctx, rawURL, 0)
	})
}

// Download fetches a media file, honouring the download timeout and size limit
func (c *Client) Download(ctx context.Context, mediaURL string) ([]byte, error) {
	if c.downloadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.downloadTimeout)
		defer cancel()
	}

	data, err := retry.DoWithResult(ctx, c.policy, func(ctx context.Context) ([]byte, error) {
		return c.readBody(ctx, mediaURL, c.maxFileSize)
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", mediaURL, err)
	}

	c.logger.DebugWithFields("downloaded media", map[string]interface{}{
		"url":  mediaURL,
		"size": len(data),
	})
	return data, nil
}

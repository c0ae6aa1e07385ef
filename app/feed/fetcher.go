package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const DefaultFetchTimeout = 10 * time.Second

// maxFeedSize bounds how much of a response body is read.
const maxFeedSize = 10 << 20

type Fetcher struct {
	httpClient     *http.Client
	userAgent      string
	defaultTimeout time.Duration
}

func NewFetcher(httpClient *http.Client, userAgent string, defaultTimeout time.Duration) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if defaultTimeout <= 0 {
		defaultTimeout = DefaultFetchTimeout
	}
	return &Fetcher{
		httpClient:     httpClient,
		userAgent:      userAgent,
		defaultTimeout: defaultTimeout,
	}
}

// Run retrieves one feed address. It never retries; a non-positive timeout
// is replaced by the fetcher's default so every request carries a deadline.
func (f *Fetcher) Run(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = f.defaultTimeout
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrFetchTransport, err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, classifyFetchError(timeoutCtx, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, URL: url}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
	if err != nil {
		return nil, classifyFetchError(timeoutCtx, url, err)
	}

	return data, nil
}

func classifyFetchError(ctx context.Context, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrFetchTimeout, url)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s", ErrFetchTimeout, url)
	}

	return fmt.Errorf("%w: %s: %v", ErrFetchTransport, url, err)
}

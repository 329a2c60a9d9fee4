package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pageinsight/backend/analyzer"
)

// ErrUnreachable marks a target page that could not be fetched, either
// because the request failed or because it answered with an error
// status. The requester can remedy it, so it surfaces as a client error.
var ErrUnreachable = errors.New("target page unreachable")

// Fetcher downloads pages with a pooled, keep-alive transport.
type Fetcher struct {
	client *http.Client
}

// New creates a Fetcher with the given per-request timeout.
func New(timeout time.Duration) *Fetcher {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

// Fetch retrieves targetURL once — no retries — and returns at most the
// first analyzer.MaxMarkupLength bytes of the body.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("User-Agent", "PageInsight/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}

	var b strings.Builder
	if _, err := io.Copy(&b, io.LimitReader(resp.Body, analyzer.MaxMarkupLength)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return b.String(), nil
}

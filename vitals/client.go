package vitals

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const defaultEndpoint = "https://www.googleapis.com/pagespeedonline/v5/runPagespeed"

// Client measures page-load quality through the PageSpeed Insights API.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	strategy   string
	logger     *slog.Logger
}

// NewClient creates a measurement client. An empty apiKey puts the
// client in its degraded no-credential mode.
func NewClient(apiKey, strategy string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   defaultEndpoint,
		apiKey:     apiKey,
		strategy:   strategy,
		logger:     logger,
	}
}

// Measure runs one measurement attempt for targetURL. It never returns
// an error: every failure mode degrades to an unavailable CoreWebVitals
// value. The call is attempted exactly once.
func (c *Client) Measure(ctx context.Context, targetURL string) CoreWebVitals {
	if c.apiKey == "" {
		return Unavailable()
	}

	query := url.Values{}
	query.Set("url", targetURL)
	query.Set("key", c.apiKey)
	query.Set("strategy", c.strategy)
	query.Set("category", "performance")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		c.logger.Warn("pagespeed request build failed", "url", targetURL, "error", err)
		return Failed()
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("pagespeed call failed", "url", targetURL, "error", err)
		return Failed()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("pagespeed returned non-success status", "url", targetURL, "status", resp.StatusCode)
		return Failed()
	}

	var payload pagespeedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.Warn("pagespeed response decode failed", "url", targetURL, "error", err)
		return Failed()
	}

	return normalize(&payload)
}

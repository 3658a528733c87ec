package hdx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mkoziy/hdxinfo/internal/metrics"
	"github.com/mkoziy/hdxinfo/internal/models"
	"github.com/mkoziy/hdxinfo/internal/ratelimit"
)

const (
	searchQuery  = "*:*"
	searchFilter = "+dataset_type:dataset"
	searchSort   = "metadata_created asc"
)

// Client calls the CKAN action API of an HDX site.
type Client struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	siteURL    string
	userAgent  string
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewClient creates a client for siteURL, e.g. https://data.humdata.org.
func NewClient(siteURL, userAgent string, limiter ratelimit.Limiter, m *metrics.Metrics, logger *zap.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		limiter:    limiter,
		siteURL:    siteURL,
		userAgent:  userAgent,
		metrics:    m,
		logger:     logger,
	}
}

// SiteURL returns the site the client talks to.
func (c *Client) SiteURL() string {
	return c.siteURL
}

// Search runs one package_search page.
func (c *Client) Search(ctx context.Context, start, rows int) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", searchQuery)
	params.Set("fq", searchFilter)
	params.Set("sort", searchSort)
	params.Set("include_private", "true")
	params.Set("start", strconv.Itoa(start))
	params.Set("rows", strconv.Itoa(rows))

	u := fmt.Sprintf("%s/api/3/action/package_search?%s", c.siteURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	c.logger.Debug("package_search", zap.Int("start", start), zap.Int("rows", rows))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(models.SourceHDX, 0)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.metrics.ObserveRequest(models.SourceHDX, resp.StatusCode)

	// CKAN reports action errors in the body with a 4xx status
	var result envelope[SearchResponse]
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if err := json.Unmarshal(body, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !result.Success {
		if result.Error != nil {
			return nil, fmt.Errorf("package_search: %w", result.Error)
		}
		return nil, fmt.Errorf("package_search failed with status %d", resp.StatusCode)
	}
	return &result.Result, nil
}

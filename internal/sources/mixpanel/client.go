package mixpanel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkoziy/hdxinfo/internal/metrics"
	"github.com/mkoziy/hdxinfo/internal/models"
	"github.com/mkoziy/hdxinfo/internal/ratelimit"
)

// DefaultBaseURL is the Mixpanel query API host.
const DefaultBaseURL = "https://mixpanel.com"

const dateLayout = "2006-01-02"

// Client runs JQL queries against Mixpanel.
type Client struct {
	httpClient *http.Client
	limiter    ratelimit.Limiter
	baseURL    string
	apiSecret  string
	metrics    *metrics.Metrics
	logger     *zap.Logger
}

// NewClient creates a Mixpanel client authenticated with the project's API secret.
func NewClient(baseURL, apiSecret string, limiter ratelimit.Limiter, m *metrics.Metrics, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		limiter:    limiter,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiSecret:  apiSecret,
		metrics:    m,
		logger:     logger,
	}
}

// QueryDownloads runs the downloads-by-dataset JQL for [from, to].
func (c *Client) QueryDownloads(ctx context.Context, from, to time.Time) ([]DatasetCount, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params, err := json.Marshal(jqlParams{
		FromDate: from.UTC().Format(dateLayout),
		ToDate:   to.UTC().Format(dateLayout),
		Event:    DownloadEvent,
	})
	if err != nil {
		return nil, fmt.Errorf("encode params: %w", err)
	}

	form := url.Values{}
	form.Set("script", downloadsByDatasetJQL)
	form.Set("params", string(params))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/2.0/jql", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.apiSecret, "")

	c.logger.Debug("running jql", zap.String("params", string(params)))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(models.SourceMixpanel, 0)
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.metrics.ObserveRequest(models.SourceMixpanel, resp.StatusCode)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var rows []DatasetCount
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return rows, nil
}

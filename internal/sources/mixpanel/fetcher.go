package mixpanel

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Fetcher turns analytics events into per-dataset download totals.
type Fetcher struct {
	client *Client
	logger *zap.Logger
}

// NewFetcher creates a downloads fetcher.
func NewFetcher(client *Client, logger *zap.Logger) *Fetcher {
	return &Fetcher{client: client, logger: logger}
}

// GetDownloads returns dataset id -> downloads between from and to.
// Events without a dataset id are dropped.
func (f *Fetcher) GetDownloads(ctx context.Context, from, to time.Time) (map[string]int, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("invalid window: %s is before %s", to.Format(dateLayout), from.Format(dateLayout))
	}

	rows, err := f.client.QueryDownloads(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("query downloads: %w", err)
	}

	downloads := make(map[string]int, len(rows))
	dropped := 0
	for _, row := range rows {
		if row.DatasetID == "" {
			dropped++
			continue
		}
		downloads[row.DatasetID] += row.Value
	}

	f.logger.Info("fetched downloads",
		zap.Int("datasets", len(downloads)),
		zap.Int("rows_without_dataset", dropped))

	return downloads, nil
}

package hdx

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mkoziy/hdxinfo/internal/models"
)

// DefaultPageSize is the largest page the HDX CKAN instance serves.
const DefaultPageSize = 1000

// Fetcher lists the whole catalog.
type Fetcher struct {
	client   *Client
	pageSize int
	logger   *zap.Logger
}

// NewFetcher creates a fetcher. pageSize <= 0 selects DefaultPageSize.
func NewFetcher(client *Client, pageSize int, logger *zap.Logger) *Fetcher {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Fetcher{client: client, pageSize: pageSize, logger: logger}
}

// GetAllDatasets pages through the catalog and returns every dataset once,
// in catalog order. Any invalid record aborts the listing.
func (f *Fetcher) GetAllDatasets(ctx context.Context) ([]models.Dataset, error) {
	all := make([]models.Dataset, 0)
	seen := make(map[string]bool)

	for start := 0; ; start += f.pageSize {
		page, err := f.client.Search(ctx, start, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("search at %d: %w", start, err)
		}

		for i := range page.Results {
			dataset := page.Results[i]
			if err := dataset.Validate(); err != nil {
				return nil, err
			}
			// paging over a catalog that changes underneath can repeat records
			if seen[dataset.ID] {
				continue
			}
			seen[dataset.ID] = true
			all = append(all, dataset)
		}

		f.logger.Debug("listed datasets", zap.Int("so_far", len(all)), zap.Int("count", page.Count))

		if len(page.Results) < f.pageSize {
			break
		}
	}

	return all, nil
}

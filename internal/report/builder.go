package report

import (
	"strings"
	"time"

	"github.com/mkoziy/hdxinfo/internal/metrics"
	"github.com/mkoziy/hdxinfo/internal/models"
)

const (
	// NoOrganisation is written when a dataset has no organization.
	NoOrganisation = "NONE!"
	// OngoingEndDate is written as the end date of open-ended coverage.
	OngoingEndDate = "ongoing"
	tagSeparator   = ", "
)

// Builder turns catalog records into report rows and accumulates the
// monthly counters as a side effect.
type Builder struct {
	siteURL   string
	now       time.Time
	downloads map[string]int
	monthly   *MonthlyCounts
	rows      []models.DatasetRow
	scripted  int
	withStats int
	metrics   *metrics.Metrics
}

// NewBuilder creates a builder. downloads maps dataset id to downloads in
// the lookback window; now closes ongoing coverage ranges.
func NewBuilder(siteURL string, downloads map[string]int, now time.Time, m *metrics.Metrics) *Builder {
	return &Builder{
		siteURL:   siteURL,
		now:       now,
		downloads: downloads,
		monthly:   NewMonthlyCounts(),
		rows:      make([]models.DatasetRow, 0),
		metrics:   m,
	}
}

// Add builds the row for dataset and appends it.
func (b *Builder) Add(dataset *models.Dataset) error {
	row, err := b.buildRow(dataset)
	if err != nil {
		return err
	}

	scripted := dataset.IsScriptUpdated()
	if scripted {
		b.scripted++
	} else {
		b.monthly.Add(dataset.MetadataCreated, dataset.MetadataModified, dataset.LastModified)
	}
	if _, ok := b.downloads[dataset.ID]; ok {
		b.withStats++
	}
	b.metrics.ObserveDataset(scripted)

	b.rows = append(b.rows, row)
	return nil
}

// Rows returns the rows in the order datasets were added.
func (b *Builder) Rows() []models.DatasetRow {
	return b.rows
}

// Monthly returns the non-script activity counters.
func (b *Builder) Monthly() *MonthlyCounts {
	return b.monthly
}

// Stats returns datasets seen, script-updated datasets and datasets with
// a downloads entry.
func (b *Builder) Stats() (total, scripted, withDownloads int) {
	return len(b.rows), b.scripted, b.withStats
}

func (b *Builder) buildRow(dataset *models.Dataset) (models.DatasetRow, error) {
	date, err := dataset.DateOfDataset(b.now)
	if err != nil {
		return models.DatasetRow{}, err
	}
	endDate := date.EndString
	if date.Ongoing {
		endDate = OngoingEndDate
	}

	organisation, ok := dataset.OrganizationTitle()
	if !ok {
		organisation = NoOrganisation
	}

	requestable := dataset.IsRequestable()
	dataLink := ""
	if !requestable {
		dataLink, err = dataset.FirstResourceURL()
		if err != nil {
			return models.DatasetRow{}, err
		}
	}

	return models.DatasetRow{
		Name:                dataset.Name,
		Title:               dataset.Title,
		DownloadsAllTime:    dataset.TotalResDownloads,
		DownloadsLast5Years: b.downloads[dataset.ID],
		DateCreated:         dataset.MetadataCreated,
		DateMetadataUpdated: dataset.MetadataModified,
		DateDataUpdated:     dataset.LastModified,
		StartDate:           date.StartString,
		EndDate:             endDate,
		UpdateFrequency:     dataset.DataUpdateFrequency,
		Organisation:        organisation,
		DataLink:            dataLink,
		URL:                 dataset.HDXURL(b.siteURL),
		IsCOD:               dataset.IsCOD(),
		Tags:                strings.Join(dataset.TagNames(), tagSeparator),
		Private:             dataset.IsPrivate(),
		Requestable:         requestable,
		UpdatedByScript:     dataset.UpdatedByScript,
		Archived:            dataset.IsArchived(),
	}, nil
}

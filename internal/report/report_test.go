package report

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mkoziy/hdxinfo/internal/models"
)

const siteURL = "https://data.humdata.org"

var testNow = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func dataset(id string) models.Dataset {
	return models.Dataset{
		ID:               id,
		Name:             "name-" + id,
		Title:            "Title " + id,
		MetadataCreated:  "2020-01-05T09:00:00.000000",
		MetadataModified: "2020-02-10T09:00:00.000000",
		LastModified:     "2020-02-10T09:00:00.000000",
		Private:          boolPtr(false),
		Archived:         boolPtr(false),
		Resources:        []models.Resource{{URL: "https://example.org/" + id + ".csv"}},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestBuilderExample(t *testing.T) {
	d := dataset("d1")
	d.Private = boolPtr(true)

	b := NewBuilder(siteURL, map[string]int{"d1": 42}, testNow, nil)
	require.NoError(t, b.Add(&d))

	rows := b.Rows()
	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, NoOrganisation, row.Organisation)
	assert.True(t, row.Private)
	assert.Equal(t, 42, row.DownloadsLast5Years)
	assert.Equal(t, "https://data.humdata.org/dataset/name-d1", row.URL)

	assert.Equal(t, [][]string{
		{"2020-01", "1", "", ""},
		{"2020-02", "", "1", "1"},
	}, b.Monthly().Records())
}

func TestBuilderRowFields(t *testing.T) {
	total := int64(900)
	d := dataset("d2")
	d.Organization = &models.Organization{Title: "OCHA Ukraine"}
	d.Tags = []models.Tag{{Name: "geodata"}, {Name: models.CODTag}}
	d.TotalResDownloads = &total
	d.DatasetDate = "[2019-07-01T00:00:00 TO *]"
	d.DataUpdateFrequency = "365"
	d.Archived = boolPtr(true)

	b := NewBuilder(siteURL, map[string]int{}, testNow, nil)
	require.NoError(t, b.Add(&d))
	row := b.Rows()[0]

	assert.Equal(t, 0, row.DownloadsLast5Years)
	assert.Equal(t, "OCHA Ukraine", row.Organisation)
	assert.True(t, row.IsCOD)
	assert.Equal(t, "geodata, common operational dataset - cod", row.Tags)
	assert.Equal(t, "2019-07-01T00:00:00+00:00", row.StartDate)
	assert.Equal(t, OngoingEndDate, row.EndDate)
	assert.Equal(t, "https://example.org/d2.csv", row.DataLink)
	assert.False(t, row.Requestable)

	rec := row.Record()
	assert.Equal(t, "900", rec[2])
	assert.Equal(t, "365", rec[9])
	assert.Equal(t, "Y", rec[13])
	assert.Equal(t, "N", rec[15])
	assert.Equal(t, "Y", rec[18])
}

func TestBuilderRequestable(t *testing.T) {
	d := dataset("d3")
	d.IsRequestDataType = true
	d.Resources = nil

	b := NewBuilder(siteURL, nil, testNow, nil)
	require.NoError(t, b.Add(&d))
	row := b.Rows()[0]
	assert.True(t, row.Requestable)
	assert.Empty(t, row.DataLink)

	// non-requestable datasets need a resource
	d = dataset("d4")
	d.Resources = nil
	err := b.Add(&d)
	assert.True(t, errors.Is(err, models.ErrNoResources))
}

func TestBuilderSkipsScriptUpdatedInMonthly(t *testing.T) {
	manual := dataset("m")
	scripted := dataset("s")
	scripted.UpdatedByScript = "HDX Scraper: FTS (2024-05-01T00:00:00)"
	scripted.MetadataCreated = "2023-03-01T00:00:00"

	b := NewBuilder(siteURL, nil, testNow, nil)
	require.NoError(t, b.Add(&manual))
	require.NoError(t, b.Add(&scripted))

	assert.Len(t, b.Rows(), 2)
	assert.Equal(t, []string{"2020-01", "2020-02"}, b.Monthly().Keys())
	assert.Equal(t, "HDX Scraper: FTS (2024-05-01T00:00:00)", b.Rows()[1].UpdatedByScript)

	total, scriptedCount, withDownloads := b.Stats()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, scriptedCount)
	assert.Equal(t, 0, withDownloads)
}

func TestMonthlyCountsSortedUnion(t *testing.T) {
	m := NewMonthlyCounts()
	m.Add("2021-11-01T00:00:00", "2020-03-01T00:00:00", "2021-11-09T00:00:00")
	m.Add("2021-11-20T00:00:00", "2019-12-31T00:00:00", "2022-01-01T00:00:00")

	assert.Equal(t, []string{"2019-12", "2020-03", "2021-11", "2022-01"}, m.Keys())
	assert.Equal(t, [][]string{
		{"2019-12", "", "1", ""},
		{"2020-03", "", "1", ""},
		{"2021-11", "2", "", "1"},
		{"2022-01", "", "", "1"},
	}, m.Records())

	activity := m.Activity()
	require.Len(t, activity, 4)
	assert.Equal(t, "2021-11", activity[2].YearMonth)
	assert.Equal(t, 2, activity[2].Created)
	assert.Equal(t, 0, activity[2].MetadataUpdated)
}

func TestYearMonth(t *testing.T) {
	assert.Equal(t, "2020-01", YearMonth("2020-01-05T10:00:00"))
	assert.Equal(t, "2020", YearMonth("2020"))
}

func TestWriterWritesBothFiles(t *testing.T) {
	dir := t.TempDir()
	d := dataset("d1")
	d.Title = `Title, with "quotes"`

	b := NewBuilder(siteURL, map[string]int{"d1": 7}, testNow, nil)
	require.NoError(t, b.Add(&d))

	w := NewWriter(zap.NewNop(), nil)
	require.NoError(t, w.WriteDatasets(dir, b.Rows()))
	require.NoError(t, w.WriteMonthly(dir, b.Monthly()))

	datasets := readCSV(t, filepath.Join(dir, DatasetsFile))
	require.Len(t, datasets, 2)
	assert.Equal(t, models.DatasetHeader, datasets[0])
	assert.Equal(t, `Title, with "quotes"`, datasets[1][1])
	assert.Equal(t, "7", datasets[1][3])

	monthly := readCSV(t, filepath.Join(dir, MonthlyFile))
	assert.Equal(t, [][]string{
		models.MonthlyHeader,
		{"2020-01", "1", "", ""},
		{"2020-02", "", "1", "1"},
	}, monthly)
}

func TestWriterHeaderOnly(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(zap.NewNop(), nil)
	require.NoError(t, w.WriteDatasets(dir, nil))
	require.NoError(t, w.WriteMonthly(dir, NewMonthlyCounts()))

	assert.Equal(t, [][]string{models.DatasetHeader}, readCSV(t, filepath.Join(dir, DatasetsFile)))
	assert.Equal(t, [][]string{models.MonthlyHeader}, readCSV(t, filepath.Join(dir, MonthlyFile)))
}

func TestStagingCommitReplacesPreviousOutput(t *testing.T) {
	target := filepath.Join(t.TempDir(), "output")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "stale.csv"), []byte("x"), 0o644))

	s, err := Stage(target)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), DatasetsFile), []byte("name\n"), 0o644))
	require.NoError(t, s.Commit())
	require.NoError(t, s.Abort())

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DatasetsFile, entries[0].Name())

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), info.Mode().Perm())

	_, err = os.Stat(s.Dir())
	assert.True(t, os.IsNotExist(err))
	assert.Error(t, s.Commit())
}

func TestStagingAbortKeepsPreviousOutput(t *testing.T) {
	parent := t.TempDir()
	target := filepath.Join(parent, "output")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, DatasetsFile), []byte("old"), 0o644))

	s, err := Stage(target)
	require.NoError(t, err)
	require.NoError(t, s.Abort())

	data, err := os.ReadFile(filepath.Join(target, DatasetsFile))
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStagingCreatesMissingTarget(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "output")
	s, err := Stage(target)
	require.NoError(t, err)
	require.NoError(t, s.Commit())

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

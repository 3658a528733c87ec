package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mkoziy/hdxinfo/internal/metrics"
	"github.com/mkoziy/hdxinfo/internal/models"
)

// Output file names.
const (
	DatasetsFile = "datasets.csv"
	MonthlyFile  = "non_script_updates.csv"
)

// Writer serializes the two report tables into a directory.
type Writer struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewWriter creates a report writer.
func NewWriter(logger *zap.Logger, m *metrics.Metrics) *Writer {
	return &Writer{logger: logger, metrics: m}
}

// WriteDatasets writes the per-dataset table into dir.
func (w *Writer) WriteDatasets(dir string, rows []models.DatasetRow) error {
	records := make([][]string, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	return w.write(dir, DatasetsFile, models.DatasetHeader, records)
}

// WriteMonthly writes the non-script updates table into dir.
func (w *Writer) WriteMonthly(dir string, monthly *MonthlyCounts) error {
	return w.write(dir, MonthlyFile, models.MonthlyHeader, monthly.Records())
}

func (w *Writer) write(dir, name string, header []string, records [][]string) error {
	path := filepath.Join(dir, name)
	w.logger.Info("Writing rows", zap.String("file", path), zap.Int("rows", len(records)))

	if err := WriteCSV(path, header, records); err != nil {
		return err
	}
	w.metrics.ObserveRows(name, len(records))
	return nil
}

// WriteCSV writes a header line followed by records to path.
func WriteCSV(path string, header []string, records [][]string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write rows to %s: %w", path, err)
	}
	return nil
}

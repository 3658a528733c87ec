package report

import (
	"sort"
	"strconv"

	"github.com/mkoziy/hdxinfo/internal/models"
)

// YearMonth returns the "YYYY-MM" prefix of an ISO-8601 timestamp.
func YearMonth(timestamp string) string {
	if len(timestamp) < 7 {
		return timestamp
	}
	return timestamp[:7]
}

// MonthlyCounts accumulates non-script activity per year-month.
type MonthlyCounts struct {
	Created         map[string]int
	MetadataUpdated map[string]int
	DataUpdated     map[string]int
}

// NewMonthlyCounts returns empty counters.
func NewMonthlyCounts() *MonthlyCounts {
	return &MonthlyCounts{
		Created:         make(map[string]int),
		MetadataUpdated: make(map[string]int),
		DataUpdated:     make(map[string]int),
	}
}

// Add counts one dataset's create, metadata update and data update months.
func (m *MonthlyCounts) Add(created, metadataModified, lastModified string) {
	m.Created[YearMonth(created)]++
	m.MetadataUpdated[YearMonth(metadataModified)]++
	m.DataUpdated[YearMonth(lastModified)]++
}

// Keys returns the union of year-months across all counters, ascending.
func (m *MonthlyCounts) Keys() []string {
	seen := make(map[string]struct{}, len(m.Created))
	for _, counter := range []map[string]int{m.Created, m.MetadataUpdated, m.DataUpdated} {
		for key := range counter {
			seen[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Records renders one row per year-month. A counter with no entry for a
// month renders as an empty cell, not 0.
func (m *MonthlyCounts) Records() [][]string {
	keys := m.Keys()
	records := make([][]string, 0, len(keys))
	for _, key := range keys {
		records = append(records, []string{
			key,
			cell(m.Created, key),
			cell(m.MetadataUpdated, key),
			cell(m.DataUpdated, key),
		})
	}
	return records
}

// Activity converts the counters into ledger rows.
func (m *MonthlyCounts) Activity() []*models.MonthlyActivity {
	keys := m.Keys()
	months := make([]*models.MonthlyActivity, 0, len(keys))
	for _, key := range keys {
		months = append(months, &models.MonthlyActivity{
			YearMonth:       key,
			Created:         m.Created[key],
			MetadataUpdated: m.MetadataUpdated[key],
			DataUpdated:     m.DataUpdated[key],
		})
	}
	return months
}

func cell(counter map[string]int, key string) string {
	n, ok := counter[key]
	if !ok {
		return ""
	}
	return strconv.Itoa(n)
}

package models

import (
	"fmt"
	"strings"
	"time"
)

// ISODateLayout renders coverage dates with an explicit UTC offset.
const ISODateLayout = "2006-01-02T15:04:05-07:00"

var inputDateLayouts = []string{
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// DateOfDataset is the temporal coverage of a dataset.
type DateOfDataset struct {
	Start       time.Time
	End         time.Time
	StartString string
	EndString   string
	Ongoing     bool
}

// ParseDateOfDataset parses "[start TO end]", "[start TO *]" or a bare date.
// An empty value yields a zero DateOfDataset.
func ParseDateOfDataset(value string, now time.Time) (DateOfDataset, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DateOfDataset{}, nil
	}

	startStr, endStr := value, value
	if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
		parts := strings.SplitN(value[1:len(value)-1], " TO ", 2)
		if len(parts) != 2 {
			return DateOfDataset{}, fmt.Errorf("invalid dataset date %q", value)
		}
		startStr, endStr = strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	}

	start, err := parseDate(startStr)
	if err != nil {
		return DateOfDataset{}, err
	}

	result := DateOfDataset{Start: start, StartString: start.Format(ISODateLayout)}
	if endStr == "*" {
		result.Ongoing = true
		result.End = now.UTC()
	} else {
		end, err := parseDate(endStr)
		if err != nil {
			return DateOfDataset{}, err
		}
		result.End = end
	}
	result.EndString = result.End.Format(ISODateLayout)
	return result, nil
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", value)
}

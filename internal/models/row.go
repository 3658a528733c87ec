package models

import "strconv"

// DatasetHeader is the header of the per-dataset report, in column order.
var DatasetHeader = []string{
	"name",
	"title",
	"downloads all time",
	"downloads last 5 years",
	"date created",
	"date metadata updated",
	"date data updated",
	"dataset start date",
	"dataset end date",
	"update frequency",
	"organisation",
	"data link",
	"url",
	"is cod",
	"tags",
	"private",
	"requestable",
	"updated by script",
	"archived",
}

// MonthlyHeader is the header of the non-script update report.
var MonthlyHeader = []string{"Year Month", "Created", "Metadata Updated", "Data Updated"}

// DatasetRow is one line of the per-dataset report.
type DatasetRow struct {
	Name                string
	Title               string
	DownloadsAllTime    *int64
	DownloadsLast5Years int
	DateCreated         string
	DateMetadataUpdated string
	DateDataUpdated     string
	StartDate           string
	EndDate             string
	UpdateFrequency     string
	Organisation        string
	DataLink            string
	URL                 string
	IsCOD               bool
	Tags                string
	Private             bool
	Requestable         bool
	UpdatedByScript     string
	Archived            bool
}

// Record renders the row in DatasetHeader order.
func (r DatasetRow) Record() []string {
	allTime := ""
	if r.DownloadsAllTime != nil {
		allTime = strconv.FormatInt(*r.DownloadsAllTime, 10)
	}
	return []string{
		r.Name,
		r.Title,
		allTime,
		strconv.Itoa(r.DownloadsLast5Years),
		r.DateCreated,
		r.DateMetadataUpdated,
		r.DateDataUpdated,
		r.StartDate,
		r.EndDate,
		r.UpdateFrequency,
		r.Organisation,
		r.DataLink,
		r.URL,
		YesNo(r.IsCOD),
		r.Tags,
		YesNo(r.Private),
		YesNo(r.Requestable),
		r.UpdatedByScript,
		YesNo(r.Archived),
	}
}

// YesNo maps a flag to "Y" or "N".
func YesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

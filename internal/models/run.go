package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// ReportRun records one execution of the report.
type ReportRun struct {
	bun.BaseModel `bun:"table:report_runs,alias:rr"`

	ID                    int64      `bun:"id,pk,autoincrement" json:"id"`
	RunID                 string     `bun:"run_id,unique,notnull" json:"run_id"`
	OutputDir             string     `bun:"output_dir,notnull" json:"output_dir"`
	WindowStart           time.Time  `bun:"window_start,notnull" json:"window_start"`
	WindowEnd             time.Time  `bun:"window_end,notnull" json:"window_end"`
	StartTime             time.Time  `bun:"start_time,notnull" json:"start_time"`
	EndTime               *time.Time `bun:"end_time" json:"end_time,omitempty"`
	Status                RunStatus  `bun:"status,notnull" json:"status"`
	DatasetsTotal         int        `bun:"datasets_total,default:0" json:"datasets_total"`
	DatasetsScripted      int        `bun:"datasets_scripted,default:0" json:"datasets_scripted"`
	DatasetsWithDownloads int        `bun:"datasets_with_downloads,default:0" json:"datasets_with_downloads"`
	ErrorLog              *string    `bun:"error_log" json:"error_log,omitempty"`
	CreatedAt             time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt             time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Months []*MonthlyActivity `bun:"rel:has-many,join:id=run_id" json:"months,omitempty"`
}

// BeforeUpdate refreshes the timestamp on modifications.
func (r *ReportRun) BeforeUpdate(ctx context.Context, query *bun.UpdateQuery) error {
	r.UpdatedAt = time.Now()
	return nil
}

// Finish marks the run as finished with err's outcome.
func (r *ReportRun) Finish(at time.Time, err error) {
	r.EndTime = &at
	if err != nil {
		msg := err.Error()
		r.ErrorLog = &msg
		r.Status = RunFailed
		return
	}
	r.Status = RunSucceeded
}

// Duration is zero until the run has finished.
func (r *ReportRun) Duration() time.Duration {
	if r.EndTime == nil {
		return 0
	}
	return r.EndTime.Sub(r.StartTime)
}

// MonthlyActivity is one line of the non-script update report for a run.
type MonthlyActivity struct {
	bun.BaseModel `bun:"table:report_monthly_activity,alias:ma"`

	ID              int64  `bun:"id,pk,autoincrement" json:"id"`
	RunID           int64  `bun:"run_id,notnull" json:"run_id"`
	YearMonth       string `bun:"year_month,notnull" json:"year_month"`
	Created         int    `bun:"created,default:0" json:"created"`
	MetadataUpdated int    `bun:"metadata_updated,default:0" json:"metadata_updated"`
	DataUpdated     int    `bun:"data_updated,default:0" json:"data_updated"`

	Run *ReportRun `bun:"rel:belongs-to,join:run_id=id" json:"-"`
}

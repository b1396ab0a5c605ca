package jobs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReportWarmup precomputes financial reports into the report cache.
	TaskReportWarmup = "report:warmup"
	// TaskReportExport writes a financial report CSV into the export directory.
	TaskReportExport = "report:export"
)

const payloadDate = "2006-01-02"

// ReportWarmupPayload selects the month to warm. An empty Month means the current one.
type ReportWarmupPayload struct {
	Month string `json:"month,omitempty"`
}

// NewReportWarmupTask constructs a warm-up task for month (YYYY-MM, optional).
func NewReportWarmupTask(month string) (*asynq.Task, error) {
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			return nil, fmt.Errorf("jobs: warmup month %q: %w", month, err)
		}
	}
	data, err := json.Marshal(ReportWarmupPayload{Month: month})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportWarmup, data), nil
}

// ReportExportPayload describes a requested CSV export.
type ReportExportPayload struct {
	ExportID    string `json:"export_id"`
	Start       string `json:"start"`
	End         string `json:"end"`
	RequestedBy int64  `json:"requested_by,omitempty"`
}

// Range parses the payload dates.
func (p ReportExportPayload) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(payloadDate, p.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("jobs: export start: %w", err)
	}
	end, err := time.Parse(payloadDate, p.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("jobs: export end: %w", err)
	}
	return start, end, nil
}

// NewReportExportTask constructs an export task for the inclusive range.
func NewReportExportTask(exportID string, start, end time.Time, requestedBy int64) (*asynq.Task, error) {
	data, err := json.Marshal(ReportExportPayload{
		ExportID:    exportID,
		Start:       start.Format(payloadDate),
		End:         end.Format(payloadDate),
		RequestedBy: requestedBy,
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReportExport, data), nil
}

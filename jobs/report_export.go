package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/productmanage/internal/finance"
	jobmetrics "github.com/odyssey-erp/productmanage/internal/jobs"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// ReportExportJob renders financial reports to CSV files under Dir.
type ReportExportJob struct {
	Reports ReportBuilder
	Dir     string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewReportExportJob wires dependencies for the export handler.
func NewReportExportJob(reports ReportBuilder, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportExportJob {
	return &ReportExportJob{Reports: reports, Dir: dir, Logger: logger, Metrics: metrics}
}

// Handle processes report export tasks.
func (j *ReportExportJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil || j.Dir == "" {
		return errors.New("report export: handler not configured")
	}
	var payload ReportExportPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	start, end, err := payload.Range()
	if err != nil {
		return errors.Join(err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskReportExport)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("export_id", payload.ExportID), slog.Int64("requested_by", payload.RequestedBy))
	report, err := j.Reports.BuildReport(ctx, start, end)
	if err != nil {
		if shared.IsDomain(err) {
			return errors.Join(err, asynq.SkipRetry)
		}
		logger.Error("build report for export", slog.Any("error", err))
		return err
	}
	path, err := j.write(report, payload.ExportID)
	if err != nil {
		logger.Error("write report export", slog.Any("error", err))
		return err
	}
	j.metrics().AddExportedRows(len(report.Operations))
	logger.Info("report exported", slog.String("path", path), slog.Int("operations", len(report.Operations)))
	return nil
}

// FileName names the export file; exportID keeps concurrent exports of one range apart.
func FileName(report finance.Report, exportID string) string {
	name := finance.ExportFileName(report)
	if exportID == "" {
		return name
	}
	return strings.TrimSuffix(name, ".csv") + "_" + exportID + ".csv"
}

func (j *ReportExportJob) write(report finance.Report, exportID string) (string, error) {
	if err := os.MkdirAll(j.Dir, 0o755); err != nil {
		return "", fmt.Errorf("report export: create dir: %w", err)
	}
	tmp, err := os.CreateTemp(j.Dir, ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("report export: temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := finance.WriteReportCSV(tmp, report); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("report export: write csv: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("report export: close: %w", err)
	}
	path := filepath.Join(j.Dir, FileName(report, exportID))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("report export: rename: %w", err)
	}
	return path, nil
}

func (j *ReportExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportExport))
	}
	return slog.Default().With(slog.String("job", TaskReportExport))
}

func (j *ReportExportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/productmanage/internal/finance"
	jobmetrics "github.com/odyssey-erp/productmanage/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// ReportBuilder produces financial reports, caching them as a side effect.
type ReportBuilder interface {
	BuildReport(ctx context.Context, start, end time.Time) (finance.Report, error)
}

// ReportWarmupJob pre-populates the report cache for the ranges users open first.
type ReportWarmupJob struct {
	Reports ReportBuilder
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportWarmupJob wires dependencies for the warm-up handler.
func NewReportWarmupJob(reports ReportBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportWarmupJob {
	return &ReportWarmupJob{
		Reports: reports,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes report warm-up tasks.
func (j *ReportWarmupJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Reports == nil {
		return errors.New("report warmup: handler not configured")
	}
	var payload ReportWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskReportWarmup)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	ranges, err := j.ranges(payload)
	if err != nil {
		return errors.Join(err, asynq.SkipRetry)
	}
	logger := j.logger()
	started := time.Now()
	for _, rng := range ranges {
		rangeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		report, err := j.Reports.BuildReport(rangeCtx, rng[0], rng[1])
		cancel()
		if err != nil {
			logger.Error("warm report", slog.Time("start", rng[0]), slog.Time("end", rng[1]), slog.Any("error", err))
			return err
		}
		logger.Debug("report warmed", slog.Time("start", rng[0]), slog.Time("end", rng[1]), slog.Int("operations", len(report.Operations)))
	}
	logger.Info("completed report warmup", slog.Int("ranges", len(ranges)), slog.Duration("duration", time.Since(started)))
	return nil
}

// ranges returns the calendar month and, for the current month, the default
// trailing-month window served by the finance endpoints.
func (j *ReportWarmupJob) ranges(payload ReportWarmupPayload) ([][2]time.Time, error) {
	today := finance.Day(j.now())
	if payload.Month == "" {
		monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return [][2]time.Time{
			{monthStart, today},
			{today.AddDate(0, -1, 0), today},
		}, nil
	}
	month, err := time.Parse("2006-01", payload.Month)
	if err != nil {
		return nil, err
	}
	end := month.AddDate(0, 1, -1)
	if end.After(today) {
		end = today
	}
	if month.After(end) {
		return nil, errors.New("report warmup: month is in the future")
	}
	return [][2]time.Time{{month, end}}, nil
}

func (j *ReportWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskReportWarmup))
	}
	return slog.Default().With(slog.String("job", TaskReportWarmup))
}

func (j *ReportWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReportWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/finance"
	jobmetrics "github.com/odyssey-erp/productmanage/internal/jobs"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

type recordingBuilder struct {
	mu     sync.Mutex
	ranges [][2]time.Time
	report finance.Report
	err    error
}

func (b *recordingBuilder) BuildReport(_ context.Context, start, end time.Time) (finance.Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ranges = append(b.ranges, [2]time.Time{start, end})
	if b.err != nil {
		return finance.Report{}, b.err
	}
	report := b.report
	report.StartDate, report.EndDate = start, end
	return report, nil
}

func date(s string) time.Time {
	t, _ := time.Parse("2006-01-02", s)
	return t
}

func testMetrics() *jobmetrics.Metrics {
	return jobmetrics.NewMetrics(prometheus.NewRegistry())
}

func TestWarmupCurrentMonth(t *testing.T) {
	builder := &recordingBuilder{}
	job := NewReportWarmupJob(builder, nil, testMetrics())
	job.clock = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }

	task, err := NewReportWarmupTask("")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Equal(t, [][2]time.Time{
		{date("2024-03-01"), date("2024-03-15")},
		{date("2024-02-15"), date("2024-03-15")},
	}, builder.ranges)
}

func TestWarmupExplicitMonth(t *testing.T) {
	builder := &recordingBuilder{}
	job := NewReportWarmupJob(builder, nil, testMetrics())
	job.clock = func() time.Time { return time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC) }

	task, err := NewReportWarmupTask("2024-02")
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, [][2]time.Time{{date("2024-02-01"), date("2024-02-29")}}, builder.ranges)

	future, err := NewReportWarmupTask("2024-05")
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), future), asynq.SkipRetry)

	_, err = NewReportWarmupTask("March")
	require.Error(t, err)
}

func TestWarmupPropagatesBuildErrors(t *testing.T) {
	boom := errors.New("database down")
	job := NewReportWarmupJob(&recordingBuilder{err: boom}, nil, testMetrics())
	task, err := NewReportWarmupTask("")
	require.NoError(t, err)
	require.ErrorIs(t, job.Handle(context.Background(), task), boom)
}

func TestExportWritesCSV(t *testing.T) {
	dir := t.TempDir()
	builder := &recordingBuilder{report: finance.Report{
		Operations: []finance.Operation{{
			ID: 1, Date: date("2024-01-10"), Type: finance.TypeIncome,
			Amount: decimal.RequireFromString("100"), Description: "Sale", RecordedByName: "Anna",
		}},
		TotalIncome:  decimal.RequireFromString("100"),
		TotalExpense: decimal.Zero,
		Profit:       decimal.RequireFromString("100"),
	}}
	job := NewReportExportJob(builder, dir, nil, testMetrics())

	task, err := NewReportExportTask("abc123", date("2024-01-01"), date("2024-01-31"), 7)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	path := filepath.Join(dir, "financial_report_20240101_20240131_abc123.csv")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, "date,type,amount,description,recorded_by", lines[0])
	require.Equal(t, "2024-01-10,income,100.00,Sale,Anna", lines[1])
	require.Equal(t, "profit,100.00", lines[len(lines)-1])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestExportRejectsBadPayloads(t *testing.T) {
	job := NewReportExportJob(&recordingBuilder{}, t.TempDir(), nil, testMetrics())

	err := job.Handle(context.Background(), asynq.NewTask(TaskReportExport, []byte("{")))
	require.ErrorIs(t, err, asynq.SkipRetry)

	err = job.Handle(context.Background(), asynq.NewTask(TaskReportExport, []byte(`{"start":"01/01/2024","end":"2024-01-31"}`)))
	require.ErrorIs(t, err, asynq.SkipRetry)

	invalid := NewReportExportJob(&recordingBuilder{err: shared.NewValidationError("start_date", "must not be after end_date")}, t.TempDir(), nil, testMetrics())
	task, err := NewReportExportTask("x", date("2024-02-01"), date("2024-01-01"), 0)
	require.NoError(t, err)
	require.ErrorIs(t, invalid.Handle(context.Background(), task), asynq.SkipRetry)
}

func TestExportPayloadRoundTrip(t *testing.T) {
	task, err := NewReportExportTask("id-1", date("2024-01-01"), date("2024-01-31"), 3)
	require.NoError(t, err)
	require.Equal(t, TaskReportExport, task.Type())

	var payload ReportExportPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	start, end, err := payload.Range()
	require.NoError(t, err)
	require.Equal(t, date("2024-01-01"), start)
	require.Equal(t, date("2024-01-31"), end)
	require.Equal(t, int64(3), payload.RequestedBy)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestHealthEndpoint(t *testing.T) {
	serve := func(h *Handler) *httptest.ResponseRecorder {
		r := chi.NewRouter()
		r.Route("/jobs", h.MountRoutes)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
		return rec
	}

	rec := serve(NewHandler(stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 4, Failed: 1}}, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body queueHealth
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 4, body.Pending)
	require.Equal(t, 1, body.Failed)

	rec = serve(NewHandler(nil, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(NewHandler(stubInspector{err: errors.New("redis down")}, nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

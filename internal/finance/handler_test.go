package finance

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func getReport(t *testing.T, h *Handler, query string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/reports?"+query, nil)
	rec := httptest.NewRecorder()
	h.report(rec, req)
	return rec
}

func TestReportTypeFilter(t *testing.T) {
	repo := &memoryRepo{ops: []Operation{
		op(1, day(2), "income", "100"),
		op(2, day(3), "expense", "30"),
		op(3, day(4), "income", "50"),
	}}
	h := NewHandler(nil, NewService(repo, nil, nil, nil), nil, nil)
	h.now = func() time.Time { return day(31) }

	rec := getReport(t, h, "start=2024-03-01&end=2024-03-31&type=expense")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Operations, 1)
	require.Equal(t, int64(2), report.Operations[0].ID)
	require.Equal(t, "150", report.TotalIncome.String())
	require.Equal(t, "120", report.Profit.String())

	rec = getReport(t, h, "start=2024-03-01&end=2024-03-31&type=All")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Len(t, report.Operations, 3)

	queries := repo.queries
	rec = getReport(t, h, "start=2024-03-01&end=2024-03-31&type=transfer")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, queries, repo.queries)
}

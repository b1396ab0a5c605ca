package finance

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
)

// WriteReportCSV serialises the report operations followed by the totals.
func WriteReportCSV(w io.Writer, report Report) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "type", "amount", "description", "recorded_by"}); err != nil {
		return err
	}
	for _, op := range report.Operations {
		recordedBy := op.RecordedByName
		if recordedBy == "" {
			recordedBy = strconv.FormatInt(op.RecordedBy, 10)
		}
		if err := writer.Write([]string{
			op.Date.Format(httpx.DateLayout),
			op.Type,
			op.Amount.StringFixed(2),
			op.Description,
			recordedBy,
		}); err != nil {
			return err
		}
	}
	summary := [][]string{
		{},
		{"period", fmt.Sprintf("%s..%s", report.StartDate.Format(httpx.DateLayout), report.EndDate.Format(httpx.DateLayout))},
		{"total_income", report.TotalIncome.StringFixed(2)},
		{"total_expense", report.TotalExpense.StringFixed(2)},
		{"profit", report.Profit.StringFixed(2)},
	}
	if err := writer.WriteAll(summary); err != nil {
		return err
	}
	return writer.Error()
}

// ExportFileName names an export of the given report.
func ExportFileName(report Report) string {
	return fmt.Sprintf("financial_report_%s_%s.csv",
		report.StartDate.Format("20060102"), report.EndDate.Format("20060102"))
}

package finance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Operation types accepted on write.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// Operation is a recorded income or expense.
type Operation struct {
	ID             int64           `json:"id"`
	Date           time.Time       `json:"operation_date"`
	Type           string          `json:"type"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	RecordedBy     int64           `json:"recorded_by"`
	RecordedByName string          `json:"recorded_by_name,omitempty"`
}

// OperationForm carries writable operation fields.
type OperationForm struct {
	Date        time.Time       `json:"operation_date" validate:"required"`
	Type        string          `json:"type" validate:"required,oneof=income expense"`
	Amount      decimal.Decimal `json:"amount" validate:"gte=0.01,lte=1000000000"`
	Description string          `json:"description" validate:"max=500"`
	RecordedBy  int64           `json:"recorded_by" validate:"required,gt=0"`
}

// Report is the derived view over a date range. It is never persisted.
type Report struct {
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Operations   []Operation     `json:"operations"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	Profit       decimal.Decimal `json:"profit"`
}

// Observer is told how each report was produced.
type Observer interface {
	ReportBuilt(cacheHit bool)
}

// Day truncates t to its calendar date in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package finance

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"

	"github.com/odyssey-erp/productmanage/internal/shared"
)

// TypeAll disables the report's type filter.
const TypeAll = "all"

// Aggregate builds the report for [start, end] from ops. Operations outside the
// range are dropped. Types are compared case-insensitively; anything other than
// income or expense stays in the listing but counts towards neither total.
func Aggregate(start, end time.Time, ops []Operation) Report {
	start, end = Day(start), Day(end)
	fold := cases.Fold()
	income, expense := fold.String(TypeIncome), fold.String(TypeExpense)

	report := Report{
		StartDate:    start,
		EndDate:      end,
		Operations:   make([]Operation, 0, len(ops)),
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, op := range ops {
		day := Day(op.Date)
		if day.Before(start) || day.After(end) {
			continue
		}
		switch fold.String(op.Type) {
		case income:
			report.TotalIncome = report.TotalIncome.Add(op.Amount)
		case expense:
			report.TotalExpense = report.TotalExpense.Add(op.Amount)
		}
		report.Operations = append(report.Operations, op)
	}
	sort.SliceStable(report.Operations, func(i, j int) bool {
		a, b := report.Operations[i], report.Operations[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.After(b.Date)
		}
		return a.ID > b.ID
	})
	report.Profit = report.TotalIncome.Sub(report.TotalExpense)
	return report
}

// FilterOperations narrows the listed operations to kind: all, income or
// expense, in any case. Totals and profit still cover the whole range.
func FilterOperations(report Report, kind string) (Report, error) {
	fold := cases.Fold()
	kind = fold.String(strings.TrimSpace(kind))
	switch kind {
	case "", TypeAll:
		return report, nil
	case TypeIncome, TypeExpense:
	default:
		return Report{}, shared.NewValidationError("type", "must be one of all, income, expense")
	}
	filtered := make([]Operation, 0, len(report.Operations))
	for _, op := range report.Operations {
		if fold.String(op.Type) == kind {
			filtered = append(filtered, op)
		}
	}
	report.Operations = filtered
	return report, nil
}

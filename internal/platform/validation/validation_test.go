package validation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/shared"
)

type line struct {
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0.01,cents"`
}

type sample struct {
	Name  string `json:"name" validate:"required,max=5"`
	Phone string `json:"phone" validate:"omitempty,phone"`
	Lines []line `json:"lines" validate:"required,min=1,dive"`
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Struct(sample{
		Name:  "too long name",
		Phone: "abc",
		Lines: []line{{Quantity: 0, UnitPrice: decimal.Zero}},
	})
	require.ErrorIs(t, err, shared.ErrValidation)

	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "phone")
	require.Contains(t, verr.Fields, "lines[0].quantity")
	require.Contains(t, verr.Fields, "lines[0].unit_price")
}

func TestStructAcceptsValidInput(t *testing.T) {
	v := New()
	err := v.Struct(sample{
		Name:  "ok",
		Phone: "+7 (495) 123-45-67",
		Lines: []line{{Quantity: 2, UnitPrice: decimal.RequireFromString("0.01")}},
	})
	require.NoError(t, err)
}

func TestStructRejectsEmptyLines(t *testing.T) {
	err := New().Struct(sample{Name: "ok"})
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "lines")
}

func TestCentsRejectsFractionsOfACent(t *testing.T) {
	v := New()
	for _, raw := range []string{"0.004", "0.015", "12.345"} {
		err := v.Struct(sample{Name: "ok", Lines: []line{{Quantity: 1, UnitPrice: decimal.RequireFromString(raw)}}})
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr), raw)
		require.Contains(t, verr.Fields, "lines[0].unit_price", raw)
	}
	for _, raw := range []string{"0.01", "0.1", "7", "999999.99"} {
		require.NoError(t, v.Struct(sample{Name: "ok", Lines: []line{{Quantity: 1, UnitPrice: decimal.RequireFromString(raw)}}}), raw)
	}
}

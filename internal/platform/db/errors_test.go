package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestConstraintClassification(t *testing.T) {
	check := fmt.Errorf("insert item: %w", &pgconn.PgError{Code: CodeCheckViolation, ConstraintName: "supply_items_unit_price_check"})
	unique := &pgconn.PgError{Code: CodeUniqueViolation, ConstraintName: "supplies_invoice_number_key"}

	require.True(t, IsCheckViolation(check, ""))
	require.True(t, IsCheckViolation(check, "supply_items_unit_price_check"))
	require.False(t, IsCheckViolation(check, "products_price_check"))
	require.False(t, IsUniqueViolation(check, ""))

	require.True(t, IsUniqueViolation(unique, "supplies_invoice_number_key"))
	require.False(t, IsForeignKeyViolation(unique, ""))

	name, ok := ConstraintError(unique, CodeForeignKeyViolation, CodeUniqueViolation)
	require.True(t, ok)
	require.Equal(t, "supplies_invoice_number_key", name)

	_, ok = ConstraintError(errors.New("boom"), CodeCheckViolation)
	require.False(t, ok)
	require.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
}

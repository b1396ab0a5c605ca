package supplies

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

func TestMapItemErrorClassifiesCheckViolations(t *testing.T) {
	item := ItemInput{ProductID: 9, Quantity: 1}

	err := mapItemError(&pgconn.PgError{Code: db.CodeCheckViolation, ConstraintName: "supply_items_unit_price_check"}, 2, item)
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "items[2].unit_price")

	err = mapItemError(&pgconn.PgError{Code: db.CodeForeignKeyViolation, ConstraintName: "supply_items_product_id_fkey"}, 0, item)
	require.ErrorIs(t, err, shared.ErrNotFound)

	other := &pgconn.PgError{Code: "57014"}
	require.Same(t, other, mapItemError(other, 0, item))
}

func TestMapHeaderErrorClassifiesStatusCheck(t *testing.T) {
	err := mapHeaderError(&pgconn.PgError{Code: db.CodeCheckViolation, ConstraintName: "supplies_status_check"}, Header{})
	require.ErrorIs(t, err, shared.ErrValidation)
}

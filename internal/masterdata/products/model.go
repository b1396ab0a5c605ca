package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stocked item as read back from storage.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CategoryID   *int64          `json:"category_id"`
	CategoryName string          `json:"category_name,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Description  string          `json:"description"`
	CreatedDate  time.Time       `json:"created_date"`
}

// NewProductWindow bounds the "new products" listing.
const NewProductWindow = 30 * 24 * time.Hour

package supplies

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supply statuses.
const (
	StatusPending   = "pending"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

// Header carries the supply fields supplied by the caller.
type Header struct {
	SupplierID    *int64    `json:"supplier_id" validate:"omitempty,gt=0"`
	InvoiceNumber string    `json:"invoice_number" validate:"required,max=50"`
	DeliveryDate  time.Time `json:"delivery_date" validate:"required"`
	Status        string    `json:"status" validate:"omitempty,oneof=pending delivered cancelled"`
	CreatedBy     int64     `json:"created_by" validate:"required,gt=0"`
}

// ItemInput is one requested line of a new supply.
type ItemInput struct {
	ProductID int64           `json:"product_id" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"gte=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"gte=0.01,lte=1000000000,cents"`
}

// LineTotal returns quantity x unit price.
func (i ItemInput) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Supply is a stored delivery with its items.
type Supply struct {
	ID            int64           `json:"id"`
	SupplierID    *int64          `json:"supplier_id"`
	SupplierName  string          `json:"supplier_name,omitempty"`
	InvoiceNumber string          `json:"invoice_number"`
	DeliveryDate  time.Time       `json:"delivery_date"`
	Status        string          `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CreatedBy     int64           `json:"created_by"`
	CreatedByName string          `json:"created_by_name,omitempty"`
	Items         []Item          `json:"items,omitempty"`
}

// Item is a stored supply line.
type Item struct {
	ID          int64           `json:"id"`
	SupplyID    int64           `json:"supply_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// ListFilter narrows ListSupplies. Zero values disable a criterion.
type ListFilter struct {
	Status string
	From   *time.Time
	To     *time.Time
}

// Observer is notified about committed supplies.
type Observer interface {
	SupplyCreated()
}

// Total sums the line totals. Unit prices are whole cents, so the sum equals the
// sum of the stored lines.
func Total(items []ItemInput) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

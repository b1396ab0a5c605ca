package products

import "github.com/shopspring/decimal"

// ProductForm carries writable product fields. Quantity is set directly here;
// routine stock movements go through inventory adjustments.
type ProductForm struct {
	Name        string          `json:"name" validate:"required,max=200"`
	CategoryID  *int64          `json:"category_id" validate:"omitempty,gt=0"`
	Price       decimal.Decimal `json:"price" validate:"gte=0.01"`
	Quantity    int             `json:"quantity" validate:"gte=0"`
	Description string          `json:"description"`
}

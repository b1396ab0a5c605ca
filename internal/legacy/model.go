// Package legacy copies data from the MySQL schema of the desktop application into PostgreSQL.
package legacy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role is a row of the legacy roles table.
type Role struct {
	Code        string
	DisplayName string
	Description string
}

// User is a row of the legacy users table. Password may be plaintext.
type User struct {
	ID        int64
	Username  string
	Password  string
	FullName  string
	Role      string
	IsActive  bool
	CreatedAt time.Time
}

// Category is a row of the legacy categories table.
type Category struct {
	ID          int64
	Name        string
	Description string
}

// Supplier is a row of the legacy suppliers table.
type Supplier struct {
	ID            int64
	Name          string
	ContactPerson string
	Phone         string
	Email         string
}

// Product is a row of the legacy products table.
type Product struct {
	ID          int64
	Name        string
	CategoryID  *int64
	Price       decimal.Decimal
	Quantity    int
	Description string
	CreatedDate time.Time
}

// Supply is a row of the legacy supplies table.
type Supply struct {
	ID            int64
	SupplierID    *int64
	InvoiceNumber string
	DeliveryDate  time.Time
	Status        string
	TotalAmount   decimal.Decimal
	CreatedBy     int64
}

// SupplyItem is a row of the legacy supply_items table.
type SupplyItem struct {
	ID        int64
	SupplyID  int64
	ProductID int64
	Quantity  int
	UnitPrice decimal.Decimal
}

// Operation is a row of the legacy financial_operations table.
type Operation struct {
	ID          int64
	Date        time.Time
	Type        string
	Amount      decimal.Decimal
	Description string
	RecordedBy  int64
}

// Snapshot is the full legacy data set.
type Snapshot struct {
	Roles       []Role
	Users       []User
	Categories  []Category
	Suppliers   []Supplier
	Products    []Product
	Supplies    []Supply
	SupplyItems []SupplyItem
	Operations  []Operation
}

// Stats counts imported rows per table.
type Stats map[string]int

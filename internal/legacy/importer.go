package legacy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
)

// ErrTargetNotEmpty is returned when the destination already holds business data.
var ErrTargetNotEmpty = errors.New("legacy: target database is not empty")

// sequenced lists the tables whose id sequences follow the imported ids.
var sequenced = []string{
	"users", "categories", "suppliers", "products",
	"supplies", "supply_items", "financial_operations",
}

// Importer writes a prepared Snapshot into PostgreSQL.
type Importer struct {
	db     db.Beginner
	logger *slog.Logger
}

// NewImporter constructs an Importer.
func NewImporter(pool db.Beginner, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{db: pool, logger: logger}
}

// Import inserts every row in one transaction, keeping the legacy ids, then moves
// each id sequence past the highest imported id. Nothing is written on failure.
func (im *Importer) Import(ctx context.Context, snap Snapshot) (Stats, error) {
	stats := Stats{}
	err := db.WithTx(ctx, im.db, func(tx pgx.Tx) error {
		var existing int
		if err := tx.QueryRow(ctx, `SELECT (SELECT COUNT(*) FROM users) + (SELECT COUNT(*) FROM products)`).Scan(&existing); err != nil {
			return err
		}
		if existing > 0 {
			return ErrTargetNotEmpty
		}

		batch := &pgx.Batch{}
		for _, r := range snap.Roles {
			batch.Queue(`INSERT INTO roles (code, display_name, description) VALUES ($1, $2, $3)
ON CONFLICT (code) DO UPDATE SET display_name = EXCLUDED.display_name, description = EXCLUDED.description`,
				r.Code, r.DisplayName, r.Description)
		}
		for _, u := range snap.Users {
			batch.Queue(`INSERT INTO users (id, username, password, full_name, role, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, u.ID, u.Username, u.Password, u.FullName, u.Role, u.IsActive, u.CreatedAt)
		}
		for _, c := range snap.Categories {
			batch.Queue(`INSERT INTO categories (id, name, description) VALUES ($1, $2, $3)`, c.ID, c.Name, c.Description)
		}
		for _, s := range snap.Suppliers {
			batch.Queue(`INSERT INTO suppliers (id, name, contact_person, phone, email) VALUES ($1, $2, $3, $4, $5)`,
				s.ID, s.Name, s.ContactPerson, s.Phone, s.Email)
		}
		for _, p := range snap.Products {
			batch.Queue(`INSERT INTO products (id, name, category_id, price, quantity, description, created_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, p.ID, p.Name, p.CategoryID, p.Price, p.Quantity, p.Description, p.CreatedDate)
		}
		for _, s := range snap.Supplies {
			batch.Queue(`INSERT INTO supplies (id, supplier_id, invoice_number, delivery_date, status, total_amount, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)`, s.ID, s.SupplierID, s.InvoiceNumber, s.DeliveryDate, s.Status, s.TotalAmount, s.CreatedBy)
		}
		for _, it := range snap.SupplyItems {
			batch.Queue(`INSERT INTO supply_items (id, supply_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4, $5)`,
				it.ID, it.SupplyID, it.ProductID, it.Quantity, it.UnitPrice)
		}
		for _, op := range snap.Operations {
			batch.Queue(`INSERT INTO financial_operations (id, operation_date, type, amount, description, recorded_by)
VALUES ($1, $2, $3, $4, $5, $6)`, op.ID, op.Date, op.Type, op.Amount, op.Description, op.RecordedBy)
		}

		results := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return fmt.Errorf("legacy: insert row %d: %w", i+1, err)
			}
		}
		if err := results.Close(); err != nil {
			return err
		}

		for _, table := range sequenced {
			if _, err := tx.Exec(ctx, fmt.Sprintf(
				`SELECT setval(pg_get_serial_sequence('%[1]s', 'id'), COALESCE((SELECT MAX(id) FROM %[1]s), 0) + 1, false)`, table)); err != nil {
				return fmt.Errorf("legacy: reset %s sequence: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	stats["roles"] = len(snap.Roles)
	stats["users"] = len(snap.Users)
	stats["categories"] = len(snap.Categories)
	stats["suppliers"] = len(snap.Suppliers)
	stats["products"] = len(snap.Products)
	stats["supplies"] = len(snap.Supplies)
	stats["supply_items"] = len(snap.SupplyItems)
	stats["financial_operations"] = len(snap.Operations)
	for table, n := range stats {
		im.logger.Info("imported legacy rows", slog.String("table", table), slog.Int("rows", n))
	}
	return stats, nil
}

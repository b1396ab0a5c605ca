package legacy

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// mysqlNoSuchTable is ER_NO_SUCH_TABLE.
const mysqlNoSuchTable = 1146

// OpenMySQL connects to the legacy database. Dates are parsed into UTC time.Time values.
func OpenMySQL(ctx context.Context, dsn string) (*sql.DB, error) {
	cfg, err := mysqlConfig(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("legacy: mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("legacy: mysql ping: %w", err)
	}
	return db, nil
}

func mysqlConfig(dsn string) (*mysql.Config, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("legacy: mysql dsn is empty")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("legacy: parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["charset"] = "utf8mb4"
	return cfg, nil
}

// Reader loads a Snapshot from the legacy schema.
type Reader struct {
	db *sql.DB
}

// NewReader wraps an open legacy connection.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Load reads every legacy table inside one read-only transaction.
func (r *Reader) Load(ctx context.Context) (Snapshot, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true, Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return Snapshot{}, fmt.Errorf("legacy: begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var snap Snapshot
	steps := []struct {
		table string
		query string
		scan  func(*sql.Rows) error
	}{
		{"roles", `SELECT code, display_name, COALESCE(description, '') FROM roles ORDER BY code`, func(rows *sql.Rows) error {
			var v Role
			if err := rows.Scan(&v.Code, &v.DisplayName, &v.Description); err != nil {
				return err
			}
			snap.Roles = append(snap.Roles, v)
			return nil
		}},
		{"users", `SELECT id, username, password, COALESCE(full_name, ''), role, is_active, created_at FROM users ORDER BY id`, func(rows *sql.Rows) error {
			var v User
			if err := rows.Scan(&v.ID, &v.Username, &v.Password, &v.FullName, &v.Role, &v.IsActive, &v.CreatedAt); err != nil {
				return err
			}
			snap.Users = append(snap.Users, v)
			return nil
		}},
		{"categories", `SELECT id, name, COALESCE(description, '') FROM categories ORDER BY id`, func(rows *sql.Rows) error {
			var v Category
			if err := rows.Scan(&v.ID, &v.Name, &v.Description); err != nil {
				return err
			}
			snap.Categories = append(snap.Categories, v)
			return nil
		}},
		{"suppliers", `SELECT id, name, COALESCE(contact_person, ''), COALESCE(phone, ''), COALESCE(email, '') FROM suppliers ORDER BY id`, func(rows *sql.Rows) error {
			var v Supplier
			if err := rows.Scan(&v.ID, &v.Name, &v.ContactPerson, &v.Phone, &v.Email); err != nil {
				return err
			}
			snap.Suppliers = append(snap.Suppliers, v)
			return nil
		}},
		{"products", `SELECT id, name, category_id, price, quantity, COALESCE(description, ''), created_date FROM products ORDER BY id`, func(rows *sql.Rows) error {
			var v Product
			var category sql.NullInt64
			if err := rows.Scan(&v.ID, &v.Name, &category, &v.Price, &v.Quantity, &v.Description, &v.CreatedDate); err != nil {
				return err
			}
			v.CategoryID = nullableID(category)
			snap.Products = append(snap.Products, v)
			return nil
		}},
		{"supplies", `SELECT id, supplier_id, invoice_number, delivery_date, status, COALESCE(total_amount, 0), created_by FROM supplies ORDER BY id`, func(rows *sql.Rows) error {
			var v Supply
			var supplier sql.NullInt64
			if err := rows.Scan(&v.ID, &supplier, &v.InvoiceNumber, &v.DeliveryDate, &v.Status, &v.TotalAmount, &v.CreatedBy); err != nil {
				return err
			}
			v.SupplierID = nullableID(supplier)
			snap.Supplies = append(snap.Supplies, v)
			return nil
		}},
		{"supply_items", `SELECT id, supply_id, product_id, quantity, unit_price FROM supply_items ORDER BY id`, func(rows *sql.Rows) error {
			var v SupplyItem
			if err := rows.Scan(&v.ID, &v.SupplyID, &v.ProductID, &v.Quantity, &v.UnitPrice); err != nil {
				return err
			}
			snap.SupplyItems = append(snap.SupplyItems, v)
			return nil
		}},
		{"financial_operations", `SELECT id, operation_date, type, amount, COALESCE(description, ''), recorded_by FROM financial_operations ORDER BY id`, func(rows *sql.Rows) error {
			var v Operation
			if err := rows.Scan(&v.ID, &v.Date, &v.Type, &v.Amount, &v.Description, &v.RecordedBy); err != nil {
				return err
			}
			snap.Operations = append(snap.Operations, v)
			return nil
		}},
	}
	for _, step := range steps {
		if err := readTable(ctx, tx, step.query, step.scan); err != nil {
			return Snapshot{}, mysqlError(step.table, err)
		}
	}
	return snap, nil
}

func readTable(ctx context.Context, tx *sql.Tx, query string, scan func(*sql.Rows) error) error {
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func mysqlError(table string, err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlNoSuchTable {
		return fmt.Errorf("legacy: table %s missing in source database: %w", table, err)
	}
	return fmt.Errorf("legacy: read %s: %w", table, err)
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

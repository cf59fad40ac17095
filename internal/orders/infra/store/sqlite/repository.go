// Package sqlite provides a SQLite-backed implementation of ports.OrderStore.
//
// WAL mode is enabled on Open so that readers never block writers and vice
// versa — the payment confirmation consumer writes while HTTP handlers read.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/microcommerce/orders-service/internal/orders/core/domain/entity"
	"github.com/microcommerce/orders-service/internal/orders/core/ports"

	// Register the pure-Go SQLite driver.
	// We use modernc.org/sqlite instead of mattn/go-sqlite3 to avoid CGO
	// requirements, making it easier to build and run in Docker (Alpine).
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
const schema = `
CREATE TABLE IF NOT EXISTS orders (
    -- Order id: UUID assigned by the aggregator.
    id                TEXT PRIMARY KEY,

    -- Lifecycle status. Open set; PENDING is the initial state.
    status            TEXT    NOT NULL DEFAULT 'PENDING',

    -- Σ(item.price * item.quantity) captured at creation time.
    total_amount      REAL    NOT NULL,

    -- Σ(item.quantity) captured at creation time.
    total_items       INTEGER NOT NULL,

    -- Payment fields, written exactly once by ApplyPayment.
    paid              INTEGER NOT NULL DEFAULT 0,
    paid_at           TEXT,
    stripe_charge_id  TEXT,

    -- RFC3339 stored as TEXT, SQLite idiom.
    created_at        TEXT    NOT NULL,
    updated_at        TEXT    NOT NULL
);

-- Index for the filtered listing: "page through orders with status X".
CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status, created_at);

CREATE TABLE IF NOT EXISTS order_items (
    -- Surrogate key; items have no identity outside their order.
    id          INTEGER PRIMARY KEY AUTOINCREMENT,

    order_id    TEXT    NOT NULL REFERENCES orders(id),

    -- Remote catalog reference; not locally enforced.
    product_id  INTEGER NOT NULL,

    quantity    INTEGER NOT NULL,

    -- Catalog price captured at creation, immune to later catalog changes.
    price       REAL    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);

CREATE TABLE IF NOT EXISTS order_receipts (
    -- One receipt per order, hence the primary key on order_id.
    order_id     TEXT PRIMARY KEY REFERENCES orders(id),
    receipt_url  TEXT NOT NULL,
    created_at   TEXT NOT NULL
);
`

// Store is the SQLite implementation of ports.OrderStore.
type Store struct {
	db *sql.DB
}

var _ ports.OrderStore = (*Store)(nil)

// Open opens (or creates) the SQLite database at the given path and applies
// the schema.
//
//	store, err := sqlite.Open("./data/orders.db")
func Open(path string) (*Store, error) {
	// The pure-Go driver uses _pragma query parameters to configure connection state.
	// WAL enables concurrent readers. foreign_keys=on enforces the item/receipt
	// references. busy_timeout waits for locks instead of failing immediately.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	// Use "sqlite", not "sqlite3" for the modernc driver.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// A single connection serializes all access, which sidesteps
	// SQLITE_BUSY under concurrent writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts the order header and all its items in one transaction.
func (s *Store) Create(ctx context.Context, order *entity.Order) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin create order: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const insertOrder = `
		INSERT INTO orders (id, status, total_amount, total_items, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insertOrder,
		order.ID,
		string(order.Status),
		order.TotalAmount,
		order.TotalItems,
		formatTime(order.CreatedAt),
		formatTime(order.UpdatedAt),
	); err != nil {
		return fmt.Errorf("sqlite: insert order %q: %w", order.ID, err)
	}

	const insertItem = `
		INSERT INTO order_items (order_id, product_id, quantity, price)
		VALUES (?, ?, ?, ?)`

	for _, item := range order.Items {
		if _, err := tx.ExecContext(ctx, insertItem,
			order.ID, item.ProductID, item.Quantity, item.Price,
		); err != nil {
			return fmt.Errorf("sqlite: insert item for order %q: %w", order.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit create order %q: %w", order.ID, err)
	}
	return nil
}

// FindByID returns the order with its items and receipt, if any.
func (s *Store) FindByID(ctx context.Context, id string) (*entity.Order, error) {
	order, err := s.findHeader(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	const itemsQuery = `
		SELECT product_id, quantity, price
		FROM   order_items
		WHERE  order_id = ?
		ORDER  BY id`

	rows, err := s.db.QueryContext(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query items for %q: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item entity.OrderItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("sqlite: scan item for %q: %w", id, err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate items for %q: %w", id, err)
	}

	receipt, err := s.findReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Receipt = receipt

	return order, nil
}

// List returns one page of order headers matching the filter plus the total
// matching count.
func (s *Store) List(ctx context.Context, filter ports.ListFilter) ([]entity.Order, int, error) {
	where := ""
	args := []any{}
	if filter.Status != nil {
		where = "WHERE status = ?"
		args = append(args, string(*filter.Status))
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM orders " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: count orders: %w", err)
	}

	pageQuery := `
		SELECT id, status, total_amount, total_items, paid, paid_at, stripe_charge_id, created_at, updated_at
		FROM   orders ` + where + `
		ORDER  BY created_at DESC, id
		LIMIT  ? OFFSET ?`
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: list orders: %w", err)
	}
	defer rows.Close()

	var orders []entity.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterate orders: %w", err)
	}

	return orders, total, nil
}

// UpdateStatus atomically sets the order's status and returns the updated
// header.
func (s *Store) UpdateStatus(ctx context.Context, id string, status entity.OrderStatus) (*entity.Order, error) {
	const q = `
		UPDATE orders
		SET    status = ?, updated_at = ?
		WHERE  id = ?`

	res, err := s.db.ExecContext(ctx, q, string(status), formatTime(nowUTC()), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update status for %q: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: rows affected for %q: %w", id, err)
	}
	if affected == 0 {
		return nil, entity.ErrOrderNotFound
	}

	return s.findHeader(ctx, s.db, id)
}

// ApplyPayment marks the order paid and creates its receipt in one
// transaction. The update is conditional on paid = 0 so a repeated
// confirmation for the same order changes nothing and mints no second
// receipt.
func (s *Store) ApplyPayment(ctx context.Context, payment ports.Payment) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: begin apply payment: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const update = `
		UPDATE orders
		SET    status = ?, paid = 1, paid_at = ?, stripe_charge_id = ?, updated_at = ?
		WHERE  id = ? AND paid = 0`

	paidAt := formatTime(payment.PaidAt)
	res, err := tx.ExecContext(ctx, update,
		string(entity.StatusPaid), paidAt, payment.ChargeID, paidAt, payment.OrderID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: apply payment to %q: %w", payment.OrderID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: rows affected for %q: %w", payment.OrderID, err)
	}

	if affected == 0 {
		// Either the order does not exist, or it is already paid.
		if _, err := s.findHeader(ctx, tx, payment.OrderID); err != nil {
			return false, err
		}
		return false, nil
	}

	const insertReceipt = `
		INSERT INTO order_receipts (order_id, receipt_url, created_at)
		VALUES (?, ?, ?)`

	if _, err := tx.ExecContext(ctx, insertReceipt, payment.OrderID, payment.ReceiptURL, paidAt); err != nil {
		return false, fmt.Errorf("sqlite: insert receipt for %q: %w", payment.OrderID, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: commit apply payment to %q: %w", payment.OrderID, err)
	}
	return true, nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) findHeader(ctx context.Context, q querier, id string) (*entity.Order, error) {
	const query = `
		SELECT id, status, total_amount, total_items, paid, paid_at, stripe_charge_id, created_at, updated_at
		FROM   orders
		WHERE  id = ?`

	order, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find order %q: %w", id, err)
	}
	return order, nil
}

func (s *Store) findReceipt(ctx context.Context, orderID string) (*entity.OrderReceipt, error) {
	const query = `
		SELECT order_id, receipt_url, created_at
		FROM   order_receipts
		WHERE  order_id = ?`

	var receipt entity.OrderReceipt
	var createdAt string
	err := s.db.QueryRowContext(ctx, query, orderID).Scan(&receipt.OrderID, &receipt.ReceiptURL, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: find receipt for %q: %w", orderID, err)
	}

	if receipt.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*entity.Order, error) {
	var order entity.Order
	var status string
	var paid int
	var paidAt, chargeID sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(
		&order.ID,
		&status,
		&order.TotalAmount,
		&order.TotalItems,
		&paid,
		&paidAt,
		&chargeID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.Status = entity.OrderStatus(status)
	order.Paid = paid != 0
	if paidAt.Valid {
		t, err := parseTime(paidAt.String)
		if err != nil {
			return nil, err
		}
		order.PaidAt = &t
	}
	if chargeID.Valid {
		order.StripeChargeID = &chargeID.String
	}
	if order.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if order.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &order, nil
}

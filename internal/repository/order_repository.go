package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Lixing-Zhang/bistro-ordering/internal/models"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrDuplicateID   = errors.New("order id already exists")
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// fixed width so lexical order matches time order in SQLite TEXT columns
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// OrderFilter narrows an order listing
type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id, status string, at time.Time) (*models.Order, error)
}

// SQLOrderRepository stores orders in SQLite or Postgres. Cart lines, the tip
// policy and customer details are kept as JSON documents alongside the
// scalar totals.
type SQLOrderRepository struct {
	db     *sql.DB
	driver string
}

// OpenDB opens a database handle for the given driver. In-memory SQLite is
// pinned to one connection so every query sees the same database.
func OpenDB(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewSQLOrderRepository wraps an open database
func NewSQLOrderRepository(db *sql.DB, driver string) *SQLOrderRepository {
	return &SQLOrderRepository{db: db, driver: driver}
}

// Migrate creates the orders table if it does not exist
func (r *SQLOrderRepository) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id             TEXT PRIMARY KEY,
			status         TEXT NOT NULL,
			delivery_type  TEXT NOT NULL,
			payment_method TEXT NOT NULL,
			subtotal       TEXT NOT NULL,
			tax            TEXT NOT NULL,
			delivery_fee   TEXT NOT NULL,
			tip            TEXT NOT NULL,
			total          TEXT NOT NULL,
			tip_policy     TEXT NOT NULL,
			customer       TEXT NOT NULL,
			lines          TEXT NOT NULL,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders (status, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate orders table: %w", err)
		}
	}
	return nil
}

// Create inserts a new order
func (r *SQLOrderRepository) Create(ctx context.Context, order *models.Order) error {
	lines, err := json.Marshal(order.Lines)
	if err != nil {
		return fmt.Errorf("failed to encode order lines: %w", err)
	}
	tip, err := json.Marshal(order.Tip)
	if err != nil {
		return fmt.Errorf("failed to encode tip policy: %w", err)
	}
	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("failed to encode customer: %w", err)
	}

	_, err = r.db.ExecContext(ctx, r.rebind(`
		INSERT INTO orders (id, status, delivery_type, payment_method, subtotal, tax, delivery_fee, tip, total,
			tip_policy, customer, lines, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		order.ID, order.Status, string(order.DeliveryType), order.PaymentMethod,
		order.Totals.Subtotal, order.Totals.Tax, order.Totals.DeliveryFee, order.Totals.Tip, order.Totals.Total,
		string(tip), string(customer), string(lines),
		order.CreatedAt.UTC().Format(timeLayout), order.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

const selectOrder = `
	SELECT id, status, delivery_type, payment_method, subtotal, tax, delivery_fee, tip, total,
		tip_policy, customer, lines, created_at, updated_at
	FROM orders`

// GetByID returns an order by its ID
func (r *SQLOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(selectOrder+` WHERE id = ?`), id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// List returns orders newest first
func (r *SQLOrderRepository) List(ctx context.Context, filter OrderFilter) ([]models.Order, error) {
	query := selectOrder
	var args []any
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, filter.Status)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, r.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus sets the free-text status of an order
func (r *SQLOrderRepository) UpdateStatus(ctx context.Context, id, status string, at time.Time) (*models.Order, error) {
	res, err := r.db.ExecContext(ctx, r.rebind(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`),
		status, at.UTC().Format(timeLayout), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if n == 0 {
		return nil, ErrOrderNotFound
	}
	return r.GetByID(ctx, id)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*models.Order, error) {
	var (
		order                models.Order
		deliveryType         string
		tip, customer, lines string
		createdAt, updatedAt string
	)
	err := s.Scan(
		&order.ID, &order.Status, &deliveryType, &order.PaymentMethod,
		&order.Totals.Subtotal, &order.Totals.Tax, &order.Totals.DeliveryFee, &order.Totals.Tip, &order.Totals.Total,
		&tip, &customer, &lines, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan order: %w", err)
	}

	order.DeliveryType = models.DeliveryType(deliveryType)
	if err := json.Unmarshal([]byte(tip), &order.Tip); err != nil {
		return nil, fmt.Errorf("failed to decode tip policy: %w", err)
	}
	if err := json.Unmarshal([]byte(customer), &order.Customer); err != nil {
		return nil, fmt.Errorf("failed to decode customer: %w", err)
	}
	if err := json.Unmarshal([]byte(lines), &order.Lines); err != nil {
		return nil, fmt.Errorf("failed to decode order lines: %w", err)
	}
	if order.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if order.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return &order, nil
}

// rebind rewrites ? placeholders to $n for Postgres
func (r *SQLOrderRepository) rebind(query string) string {
	if r.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

// pgUniqueViolation is the SQLSTATE postgres reports for a duplicate key
const pgUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgUniqueViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

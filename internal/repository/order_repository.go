package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/online-shop-api/internal/model"
)

// OrderRepo provides persistence for orders and their line items. An order
// groups one or more products with quantities for a single user. Line items
// are stored in the order_products table. The total price is never stored;
// readers recompute it from the joined product prices.
type OrderRepo struct{ db *sql.DB }

// NewOrderRepo returns a new OrderRepo bound to the given database.
func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

// DB exposes the underlying handle so handlers can open the transaction
// that spans header and line-item writes.
func (r *OrderRepo) DB() *sql.DB { return r.db }

// OrderItemDetail is one line item of an order joined with its product.
// Total carries price × quantity for the single line.
type OrderItemDetail struct {
	ProductID uint64  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  uint32  `json:"quantity"`
	Total     float64 `json:"total"`
}

// CreateTx inserts a new order header within the scope of an existing
// transaction and populates the generated ID and creation timestamp on the
// returned record. The caller must commit or roll back the transaction.
func (r *OrderRepo) CreateTx(ctx context.Context, tx *sql.Tx, userID uint64) (model.Order, error) {
	res, err := tx.ExecContext(ctx, "INSERT INTO orders (user_id) VALUES (?)", userID)
	if err != nil {
		return model.Order{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Order{}, err
	}
	// Query back the full row so created_at reflects the database default.
	var o model.Order
	err = tx.QueryRowContext(ctx,
		"SELECT id, user_id, created_at FROM orders WHERE id=?", id).
		Scan(&o.ID, &o.UserID, &o.CreatedAt)
	if err != nil {
		return model.Order{}, err
	}
	return o, nil
}

// AddItemTx inserts one order_products row within an existing transaction.
func (r *OrderRepo) AddItemTx(ctx context.Context, tx *sql.Tx, orderID, productID uint64, quantity uint32) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO order_products (order_id, product_id, quantity) VALUES (?,?,?)",
		orderID, productID, quantity)
	return err
}

// GetHeader fetches an order header by id.
func (r *OrderRepo) GetHeader(ctx context.Context, id uint64) (model.Order, error) {
	var o model.Order
	err := r.db.QueryRowContext(ctx,
		"SELECT id, user_id, created_at FROM orders WHERE id=? LIMIT 1",
		id).Scan(&o.ID, &o.UserID, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Order{}, ErrOrderNotFound
	}
	return o, err
}

// OwnedBy reports whether the given order exists and belongs to the user.
// A missing order and a foreign order are indistinguishable on purpose:
// customers probing other users' order ids learn nothing about existence.
func (r *OrderRepo) OwnedBy(ctx context.Context, orderID, userID uint64) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM orders WHERE id=? AND user_id=? LIMIT 1",
		orderID, userID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ItemsByOrder returns the line items of an order joined with product name
// and price. The inner join silently excludes items whose product row has
// been deleted; an orphaned reference is invisible, not an error.
func (r *OrderRepo) ItemsByOrder(ctx context.Context, orderID uint64) ([]OrderItemDetail, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT op.product_id, p.name, p.price, op.quantity
		 FROM order_products op
		 INNER JOIN products p ON p.id = op.product_id
		 WHERE op.order_id = ?`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItemDetail
	for rows.Next() {
		var it OrderItemDetail
		if err := rows.Scan(&it.ProductID, &it.Name, &it.Price, &it.Quantity); err != nil {
			return nil, err
		}
		it.Total = it.Price * float64(it.Quantity)
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListHeaders returns all order headers sorted by creation time ascending.
func (r *OrderRepo) ListHeaders(ctx context.Context) ([]model.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, user_id, created_at FROM orders ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// DeleteTx removes an order's line items and then its header within an
// existing transaction, so the two deletes either both happen or neither
// does. It returns ErrOrderNotFound when the header row did not exist.
func (r *OrderRepo) DeleteTx(ctx context.Context, tx *sql.Tx, orderID uint64) error {
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM order_products WHERE order_id=?", orderID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM orders WHERE id=?", orderID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

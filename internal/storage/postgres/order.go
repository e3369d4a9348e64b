package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/devsfood/backend/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, total, status, created_at)
	VALUES ($1, $2, $3, $4, $5)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, quantity, price)
	VALUES ($1, $2, $3, $4, $5)`

	selectOrderSQL = `SELECT id, user_id, total, status, created_at
	FROM orders WHERE id = $1`

	selectOrderItemsSQL = `SELECT order_id, product_id, quantity, price
	FROM order_items WHERE order_id = ANY($1)`

	selectOrdersByUserSQL = `SELECT id, user_id, total, status, created_at
	FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $3
	WHERE id = $1 AND status = $2`

	selectOrderStatusSQL = `SELECT status FROM orders WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists the order header and all its items in one transaction, so
// a partially written order is never observable.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, o.Total, o.Status, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, insertOrderItemSQL,
			uuid.New().String(), o.ID, item.ProductID, item.Quantity, item.Price,
		)
		if err != nil {
			return fmt.Errorf("creating item for order %q: %w", o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns the order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := r.pool.QueryRow(ctx, selectOrderSQL, id).
		Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	items, err := r.loadItems(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

// ListByUser returns the user's orders newest-created first, items included.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, selectOrdersByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]order.Order, 0)
	ids := make([]string, 0)
	for rows.Next() {
		var o order.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// UpdateStatus is a compare-and-set: the row is updated only while its status
// still equals from. Zero rows affected means either the order is gone or a
// concurrent writer committed first; the follow-up read tells them apart.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, from, to order.Status) error {
	ct, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, from, to)
	if err != nil {
		return fmt.Errorf("updating status of order %q: %w", id, err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var current string
	err = r.pool.QueryRow(ctx, selectOrderStatusSQL, id).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.ErrNotFound
		}
		return fmt.Errorf("reloading status of order %q: %w", id, err)
	}
	return order.ErrStaleStatus
}

// loadItems fetches items for the given order IDs in a single query and
// groups them by order.
func (r *OrderRepository) loadItems(ctx context.Context, orderIDs []string) (map[string][]order.Item, error) {
	rows, err := r.pool.Query(ctx, selectOrderItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("loading order items: %w", err)
	}
	defer rows.Close()

	items := make(map[string][]order.Item, len(orderIDs))
	for rows.Next() {
		var (
			orderID string
			item    order.Item
		)
		if err := rows.Scan(&orderID, &item.ProductID, &item.Quantity, &item.Price); err != nil {
			return nil, fmt.Errorf("scanning item row: %w", err)
		}
		items[orderID] = append(items[orderID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating item rows: %w", err)
	}
	return items, nil
}

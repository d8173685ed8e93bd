package order

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

type Repository interface {
	// CreateOrderTx inserts the order and all of its items in one transaction.
	CreateOrderTx(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	GetOrderWithItems(ctx context.Context, id uuid.UUID) (*Order, error)
	GetItems(ctx context.Context, orderID uuid.UUID) ([]Item, error)

	// TransitionStatus moves the order from one status to another only if it
	// still holds the expected current status at write time. Returns false
	// when a concurrent transition got there first.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateOrderTx(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`,
		o.ID,
		o.UserID,
		o.Total,
		o.Status,
		o.CreatedAt,
	)
	if err != nil {
		return err
	}

	for _, item := range o.Items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, article_id, nombre, unit_price, quantity, subtotal)
			VALUES ($1, $2, $3, $4, $5, $6)
		`,
			o.ID,
			item.ArticleID,
			item.Name,
			item.UnitPrice,
			item.Quantity,
			item.Subtotal,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := `
		SELECT id, user_id, total, status, created_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&o.ID, &o.UserID, &o.Total, &o.Status, &o.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *repository) GetOrderWithItems(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := r.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := r.GetItems(ctx, id)
	if err != nil {
		return nil, err
	}

	o.Items = items
	return o, nil
}

func (r *repository) GetItems(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	query := `
		SELECT id, order_id, article_id, nombre, unit_price, quantity, subtotal
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		err := rows.Scan(&it.ID, &it.OrderID, &it.ArticleID, &it.Name, &it.UnitPrice, &it.Quantity, &it.Subtotal)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}

func (r *repository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1 WHERE id = $2 AND status = $3
	`, to, id, from)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

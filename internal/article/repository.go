package article

import (
	"context"
	"database/sql"
	"errors"
)

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Article, error)
	List(ctx context.Context) ([]*Article, error)

	// DecrementStock subtracts qty from the article's stock, clamped at zero,
	// in a single atomic statement. Returns the resulting stock.
	DecrementStock(ctx context.Context, id int64, qty int) (int, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Article, error) {
	query := `
		SELECT id, name, price, stock, created_at, updated_at
		FROM articles
		WHERE id = $1
	`

	var a Article
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&a.ID, &a.Name, &a.Price, &a.Stock, &a.CreatedAt, &a.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrArticleNotFound
	}
	if err != nil {
		return nil, err
	}

	return &a, nil
}

func (r *repository) List(ctx context.Context) ([]*Article, error) {
	query := `
		SELECT id, name, price, stock, created_at, updated_at
		FROM articles
		ORDER BY name ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.ID, &a.Name, &a.Price, &a.Stock, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		articles = append(articles, &a)
	}

	return articles, rows.Err()
}

func (r *repository) DecrementStock(ctx context.Context, id int64, qty int) (int, error) {
	// GREATEST keeps the floor at zero even when concurrent sales already
	// consumed the recorded stock.
	query := `
		UPDATE articles
		SET stock = GREATEST(stock - $1, 0), updated_at = now()
		WHERE id = $2
		RETURNING stock
	`

	var newStock int
	err := r.db.QueryRowContext(ctx, query, qty, id).Scan(&newStock)

	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrArticleNotFound
	}
	if err != nil {
		return 0, err
	}

	return newStock, nil
}

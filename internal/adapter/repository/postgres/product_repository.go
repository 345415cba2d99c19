package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/api-sage/settlement-core/internal/domain"
	"github.com/api-sage/settlement-core/internal/logger"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	logger.Info("product repository create", logger.Fields{
		"productId": product.ID,
		"companyId": product.CompanyID,
	})

	const query = `
INSERT INTO products (id, company_id, name, quantity, low_stock_threshold, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at, updated_at`

	if err := r.db.QueryRowContext(
		ctx,
		query,
		product.ID,
		product.CompanyID,
		product.Name,
		product.Quantity,
		product.LowStockThreshold,
		product.IsActive,
	).Scan(&product.CreatedAt, &product.UpdatedAt); err != nil {
		logger.Error("product repository create failed", err, logger.Fields{
			"productId": product.ID,
		})
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id string) (domain.Product, error) {
	const query = `
SELECT id, company_id, name, quantity, low_stock_threshold, is_active, created_at, updated_at
FROM products
WHERE id = $1`

	var product domain.Product
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&product.ID,
		&product.CompanyID,
		&product.Name,
		&product.Quantity,
		&product.LowStockThreshold,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Product, error) {
	const query = `
SELECT id, company_id, name, quantity, low_stock_threshold, is_active, created_at, updated_at
FROM products
WHERE id = ANY($1)`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.Product, len(ids))
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(
			&product.ID,
			&product.CompanyID,
			&product.Name,
			&product.Quantity,
			&product.LowStockThreshold,
			&product.IsActive,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out[product.ID] = product
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	return out, nil
}

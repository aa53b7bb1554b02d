package postgres

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/product"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
)

type productRepository struct {
	db     *postgres.DB
	logger *logger.Logger
}

func NewProductRepository(db *postgres.DB, logger *logger.Logger) product.Repository {
	return &productRepository{db: db, logger: logger}
}

func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (id, tenant_id, environment_id, name, description, created_at, updated_at, created_by, updated_by)
		VALUES (:id, :tenant_id, :environment_id, :name, :description, :created_at, :updated_at, :created_by, :updated_by)
	`

	r.logger.Debugw("creating product", "product_id", p.ID, "tenant_id", p.TenantID)

	if _, err := r.db.GetQuerier(ctx).NamedExecContext(ctx, query, p); err != nil {
		return mapError(err, "Product", map[string]any{"product_id": p.ID})
	}
	return nil
}

func (r *productRepository) Get(ctx context.Context, id string) (*product.Product, error) {
	query := `
		SELECT id, tenant_id, environment_id, name, description, created_at, updated_at, created_by, updated_by
		FROM products
		WHERE id = $1 AND tenant_id = $2 AND environment_id = $3
	`

	var p product.Product
	err := r.db.GetQuerier(ctx).GetContext(ctx, &p, query, id, types.GetTenantID(ctx), types.GetEnvironmentID(ctx))
	if err != nil {
		return nil, mapError(err, "Product", map[string]any{"product_id": id})
	}
	return &p, nil
}

package product

import (
	"context"

	"github.com/flexprice/plancatalog/internal/types"
)

// Product groups plans that are sold together
type Product struct {
	ID            string `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Description   string `db:"description" json:"description"`
	EnvironmentID string `db:"environment_id" json:"environment_id"`
	types.BaseModel
}

type Repository interface {
	Create(ctx context.Context, product *Product) error
	Get(ctx context.Context, id string) (*Product, error)
}

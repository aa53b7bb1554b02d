package dto

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/product"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/validator"
)

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func (r *CreateProductRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *CreateProductRequest) ToProduct(ctx context.Context) *product.Product {
	return &product.Product{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRODUCT),
		Name:          r.Name,
		Description:   r.Description,
		EnvironmentID: types.GetEnvironmentID(ctx),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
}

type ProductResponse struct {
	*product.Product
}

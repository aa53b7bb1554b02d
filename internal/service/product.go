package service

import (
	"context"

	"github.com/flexprice/plancatalog/internal/api/dto"
	"github.com/flexprice/plancatalog/internal/cache"
	"github.com/flexprice/plancatalog/internal/domain/product"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error)
}

type productService struct {
	ServiceParams
}

func NewProductService(params ServiceParams) ProductService {
	return &productService{
		ServiceParams: params,
	}
}

func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := req.ToProduct(ctx)
	if err := s.ProductRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	return &dto.ProductResponse{Product: p}, nil
}

func (s *productService) GetProduct(ctx context.Context, id string) (*dto.ProductResponse, error) {
	if id == "" {
		return nil, ierr.NewError("product id is required").
			WithHint("Product ID is required").
			Mark(ierr.ErrValidation)
	}

	key := cache.GenerateKey(cache.PrefixProduct, types.GetTenantID(ctx), types.GetEnvironmentID(ctx), id)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			if p, ok := cached.(*product.Product); ok {
				return &dto.ProductResponse{Product: p}, nil
			}
		}
	}

	p, err := s.ProductRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		s.Cache.Set(ctx, key, p, 0)
	}
	return &dto.ProductResponse{Product: p}, nil
}

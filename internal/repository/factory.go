package repository

import (
	"github.com/flexprice/plancatalog/internal/domain/plan"
	"github.com/flexprice/plancatalog/internal/domain/planversion"
	"github.com/flexprice/plancatalog/internal/domain/product"
	"github.com/flexprice/plancatalog/internal/domain/subscription"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
	postgresRepo "github.com/flexprice/plancatalog/internal/repository/postgres"
)

func NewPlanRepository(db *postgres.DB, logger *logger.Logger) plan.Repository {
	return postgresRepo.NewPlanRepository(db, logger)
}

func NewPlanTagRepository(db *postgres.DB, logger *logger.Logger) plan.TagRepository {
	return postgresRepo.NewPlanTagRepository(db, logger)
}

func NewPlanVersionRepository(db *postgres.DB, logger *logger.Logger) planversion.Repository {
	return postgresRepo.NewPlanVersionRepository(db, logger)
}

func NewProductRepository(db *postgres.DB, logger *logger.Logger) product.Repository {
	return postgresRepo.NewProductRepository(db, logger)
}

func NewSubscriptionRepository(db *postgres.DB, logger *logger.Logger) subscription.Repository {
	return postgresRepo.NewSubscriptionRepository(db, logger)
}

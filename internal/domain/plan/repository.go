package plan

import (
	"context"

	"github.com/flexprice/plancatalog/internal/types"
)

// Repository defines the interface for plan persistence
type Repository interface {
	Create(ctx context.Context, plan *Plan) error
	Get(ctx context.Context, id string) (*Plan, error)
	// GetForUpdate reads the plan and locks its row until the surrounding
	// transaction ends. Version numbering and activation rely on this lock.
	GetForUpdate(ctx context.Context, id string) (*Plan, error)
	List(ctx context.Context, filter *types.PlanFilter) ([]*Plan, error)
	Count(ctx context.Context, filter *types.PlanFilter) (int, error)
	Update(ctx context.Context, plan *Plan) error
}

// TagRepository persists the tags of a plan
type TagRepository interface {
	ListByPlan(ctx context.Context, planID string) ([]*Tag, error)
	CreateMany(ctx context.Context, tags []*Tag) error
	DeleteMany(ctx context.Context, planID string, tagIDs []string) error
}

package planversion

import (
	"context"

	"github.com/flexprice/plancatalog/internal/types"
)

// Repository defines the interface for plan version persistence
type Repository interface {
	Create(ctx context.Context, version *PlanVersion) error
	Get(ctx context.Context, id string) (*PlanVersion, error)
	List(ctx context.Context, filter *types.PlanVersionFilter) ([]*PlanVersion, error)
	Count(ctx context.Context, filter *types.PlanVersionFilter) (int, error)
	Update(ctx context.Context, version *PlanVersion) error
	// MaxVersion returns the highest version number ever allocated for the
	// plan, archived versions included, or 0 when there is none
	MaxVersion(ctx context.Context, planID string) (int, error)
}

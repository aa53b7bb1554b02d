package testutil

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/planversion"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

// InMemoryPlanVersionStore implements planversion.Repository
type InMemoryPlanVersionStore struct {
	*InMemoryStore[*planversion.PlanVersion]
}

func NewInMemoryPlanVersionStore() *InMemoryPlanVersionStore {
	return &InMemoryPlanVersionStore{
		InMemoryStore: NewInMemoryStore[*planversion.PlanVersion](),
	}
}

func copyPlanVersion(v *planversion.PlanVersion) *planversion.PlanVersion {
	cp := *v
	cp.RecurringCharges = append(planversion.RecurringCharges{}, v.RecurringCharges...)
	return &cp
}

func planVersionFilterFn(ctx context.Context, v *planversion.PlanVersion, filter interface{}) bool {
	if v == nil {
		return false
	}

	if !CheckTenantFilter(ctx, v.TenantID) || !CheckEnvironmentFilter(ctx, v.EnvironmentID) {
		return false
	}

	f, ok := filter.(*types.PlanVersionFilter)
	if !ok || f == nil {
		return true
	}

	if len(f.PlanIDs) > 0 && !lo.Contains(f.PlanIDs, v.PlanID) {
		return false
	}
	if len(f.VersionIDs) > 0 && !lo.Contains(f.VersionIDs, v.ID) {
		return false
	}
	if len(f.VersionStatus) > 0 && !lo.Contains(f.VersionStatus, v.Status) {
		return false
	}
	return true
}

func planVersionSortFn(filter *types.PlanVersionFilter) SortFunc[*planversion.PlanVersion] {
	order := types.OrderDesc
	if filter != nil {
		order = filter.GetOrder()
	}
	if filter != nil && filter.GetSort() == "version" {
		return func(i, j *planversion.PlanVersion) bool {
			if order == types.OrderAsc {
				return i.Version < j.Version
			}
			return i.Version > j.Version
		}
	}
	return lessCreatedAt(
		func(v *planversion.PlanVersion) int64 { return v.CreatedAt.UnixNano() },
		func(v *planversion.PlanVersion) string { return v.ID },
		order,
	)
}

func (s *InMemoryPlanVersionStore) Create(ctx context.Context, v *planversion.PlanVersion) error {
	if v == nil {
		return ierr.NewError("plan version cannot be nil").Mark(ierr.ErrValidation)
	}
	if v.EnvironmentID == "" {
		v.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	// (plan_id, version) and one active version per plan are unique
	siblings, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, o *planversion.PlanVersion, _ interface{}) bool {
		return o.PlanID == v.PlanID
	}, nil)
	if err != nil {
		return err
	}
	for _, o := range siblings {
		if o.Version == v.Version {
			return ierr.NewErrorf("version %d already exists for plan %s", v.Version, v.PlanID).
				WithHint("Plan version already exists").
				Mark(ierr.ErrAlreadyExists)
		}
		if v.Status == types.PlanVersionStatusActive && o.Status == types.PlanVersionStatusActive {
			return ierr.NewErrorf("plan %s already has an active version", v.PlanID).
				WithHint("Plan already has an active version").
				Mark(ierr.ErrAlreadyExists)
		}
	}

	return s.InMemoryStore.Create(ctx, v.ID, copyPlanVersion(v))
}

func (s *InMemoryPlanVersionStore) Get(ctx context.Context, id string) (*planversion.PlanVersion, error) {
	v, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !planVersionFilterFn(ctx, v, nil) {
		return nil, ierr.NewErrorf("plan version %s not found", id).
			WithHint("Plan version not found").
			Mark(ierr.ErrNotFound)
	}
	return copyPlanVersion(v), nil
}

func (s *InMemoryPlanVersionStore) List(ctx context.Context, filter *types.PlanVersionFilter) ([]*planversion.PlanVersion, error) {
	if filter == nil {
		filter = types.NewNoLimitPlanVersionFilter()
	}
	versions, err := s.InMemoryStore.List(ctx, filter, planVersionFilterFn, planVersionSortFn(filter))
	if err != nil {
		return nil, err
	}
	return lo.Map(versions, func(v *planversion.PlanVersion, _ int) *planversion.PlanVersion {
		return copyPlanVersion(v)
	}), nil
}

func (s *InMemoryPlanVersionStore) Count(ctx context.Context, filter *types.PlanVersionFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, planVersionFilterFn)
}

func (s *InMemoryPlanVersionStore) Update(ctx context.Context, v *planversion.PlanVersion) error {
	if v == nil {
		return ierr.NewError("plan version cannot be nil").Mark(ierr.ErrValidation)
	}
	if v.Status == types.PlanVersionStatusActive {
		others, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, o *planversion.PlanVersion, _ interface{}) bool {
			return o.PlanID == v.PlanID && o.ID != v.ID && o.Status == types.PlanVersionStatusActive
		}, nil)
		if err != nil {
			return err
		}
		if len(others) > 0 {
			return ierr.NewErrorf("plan %s already has an active version", v.PlanID).
				WithHint("Plan already has an active version").
				Mark(ierr.ErrAlreadyExists)
		}
	}
	return s.InMemoryStore.Update(ctx, v.ID, copyPlanVersion(v))
}

func (s *InMemoryPlanVersionStore) MaxVersion(ctx context.Context, planID string) (int, error) {
	versions, err := s.InMemoryStore.List(ctx, nil, func(_ context.Context, v *planversion.PlanVersion, _ interface{}) bool {
		return v.PlanID == planID
	}, nil)
	if err != nil {
		return 0, err
	}
	return lo.Reduce(versions, func(acc int, v *planversion.PlanVersion, _ int) int {
		return max(acc, v.Version)
	}, 0), nil
}

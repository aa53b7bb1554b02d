package testutil

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/plan"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

// InMemoryPlanStore implements plan.Repository
type InMemoryPlanStore struct {
	*InMemoryStore[*plan.Plan]
}

// NewInMemoryPlanStore creates a new in-memory plan store
func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		InMemoryStore: NewInMemoryStore[*plan.Plan](),
	}
}

// copyPlan detaches stored plans from the caller, the way a database row would be
func copyPlan(p *plan.Plan) *plan.Plan {
	if p == nil {
		return nil
	}
	cp := *p
	if p.DisplayVersionID != nil {
		cp.DisplayVersionID = lo.ToPtr(*p.DisplayVersionID)
	}
	cp.Tags = nil
	return &cp
}

// planFilterFn implements filtering logic for plans
func planFilterFn(ctx context.Context, p *plan.Plan, filter interface{}) bool {
	if p == nil {
		return false
	}

	if !CheckTenantFilter(ctx, p.TenantID) || !CheckEnvironmentFilter(ctx, p.EnvironmentID) {
		return false
	}

	f, ok := filter.(*types.PlanFilter)
	if !ok || f == nil {
		return true // No filter applied
	}

	if f.Status != nil && p.Status != *f.Status {
		return false
	}

	if f.ProductID != "" && p.ProductID != f.ProductID {
		return false
	}

	if len(f.PlanIDs) > 0 && !lo.Contains(f.PlanIDs, p.ID) {
		return false
	}

	return true
}

// planSortFn implements sorting logic for plans
func planSortFn(filter *types.PlanFilter) SortFunc[*plan.Plan] {
	order := types.OrderDesc
	if filter != nil {
		order = filter.GetOrder()
	}
	if filter != nil && filter.GetSort() == "name" {
		return func(i, j *plan.Plan) bool {
			if order == types.OrderAsc {
				return i.Name < j.Name
			}
			return i.Name > j.Name
		}
	}
	return lessCreatedAt(
		func(p *plan.Plan) int64 { return p.CreatedAt.UnixNano() },
		func(p *plan.Plan) string { return p.ID },
		order,
	)
}

func (s *InMemoryPlanStore) Create(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}

	// Set environment ID from context if not already set
	if p.EnvironmentID == "" {
		p.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	return s.InMemoryStore.Create(ctx, p.ID, copyPlan(p))
}

func (s *InMemoryPlanStore) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !planFilterFn(ctx, p, nil) {
		return nil, ierr.NewErrorf("plan %s not found", id).
			WithHint("Plan not found").
			Mark(ierr.ErrNotFound)
	}
	return copyPlan(p), nil
}

// GetForUpdate behaves like Get, MockPostgresClient already serializes transactions
func (s *InMemoryPlanStore) GetForUpdate(ctx context.Context, id string) (*plan.Plan, error) {
	return s.Get(ctx, id)
}

func (s *InMemoryPlanStore) List(ctx context.Context, filter *types.PlanFilter) ([]*plan.Plan, error) {
	if filter == nil {
		filter = types.NewNoLimitPlanFilter()
	}
	plans, err := s.InMemoryStore.List(ctx, filter, planFilterFn, planSortFn(filter))
	if err != nil {
		return nil, err
	}
	return lo.Map(plans, func(p *plan.Plan, _ int) *plan.Plan { return copyPlan(p) }), nil
}

func (s *InMemoryPlanStore) Count(ctx context.Context, filter *types.PlanFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, planFilterFn)
}

func (s *InMemoryPlanStore) Update(ctx context.Context, p *plan.Plan) error {
	if p == nil {
		return ierr.NewError("plan cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, p.ID, copyPlan(p))
}

// Clear clears the plan store
func (s *InMemoryPlanStore) Clear() {
	s.InMemoryStore.Clear()
}

// InMemoryPlanTagStore implements plan.TagRepository
type InMemoryPlanTagStore struct {
	*InMemoryStore[*plan.Tag]
}

func NewInMemoryPlanTagStore() *InMemoryPlanTagStore {
	return &InMemoryPlanTagStore{
		InMemoryStore: NewInMemoryStore[*plan.Tag](),
	}
}

func (s *InMemoryPlanTagStore) ListByPlan(ctx context.Context, planID string) ([]*plan.Tag, error) {
	tags, err := s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, t *plan.Tag, _ interface{}) bool {
			return t.PlanID == planID && CheckTenantFilter(ctx, t.TenantID)
		},
		lessCreatedAt(
			func(t *plan.Tag) int64 { return t.CreatedAt.UnixNano() },
			func(t *plan.Tag) string { return t.ID },
			types.OrderAsc,
		),
	)
	if err != nil {
		return nil, err
	}
	return lo.Map(tags, func(t *plan.Tag, _ int) *plan.Tag {
		cp := *t
		return &cp
	}), nil
}

// CreateMany rejects a tag whose name collides case-insensitively with one
// already on the plan, mirroring the unique index
func (s *InMemoryPlanTagStore) CreateMany(ctx context.Context, tags []*plan.Tag) error {
	for _, t := range tags {
		existing, err := s.ListByPlan(ctx, t.PlanID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if plan.TagKey(e.TagName) == plan.TagKey(t.TagName) {
				return ierr.NewErrorf("tag %s already exists on plan %s", t.TagName, t.PlanID).
					WithHint("Tag already exists").
					Mark(ierr.ErrAlreadyExists)
			}
		}
		cp := *t
		if err := s.InMemoryStore.Create(ctx, t.ID, &cp); err != nil {
			return err
		}
	}
	return nil
}

func (s *InMemoryPlanTagStore) DeleteMany(ctx context.Context, planID string, tagIDs []string) error {
	for _, id := range tagIDs {
		t, err := s.InMemoryStore.Get(ctx, id)
		if err != nil {
			return err
		}
		if t.PlanID != planID {
			continue
		}
		if err := s.InMemoryStore.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

package testutil

import (
	"context"

	"github.com/flexprice/plancatalog/internal/domain/subscription"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

// InMemorySubscriptionStore implements subscription.Repository
type InMemorySubscriptionStore struct {
	*InMemoryStore[*subscription.Subscription]
}

func NewInMemorySubscriptionStore() *InMemorySubscriptionStore {
	return &InMemorySubscriptionStore{
		InMemoryStore: NewInMemoryStore[*subscription.Subscription](),
	}
}

func copySubscription(sub *subscription.Subscription) *subscription.Subscription {
	cp := *sub
	if sub.EndDate != nil {
		cp.EndDate = lo.ToPtr(*sub.EndDate)
	}
	return &cp
}

// subscriptionFilterFn implements filtering logic for subscriptions
func subscriptionFilterFn(ctx context.Context, sub *subscription.Subscription, filter interface{}) bool {
	if sub == nil {
		return false
	}

	if !CheckTenantFilter(ctx, sub.TenantID) || !CheckEnvironmentFilter(ctx, sub.EnvironmentID) {
		return false
	}

	f, ok := filter.(*types.SubscriptionFilter)
	if !ok || f == nil {
		return true // No filter applied
	}

	// Filter by customer ID
	if f.CustomerID != "" && sub.CustomerID != f.CustomerID {
		return false
	}

	// Filter by plan version
	if len(f.PlanVersionIDs) > 0 && !lo.Contains(f.PlanVersionIDs, sub.PlanVersionID) {
		return false
	}

	if f.ActiveAt != nil && !sub.IsActiveAt(*f.ActiveAt) {
		return false
	}

	if f.OpenAt != nil && !sub.IsOpenAt(*f.OpenAt) {
		return false
	}

	return true
}

func subscriptionSortFn(filter *types.SubscriptionFilter) SortFunc[*subscription.Subscription] {
	order := types.OrderDesc
	if filter != nil {
		order = filter.GetOrder()
	}
	return lessCreatedAt(
		func(s *subscription.Subscription) int64 { return s.CreatedAt.UnixNano() },
		func(s *subscription.Subscription) string { return s.ID },
		order,
	)
}

func (s *InMemorySubscriptionStore) Create(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}

	// Set environment ID from context if not already set
	if sub.EnvironmentID == "" {
		sub.EnvironmentID = types.GetEnvironmentID(ctx)
	}

	return s.InMemoryStore.Create(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	sub, err := s.InMemoryStore.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !subscriptionFilterFn(ctx, sub, nil) {
		return nil, ierr.NewErrorf("subscription %s not found", id).
			WithHint("Subscription not found").
			Mark(ierr.ErrNotFound)
	}
	return copySubscription(sub), nil
}

func (s *InMemorySubscriptionStore) Update(ctx context.Context, sub *subscription.Subscription) error {
	if sub == nil {
		return ierr.NewError("subscription cannot be nil").Mark(ierr.ErrValidation)
	}
	return s.InMemoryStore.Update(ctx, sub.ID, copySubscription(sub))
}

func (s *InMemorySubscriptionStore) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewNoLimitSubscriptionFilter()
	}
	subs, err := s.InMemoryStore.List(ctx, filter, subscriptionFilterFn, subscriptionSortFn(filter))
	if err != nil {
		return nil, err
	}
	return lo.Map(subs, func(sub *subscription.Subscription, _ int) *subscription.Subscription {
		return copySubscription(sub)
	}), nil
}

func (s *InMemorySubscriptionStore) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, subscriptionFilterFn)
}

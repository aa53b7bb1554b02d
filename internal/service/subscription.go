package service

import (
	"context"
	"time"

	"github.com/flexprice/plancatalog/internal/api/dto"
	"github.com/flexprice/plancatalog/internal/domain/planversion"
	"github.com/flexprice/plancatalog/internal/domain/subscription"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	GetSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{
		ServiceParams: params,
	}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := req.ToSubscription(ctx)
	var planID string

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		version, err := s.PlanVersionRepo.Get(ctx, req.PlanVersionID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return ierr.NewErrorf("plan version %s not found", req.PlanVersionID).
					WithHint("Plan version not found").
					WithReportableDetails(map[string]any{
						"plan_version_id": req.PlanVersionID,
					}).
					Mark(ierr.ErrValidation)
			}
			return err
		}

		if !version.Status.IsSubscribable() {
			return ierr.NewError("plan version does not accept subscriptions").
				WithHintf("Plan version %d is %s", version.Version, version.Status).
				WithReportableDetails(map[string]any{
					"plan_version_id": version.ID,
					"status":          version.Status,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
		planID = version.PlanID

		return s.SubRepo.Create(ctx, sub)
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePlanCache(ctx, planID)
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	if id == "" {
		return nil, ierr.NewError("subscription id is required").
			WithHint("Subscription ID is required").
			Mark(ierr.ErrValidation)
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, filter *types.SubscriptionFilter) (*dto.ListSubscriptionsResponse, error) {
	if filter == nil {
		filter = types.NewSubscriptionFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	if filter.PlanID != "" {
		versions, err := s.PlanVersionRepo.List(ctx, types.NewNoLimitPlanVersionFilter().WithPlanIDs(filter.PlanID))
		if err != nil {
			return nil, err
		}
		ids := lo.Map(versions, func(v *planversion.PlanVersion, _ int) string { return v.ID })
		if len(filter.PlanVersionIDs) > 0 {
			ids = lo.Intersect(ids, filter.PlanVersionIDs)
		}
		if len(ids) == 0 {
			return &dto.ListSubscriptionsResponse{
				Items:      []*dto.SubscriptionResponse{},
				Pagination: types.NewPaginationResponse(0, filter.GetLimit(), filter.GetOffset()),
			}, nil
		}
		filter.PlanVersionIDs = ids
	}

	if filter.ActiveOnly && filter.ActiveAt == nil {
		filter.WithActiveAt(time.Now().UTC())
	}

	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.SubRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListSubscriptionsResponse{
		Items: lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
			return &dto.SubscriptionResponse{Subscription: sub}
		}),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

// listActiveSubscriptions returns the subscriptions on the given versions that
// have not ended, scheduled ones included
func listActiveSubscriptions(ctx context.Context, repo subscription.Repository, versionIDs ...string) ([]*subscription.Subscription, error) {
	if len(versionIDs) == 0 {
		return nil, nil
	}
	filter := types.NewNoLimitSubscriptionFilter().
		WithPlanVersionIDs(versionIDs...).
		WithOpenAt(time.Now().UTC())
	return repo.List(ctx, filter)
}

// countActiveSubscriptions counts the subscriptions on the given versions that
// have not ended, scheduled ones included
func countActiveSubscriptions(ctx context.Context, repo subscription.Repository, versionIDs ...string) (int, error) {
	if len(versionIDs) == 0 {
		return 0, nil
	}
	filter := types.NewNoLimitSubscriptionFilter().
		WithPlanVersionIDs(versionIDs...).
		WithOpenAt(time.Now().UTC())
	return repo.Count(ctx, filter)
}

// activeSubscriptionsByVersion maps each version id to its active subscription count
func activeSubscriptionsByVersion(ctx context.Context, repo subscription.Repository, versionIDs ...string) (map[string]int, error) {
	subs, err := listActiveSubscriptions(ctx, repo, versionIDs...)
	if err != nil {
		return nil, err
	}
	return lo.CountValuesBy(subs, func(sub *subscription.Subscription) string {
		return sub.PlanVersionID
	}), nil
}

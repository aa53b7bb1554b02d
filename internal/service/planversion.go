package service

import (
	"context"
	"time"

	"github.com/flexprice/plancatalog/internal/api/dto"
	"github.com/flexprice/plancatalog/internal/domain/plan"
	"github.com/flexprice/plancatalog/internal/domain/planversion"
	"github.com/flexprice/plancatalog/internal/domain/subscription"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/metrics"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

type PlanVersionService interface {
	CreatePlanVersion(ctx context.Context, req dto.CreatePlanVersionRequest) (*dto.PlanVersionResponse, error)
	GetPlanVersion(ctx context.Context, id string) (*dto.PlanVersionResponse, error)
	GetPlanVersions(ctx context.Context, filter *types.PlanVersionFilter) (*dto.ListPlanVersionsResponse, error)
	UpdatePlanVersion(ctx context.Context, id string, req dto.UpdatePlanVersionRequest) (*dto.PlanVersionResponse, error)
}

type planVersionService struct {
	ServiceParams
}

func NewPlanVersionService(params ServiceParams) PlanVersionService {
	return &planVersionService{
		ServiceParams: params,
	}
}

// CreatePlanVersion allocates the next version number of the plan and applies
// the requested activation policy, all while holding the plan row lock
func (s *planVersionService) CreatePlanVersion(ctx context.Context, req dto.CreatePlanVersionRequest) (*dto.PlanVersionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	policy, err := req.ActivationPolicy()
	if err != nil {
		return nil, err
	}

	var version *planversion.PlanVersion
	outcome := metrics.OutcomeInactive

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.PlanRepo.GetForUpdate(ctx, req.PlanID)
		if err != nil {
			if ierr.IsNotFound(err) {
				return ierr.NewErrorf("plan %s not found", req.PlanID).
					WithHint("Plan not found").
					WithReportableDetails(map[string]any{
						"plan_id": req.PlanID,
					}).
					Mark(ierr.ErrValidation)
			}
			return err
		}

		if p.IsArchived() {
			return ierr.NewError("plan is archived").
				WithHint("Versions can not be added to an archived plan").
				WithReportableDetails(map[string]any{
					"plan_id": p.ID,
				}).
				Mark(ierr.ErrInvalidOperation)
		}

		latest, err := s.PlanVersionRepo.MaxVersion(ctx, p.ID)
		if err != nil {
			return err
		}

		version = req.ToPlanVersion(ctx, latest+1)
		outcome, err = s.activate(ctx, p, version, policy)
		return err
	})
	if err != nil {
		if policy.Activates() {
			s.Metrics.IncActivation(policy.Name(), metrics.OutcomeFailed)
		}
		s.Logger.Errorw("failed to create plan version",
			"error", err,
			"plan_id", req.PlanID,
			"policy", policy.Name(),
		)
		return nil, err
	}

	s.Metrics.IncActivation(policy.Name(), outcome)
	s.Logger.Infow("created plan version",
		"plan_id", version.PlanID,
		"plan_version_id", version.ID,
		"version", version.Version,
		"policy", policy.Name(),
		"outcome", outcome,
	)

	s.invalidatePlanCache(ctx, version.PlanID)
	payload := planVersionPayload(version)
	payload.ActivationPolicy = policy.Name()
	s.publishWebhookEvent(ctx, types.WebhookEventPlanVersionCreated, payload)

	return s.GetPlanVersion(ctx, version.ID)
}

// activate persists version according to policy and returns the metrics outcome.
// The outgoing version is demoted before the new one is written because a plan
// can hold only one active version at a time.
func (s *planVersionService) activate(
	ctx context.Context,
	p *plan.Plan,
	version *planversion.PlanVersion,
	policy planversion.ActivationPolicy,
) (string, error) {
	if !policy.Activates() {
		version.Status = types.PlanVersionStatusInactive
		return metrics.OutcomeInactive, s.PlanVersionRepo.Create(ctx, version)
	}

	outcome := metrics.OutcomeActivated
	var outgoingSubs []*subscription.Subscription

	if p.HasDisplayVersion() {
		prev, err := s.PlanVersionRepo.Get(ctx, *p.DisplayVersionID)
		if err != nil {
			return metrics.OutcomeFailed, err
		}

		if prev.Status == types.PlanVersionStatusActive {
			outgoingSubs, err = listActiveSubscriptions(ctx, s.SubRepo, prev.ID)
			if err != nil {
				return metrics.OutcomeFailed, err
			}
			if len(outgoingSubs) == 0 {
				outcome = metrics.OutcomeSwapped
			}

			prev.Status = policy.OutgoingStatus(len(outgoingSubs) > 0)
			prev.Touch(ctx)
			if err := s.PlanVersionRepo.Update(ctx, prev); err != nil {
				return metrics.OutcomeFailed, err
			}
		}
	}

	version.Status = types.PlanVersionStatusActive
	if err := s.PlanVersionRepo.Create(ctx, version); err != nil {
		return metrics.OutcomeFailed, err
	}

	if replace, ok := policy.(planversion.ReplaceImmediately); ok && len(outgoingSubs) > 0 {
		if err := s.replaceSubscriptions(ctx, replace.Mode, outgoingSubs, version); err != nil {
			return metrics.OutcomeFailed, err
		}
	}

	p.DisplayVersionID = lo.ToPtr(version.ID)
	p.Touch(ctx)
	if err := s.PlanRepo.Update(ctx, p); err != nil {
		return metrics.OutcomeFailed, err
	}
	return outcome, nil
}

// replaceSubscriptions moves the subscribers of a replaced version onto target
func (s *planVersionService) replaceSubscriptions(
	ctx context.Context,
	mode types.ReplaceImmediatelyType,
	subs []*subscription.Subscription,
	target *planversion.PlanVersion,
) error {
	now := time.Now().UTC()

	for _, sub := range subs {
		if mode == types.ReplaceImmediatelyChangeSubscriptionPlan {
			sub.PlanVersionID = target.ID
			sub.Touch(ctx)
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}
			continue
		}

		// a scheduled subscription never billed and keeps its start date on the new version
		start := now
		started := sub.HasStartedAt(now)
		if !started {
			start = sub.StartDate
		}

		bill := started && mode == types.ReplaceImmediatelyEndCurrentSubscriptionAndBill
		sub.End(now, types.SubscriptionEndReasonVersionReplaced, bill)
		sub.Touch(ctx)
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}

		next := &subscription.Subscription{
			ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
			CustomerID:    sub.CustomerID,
			PlanVersionID: target.ID,
			Status:        types.SubscriptionStatusActive,
			StartDate:     start,
			EnvironmentID: sub.EnvironmentID,
			BaseModel:     types.GetDefaultBaseModel(ctx),
		}
		if err := s.SubRepo.Create(ctx, next); err != nil {
			return err
		}
	}

	s.Logger.Infow("replaced subscriptions of outgoing plan version",
		"plan_version_id", target.ID,
		"mode", mode,
		"count", len(subs),
	)
	return nil
}

func (s *planVersionService) GetPlanVersion(ctx context.Context, id string) (*dto.PlanVersionResponse, error) {
	if id == "" {
		return nil, ierr.NewError("plan version id is required").
			WithHint("Plan version ID is required").
			Mark(ierr.ErrValidation)
	}

	v, err := s.PlanVersionRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := countActiveSubscriptions(ctx, s.SubRepo, v.ID)
	if err != nil {
		return nil, err
	}

	return &dto.PlanVersionResponse{PlanVersion: v, ActiveSubscriptions: count}, nil
}

func (s *planVersionService) GetPlanVersions(ctx context.Context, filter *types.PlanVersionFilter) (*dto.ListPlanVersionsResponse, error) {
	if filter == nil {
		filter = types.NewPlanVersionFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	versions, err := s.PlanVersionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PlanVersionRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts, err := activeSubscriptionsByVersion(ctx, s.SubRepo, lo.Map(versions, func(v *planversion.PlanVersion, _ int) string {
		return v.ID
	})...)
	if err != nil {
		return nil, err
	}

	return &dto.ListPlanVersionsResponse{
		Items: lo.Map(versions, func(v *planversion.PlanVersion, _ int) *dto.PlanVersionResponse {
			return &dto.PlanVersionResponse{PlanVersion: v, ActiveSubscriptions: counts[v.ID]}
		}),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}, nil
}

func (s *planVersionService) UpdatePlanVersion(ctx context.Context, id string, req dto.UpdatePlanVersionRequest) (*dto.PlanVersionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var updated *planversion.PlanVersion

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		v, err := s.PlanVersionRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		p, err := s.PlanRepo.GetForUpdate(ctx, v.PlanID)
		if err != nil {
			return err
		}

		// re-read under the plan lock
		v, err = s.PlanVersionRepo.Get(ctx, id)
		if err != nil {
			return err
		}

		if req.Description != nil {
			v.Description = *req.Description
		}

		planChanged := false
		if req.Status != nil && *req.Status != v.Status {
			switch *req.Status {
			case types.PlanVersionStatusArchived:
				if err := s.checkVersionArchivable(ctx, v); err != nil {
					return err
				}
				if isDisplayVersion(p, v) {
					p.DisplayVersionID = nil
					planChanged = true
				}
			case types.PlanVersionStatusActive:
				if err := s.demoteOtherVersions(ctx, p, v); err != nil {
					return err
				}
				p.DisplayVersionID = lo.ToPtr(v.ID)
				planChanged = true
			case types.PlanVersionStatusInactive:
				if isDisplayVersion(p, v) {
					return ierr.NewError("display version can not be made inactive").
						WithHint("Activate another version of the plan instead").
						WithReportableDetails(map[string]any{
							"plan_id":         p.ID,
							"plan_version_id": v.ID,
						}).
						Mark(ierr.ErrInvalidOperation)
				}
			}
			v.Status = *req.Status
		}

		v.Touch(ctx)
		if err := s.PlanVersionRepo.Update(ctx, v); err != nil {
			return err
		}

		if planChanged {
			p.Touch(ctx)
			if err := s.PlanRepo.Update(ctx, p); err != nil {
				return err
			}
		}

		updated = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePlanCache(ctx, updated.PlanID)
	s.publishWebhookEvent(ctx, types.WebhookEventPlanVersionUpdated, planVersionPayload(updated))
	return s.GetPlanVersion(ctx, id)
}

func (s *planVersionService) checkVersionArchivable(ctx context.Context, v *planversion.PlanVersion) error {
	count, err := countActiveSubscriptions(ctx, s.SubRepo, v.ID)
	if err != nil {
		return err
	}

	if count > 0 {
		s.Metrics.IncGuardRejection("plan_version")
		return ierr.NewError("plan version has active subscriptions").
			WithHint("Cannot archive a plan version while subscriptions are billing against it").
			WithReportableDetails(map[string]any{
				"plan_version_id":      v.ID,
				"active_subscriptions": count,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// demoteOtherVersions makes every other live version of the plan inactive so
// that v can become the display version
func (s *planVersionService) demoteOtherVersions(ctx context.Context, p *plan.Plan, v *planversion.PlanVersion) error {
	if v.Status == types.PlanVersionStatusArchived {
		return ierr.NewError("archived plan version can not be activated").
			WithHint("Create a new version instead of reactivating an archived one").
			WithReportableDetails(map[string]any{
				"plan_version_id": v.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if p.IsArchived() {
		return ierr.NewError("plan is archived").
			WithHint("Versions of an archived plan can not be activated").
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	others, err := s.PlanVersionRepo.List(ctx, types.NewNoLimitPlanVersionFilter().
		WithPlanIDs(p.ID).
		WithStatus(
			types.PlanVersionStatusActive,
			types.PlanVersionStatusGrandfathered,
			types.PlanVersionStatusRetiring,
		))
	if err != nil {
		return err
	}

	for _, o := range others {
		if o.ID == v.ID {
			continue
		}
		o.Status = types.PlanVersionStatusInactive
		o.Touch(ctx)
		if err := s.PlanVersionRepo.Update(ctx, o); err != nil {
			return err
		}
	}
	return nil
}

func isDisplayVersion(p *plan.Plan, v *planversion.PlanVersion) bool {
	return p.HasDisplayVersion() && *p.DisplayVersionID == v.ID
}

func planVersionPayload(v *planversion.PlanVersion) types.PlanVersionWebhookPayload {
	return types.PlanVersionWebhookPayload{
		PlanID:        v.PlanID,
		PlanVersionID: v.ID,
		Version:       v.Version,
		Status:        v.Status,
	}
}

package service

import (
	"context"
	"strings"
	"time"

	"github.com/flexprice/plancatalog/internal/api/dto"
	"github.com/flexprice/plancatalog/internal/domain/plan"
	"github.com/flexprice/plancatalog/internal/domain/planversion"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	GetPlans(ctx context.Context, filter *types.PlanFilter) (*dto.ListPlansResponse, error)
	UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error)
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{
		ServiceParams: params,
	}
}

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.ProductRepo.Get(ctx, req.ProductID); err != nil {
		if ierr.IsNotFound(err) {
			return nil, ierr.NewErrorf("product %s not found", req.ProductID).
				WithHint("Product not found").
				WithReportableDetails(map[string]any{
					"product_id": req.ProductID,
				}).
				Mark(ierr.ErrValidation)
		}
		return nil, err
	}

	p := req.ToPlan(ctx)
	initial := req.InitialVersion.ToPlanVersion(ctx, p.ID)
	tags := newTags(ctx, p.ID, plan.DedupeTags(dto.ToTags(ctx, p.ID, req.Tags)))

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		// 1. Create the plan without a display version
		if err := s.PlanRepo.Create(ctx, p); err != nil {
			return err
		}

		// 2. Create the initial version
		if err := s.PlanVersionRepo.Create(ctx, initial); err != nil {
			return err
		}

		// 3. Point the plan at it
		p.DisplayVersionID = lo.ToPtr(initial.ID)
		if err := s.PlanRepo.Update(ctx, p); err != nil {
			return err
		}

		// 4. Tags
		if len(tags) > 0 {
			if err := s.PlanTagRepo.CreateMany(ctx, tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.Logger.Errorw("failed to create plan",
			"error", err,
			"plan_name", req.Name,
		)
		return nil, err
	}

	s.publishWebhookEvent(ctx, types.WebhookEventPlanCreated, planPayload(p))
	return s.GetPlan(ctx, p.ID)
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	if id == "" {
		return nil, ierr.NewError("plan id is required").
			WithHint("Plan ID is required").
			Mark(ierr.ErrValidation)
	}

	key := planCacheKey(ctx, id)
	if s.Cache != nil {
		if cached, ok := s.Cache.Get(ctx, key); ok {
			if resp, ok := cached.(*dto.PlanResponse); ok {
				s.Metrics.IncCache(true)
				return resp, nil
			}
		}
		s.Metrics.IncCache(false)
	}
	gen := s.planCacheGen.current(key)

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	resp, err := s.buildPlanResponse(ctx, p)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil && !s.storePlanCache(ctx, key, gen, resp) {
		s.Logger.Debugw("plan changed while loading, not caching", "plan_id", id)
	}
	return resp, nil
}

func (s *planService) GetPlans(ctx context.Context, filter *types.PlanFilter) (*dto.ListPlansResponse, error) {
	if filter == nil {
		filter = types.NewPlanFilter()
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	plans, err := s.PlanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.PlanRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	response := &dto.ListPlansResponse{
		Items:      make([]*dto.PlanResponse, 0, len(plans)),
		Pagination: types.NewPaginationResponse(count, filter.GetLimit(), filter.GetOffset()),
	}

	for _, p := range plans {
		resp, err := s.buildPlanResponse(ctx, p)
		if err != nil {
			return nil, err
		}
		response.Items = append(response.Items, resp)
	}

	return response, nil
}

func (s *planService) UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	eventName := types.WebhookEventPlanUpdated
	var updated *plan.Plan

	err := s.DB.WithTx(ctx, func(ctx context.Context) error {
		p, err := s.PlanRepo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if req.Name != nil {
			p.Name = strings.TrimSpace(*req.Name)
		}

		if req.Status != nil && *req.Status != p.Status {
			if *req.Status == types.PlanStatusArchived {
				if err := s.checkPlanArchivable(ctx, p); err != nil {
					return err
				}
				eventName = types.WebhookEventPlanArchived
			}
			p.Status = *req.Status
		}

		if req.Tags != nil {
			if err := s.syncPlanTags(ctx, p.ID, req.Tags); err != nil {
				return err
			}
		}

		p.Touch(ctx)
		if err := s.PlanRepo.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePlanCache(ctx, id)
	s.publishWebhookEvent(ctx, eventName, planPayload(updated))
	return s.GetPlan(ctx, id)
}

// checkPlanArchivable rejects archival while any version of the plan still
// has a subscription billing against it
func (s *planService) checkPlanArchivable(ctx context.Context, p *plan.Plan) error {
	versions, err := s.PlanVersionRepo.List(ctx, types.NewNoLimitPlanVersionFilter().WithPlanIDs(p.ID))
	if err != nil {
		return err
	}

	count, err := countActiveSubscriptions(ctx, s.SubRepo, lo.Map(versions, func(v *planversion.PlanVersion, _ int) string {
		return v.ID
	})...)
	if err != nil {
		return err
	}

	if count > 0 {
		s.Metrics.IncGuardRejection("plan")
		return ierr.NewError("plan has active subscriptions").
			WithHint("Cannot archive a plan while subscriptions are active on any of its versions").
			WithReportableDetails(map[string]any{
				"plan_id":              p.ID,
				"active_subscriptions": count,
			}).
			Mark(ierr.ErrInvalidOperation)
	}
	return nil
}

// syncPlanTags replaces the tag set of the plan with requested
func (s *planService) syncPlanTags(ctx context.Context, planID string, requested []dto.PlanTagRequest) error {
	existing, err := s.PlanTagRepo.ListByPlan(ctx, planID)
	if err != nil {
		return err
	}

	diff := plan.ReconcileTags(existing, dto.ToTags(ctx, planID, requested))

	if len(diff.Remove) > 0 {
		ids := lo.Map(diff.Remove, func(t *plan.Tag, _ int) string { return t.ID })
		if err := s.PlanTagRepo.DeleteMany(ctx, planID, ids); err != nil {
			return err
		}
	}

	if len(diff.Add) > 0 {
		if err := s.PlanTagRepo.CreateMany(ctx, newTags(ctx, planID, diff.Add)); err != nil {
			return err
		}
	}

	s.Logger.Debugw("reconciled plan tags",
		"plan_id", planID,
		"kept", len(diff.Keep),
		"added", len(diff.Add),
		"removed", len(diff.Remove),
	)
	return nil
}

func (s *planService) buildPlanResponse(ctx context.Context, p *plan.Plan) (*dto.PlanResponse, error) {
	tags, err := s.PlanTagRepo.ListByPlan(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Tags = tags

	filter := types.NewNoLimitPlanVersionFilter().WithPlanIDs(p.ID)
	filter.Sort = lo.ToPtr("version")
	filter.Order = lo.ToPtr(types.OrderAsc)

	versions, err := s.PlanVersionRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	counts, err := activeSubscriptionsByVersion(ctx, s.SubRepo, lo.Map(versions, func(v *planversion.PlanVersion, _ int) string {
		return v.ID
	})...)
	if err != nil {
		return nil, err
	}

	resp := &dto.PlanResponse{
		Plan:     p,
		Versions: make([]*dto.PlanVersionResponse, 0, len(versions)),
	}
	for _, v := range versions {
		vr := &dto.PlanVersionResponse{PlanVersion: v, ActiveSubscriptions: counts[v.ID]}
		resp.Versions = append(resp.Versions, vr)
		if p.HasDisplayVersion() && v.ID == *p.DisplayVersionID {
			resp.DisplayVersion = vr
		}
	}
	return resp, nil
}

// newTags stamps ids and audit fields on tags about to be inserted
func newTags(ctx context.Context, planID string, tags []*plan.Tag) []*plan.Tag {
	now := time.Now().UTC()
	for _, t := range tags {
		t.ID = types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN_TAG)
		t.PlanID = planID
		t.TenantID = types.GetTenantID(ctx)
		t.CreatedBy = types.GetUserID(ctx)
		t.CreatedAt = now
	}
	return tags
}

func planPayload(p *plan.Plan) types.PlanWebhookPayload {
	return types.PlanWebhookPayload{
		PlanID:           p.ID,
		Status:           p.Status,
		DisplayVersionID: p.DisplayVersionID,
	}
}

package service

import (
	"context"
	"testing"
	"time"

	"github.com/flexprice/plancatalog/internal/api/dto"
	"github.com/flexprice/plancatalog/internal/domain/plan"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/types"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type PlanServiceSuite struct {
	serviceSuite
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func tagNames(tags []*plan.Tag) []string {
	return lo.Map(tags, func(t *plan.Tag, _ int) string { return t.TagName })
}

func (s *PlanServiceSuite) planCount() int {
	count, err := s.GetStores().PlanRepo.Count(s.GetContext(), types.NewNoLimitPlanFilter())
	s.Require().NoError(err)
	return count
}

func (s *PlanServiceSuite) TestCreatePlan() {
	s.Run("initial version becomes active version 1", func() {
		resp := s.createPlan("Basic")

		s.Equal("Basic", resp.Name)
		s.Equal(types.PlanStatusActive, resp.Status)
		s.Require().Len(resp.Versions, 1)
		s.Equal(1, resp.Versions[0].Version)
		s.Equal(types.PlanVersionStatusActive, resp.Versions[0].Status)
		s.Require().NotNil(resp.DisplayVersion)
		s.Equal(1, resp.DisplayVersion.Version)
		s.Equal(resp.Versions[0].ID, lo.FromPtr(resp.DisplayVersionID))
		s.Len(resp.DisplayVersion.RecurringCharges, 1)
	})

	s.Run("missing initial version creates nothing", func() {
		before := s.planCount()

		req := s.createPlanRequest("No Version")
		req.InitialVersion = nil
		_, err := s.planService.CreatePlan(s.GetContext(), req)

		s.Error(err)
		s.True(ierr.IsValidation(err))
		s.Equal(before, s.planCount())
	})

	s.Run("unknown product is a validation error", func() {
		req := s.createPlanRequest("Orphan")
		req.ProductID = "prod_missing"
		_, err := s.planService.CreatePlan(s.GetContext(), req)

		s.Error(err)
		s.True(ierr.IsValidation(err))
	})

	s.Run("invalid duration is rejected", func() {
		req := s.createPlanRequest("Weekly")
		req.Duration = types.PlanDuration("weekly")
		_, err := s.planService.CreatePlan(s.GetContext(), req)

		s.True(ierr.IsValidation(err))
	})

	s.Run("negative charge is rejected", func() {
		req := s.createPlanRequest("Negative")
		req.InitialVersion.RecurringCharges[0].Amount = req.InitialVersion.RecurringCharges[0].Amount.Neg()
		_, err := s.planService.CreatePlan(s.GetContext(), req)

		s.True(ierr.IsValidation(err))
	})

	s.Run("duplicate tags are collapsed", func() {
		resp := s.createPlan("Tagged", "Alpha", "alpha", "beta")
		s.ElementsMatch([]string{"Alpha", "beta"}, tagNames(resp.Tags))
	})
}

func (s *PlanServiceSuite) TestCreatePlanPublishesWebhook() {
	resp := s.createPlan("Webhook")

	events := s.GetPubSub().WebhookEvents(s.GetConfig().Webhook.Topic)
	s.Require().Len(events, 1)
	s.Equal(types.WebhookEventPlanCreated, events[0].EventName)
	s.Equal(types.DefaultTenantID, events[0].TenantID)
	s.Contains(string(events[0].Payload), resp.ID)
}

func (s *PlanServiceSuite) TestArchivePlanWithoutSubscriptions() {
	resp := s.createPlan("Archivable")

	updated, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Status: lo.ToPtr(types.PlanStatusArchived),
	})
	s.Require().NoError(err)

	s.Equal(types.PlanStatusArchived, updated.Status)
	s.Equal(1, s.planCount())
	s.Len(updated.Versions, 1)
	s.Contains(s.GetPubSub().EventNames(s.GetConfig().Webhook.Topic), types.WebhookEventPlanArchived)
}

func (s *PlanServiceSuite) TestArchivePlanWithSubscriptionIsRejected() {
	resp := s.createPlan("Busy")
	s.subscribe(resp.DisplayVersion.ID, "cust_1")

	_, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Name:   lo.ToPtr("Renamed"),
		Status: lo.ToPtr(types.PlanStatusArchived),
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
	s.Equal(400, ierr.HTTPStatusFromErr(err))

	after, err := s.planService.GetPlan(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(types.PlanStatusActive, after.Status)
	s.Equal("Busy", after.Name)
	s.Equal(1, s.planCount())
	s.Require().Len(after.Versions, 1)
	s.Equal(1, after.Versions[0].ActiveSubscriptions)

	count, err := promtestutil.GatherAndCount(s.GetRegistry(), "plan_status_guard_rejections_total")
	s.NoError(err)
	s.Equal(1, count)
}

func (s *PlanServiceSuite) TestArchiveGuardCoversOlderVersions() {
	resp := s.createPlan("Grandfathered")
	s.subscribe(resp.DisplayVersion.ID, "cust_1")
	s.createVersion(resp.ID, true, lo.ToPtr(types.MakeActiveTypeGrandfatherActive))

	_, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Status: lo.ToPtr(types.PlanStatusArchived),
	})
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PlanServiceSuite) TestArchivePlanWithScheduledSubscriptionIsRejected() {
	resp := s.createPlan("Scheduled")
	s.scheduleSubscription(resp.DisplayVersion.ID, "cust_1")

	_, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Status: lo.ToPtr(types.PlanStatusArchived),
	})
	s.True(ierr.IsInvalidOperation(err))

	after, err := s.planService.GetPlan(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(types.PlanStatusActive, after.Status)
	s.Equal(1, after.Versions[0].ActiveSubscriptions)
}

func (s *PlanServiceSuite) TestArchivePlanIgnoresEndedSubscriptions() {
	resp := s.createPlan("Ended")
	sub := s.subscribe(resp.DisplayVersion.ID, "cust_1")
	sub.End(s.GetNow().Add(-time.Minute), types.SubscriptionEndReasonCancelled, false)
	s.Require().NoError(s.GetStores().SubRepo.Update(s.GetContext(), sub))

	updated, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Status: lo.ToPtr(types.PlanStatusArchived),
	})
	s.Require().NoError(err)
	s.Equal(types.PlanStatusArchived, updated.Status)
}

func (s *PlanServiceSuite) TestUpdatePlanTagsReplacesMembership() {
	resp := s.createPlan("Tags")
	s.Empty(resp.Tags)

	updated, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Tags: []dto.PlanTagRequest{{TagName: "test_tag1"}, {TagName: "test_tag2"}},
	})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"test_tag1", "test_tag2"}, tagNames(updated.Tags))

	updated, err = s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Tags: []dto.PlanTagRequest{{TagName: "test_tag3"}},
	})
	s.Require().NoError(err)
	s.Equal([]string{"test_tag3"}, tagNames(updated.Tags))
}

func (s *PlanServiceSuite) TestUpdatePlanTagsIsCaseInsensitive() {
	resp := s.createPlan("Case", "test_tag1", "test_tag2")

	updated, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Tags: []dto.PlanTagRequest{
			{TagName: "Test_tag1", TagColor: "blue"},
			{TagName: "test_tag2"},
		},
	})
	s.Require().NoError(err)
	s.ElementsMatch([]string{"test_tag1", "test_tag2"}, tagNames(updated.Tags))
	for _, t := range updated.Tags {
		s.Empty(t.TagColor)
	}
}

func (s *PlanServiceSuite) TestUpdatePlanEmptyTagsClears() {
	resp := s.createPlan("Clear", "a", "b")

	updated, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Tags: []dto.PlanTagRequest{},
	})
	s.Require().NoError(err)
	s.Empty(updated.Tags)
}

func (s *PlanServiceSuite) TestUpdatePlanWithoutTagsKeepsThem() {
	resp := s.createPlan("Keep", "a")

	updated, err := s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{
		Name: lo.ToPtr("Kept"),
	})
	s.Require().NoError(err)
	s.Equal("Kept", updated.Name)
	s.Equal([]string{"a"}, tagNames(updated.Tags))
}

func (s *PlanServiceSuite) TestGetPlanIsCachedAndInvalidated() {
	resp := s.createPlan("Cached")

	_, err := s.planService.GetPlan(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	_, ok := s.GetCache().Get(s.GetContext(), planCacheKey(s.GetContext(), resp.ID))
	s.True(ok)

	_, err = s.planService.UpdatePlan(s.GetContext(), resp.ID, dto.UpdatePlanRequest{Name: lo.ToPtr("Fresh")})
	s.Require().NoError(err)

	got, err := s.planService.GetPlan(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal("Fresh", got.Name)
}

// invalidatingPlanRepo runs onGet after each load, between the read and the cache store
type invalidatingPlanRepo struct {
	plan.Repository
	onGet func()
}

func (r *invalidatingPlanRepo) Get(ctx context.Context, id string) (*plan.Plan, error) {
	p, err := r.Repository.Get(ctx, id)
	r.onGet()
	return p, err
}

func (s *PlanServiceSuite) TestGetPlanSkipsCacheWhenInvalidatedDuringLoad() {
	resp := s.createPlan("Racing")
	key := planCacheKey(s.GetContext(), resp.ID)

	params := s.params
	params.PlanRepo = &invalidatingPlanRepo{
		Repository: s.params.PlanRepo,
		onGet: func() {
			s.params.invalidatePlanCache(s.GetContext(), resp.ID)
		},
	}

	got, err := NewPlanService(params).GetPlan(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(resp.ID, got.ID)
	_, ok := s.GetCache().Get(s.GetContext(), key)
	s.False(ok)

	_, err = s.planService.GetPlan(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	_, ok = s.GetCache().Get(s.GetContext(), key)
	s.True(ok)
}

func TestCacheGenerations(t *testing.T) {
	g := newCacheGenerations()
	stored := 0

	gen := g.current("plan:1")
	g.bump("plan:1", func() {})
	assert.False(t, g.storeIf("plan:1", gen, func() { stored++ }))

	assert.True(t, g.storeIf("plan:1", g.current("plan:1"), func() { stored++ }))
	assert.True(t, g.storeIf("plan:2", 0, func() { stored++ }))
	assert.Equal(t, 2, stored)
}

func (s *PlanServiceSuite) TestGetPlanNotFound() {
	_, err := s.planService.GetPlan(s.GetContext(), "plan_missing")
	s.True(ierr.IsNotFound(err))
}

func (s *PlanServiceSuite) TestGetPlans() {
	first := s.createPlan("First")
	s.createPlan("Second")

	_, err := s.planService.UpdatePlan(s.GetContext(), first.ID, dto.UpdatePlanRequest{
		Status: lo.ToPtr(types.PlanStatusArchived),
	})
	s.Require().NoError(err)

	all, err := s.planService.GetPlans(s.GetContext(), types.NewPlanFilter())
	s.Require().NoError(err)
	s.Equal(2, all.Pagination.Total)

	filter := types.NewPlanFilter()
	filter.Status = lo.ToPtr(types.PlanStatusArchived)
	archived, err := s.planService.GetPlans(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Require().Len(archived.Items, 1)
	s.Equal(first.ID, archived.Items[0].ID)

	filter = types.NewPlanFilter()
	filter.Limit = lo.ToPtr(1)
	page, err := s.planService.GetPlans(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Len(page.Items, 1)
	s.Equal(2, page.Pagination.Total)
}

func (s *PlanServiceSuite) TestPlansAreTenantScoped() {
	resp := s.createPlan("Mine")

	other := types.SetTenantID(s.GetContext(), "tenant_other")
	_, err := s.planService.GetPlan(other, resp.ID)
	s.True(ierr.IsNotFound(err))
}

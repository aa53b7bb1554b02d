package service

import (
	"time"

	"github.com/flexprice/plancatalog/internal/api/dto"
	"github.com/flexprice/plancatalog/internal/domain/product"
	"github.com/flexprice/plancatalog/internal/domain/subscription"
	"github.com/flexprice/plancatalog/internal/testutil"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// serviceSuite wires every service over the in-memory stores
type serviceSuite struct {
	testutil.BaseServiceTestSuite
	params              ServiceParams
	planService         PlanService
	planVersionService  PlanVersionService
	subscriptionService SubscriptionService
	productService      ProductService
	product             *product.Product
}

func (s *serviceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	s.params = NewServiceParams(
		s.GetLogger(),
		s.GetConfig(),
		s.GetDB(),
		stores.PlanRepo,
		stores.PlanTagRepo,
		stores.PlanVersionRepo,
		stores.ProductRepo,
		stores.SubRepo,
		s.GetCache(),
		s.GetWebhookPublisher(),
		s.GetMetrics(),
	)
	s.planService = NewPlanService(s.params)
	s.planVersionService = NewPlanVersionService(s.params)
	s.subscriptionService = NewSubscriptionService(s.params)
	s.productService = NewProductService(s.params)
	s.product = s.CreateTestProduct("Metering")
}

func (s *serviceSuite) createPlanRequest(name string, tags ...string) dto.CreatePlanRequest {
	return dto.CreatePlanRequest{
		Name:      name,
		Duration:  types.PlanDurationMonthly,
		ProductID: s.product.ID,
		InitialVersion: &dto.CreateInitialVersionRequest{
			Description: "initial",
			RecurringCharges: []dto.RecurringChargeRequest{
				{Name: "platform fee", Amount: decimal.NewFromInt(1000)},
			},
		},
		Tags: lo.Map(tags, func(t string, _ int) dto.PlanTagRequest {
			return dto.PlanTagRequest{TagName: t}
		}),
	}
}

func (s *serviceSuite) createPlan(name string, tags ...string) *dto.PlanResponse {
	resp, err := s.planService.CreatePlan(s.GetContext(), s.createPlanRequest(name, tags...))
	s.Require().NoError(err)
	return resp
}

func (s *serviceSuite) createVersion(planID string, makeActive bool, makeActiveType *types.MakeActiveType) *dto.PlanVersionResponse {
	resp, err := s.planVersionService.CreatePlanVersion(s.GetContext(), dto.CreatePlanVersionRequest{
		PlanID:         planID,
		Description:    "next",
		MakeActive:     makeActive,
		MakeActiveType: makeActiveType,
	})
	s.Require().NoError(err)
	return resp
}

// subscribe stores an active subscription that started an hour ago
func (s *serviceSuite) subscribe(planVersionID, customerID string) *subscription.Subscription {
	resp, err := s.subscriptionService.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID:    customerID,
		PlanVersionID: planVersionID,
		StartDate:     lo.ToPtr(time.Now().UTC().Add(-time.Hour)),
	})
	s.Require().NoError(err)
	return resp.Subscription
}

// scheduleSubscription subscribes a customer whose first period starts tomorrow
func (s *serviceSuite) scheduleSubscription(planVersionID, customerID string) *subscription.Subscription {
	resp, err := s.subscriptionService.CreateSubscription(s.GetContext(), dto.CreateSubscriptionRequest{
		CustomerID:    customerID,
		PlanVersionID: planVersionID,
		StartDate:     lo.ToPtr(time.Now().UTC().Add(24 * time.Hour)),
	})
	s.Require().NoError(err)
	return resp.Subscription
}

func (s *serviceSuite) versionStatus(id string) types.PlanVersionStatus {
	v, err := s.GetStores().PlanVersionRepo.Get(s.GetContext(), id)
	s.Require().NoError(err)
	return v.Status
}

func (s *serviceSuite) activeVersionCount(planID string) int {
	count, err := s.GetStores().PlanVersionRepo.Count(s.GetContext(), types.NewNoLimitPlanVersionFilter().
		WithPlanIDs(planID).
		WithStatus(types.PlanVersionStatusActive))
	s.Require().NoError(err)
	return count
}

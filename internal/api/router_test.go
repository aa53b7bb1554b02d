package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/flexprice/plancatalog/internal/api/dto"
	v1 "github.com/flexprice/plancatalog/internal/api/v1"
	"github.com/flexprice/plancatalog/internal/rest/middleware"
	"github.com/flexprice/plancatalog/internal/service"
	"github.com/flexprice/plancatalog/internal/testutil"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	testutil.BaseServiceTestSuite
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	s.BaseServiceTestSuite.SetupSuite()
}

func (s *RouterSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	stores := s.GetStores()
	params := service.NewServiceParams(
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

	handlers := Handlers{
		Health:       v1.NewHealthHandler(nil, s.GetLogger()),
		Plan:         v1.NewPlanHandler(service.NewPlanService(params), s.GetLogger()),
		PlanVersion:  v1.NewPlanVersionHandler(service.NewPlanVersionService(params), s.GetLogger()),
		Product:      v1.NewProductHandler(service.NewProductService(params), s.GetLogger()),
		Subscription: v1.NewSubscriptionHandler(service.NewSubscriptionService(params), s.GetLogger()),
	}
	s.router = NewRouter(handlers, s.GetConfig(), s.GetLogger(), nil, s.GetRegistry(), s.GetMetrics())
}

func (s *RouterSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(types.HeaderEnvironment, testutil.DefaultEnvironmentID)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *RouterSuite) createPlan() *dto.PlanResponse {
	w := s.do(http.MethodPost, "/v1/products", map[string]any{"name": "Metering"})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var product dto.ProductResponse
	s.decode(w, &product)

	w = s.do(http.MethodPost, "/v1/plans", map[string]any{
		"plan_name":     "Growth",
		"plan_duration": "monthly",
		"product_id":    product.ID,
		"initial_version": map[string]any{
			"description": "launch pricing",
			"recurring_charges": []map[string]any{
				{"name": "platform fee", "amount": "49.00"},
			},
		},
		"tags": []map[string]any{{"tag_name": "self-serve"}},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var plan dto.PlanResponse
	s.decode(w, &plan)
	s.Require().NotNil(plan.DisplayVersion)
	return &plan
}

func (s *RouterSuite) subscribe(versionID string) {
	w := s.do(http.MethodPost, "/v1/subscriptions", map[string]any{
		"customer_id":     "cust_1",
		"plan_version_id": versionID,
		"start_date":      time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ok")
}

func (s *RouterSuite) TestCreateAndGetPlan() {
	plan := s.createPlan()
	s.Equal(1, plan.DisplayVersion.Version)
	s.Equal(types.PlanVersionStatusActive, plan.DisplayVersion.Status)

	w := s.do(http.MethodGet, "/v1/plans/"+plan.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var got dto.PlanResponse
	s.decode(w, &got)
	s.Equal(plan.ID, got.ID)
	s.Len(got.Versions, 1)
	s.Require().Len(got.Tags, 1)
	s.Equal("self-serve", got.Tags[0].TagName)

	w = s.do(http.MethodGet, "/v1/plans", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListPlansResponse
	s.decode(w, &list)
	s.Equal(1, list.Pagination.Total)
}

func (s *RouterSuite) TestUpdatePlanName() {
	plan := s.createPlan()
	s.Equal("Growth", plan.Name)

	w := s.do(http.MethodPatch, "/v1/plans/"+plan.ID, map[string]any{"plan_name": "change_plan_name"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var updated dto.PlanResponse
	s.decode(w, &updated)
	s.Equal("change_plan_name", updated.Name)

	w = s.do(http.MethodGet, "/v1/plans/"+plan.ID, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var got dto.PlanResponse
	s.decode(w, &got)
	s.Equal("change_plan_name", got.Name)
	s.Len(got.Tags, 1)
}

func (s *RouterSuite) TestCreatePlanRequiresPlanName() {
	w := s.do(http.MethodPost, "/v1/plans", map[string]any{
		"name":          "Growth",
		"plan_duration": "monthly",
		"product_id":    "prod_1",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestMalformedBody() {
	w := s.do(http.MethodPost, "/v1/plans", "{not json")
	s.Equal(http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.False(resp.Success)
	s.Equal("Invalid request format", resp.Error.Display)
}

func (s *RouterSuite) TestUnknownPlan() {
	w := s.do(http.MethodGet, "/v1/plans/plan_missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestArchiveRejectedWhileSubscribed() {
	plan := s.createPlan()
	s.subscribe(plan.DisplayVersion.ID)

	w := s.do(http.MethodPatch, "/v1/plans/"+plan.ID, map[string]any{"status": "archived"})
	s.Equal(http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	s.decode(w, &resp)
	s.Contains(resp.Error.Display, "Cannot archive a plan")

	w = s.do(http.MethodGet, "/v1/plans/"+plan.ID, nil)
	var got dto.PlanResponse
	s.decode(w, &got)
	s.Equal(types.PlanStatusActive, got.Status)
}

func (s *RouterSuite) TestVersionLifecycle() {
	plan := s.createPlan()
	s.subscribe(plan.DisplayVersion.ID)

	w := s.do(http.MethodPost, "/v1/plan_versions", map[string]any{
		"plan_id":          plan.ID,
		"description":      "new pricing",
		"make_active":      true,
		"make_active_type": "grandfather_active",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	var created dto.PlanVersionResponse
	s.decode(w, &created)
	s.Equal(2, created.Version)
	s.Equal(types.PlanVersionStatusActive, created.Status)

	w = s.do(http.MethodGet, "/v1/plan_versions?plan_id="+plan.ID+"&sort=version&order=asc", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var list dto.ListPlanVersionsResponse
	s.decode(w, &list)
	s.Require().Len(list.Items, 2)
	s.Equal(types.PlanVersionStatusGrandfathered, list.Items[0].Status)
	s.Equal(1, list.Items[0].ActiveSubscriptions)

	w = s.do(http.MethodPatch, "/v1/plan_versions/"+plan.DisplayVersion.ID, map[string]any{"status": "archived"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/v1/subscriptions?plan_id="+plan.ID+"&active_only=true", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var subs dto.ListSubscriptionsResponse
	s.decode(w, &subs)
	s.Len(subs.Items, 1)
}

func (s *RouterSuite) TestReplaceTypeWithoutReplacePolicy() {
	plan := s.createPlan()

	w := s.do(http.MethodPost, "/v1/plan_versions", map[string]any{
		"plan_id":                  plan.ID,
		"make_active":              true,
		"make_active_type":         "grandfather_active",
		"replace_immediately_type": "change_subscription_plan",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterSuite) TestMetricsEndpoint() {
	plan := s.createPlan()
	w := s.do(http.MethodPost, "/v1/plan_versions", map[string]any{
		"plan_id":     plan.ID,
		"make_active": true,
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/metrics", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	body := w.Body.String()
	s.True(strings.Contains(body, "plan_version_activations_total"), body)
	s.True(strings.Contains(body, `route="/v1/plans"`), body)
}

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/api/dto"
	v1 "github.com/Wizard254-ux/example-driver-portal-sub000/internal/api/v1"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/billing"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/cache"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/sentry"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/service"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/testutil"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/suite"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	subscriptionStatusBody = `{
		"organization_id": "org_test",
		"plan_id": "plan_growth",
		"plan_name": "Growth",
		"max_drivers": 50,
		"status": "active",
		"amount_paid": "300.00",
		"tax_paid": "24.00",
		"start_date": "2024-03-06",
		"duration_months": 1
	}`
	plansBody = `[
		{"id": "plan_starter", "name": "Starter", "amount": "100.00", "max_drivers": 10, "duration_months": 1},
		{"id": "plan_growth", "name": "Growth", "amount": "300.00", "max_drivers": 50, "duration_months": 1},
		{"id": "plan_fleet", "name": "Fleet", "amount": "500.00", "max_drivers": 200, "duration_months": 1}
	]`
	limitsBody  = `{"month": "2024-03", "limit": 2, "upgrade_used": 1, "downgrade_used": 0, "cancel_used": 0}`
	previewBody = `{
		"scenario": "PARTIAL",
		"subscription_age": 10,
		"credit_applied": "200.00",
		"final_amount": "300.00",
		"tax_amount": "40.00",
		"tax_rate": "8",
		"total_amount": "340.00",
		"wallet_credit_remaining": "0"
	}`
)

type RouterSuite struct {
	suite.Suite
	http   *testutil.MockHTTPClient
	router *gin.Engine
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
}

func (s *RouterSuite) SetupTest() {
	cfg := config.GetDefaultConfig()
	log := logger.NewNopLogger()
	s.http = testutil.NewMockHTTPClient()

	params := service.NewServiceParams(log, cfg, cache.NewInMemoryCache(cfg), billing.NewClient(cfg, s.http, log))
	params.Clock = func() time.Time { return time.Date(2024, 3, 16, 12, 0, 0, 0, time.UTC) }
	planChangeService := service.NewPlanChangeService(params)

	s.router = NewRouter(Handlers{
		Health:     v1.NewHealthHandler(nil, log),
		Proration:  v1.NewProrationHandler(planChangeService, log),
		PlanChange: v1.NewPlanChangeHandler(planChangeService, log),
	}, cfg, log, sentry.NewSentryService(cfg, log))

	s.http.RegisterJSON(http.MethodGet, billing.EndpointSubscriptionStatus, subscriptionStatusBody)
	s.http.RegisterJSON(http.MethodGet, billing.EndpointPlans, plansBody)
	s.http.RegisterJSON(http.MethodGet, billing.EndpointSubscriptionLimits, limitsBody)
	s.http.RegisterJSON(http.MethodPost, billing.EndpointProrationPreview, previewBody)
}

func (s *RouterSuite) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(types.HeaderAuthorization, "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *RouterSuite) decodeError(w *httptest.ResponseRecorder) ierr.ErrorResponse {
	var resp ierr.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *RouterSuite) TestHealth() {
	w := s.do(http.MethodGet, "/health", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"status":"ok"}`, w.Body.String())
	s.NotEmpty(w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestMetrics() {
	w := s.do(http.MethodGet, "/metrics", nil, "")
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "go_goroutines")
}

func (s *RouterSuite) TestRequestIDIsEchoed() {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(types.HeaderRequestID, "req-123")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal("req-123", w.Header().Get(types.HeaderRequestID))
}

func (s *RouterSuite) TestCalculate() {
	w := s.do(http.MethodPost, "/v1/proration/calculate", map[string]any{
		"amount_paid":     "300",
		"tax_paid":        "24",
		"start_date":      "2024-03-14T00:00:00Z",
		"duration_months": 1,
		"target_amount":   "500",
		"tax_rate":        "8",
		"now":             "2024-03-16T00:00:00Z",
	}, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.CalculateProrationResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.ProrationScenarioEarly, resp.Proration.Scenario)
	s.Equal("216", resp.Proration.TotalAmount.String())
	s.True(resp.Approximate)
	s.True(resp.Downgrade.Allowed)
	s.Empty(s.http.Requests())
}

func (s *RouterSuite) TestCalculate_InvalidBody() {
	req := httptest.NewRequest(http.MethodPost, "/v1/proration/calculate", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	s.Equal(http.StatusBadRequest, w.Code)
	resp := s.decodeError(w)
	s.False(resp.Success)
	s.Equal("Invalid request format", resp.Error.Display)
}

func (s *RouterSuite) TestCalculate_MissingFields() {
	w := s.do(http.MethodPost, "/v1/proration/calculate", map[string]any{"amount_paid": "300"}, "")
	s.Equal(http.StatusBadRequest, w.Code)
	s.Contains(s.decodeError(w).Error.Details, "TargetAmount")
}

func (s *RouterSuite) TestPreview_RequiresToken() {
	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change/preview", map[string]any{"plan_id": "plan_fleet"}, "")
	s.Equal(http.StatusForbidden, w.Code)
	s.Empty(s.http.Requests())
}

func (s *RouterSuite) TestPreview_ServerResult() {
	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change/preview", map[string]any{"plan_id": "plan_fleet"}, "tok")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.PlanChangePreviewResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.True(resp.Available)
	s.Equal(types.PreviewSourceServer, resp.Source)
	s.Equal(types.ChangeTypeUpgrade, resp.ChangeType)
	s.Equal(types.ProrationScenarioPartial, resp.Proration.Scenario)
	s.Equal("340", resp.Proration.TotalAmount.String())
	s.Equal(1, resp.Eligibility.ChangesRemaining)

	for _, req := range s.http.Requests() {
		s.Equal("Bearer tok", req.Headers[types.HeaderAuthorization])
		s.NotEmpty(req.Headers[types.HeaderRequestID])
	}
}

func (s *RouterSuite) TestPreview_LocalFallbackOnServerError() {
	s.http.RegisterResponse(http.MethodPost, billing.EndpointProrationPreview, testutil.MockResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       []byte(`{"detail":"maintenance"}`),
	})
	s.http.RegisterJSON(http.MethodPost, billing.EndpointCalculateTax,
		`{"tax_amount": "40.00", "tax_rate": "8", "total_amount": "540.00", "state_name": "California"}`)

	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change/preview", map[string]any{"plan_id": "plan_fleet"}, "tok")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.PlanChangePreviewResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(types.PreviewSourceLocal, resp.Source)
	s.True(resp.Approximate)
	s.Equal("340", resp.Proration.TotalAmount.String())
}

func (s *RouterSuite) TestApply_DowngradeCooldown() {
	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change", map[string]any{
		"plan_id":     "plan_starter",
		"change_type": "downgrade",
	}, "tok")
	s.Equal(http.StatusConflict, w.Code)

	resp := s.decodeError(w)
	s.Equal("Downgrades are available again in 15 days", resp.Error.Display)
	s.EqualValues(15, resp.Error.Details["days_until_allowed"])
}

func (s *RouterSuite) TestApply_MislabeledDowngrade() {
	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change", map[string]any{
		"plan_id":     "plan_starter",
		"change_type": "upgrade",
	}, "tok")
	s.Equal(http.StatusBadRequest, w.Code)

	resp := s.decodeError(w)
	s.Equal("Moving to this plan is a downgrade", resp.Error.Display)
	for _, req := range s.http.Requests() {
		s.NotContains(req.URL, billing.EndpointChangeSubscription)
	}
}

func (s *RouterSuite) TestApply_LimitReached() {
	s.http.RegisterJSON(http.MethodGet, billing.EndpointSubscriptionLimits,
		`{"month": "2024-03", "limit": 1, "upgrade_used": 1}`)

	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change", map[string]any{
		"plan_id":     "plan_fleet",
		"change_type": "upgrade",
	}, "tok")
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *RouterSuite) TestApply_Success() {
	s.http.RegisterJSON(http.MethodPost, billing.EndpointChangeSubscription,
		`{"status": "completed", "plan_id": "plan_fleet", "amount_charged": "340.00", "wallet_credit_remaining": "0"}`)

	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change", map[string]any{
		"plan_id":     "plan_fleet",
		"change_type": "upgrade",
	}, "tok")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.ApplyPlanChangeResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("completed", resp.Status)
	s.Equal("340", resp.AmountCharged.String())

	var changeReq bool
	for _, req := range s.http.Requests() {
		if req.Method == http.MethodPost && bytes.Contains([]byte(req.URL), []byte(billing.EndpointChangeSubscription)) {
			changeReq = true
			s.Equal(resp.ChangeID, req.Headers[types.HeaderIdempotencyKey])
		}
	}
	s.True(changeReq)
}

func (s *RouterSuite) TestApply_UpstreamConflict() {
	s.http.RegisterResponse(http.MethodPost, billing.EndpointChangeSubscription, testutil.MockResponse{
		StatusCode: http.StatusConflict,
		Body:       []byte(`{"detail":"A plan change is already pending"}`),
	})

	w := s.do(http.MethodPost, "/v1/organizations/org_test/plan-change", map[string]any{
		"plan_id":     "plan_fleet",
		"change_type": "upgrade",
	}, "tok")
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("A plan change is already pending", s.decodeError(w).Error.Display)
}

func (s *RouterSuite) TestDowngradeEligibility() {
	w := s.do(http.MethodGet, "/v1/organizations/org_test/downgrade-eligibility", nil, "tok")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.DowngradeEligibilityResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("org_test", resp.OrganizationID)
	s.False(resp.Allowed)
	s.Equal(15, resp.DaysUntilAllowed)
	s.Equal(10, resp.SubscriptionAge)
}

func (s *RouterSuite) TestChangeLimits() {
	w := s.do(http.MethodGet, "/v1/organizations/org_test/change-limits", nil, "tok")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	var resp dto.ChangeAllowanceResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("2024-03", resp.Month)
	s.Len(resp.Allowances, 3)
}

func (s *RouterSuite) TestUnknownOrganization() {
	s.http.RegisterResponse(http.MethodGet, billing.EndpointSubscriptionStatus, testutil.MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       []byte(`{"detail":"Organization has no subscription"}`),
	})

	w := s.do(http.MethodGet, "/v1/organizations/org_missing/downgrade-eligibility", nil, "tok")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("Organization has no subscription", s.decodeError(w).Error.Display)
}

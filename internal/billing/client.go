// Package billing is the typed client of the Billing API, the authoritative source of
// subscriptions, plans, tax and proration.
package billing

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/changelimit"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/tax"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/httpclient"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/metrics"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	EndpointSubscriptionStatus = "/subscription-status"
	EndpointPlans              = "/plans"
	EndpointCalculateTax       = "/calculate-tax"
	EndpointProrationPreview   = "/proration-preview"
	EndpointSubscriptionLimits = "/subscription-limits"
	EndpointChangeSubscription = "/change-subscription"
)

// Client is the Billing API surface used by the portal
type Client interface {
	GetSubscriptionStatus(ctx context.Context, organizationID string) (*subscription.Snapshot, error)
	ListPlans(ctx context.Context) (plan.Catalog, error)
	CalculateTax(ctx context.Context, req TaxRequest) (*tax.Quote, error)
	GetProrationPreview(ctx context.Context, req PreviewRequest) (*proration.ProrationResult, error)
	GetSubscriptionLimits(ctx context.Context, organizationID string) (*changelimit.State, error)
	ChangeSubscription(ctx context.Context, req ChangeRequest) (*ChangeResponse, error)
}

type client struct {
	http    httpclient.Client
	baseURL string
	logger  *logger.Logger
}

// NewClient creates a Billing API client on top of the shared transport
func NewClient(cfg *config.Configuration, httpClient httpclient.Client, log *logger.Logger) Client {
	return &client{
		http:    httpClient,
		baseURL: strings.TrimRight(cfg.BillingAPI.BaseURL, "/"),
		logger:  log,
	}
}

func (c *client) GetSubscriptionStatus(ctx context.Context, organizationID string) (*subscription.Snapshot, error) {
	if organizationID == "" {
		return nil, ierr.NewError("organization_id is required").
			WithHint("Organization is required").
			Mark(ierr.ErrValidation)
	}

	var resp SubscriptionStatusResponse
	query := url.Values{"organization_id": []string{organizationID}}
	if err := c.do(ctx, http.MethodGet, EndpointSubscriptionStatus, query, nil, nil, &resp); err != nil {
		return nil, err
	}

	snapshot := resp.ToSnapshot()
	if snapshot.OrganizationID == "" {
		snapshot.OrganizationID = organizationID
	}
	return snapshot, nil
}

func (c *client) ListPlans(ctx context.Context) (plan.Catalog, error) {
	var raw jsoniter.RawMessage
	if err := c.do(ctx, http.MethodGet, EndpointPlans, nil, nil, nil, &raw); err != nil {
		return nil, err
	}

	var plans []*PlanResponse
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(raw, &plans); err != nil {
			return nil, decodeError(err, EndpointPlans)
		}
	} else {
		var envelope ListPlansResponse
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, decodeError(err, EndpointPlans)
		}
		plans = envelope.Plans
	}

	catalog := make(plan.Catalog, 0, len(plans))
	for _, p := range plans {
		if p == nil {
			continue
		}
		catalog = append(catalog, p.ToTargetPlan())
	}
	return catalog, nil
}

func (c *client) CalculateTax(ctx context.Context, req TaxRequest) (*tax.Quote, error) {
	if req.StateCode == "" {
		return nil, ierr.NewError("state_code is required").
			WithHint("Please select a state for tax calculation").
			Mark(ierr.ErrValidation)
	}

	var resp TaxResponse
	if err := c.do(ctx, http.MethodPost, EndpointCalculateTax, nil, req, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToQuote(req), nil
}

func (c *client) GetProrationPreview(ctx context.Context, req PreviewRequest) (*proration.ProrationResult, error) {
	var resp PreviewResponse
	if err := c.do(ctx, http.MethodPost, EndpointProrationPreview, nil, req, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToResult()
}

func (c *client) GetSubscriptionLimits(ctx context.Context, organizationID string) (*changelimit.State, error) {
	var resp SubscriptionLimitsResponse
	query := url.Values{"organization_id": []string{organizationID}}
	if err := c.do(ctx, http.MethodGet, EndpointSubscriptionLimits, query, nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ToState(), nil
}

func (c *client) ChangeSubscription(ctx context.Context, req ChangeRequest) (*ChangeResponse, error) {
	headers := map[string]string{}
	if req.IdempotencyKey != "" {
		headers[types.HeaderIdempotencyKey] = req.IdempotencyKey
	}

	var resp ChangeResponse
	if err := c.do(ctx, http.MethodPost, EndpointChangeSubscription, nil, req, headers, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do sends one request and decodes the JSON answer into out
func (c *client) do(
	ctx context.Context,
	method, endpoint string,
	query url.Values,
	body any,
	headers map[string]string,
	out any,
) error {
	target := c.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return ierr.WithError(err).
				WithHintf("failed to encode %s request", endpoint).
				Mark(ierr.ErrSystem)
		}
		payload = b
	}

	reqHeaders := map[string]string{}
	if jwt := types.GetJWT(ctx); jwt != "" {
		reqHeaders[types.HeaderAuthorization] = "Bearer " + jwt
	}
	if requestID := types.GetRequestID(ctx); requestID != "" {
		reqHeaders[types.HeaderRequestID] = requestID
	}
	for k, v := range headers {
		reqHeaders[k] = v
	}

	start := time.Now()
	resp, err := c.http.Send(ctx, &httpclient.Request{
		Method:  method,
		URL:     target,
		Headers: reqHeaders,
		Body:    payload,
	})
	metrics.BillingRequestDuration.
		WithLabelValues(endpoint, statusLabel(resp, err)).
		Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.WithContext(ctx).Warnw("billing api request failed",
			"method", method,
			"endpoint", endpoint,
			"error", err,
		)
		return translateError(err, endpoint)
	}

	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return decodeError(err, endpoint)
	}
	return nil
}

// translateError maps upstream statuses onto the portal's error kinds and keeps the upstream message as hint
func translateError(err error, endpoint string) error {
	httpErr, ok := httpclient.IsHTTPError(err)
	if !ok {
		return err
	}

	var body upstreamError
	_ = json.Unmarshal(httpErr.Response, &body)
	hint := body.text()
	if hint == "" {
		hint = "The billing service rejected the request"
	}

	b := ierr.WithError(err).
		WithHint(hint).
		WithReportableDetails(map[string]any{
			"endpoint":    endpoint,
			"status_code": httpErr.StatusCode,
		})

	switch httpErr.StatusCode {
	case http.StatusNotFound:
		return b.Mark(ierr.ErrNotFound)
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return b.Mark(ierr.ErrValidation)
	case http.StatusUnauthorized, http.StatusForbidden:
		return b.Mark(ierr.ErrPermissionDenied)
	case http.StatusConflict:
		return b.Mark(ierr.ErrInvalidOperation)
	default:
		return b.Mark(ierr.ErrHTTPClient)
	}
}

func decodeError(err error, endpoint string) error {
	return ierr.WithError(err).
		WithHintf("The billing service returned an unexpected %s response", endpoint).
		Mark(ierr.ErrHTTPClient)
}

func statusLabel(resp *httpclient.Response, err error) string {
	if resp != nil {
		return strconv.Itoa(resp.StatusCode)
	}
	if httpErr, ok := httpclient.IsHTTPError(err); ok {
		return strconv.Itoa(httpErr.StatusCode)
	}
	return "error"
}

package service

import (
	"context"
	"errors"
	"time"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/api/dto"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/billing"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/cache"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/changelimit"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/plan"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/proration"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/subscription"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/domain/tax"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/metrics"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"
)

// Reasons reported in a preview's eligibility and unavailable fields
const (
	ReasonChangeLimitReached       = "monthly_change_limit_reached"
	ReasonChangeLimitsUnavailable  = "change_limits_unavailable"
	ReasonDowngradeCooldown        = "downgrade_cooldown"
	ReasonSubscriptionStartUnknown = "subscription_start_unknown"
	ReasonTaxUnavailable           = "tax_unavailable"
	ReasonInvalidSubscriptionData  = "invalid_subscription_data"
)

const catalogKeyName = "all"

// PlanChangeService orchestrates plan change previews and confirmations against the Billing API
type PlanChangeService interface {
	// PreviewPlanChange prefers the server's preview and falls back to an approximate local one
	PreviewPlanChange(ctx context.Context, req *dto.PreviewPlanChangeRequest) (*dto.PlanChangePreviewResponse, error)

	// ApplyPlanChange enforces the monthly limit and the downgrade cooldown, then asks the Billing API to switch
	ApplyPlanChange(ctx context.Context, req *dto.ApplyPlanChangeRequest) (*dto.ApplyPlanChangeResponse, error)

	CheckDowngrade(ctx context.Context, organizationID string) (*dto.DowngradeEligibilityResponse, error)
	GetChangeAllowance(ctx context.Context, organizationID string) (*dto.ChangeAllowanceResponse, error)

	// CalculateLocal runs the calculator on caller supplied data without touching the Billing API
	CalculateLocal(ctx context.Context, req *dto.CalculateProrationRequest) (*dto.CalculateProrationResponse, error)
}

type planChangeService struct {
	ServiceParams
}

func NewPlanChangeService(params ServiceParams) PlanChangeService {
	return &planChangeService{ServiceParams: params}
}

// planChangeContext is what a preview or a confirmation needs from the Billing API
type planChangeContext struct {
	snapshot      *subscription.Snapshot
	catalog       plan.Catalog
	limits        *changelimit.State
	snapshotFresh bool
	catalogFresh  bool
}

func (s *planChangeService) PreviewPlanChange(ctx context.Context, req *dto.PreviewPlanChangeRequest) (*dto.PlanChangePreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := s.Logger.WithContext(ctx)
	stateCode := lo.Ternary(req.StateCode != "", req.StateCode, s.Config.Proration.DefaultStateCode)

	pc, err := s.loadPlanChangeContext(ctx, req.OrganizationID, req.ChangeType != types.ChangeTypeCancel, true)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(pc, req.PlanID, req.ChangeType)
	if err != nil {
		return nil, err
	}
	changeType, err := classifyChange(pc.snapshot, target, req.ChangeType)
	if err != nil {
		return nil, err
	}
	now := s.now()

	resp := &dto.PlanChangePreviewResponse{
		PreviewID:      types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PREVIEW),
		OrganizationID: req.OrganizationID,
		CurrentPlanID:  pc.snapshot.PlanID,
		TargetPlanID:   target.ID,
		ChangeType:     changeType,
		StateCode:      stateCode,
		Eligibility:    s.eligibility(pc, changeType, now),
		StaleData:      !pc.snapshotFresh || !pc.catalogFresh,
	}

	serverResult, err := s.serverPreview(ctx, billing.PreviewRequest{
		OrganizationID: req.OrganizationID,
		PlanID:         target.ID,
		ChangeType:     changeType,
		StateCode:      stateCode,
	})
	switch {
	case err == nil:
		resp.Available = true
		resp.Source = types.PreviewSourceServer
		resp.Proration = serverResult
	case isRejection(err):
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	default:
		log.Warnw("server proration preview unavailable, computing locally",
			"plan_id", target.ID,
			"change_type", changeType,
			"error", err,
		)
		s.localPreview(ctx, pc.snapshot, target, stateCode, now, resp)
	}

	metrics.PreviewsTotal.WithLabelValues(string(resp.Source), string(changeType)).Inc()
	return resp, nil
}

// serverPreview asks the Billing API, bounded by the configured timeout
func (s *planChangeService) serverPreview(ctx context.Context, req billing.PreviewRequest) (*proration.ProrationResult, error) {
	if timeout := s.Config.Proration.ServerPreviewTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.Billing.GetProrationPreview(ctx, req)
}

// localPreview fills resp with the approximate local calculation, or marks it unavailable.
// A wrong number is never shown: any failure leaves the preview unavailable.
func (s *planChangeService) localPreview(
	ctx context.Context,
	snapshot *subscription.Snapshot,
	target *plan.TargetPlan,
	stateCode string,
	now time.Time,
	resp *dto.PlanChangePreviewResponse,
) {
	log := s.Logger.WithContext(ctx)
	resp.Available = false
	resp.Source = types.PreviewSourceNone

	if err := target.Validate(); err != nil {
		resp.UnavailableReason = ReasonInvalidSubscriptionData
		log.Warnw("target plan cannot be priced locally", "plan_id", target.ID, "error", err)
		return
	}

	quote, err := s.taxQuote(ctx, target.GetAmount(), stateCode)
	if err != nil {
		resp.UnavailableReason = ReasonTaxUnavailable
		log.Warnw("tax quote unavailable, no preview", "state_code", stateCode, "error", err)
		return
	}

	result, err := s.ProrationCalculator.Calculate(ctx, proration.ProrationParams{
		Snapshot:   snapshot,
		TargetPlan: target,
		Now:        now,
		Tax:        quote,
	})
	if err != nil {
		resp.UnavailableReason = ReasonInvalidSubscriptionData
		log.Warnw("local proration failed, no preview", "error", err)
		return
	}

	resp.Available = true
	resp.Source = types.PreviewSourceLocal
	resp.Approximate = true
	resp.Proration = result
}

func (s *planChangeService) ApplyPlanChange(ctx context.Context, req *dto.ApplyPlanChangeRequest) (*dto.ApplyPlanChangeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := s.Logger.WithContext(ctx)

	// enforcement reads bypass the cache
	pc, err := s.loadPlanChangeContext(ctx, req.OrganizationID, req.ChangeType != types.ChangeTypeCancel, false)
	if err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(pc, req.PlanID, req.ChangeType)
	if err != nil {
		return nil, err
	}
	changeType, err := classifyChange(pc.snapshot, target, req.ChangeType)
	if err != nil {
		return nil, err
	}

	if pc.limits == nil {
		return nil, ierr.NewError("change limits unavailable").
			WithHint("Unable to verify this month's plan changes, please retry").
			Mark(ierr.ErrUnavailable)
	}
	if !changelimit.CanChange(pc.limits, changeType) {
		metrics.PlanChangesTotal.WithLabelValues(string(changeType), metrics.OutcomeRejected).Inc()
		return nil, ierr.NewErrorf("monthly %s limit reached", changeType).
			WithHintf("You have used all %d %s changes allowed this month", pc.limits.Limit, changeType).
			WithReportableDetails(map[string]any{
				"change_type": changeType,
				"limit":       pc.limits.Limit,
				"month":       pc.limits.Month,
			}).
			Mark(ierr.ErrPermissionDenied)
	}

	if changeType == types.ChangeTypeDowngrade {
		decision, err := s.DowngradePolicy.Check(pc.snapshot, s.now())
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			metrics.PlanChangesTotal.WithLabelValues(string(changeType), metrics.OutcomeRejected).Inc()
			return nil, ierr.NewError("downgrade blocked during cooldown").
				WithHintf("Downgrades are available again in %d days", decision.DaysUntilAllowed).
				WithReportableDetails(map[string]any{
					"days_until_allowed": decision.DaysUntilAllowed,
					"subscription_age":   decision.SubscriptionAge,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
	}

	changeID := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN_CHANGE)
	stateCode := lo.Ternary(req.StateCode != "", req.StateCode, s.Config.Proration.DefaultStateCode)

	result, err := s.Billing.ChangeSubscription(ctx, billing.ChangeRequest{
		OrganizationID: req.OrganizationID,
		PlanID:         target.ID,
		ChangeType:     changeType,
		StateCode:      stateCode,
		IdempotencyKey: changeID,
	})
	if err != nil {
		metrics.PlanChangesTotal.WithLabelValues(string(changeType), metrics.OutcomeFailed).Inc()
		log.Errorw("plan change failed",
			"change_id", changeID,
			"plan_id", target.ID,
			"change_type", changeType,
			"error", err,
		)
		return nil, err
	}

	cache.InvalidateOrganization(ctx, s.Cache, req.OrganizationID)
	metrics.PlanChangesTotal.WithLabelValues(string(changeType), metrics.OutcomeApplied).Inc()

	log.Infow("plan change applied",
		"change_id", changeID,
		"plan_id", target.ID,
		"change_type", changeType,
		"status", result.Status,
	)

	return &dto.ApplyPlanChangeResponse{
		ChangeID:              changeID,
		OrganizationID:        req.OrganizationID,
		PlanID:                lo.Ternary(result.PlanID != "", result.PlanID, target.ID),
		ChangeType:            changeType,
		Status:                result.Status,
		Message:               result.Message,
		AmountCharged:         result.AmountCharged,
		WalletCreditRemaining: result.WalletCreditRemaining,
		PaymentURL:            result.PaymentURL,
	}, nil
}

func (s *planChangeService) CheckDowngrade(ctx context.Context, organizationID string) (*dto.DowngradeEligibilityResponse, error) {
	snapshot, _, err := s.snapshot(ctx, organizationID, true)
	if err != nil {
		return nil, err
	}

	decision, err := s.DowngradePolicy.Check(snapshot, s.now())
	if err != nil {
		return nil, err
	}

	return &dto.DowngradeEligibilityResponse{
		OrganizationID:    organizationID,
		DowngradeDecision: *decision,
	}, nil
}

func (s *planChangeService) GetChangeAllowance(ctx context.Context, organizationID string) (*dto.ChangeAllowanceResponse, error) {
	limits, err := s.limits(ctx, organizationID, true)
	if err != nil {
		return nil, err
	}

	return &dto.ChangeAllowanceResponse{
		OrganizationID: organizationID,
		Month:          limits.Month,
		Allowances:     changelimit.Allowances(limits),
	}, nil
}

func (s *planChangeService) CalculateLocal(ctx context.Context, req *dto.CalculateProrationRequest) (*dto.CalculateProrationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	if req.Now != nil {
		now = req.Now.UTC()
	}

	var quote *tax.Quote
	if req.TaxRate != nil {
		q, err := tax.NewPercentageQuote(lo.FromPtr(req.TargetAmount), *req.TaxRate, req.StateCode)
		if err != nil {
			return nil, err
		}
		quote = q
	}

	snapshot := req.ToSnapshot()
	result, err := s.ProrationCalculator.Calculate(ctx, proration.ProrationParams{
		Snapshot:   snapshot,
		TargetPlan: req.ToTargetPlan(),
		Now:        now,
		Tax:        quote,
	})
	if err != nil {
		return nil, err
	}

	decision, err := s.DowngradePolicy.Check(snapshot, now)
	if err != nil {
		return nil, err
	}

	metrics.PreviewsTotal.WithLabelValues(string(types.PreviewSourceLocal), "").Inc()

	return &dto.CalculateProrationResponse{
		Proration:   result,
		Downgrade:   decision,
		Approximate: true,
	}, nil
}

// loadPlanChangeContext reads the snapshot, the catalog and the limits concurrently.
// Snapshot and catalog failures abort; a limits failure leaves limits nil.
func (s *planChangeService) loadPlanChangeContext(ctx context.Context, organizationID string, needCatalog, useCache bool) (*planChangeContext, error) {
	pc := &planChangeContext{}
	p := pool.New().WithContext(ctx).WithCancelOnError()

	p.Go(func(ctx context.Context) error {
		snapshot, fresh, err := s.snapshot(ctx, organizationID, useCache)
		if err != nil {
			return err
		}
		pc.snapshot, pc.snapshotFresh = snapshot, fresh
		return nil
	})

	pc.catalogFresh = true
	if needCatalog {
		p.Go(func(ctx context.Context) error {
			catalog, fresh, err := s.catalog(ctx)
			if err != nil {
				return err
			}
			pc.catalog, pc.catalogFresh = catalog, fresh
			return nil
		})
	}

	p.Go(func(ctx context.Context) error {
		limits, err := s.limits(ctx, organizationID, useCache)
		if err != nil {
			s.Logger.WithContext(ctx).Warnw("change limits unavailable", "error", err)
			return nil
		}
		pc.limits = limits
		return nil
	})

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return pc, nil
}

func (s *planChangeService) snapshot(ctx context.Context, organizationID string, useCache bool) (*subscription.Snapshot, bool, error) {
	load := func(ctx context.Context) (*subscription.Snapshot, error) {
		return s.Billing.GetSubscriptionStatus(ctx, organizationID)
	}
	if !useCache {
		snapshot, err := load(ctx)
		return snapshot, err == nil, err
	}
	key := cache.OrganizationKey(cache.PrefixSubscription, organizationID, "status")
	return cache.GetOrLoad(ctx, s.Cache, key, s.Config.Cache.SnapshotTTL, load)
}

func (s *planChangeService) catalog(ctx context.Context) (plan.Catalog, bool, error) {
	key := cache.GenerateKey(cache.PrefixPlans, catalogKeyName)
	return cache.GetOrLoad(ctx, s.Cache, key, s.Config.Cache.PlansTTL, func(ctx context.Context) (plan.Catalog, error) {
		return s.Billing.ListPlans(ctx)
	})
}

func (s *planChangeService) limits(ctx context.Context, organizationID string, useCache bool) (*changelimit.State, error) {
	load := func(ctx context.Context) (*changelimit.State, error) {
		return s.Billing.GetSubscriptionLimits(ctx, organizationID)
	}
	if !useCache {
		return load(ctx)
	}
	key := cache.OrganizationKey(cache.PrefixChangeLimits, organizationID, "current")
	limits, _, err := cache.GetOrLoad(ctx, s.Cache, key, s.Config.Cache.LimitsTTL, load)
	return limits, err
}

// taxQuote quotes the target amount; a zero amount owes no tax and skips the Billing API
func (s *planChangeService) taxQuote(ctx context.Context, amount decimal.Decimal, stateCode string) (*tax.Quote, error) {
	if amount.IsZero() {
		return tax.NewPercentageQuote(amount, decimal.Zero, stateCode)
	}
	key := cache.GenerateKey(cache.PrefixTaxQuote, amount.String(), stateCode)
	quote, _, err := cache.GetOrLoad(ctx, s.Cache, key, s.Config.Cache.TaxTTL, func(ctx context.Context) (*tax.Quote, error) {
		return s.Billing.CalculateTax(ctx, billing.TaxRequest{Amount: amount, StateCode: stateCode})
	})
	return quote, err
}

// resolveTarget maps the request onto a catalog plan, or the zero priced target for cancellations
func (s *planChangeService) resolveTarget(pc *planChangeContext, planID string, changeType types.ChangeType) (*plan.TargetPlan, error) {
	if changeType == types.ChangeTypeCancel {
		return plan.CancellationTarget(), nil
	}

	target, err := pc.catalog.Find(planID)
	if err != nil {
		return nil, err
	}
	if pc.snapshot.PlanID != "" && pc.snapshot.PlanID == target.ID {
		return nil, ierr.NewErrorf("organization is already on plan %s", target.ID).
			WithHint("You are already subscribed to this plan").
			Mark(ierr.ErrInvalidOperation)
	}
	return target, nil
}

// classifyChange derives upgrade or downgrade from the price direction; cancel stays explicit
func classifyChange(snapshot *subscription.Snapshot, target *plan.TargetPlan, requested types.ChangeType) (types.ChangeType, error) {
	if requested == types.ChangeTypeCancel {
		return requested, nil
	}
	derived := types.ChangeTypeDowngrade
	if target.GetAmount().GreaterThan(snapshot.GetAmountPaid()) {
		derived = types.ChangeTypeUpgrade
	}
	if requested != "" && requested != derived {
		return "", ierr.NewErrorf("change to plan %s is a %s, not a %s", target.ID, derived, requested).
			WithHintf("Moving to this plan is a %s", derived).
			WithReportableDetails(map[string]any{
				"plan_id":        target.ID,
				"requested":      requested,
				"expected":       derived,
				"target_amount":  target.GetAmount().String(),
				"current_amount": snapshot.GetAmountPaid().String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return derived, nil
}

func (s *planChangeService) eligibility(pc *planChangeContext, changeType types.ChangeType, now time.Time) dto.Eligibility {
	e := dto.Eligibility{}

	if pc.limits == nil {
		e.Reasons = append(e.Reasons, ReasonChangeLimitsUnavailable)
	} else {
		e.WithinChangeLimit = changelimit.CanChange(pc.limits, changeType)
		e.ChangesRemaining = changelimit.Remaining(pc.limits, changeType)
		if !e.WithinChangeLimit {
			e.Reasons = append(e.Reasons, ReasonChangeLimitReached)
		}
	}

	if changeType == types.ChangeTypeDowngrade {
		decision, err := s.DowngradePolicy.Check(pc.snapshot, now)
		switch {
		case err != nil:
			e.Reasons = append(e.Reasons, ReasonSubscriptionStartUnknown)
		case !decision.Allowed:
			e.DowngradeBlocked = true
			e.DaysUntilAllowed = decision.DaysUntilAllowed
			e.Reasons = append(e.Reasons, ReasonDowngradeCooldown)
		}
	}

	e.Allowed = len(e.Reasons) == 0
	return e
}

// isRejection reports errors where the Billing API answered and said no.
// Those are surfaced instead of being replaced by a local guess.
func isRejection(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return ierr.IsValidation(err) ||
		ierr.IsNotFound(err) ||
		ierr.IsPermissionDenied(err) ||
		ierr.IsInvalidOperation(err)
}

package v1

import (
	"net/http"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/api/dto"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type PlanChangeHandler struct {
	service service.PlanChangeService
	logger  *logger.Logger
}

func NewPlanChangeHandler(service service.PlanChangeService, logger *logger.Logger) *PlanChangeHandler {
	return &PlanChangeHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Preview a plan change
// @Description Returns the credit, charge and eligibility of moving the organization to another plan
// @Tags Plan Changes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param org_id path string true "Organization ID"
// @Param request body dto.PreviewPlanChangeRequest true "Target plan"
// @Success 200 {object} dto.PlanChangePreviewResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /organizations/{org_id}/plan-change/preview [post]
func (h *PlanChangeHandler) Preview(c *gin.Context) {
	var req dto.PreviewPlanChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.OrganizationID = c.Param("org_id")

	resp, err := h.service.PreviewPlanChange(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Apply a plan change
// @Description Confirms an upgrade, downgrade or cancellation with the Billing API
// @Tags Plan Changes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param org_id path string true "Organization ID"
// @Param request body dto.ApplyPlanChangeRequest true "Plan change"
// @Success 200 {object} dto.ApplyPlanChangeResponse
// @Failure 403 {object} ierr.ErrorResponse
// @Failure 409 {object} ierr.ErrorResponse
// @Router /organizations/{org_id}/plan-change [post]
func (h *PlanChangeHandler) Apply(c *gin.Context) {
	var req dto.ApplyPlanChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}
	req.OrganizationID = c.Param("org_id")

	resp, err := h.service.ApplyPlanChange(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Downgrade eligibility
// @Tags Plan Changes
// @Produce json
// @Security BearerAuth
// @Param org_id path string true "Organization ID"
// @Success 200 {object} dto.DowngradeEligibilityResponse
// @Router /organizations/{org_id}/downgrade-eligibility [get]
func (h *PlanChangeHandler) DowngradeEligibility(c *gin.Context) {
	resp, err := h.service.CheckDowngrade(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Monthly change limits
// @Tags Plan Changes
// @Produce json
// @Security BearerAuth
// @Param org_id path string true "Organization ID"
// @Success 200 {object} dto.ChangeAllowanceResponse
// @Router /organizations/{org_id}/change-limits [get]
func (h *PlanChangeHandler) ChangeLimits(c *gin.Context) {
	resp, err := h.service.GetChangeAllowance(c.Request.Context(), c.Param("org_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

package v1

import (
	"net/http"

	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/api/dto"
	ierr "github.com/Wizard254-ux/example-driver-portal-sub000/internal/errors"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/service"
	"github.com/gin-gonic/gin"
)

type ProrationHandler struct {
	service service.PlanChangeService
	logger  *logger.Logger
}

func NewProrationHandler(service service.PlanChangeService, logger *logger.Logger) *ProrationHandler {
	return &ProrationHandler{
		service: service,
		logger:  logger,
	}
}

// @Summary Calculate a proration locally
// @Description Runs the proration rules on the supplied subscription and target amount without calling the Billing API
// @Tags Proration
// @Accept json
// @Produce json
// @Param request body dto.CalculateProrationRequest true "Subscription and target plan"
// @Success 200 {object} dto.CalculateProrationResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /proration/calculate [post]
func (h *ProrationHandler) Calculate(c *gin.Context) {
	var req dto.CalculateProrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CalculateLocal(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

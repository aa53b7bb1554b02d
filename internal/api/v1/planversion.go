package v1

import (
	"net/http"

	"github.com/flexprice/plancatalog/internal/api/dto"
	ierr "github.com/flexprice/plancatalog/internal/errors"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/service"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/gin-gonic/gin"
)

type PlanVersionHandler struct {
	service service.PlanVersionService
	log     *logger.Logger
}

func NewPlanVersionHandler(service service.PlanVersionService, log *logger.Logger) *PlanVersionHandler {
	return &PlanVersionHandler{
		service: service,
		log:     log,
	}
}

// @Summary Create a plan version
// @Description Create the next version of a plan and optionally make it the display version
// @Tags Plan Versions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param version body dto.CreatePlanVersionRequest true "Version configuration"
// @Success 201 {object} dto.PlanVersionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /plan_versions [post]
func (h *PlanVersionHandler) CreatePlanVersion(c *gin.Context) {
	var req dto.CreatePlanVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreatePlanVersion(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary Get a plan version
// @Tags Plan Versions
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Plan version ID"
// @Success 200 {object} dto.PlanVersionResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /plan_versions/{id} [get]
func (h *PlanVersionHandler) GetPlanVersion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("plan version ID is required").
			WithHint("Plan version ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.GetPlanVersion(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary List plan versions
// @Description List versions, usually scoped to one plan with plan_id
// @Tags Plan Versions
// @Produce json
// @Security ApiKeyAuth
// @Param plan_id query string false "Plan ID"
// @Param filter query types.PlanVersionFilter false "Filter"
// @Success 200 {object} dto.ListPlanVersionsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Router /plan_versions [get]
func (h *PlanVersionHandler) GetPlanVersions(c *gin.Context) {
	var filter types.PlanVersionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	if planID := c.Query("plan_id"); planID != "" {
		filter.PlanIDs = append(filter.PlanIDs, planID)
	}

	resp, err := h.service.GetPlanVersions(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a plan version
// @Description Change the description or status of a version. Archiving is refused while subscriptions are active.
// @Tags Plan Versions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Plan version ID"
// @Param version body dto.UpdatePlanVersionRequest true "Version update"
// @Success 200 {object} dto.PlanVersionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /plan_versions/{id} [patch]
func (h *PlanVersionHandler) UpdatePlanVersion(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("plan version ID is required").
			WithHint("Plan version ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdatePlanVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.UpdatePlanVersion(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

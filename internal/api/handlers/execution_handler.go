package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/services/execution"
)

type ExecutionHandler struct {
	executionService execution.ExecutionService
	logger           *logrus.Logger
}

func NewExecutionHandler(executionService execution.ExecutionService, logger *logrus.Logger) *ExecutionHandler {
	return &ExecutionHandler{
		executionService: executionService,
		logger:           logger,
	}
}

// HealthCheck handles GET /health
func (h *ExecutionHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "maintenance-work-order",
	})
}

// Transition handles POST /api/v1/executions/:id/transitions
func (h *ExecutionHandler) Transition(c *gin.Context) {
	id, ok := h.executionID(c)
	if !ok {
		return
	}

	var request models.TransitionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Error("Invalid transition request")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	response, err := h.executionService.Transition(c.Request.Context(), id, &request)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/v1/executions/:id
func (h *ExecutionHandler) Get(c *gin.Context) {
	id, ok := h.executionID(c)
	if !ok {
		return
	}

	response, err := h.executionService.Get(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetList handles GET /api/v1/executions
func (h *ExecutionHandler) GetList(c *gin.Context) {
	param := models.ExecutionQueryParam{}

	for _, status := range c.QueryArray("status") {
		param.Statuses = append(param.Statuses, models.ExecutionStatus(status))
	}
	if rawWorkOrderID := c.Query("work_order_id"); rawWorkOrderID != "" {
		workOrderID, err := strconv.ParseUint(rawWorkOrderID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid work_order_id"})
			return
		}
		param.WorkOrderIDs = append(param.WorkOrderIDs, uint(workOrderID))
	}
	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid limit"})
			return
		}
		param.Limit = &limit
	}

	executions, err := h.executionService.GetList(c.Request.Context(), param)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"executions": executions,
		"count":      len(executions),
	})
}

// Approve handles POST /api/v1/executions/:id/approval
func (h *ExecutionHandler) Approve(c *gin.Context) {
	id, ok := h.executionID(c)
	if !ok {
		return
	}

	var request models.ApprovalRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Error("Invalid approval request")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	response, err := h.executionService.Approve(c.Request.Context(), id, &request)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ExecutionHandler) executionID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid execution id"})
		return 0, false
	}
	return uint(id), true
}

// renderError maps engine error codes to HTTP statuses. Workflow conflicts
// surface as 409 so operators see them verbatim instead of a retried call.
func (h *ExecutionHandler) renderError(c *gin.Context, err error) {
	code := execution.ErrorCode(err)

	response := models.ErrorResponse{
		Error: err.Error(),
		Code:  code,
	}

	switch code {
	case execution.CodeValidationFailed:
		response.Details = execution.ValidationIssues(err)
		c.JSON(http.StatusUnprocessableEntity, response)
	case execution.CodeInvalidTransition,
		execution.CodeAlreadyCommitted,
		execution.CodeClockRegression,
		execution.CodeAlreadyApproved:
		c.JSON(http.StatusConflict, response)
	case execution.CodeNotFound:
		c.JSON(http.StatusNotFound, response)
	default:
		h.logger.WithError(err).Error("Unhandled execution error")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "internal server error",
		})
	}
}

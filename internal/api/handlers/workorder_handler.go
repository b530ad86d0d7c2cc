package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/services/workorders"
)

type WorkOrderHandler struct {
	workOrderService workorders.WorkOrderService
	logger           *logrus.Logger
}

func NewWorkOrderHandler(workOrderService workorders.WorkOrderService, logger *logrus.Logger) *WorkOrderHandler {
	return &WorkOrderHandler{
		workOrderService: workOrderService,
		logger:           logger,
	}
}

// Create handles POST /api/v1/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	var request models.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Error("Invalid create work order request")
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: err.Error(),
		})
		return
	}

	workOrder, execution, err := h.workOrderService.Create(c.Request.Context(), &request)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create work order")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "failed to create work order",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"work_order": workOrder,
		"execution":  execution,
	})
}

// GetList handles GET /api/v1/work-orders
func (h *WorkOrderHandler) GetList(c *gin.Context) {
	param := models.WorkOrderQueryParam{}

	if rawPlanID := c.Query("plan_id"); rawPlanID != "" {
		planID, err := strconv.ParseUint(rawPlanID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid plan_id"})
			return
		}
		param.PlanIDs = append(param.PlanIDs, uint(planID))
	}
	if rawLocationID := c.Query("location_id"); rawLocationID != "" {
		locationID, err := strconv.ParseUint(rawLocationID, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid location_id"})
			return
		}
		param.LocationIDs = append(param.LocationIDs, uint(locationID))
	}
	if rawLimit := c.Query("limit"); rawLimit != "" {
		limit, err := strconv.Atoi(rawLimit)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid limit"})
			return
		}
		param.Limit = &limit
	}

	workOrders, err := h.workOrderService.GetList(c.Request.Context(), param)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list work orders")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "failed to list work orders",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"work_orders": workOrders,
		"count":       len(workOrders),
	})
}

// GetPlans handles GET /api/v1/plans
func (h *WorkOrderHandler) GetPlans(c *gin.Context) {
	plans, err := h.workOrderService.GetPlans(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list maintenance plans")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: "failed to list maintenance plans",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"plans": plans,
		"count": len(plans),
	})
}

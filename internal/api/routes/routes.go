package routes

import (
	"github.com/gin-gonic/gin"

	"golang-maintenance-work-order/internal/api/handlers"
	"golang-maintenance-work-order/pkg/ratelimit"
)

func SetupRoutes(
	router *gin.Engine,
	executionHandler *handlers.ExecutionHandler,
	workOrderHandler *handlers.WorkOrderHandler,
	rateLimiter *ratelimit.APIRateLimiter,
) {
	// Health check
	router.GET("/health", executionHandler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		executions := v1.Group("/executions")
		{
			executions.GET("", executionHandler.GetList)
			executions.GET("/:id", executionHandler.Get)
			executions.POST("/:id/transitions", rateLimiter.Middleware(), executionHandler.Transition)
			executions.POST("/:id/approval", rateLimiter.Middleware(), executionHandler.Approve)
		}

		workOrders := v1.Group("/work-orders")
		{
			workOrders.GET("", workOrderHandler.GetList)
			workOrders.POST("", rateLimiter.Middleware(), workOrderHandler.Create)
		}

		v1.GET("/plans", workOrderHandler.GetPlans)
	}
}

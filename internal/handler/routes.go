package handler

import (
	"github.com/hoa-manager/hoa-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, reportHandler *ReportHandler, billHandler *BillHandler, wsHandler *WebSocketHandler, rateLimiter *middleware.RateLimiter) {
	// API version 1
	api := e.Group("/api/v1")

	// Report routes
	reports := api.Group("/reports")
	reports.GET("", reportHandler.GetReports)
	reports.POST("", reportHandler.CreateReport)
	reports.GET("/templates", reportHandler.GetTemplates)
	reports.GET("/dashboard", reportHandler.GetDashboard)
	reports.GET("/generations", reportHandler.GetGenerations)
	reports.GET("/generations/:id", reportHandler.GetGeneration)
	reports.GET("/download/:id", reportHandler.Download)
	reports.GET("/:id", reportHandler.GetReport)
	reports.PUT("/:id", reportHandler.UpdateReport)
	reports.DELETE("/:id", reportHandler.DeleteReport)

	// Render and send endpoints (rate limited per client IP)
	limited := middleware.RateLimitMiddleware(rateLimiter)
	reports.POST("/quick-generate", reportHandler.QuickGenerate, limited)
	reports.POST("/send-email", reportHandler.SendEmail, limited)
	reports.POST("/:id/generate", reportHandler.GenerateReport, limited)

	// Recurring bill routes
	bills := api.Group("/bills")
	bills.GET("", billHandler.GetBills)
	bills.POST("", billHandler.CreateBill)
	bills.GET("/:id", billHandler.GetBill)
	bills.PUT("/:id", billHandler.UpdateBill)
	bills.DELETE("/:id", billHandler.DeleteBill)

	// Live report events
	e.GET("/ws", wsHandler.HandleWS)
}

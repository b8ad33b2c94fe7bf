package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/speso/speso-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, importLimiter *middleware.RateLimiter, expenseHandler *ExpenseHandler, dashboardHandler *DashboardHandler) {
	// API version 1, all routes require a resolved user identity
	api := e.Group("/api/v1")
	api.Use(middleware.UserContext())

	// Expense routes
	expenses := api.Group("/expenses")
	expenses.GET("", expenseHandler.GetExpenses)
	expenses.POST("", expenseHandler.CreateExpense)
	expenses.GET("/:id", expenseHandler.GetExpense)
	expenses.PUT("/:id", expenseHandler.UpdateExpense)
	expenses.DELETE("/:id", expenseHandler.DeleteExpense)
	expenses.POST("/import", expenseHandler.ImportCSV, middleware.RateLimitMiddleware(importLimiter))

	// Dashboard routes
	api.GET("/dashboard", dashboardHandler.GetSummary)

	// Lookup routes
	api.GET("/categories", expenseHandler.GetCategories)
	api.GET("/years", expenseHandler.GetYears)
}

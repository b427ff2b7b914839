package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/middleware"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, profileHandler *ProfileHandler, transactionHandler *TransactionHandler, recurringHandler *RecurringHandler, budgetPlanHandler *BudgetPlanHandler, insightsHandler *InsightsHandler, experienceHandler *ExperienceHandler, categoryHandler *CategoryHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (public)
	auth := api.Group("/auth")
	auth.POST("/sign-up", authHandler.SignUp)

	// Profile routes (protected)
	profile := api.Group("/profile")
	profile.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	profile.GET("", profileHandler.Get)
	profile.PATCH("/timezone", profileHandler.UpdateTimezone)

	// Transaction routes (protected)
	transactions := api.Group("/transactions")
	transactions.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	transactions.POST("/create-expense", transactionHandler.CreateExpense)
	transactions.POST("/create-income", transactionHandler.CreateIncome)
	transactions.GET("/list", transactionHandler.List)
	transactions.GET("/today-summary", transactionHandler.TodaySummary)
	transactions.PATCH("/update/:id", transactionHandler.Update)
	transactions.DELETE("/delete/:id", transactionHandler.Delete)

	// Recurring template routes (protected), nested under transactions
	recurring := api.Group("/transactions/recurring")
	recurring.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	recurring.POST("/create", recurringHandler.CreateExpense)
	recurring.POST("/create-income", recurringHandler.CreateIncome)
	recurring.GET("/list", recurringHandler.List)
	recurring.GET("/:id/get", recurringHandler.Get)
	recurring.PATCH("/:id/update", recurringHandler.Update)
	recurring.DELETE("/:id/delete", recurringHandler.Delete)
	recurring.PATCH("/:id/pause", recurringHandler.Pause)
	recurring.PATCH("/:id/resume", recurringHandler.Resume)

	// Budget plan routes (protected)
	budgetPlans := api.Group("/budget-plans")
	budgetPlans.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	budgetPlans.POST("/create", budgetPlanHandler.Create)
	budgetPlans.GET("/get", budgetPlanHandler.Get)
	budgetPlans.PATCH("/update", budgetPlanHandler.Update)

	// Insights routes (protected)
	insights := api.Group("/insights")
	insights.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	insights.GET("/month-snapshot", insightsHandler.MonthSnapshot)
	insights.GET("/available-months", insightsHandler.AvailableMonths)

	// Experience routes (protected)
	experience := api.Group("/experience")
	experience.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	experience.GET("/status", experienceHandler.Status)
	experience.POST("/check-in", experienceHandler.CheckIn)
	experience.GET("/history", experienceHandler.History)
	experience.GET("/streak-milestones", experienceHandler.Milestones)

	// Category catalog routes (protected)
	expenseCategories := api.Group("/expense-categories")
	expenseCategories.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	expenseCategories.GET("/list", categoryHandler.ListExpenseCategories)

	incomeCategories := api.Group("/income-categories")
	incomeCategories.Use(authMiddleware.Authenticate(), middleware.RateLimitMiddleware(rateLimiter))
	incomeCategories.GET("/list", categoryHandler.ListIncomeCategories)
}

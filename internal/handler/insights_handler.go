package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/middleware"
	"github.com/juanpmar/finko/finko-backend/internal/service"
)

// InsightsHandler handles monthly insight endpoints
type InsightsHandler struct {
	service *service.InsightsService
}

// NewInsightsHandler creates a new InsightsHandler
func NewInsightsHandler(s *service.InsightsService) *InsightsHandler {
	return &InsightsHandler{service: s}
}

// MonthSnapshot handles GET /api/v1/insights/month-snapshot?year=...&month=...
func (h *InsightsHandler) MonthSnapshot(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return NewValidationError(c, "year must be an integer", nil)
	}
	month, err := strconv.Atoi(c.QueryParam("month"))
	if err != nil {
		return NewValidationError(c, "month must be an integer", nil)
	}

	snapshot, err := h.service.MonthSnapshot(userID, year, month)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, snapshot)
}

// AvailableMonths handles GET /api/v1/insights/available-months
func (h *InsightsHandler) AvailableMonths(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	months, err := h.service.AvailableMonths(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, months)
}

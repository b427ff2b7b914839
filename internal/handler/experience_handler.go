package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/middleware"
	"github.com/juanpmar/finko/finko-backend/internal/service"
)

// ExperienceHandler handles gamification endpoints
type ExperienceHandler struct {
	service *service.ExperienceService
}

// NewExperienceHandler creates a new ExperienceHandler
func NewExperienceHandler(s *service.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{service: s}
}

// Status handles GET /api/v1/experience/status
func (h *ExperienceHandler) Status(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	status, err := h.service.Status(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, status)
}

// CheckIn handles POST /api/v1/experience/check-in
func (h *ExperienceHandler) CheckIn(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	result, err := h.service.CheckIn(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// History handles GET /api/v1/experience/history?limit=50&offset=0
func (h *ExperienceHandler) History(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	limit := 50
	offset := 0
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "limit must be an integer", nil)
		}
		limit = parsed
	}
	if v := c.QueryParam("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "offset must be an integer", nil)
		}
		offset = parsed
	}

	history, err := h.service.History(userID, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

// Milestones handles GET /api/v1/experience/streak-milestones
func (h *ExperienceHandler) Milestones(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	milestones, err := h.service.Milestones(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, milestones)
}

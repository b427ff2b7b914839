package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/middleware"
	"github.com/juanpmar/finko/finko-backend/internal/service"
)

// ProfileHandler handles profile endpoints
type ProfileHandler struct {
	service *service.ProfileService
}

// NewProfileHandler creates a new ProfileHandler
func NewProfileHandler(s *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: s}
}

// UpdateTimezoneRequest carries the new IANA timezone name.
type UpdateTimezoneRequest struct {
	Timezone string `json:"timezone"`
}

// ProfileResponse is the wire form of a profile.
type ProfileResponse struct {
	UserID        uuid.UUID `json:"userId"`
	Timezone      string    `json:"timezone"`
	CurrentLevel  int       `json:"currentLevel"`
	CurrentXP     int       `json:"currentXp"`
	CurrentStreak int       `json:"currentStreak"`
	LongestStreak int       `json:"longestStreak"`
	TotalXPEarned int       `json:"totalXpEarned"`
}

func toProfileResponse(p *domain.Profile) ProfileResponse {
	return ProfileResponse{
		UserID:        p.UserID,
		Timezone:      p.Timezone,
		CurrentLevel:  p.CurrentLevel,
		CurrentXP:     p.CurrentXP,
		CurrentStreak: p.CurrentStreak,
		LongestStreak: p.LongestStreak,
		TotalXPEarned: p.TotalXPEarned,
	}
}

// Get handles GET /api/v1/profile
func (h *ProfileHandler) Get(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	profile, err := h.service.Get(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// UpdateTimezone handles PATCH /api/v1/profile/timezone
func (h *ProfileHandler) UpdateTimezone(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	var req UpdateTimezoneRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	profile, err := h.service.UpdateTimezone(userID, req.Timezone)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

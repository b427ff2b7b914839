package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/service"
)

// AuthHandler handles account provisioning
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(s *service.AuthService) *AuthHandler {
	return &AuthHandler{service: s}
}

// SignUpRequest carries the credentials for a new account.
type SignUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp handles POST /api/v1/auth/sign-up
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	var fieldErrors []ValidationError
	if !strings.Contains(req.Email, "@") {
		fieldErrors = append(fieldErrors, ValidationError{Field: "email", Message: "must be a valid email address"})
	}
	if len(req.Password) < 8 {
		fieldErrors = append(fieldErrors, ValidationError{Field: "password", Message: "must be at least 8 characters"})
	}
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "invalid credentials", fieldErrors)
	}

	profile, err := h.service.SignUp(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toProfileResponse(profile))
}

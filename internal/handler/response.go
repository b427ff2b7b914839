package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://finko.app/errors/validation"
	ErrorTypeNotFound     = "https://finko.app/errors/not-found"
	ErrorTypeUnauthorized = "https://finko.app/errors/unauthorized"
	ErrorTypeForbidden    = "https://finko.app/errors/forbidden"
	ErrorTypeConflict     = "https://finko.app/errors/conflict"
	ErrorTypeInternal     = "https://finko.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// respondServiceError maps domain errors to their HTTP responses. Anything
// unclassified is a 500 with the detail kept out of the body.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrProfileNotFound),
		errors.Is(err, domain.ErrBudgetPlanNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrBudgetPlanExists):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrSubcategoryNotFound),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrMissingTag),
		errors.Is(err, domain.ErrKindImmutable),
		errors.Is(err, domain.ErrInvalidFrequency),
		errors.Is(err, domain.ErrInvalidDayOfWeek),
		errors.Is(err, domain.ErrInvalidDayOfMonth),
		errors.Is(err, domain.ErrInvalidDateRange),
		errors.Is(err, domain.ErrNegativeGoal),
		errors.Is(err, domain.ErrInvalidMonthRange),
		errors.Is(err, domain.ErrInvalidTimezone),
		errors.Is(err, domain.ErrInvalidPagination),
		errors.Is(err, util.ErrInvalidDateFormat):
		return NewValidationError(c, err.Error(), nil)
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Unhandled service error")
		return NewInternalError(c, "an unexpected error occurred")
	}
}

package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/middleware"
	"github.com/juanpmar/finko/finko-backend/internal/service"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

// RecurringHandler handles recurring template endpoints
type RecurringHandler struct {
	service  *service.RecurringService
	profiles *service.ProfileService
}

// NewRecurringHandler creates a new RecurringHandler
func NewRecurringHandler(s *service.RecurringService, profiles *service.ProfileService) *RecurringHandler {
	return &RecurringHandler{service: s, profiles: profiles}
}

// CreateRecurringExpenseRequest is the payload for a recurring expense.
type CreateRecurringExpenseRequest struct {
	Amount               json.Number `json:"amount"`
	ExpenseCategoryID    string      `json:"expenseCategoryId"`
	ExpenseSubcategoryID *string     `json:"expenseSubcategoryId"`
	Tag                  string      `json:"tag"`
	Notes                *string     `json:"notes"`
	Frequency            string      `json:"frequency"`
	DayOfWeek            *int        `json:"dayOfWeek"`
	DayOfMonth           *int        `json:"dayOfMonth"`
	StartDate            string      `json:"startDate"`
	EndDate              *string     `json:"endDate"`
	TotalOccurrences     *int        `json:"totalOccurrences"`
}

// CreateRecurringIncomeRequest is the payload for recurring income.
type CreateRecurringIncomeRequest struct {
	Amount           json.Number `json:"amount"`
	IncomeCategoryID string      `json:"incomeCategoryId"`
	Notes            *string     `json:"notes"`
	Frequency        string      `json:"frequency"`
	DayOfWeek        *int        `json:"dayOfWeek"`
	DayOfMonth       *int        `json:"dayOfMonth"`
	StartDate        string      `json:"startDate"`
	EndDate          *string     `json:"endDate"`
	TotalOccurrences *int        `json:"totalOccurrences"`
}

// UpdateRecurringRequest is a partial template update.
type UpdateRecurringRequest struct {
	Amount               *json.Number `json:"amount"`
	ExpenseCategoryID    *string      `json:"expenseCategoryId"`
	ExpenseSubcategoryID *string      `json:"expenseSubcategoryId"`
	IncomeCategoryID     *string      `json:"incomeCategoryId"`
	Tag                  *string      `json:"tag"`
	Notes                *string      `json:"notes"`
	Frequency            *string      `json:"frequency"`
	DayOfWeek            *int         `json:"dayOfWeek"`
	DayOfMonth           *int         `json:"dayOfMonth"`
	StartDate            *string      `json:"startDate"`
	EndDate              *string      `json:"endDate"`
	TotalOccurrences     *int         `json:"totalOccurrences"`
}

// RecurringTemplateResponse is the wire form of a template.
type RecurringTemplateResponse struct {
	ID                   uuid.UUID `json:"id"`
	Amount               string    `json:"amount"`
	Kind                 string    `json:"kind"`
	ExpenseCategoryID    *string   `json:"expenseCategoryId,omitempty"`
	ExpenseSubcategoryID *string   `json:"expenseSubcategoryId,omitempty"`
	IncomeCategoryID     *string   `json:"incomeCategoryId,omitempty"`
	Tag                  *string   `json:"tag,omitempty"`
	Notes                *string   `json:"notes,omitempty"`
	Frequency            string    `json:"frequency"`
	DayOfWeek            *int      `json:"dayOfWeek,omitempty"`
	DayOfMonth           *int      `json:"dayOfMonth,omitempty"`
	StartDate            string    `json:"startDate"`
	EndDate              *string   `json:"endDate,omitempty"`
	TotalOccurrences     *int      `json:"totalOccurrences,omitempty"`
	IsPaused             bool      `json:"isPaused"`
}

func toTemplateResponse(tpl *domain.RecurringTemplate) RecurringTemplateResponse {
	resp := RecurringTemplateResponse{
		ID:                   tpl.ID,
		Amount:               tpl.Amount.StringFixed(2),
		Kind:                 string(tpl.Kind),
		ExpenseCategoryID:    tpl.ExpenseCategoryID,
		ExpenseSubcategoryID: tpl.ExpenseSubcategoryID,
		IncomeCategoryID:     tpl.IncomeCategoryID,
		Tag:                  tpl.Tag,
		Notes:                tpl.Notes,
		Frequency:            string(tpl.Frequency),
		DayOfWeek:            tpl.DayOfWeek,
		DayOfMonth:           tpl.DayOfMonth,
		StartDate:            util.FormatDate(tpl.StartDate),
		TotalOccurrences:     tpl.TotalOccurrences,
		IsPaused:             tpl.IsPaused,
	}
	if tpl.EndDate != nil {
		end := util.FormatDate(*tpl.EndDate)
		resp.EndDate = &end
	}
	return resp
}

// CreateExpense handles POST /api/v1/transactions/recurring/create
func (h *RecurringHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	var req CreateRecurringExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "amount must be a number", nil)
	}
	startDate, err := util.ParseDate(req.StartDate)
	if err != nil {
		return NewValidationError(c, "startDate must be a YYYY-MM-DD date", nil)
	}
	var endDate *time.Time
	if req.EndDate != nil {
		end, err := util.ParseDate(*req.EndDate)
		if err != nil {
			return NewValidationError(c, "endDate must be a YYYY-MM-DD date", nil)
		}
		endDate = &end
	}

	tag := req.Tag
	tpl, err := h.service.Create(userID, service.CreateTemplateInput{
		Amount:               amount,
		Kind:                 domain.KindExpense,
		ExpenseCategoryID:    &req.ExpenseCategoryID,
		ExpenseSubcategoryID: req.ExpenseSubcategoryID,
		Tag:                  &tag,
		Notes:                req.Notes,
		Frequency:            domain.Frequency(req.Frequency),
		DayOfWeek:            req.DayOfWeek,
		DayOfMonth:           req.DayOfMonth,
		StartDate:            startDate,
		EndDate:              endDate,
		TotalOccurrences:     req.TotalOccurrences,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTemplateResponse(tpl))
}

// CreateIncome handles POST /api/v1/transactions/recurring/create-income
func (h *RecurringHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	var req CreateRecurringIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "amount must be a number", nil)
	}
	startDate, err := util.ParseDate(req.StartDate)
	if err != nil {
		return NewValidationError(c, "startDate must be a YYYY-MM-DD date", nil)
	}
	var endDate *time.Time
	if req.EndDate != nil {
		end, err := util.ParseDate(*req.EndDate)
		if err != nil {
			return NewValidationError(c, "endDate must be a YYYY-MM-DD date", nil)
		}
		endDate = &end
	}

	tpl, err := h.service.Create(userID, service.CreateTemplateInput{
		Amount:           amount,
		Kind:             domain.KindIncome,
		IncomeCategoryID: &req.IncomeCategoryID,
		Notes:            req.Notes,
		Frequency:        domain.Frequency(req.Frequency),
		DayOfWeek:        req.DayOfWeek,
		DayOfMonth:       req.DayOfMonth,
		StartDate:        startDate,
		EndDate:          endDate,
		TotalOccurrences: req.TotalOccurrences,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTemplateResponse(tpl))
}

// List handles GET /api/v1/transactions/recurring/list?include_paused=true
func (h *RecurringHandler) List(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	includePaused := c.QueryParam("include_paused") == "true"
	templates, err := h.service.List(userID, includePaused)
	if err != nil {
		return respondServiceError(c, err)
	}

	out := make([]RecurringTemplateResponse, 0, len(templates))
	for _, tpl := range templates {
		out = append(out, toTemplateResponse(tpl))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/v1/transactions/recurring/:id/get
func (h *RecurringHandler) Get(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "invalid template id", nil)
	}

	tpl, err := h.service.Get(userID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTemplateResponse(tpl))
}

// Update handles PATCH /api/v1/transactions/recurring/:id/update
func (h *RecurringHandler) Update(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "invalid template id", nil)
	}

	var req UpdateRecurringRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	input := service.UpdateTemplateInput{
		ExpenseCategoryID:    req.ExpenseCategoryID,
		ExpenseSubcategoryID: req.ExpenseSubcategoryID,
		IncomeCategoryID:     req.IncomeCategoryID,
		Tag:                  req.Tag,
		Notes:                req.Notes,
		DayOfWeek:            req.DayOfWeek,
		DayOfMonth:           req.DayOfMonth,
		TotalOccurrences:     req.TotalOccurrences,
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return NewValidationError(c, "amount must be a number", nil)
		}
		input.Amount = &amount
	}
	if req.Frequency != nil {
		frequency := domain.Frequency(*req.Frequency)
		input.Frequency = &frequency
	}
	if req.StartDate != nil {
		start, err := util.ParseDate(*req.StartDate)
		if err != nil {
			return NewValidationError(c, "startDate must be a YYYY-MM-DD date", nil)
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, err := util.ParseDate(*req.EndDate)
		if err != nil {
			return NewValidationError(c, "endDate must be a YYYY-MM-DD date", nil)
		}
		input.EndDate = &end
	}

	tpl, err := h.service.Update(userID, id, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTemplateResponse(tpl))
}

// Delete handles DELETE /api/v1/transactions/recurring/:id/delete
func (h *RecurringHandler) Delete(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "invalid template id", nil)
	}

	profile, err := h.profiles.Get(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	today := util.TodayIn(profile.Timezone)

	if err := h.service.Delete(userID, id, today); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Pause handles PATCH /api/v1/transactions/recurring/:id/pause
func (h *RecurringHandler) Pause(c echo.Context) error {
	return h.setPaused(c, true)
}

// Resume handles PATCH /api/v1/transactions/recurring/:id/resume
func (h *RecurringHandler) Resume(c echo.Context) error {
	return h.setPaused(c, false)
}

func (h *RecurringHandler) setPaused(c echo.Context, paused bool) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "invalid template id", nil)
	}

	var (
		tpl *domain.RecurringTemplate
	)
	if paused {
		tpl, err = h.service.Pause(userID, id)
	} else {
		tpl, err = h.service.Resume(userID, id)
	}
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTemplateResponse(tpl))
}

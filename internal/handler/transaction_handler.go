package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/middleware"
	"github.com/juanpmar/finko/finko-backend/internal/service"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

// TransactionHandler handles transaction endpoints
type TransactionHandler struct {
	service *service.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(s *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{service: s}
}

// CreateExpenseRequest is the payload for logging an expense.
type CreateExpenseRequest struct {
	OccurredAt           string      `json:"occurredAt"`
	Amount               json.Number `json:"amount"`
	ExpenseCategoryID    string      `json:"expenseCategoryId"`
	ExpenseSubcategoryID *string     `json:"expenseSubcategoryId"`
	Tag                  string      `json:"tag"`
	Notes                *string     `json:"notes"`
}

// CreateIncomeRequest is the payload for logging income.
type CreateIncomeRequest struct {
	OccurredAt       string      `json:"occurredAt"`
	Amount           json.Number `json:"amount"`
	IncomeCategoryID string      `json:"incomeCategoryId"`
	Notes            *string     `json:"notes"`
}

// UpdateTransactionRequest is a partial update. Absent fields stay unchanged.
type UpdateTransactionRequest struct {
	Kind                 *string      `json:"kind"`
	OccurredAt           *string      `json:"occurredAt"`
	Amount               *json.Number `json:"amount"`
	ExpenseCategoryID    *string      `json:"expenseCategoryId"`
	ExpenseSubcategoryID *string      `json:"expenseSubcategoryId"`
	IncomeCategoryID     *string      `json:"incomeCategoryId"`
	Tag                  *string      `json:"tag"`
	Notes                *string      `json:"notes"`
}

// TransactionResponse is the wire form of a transaction. Dates are
// YYYY-MM-DD strings and amounts carry two decimals.
type TransactionResponse struct {
	ID                   uuid.UUID  `json:"id"`
	OccurredAt           string     `json:"occurredAt"`
	Amount               string     `json:"amount"`
	Kind                 string     `json:"kind"`
	ExpenseCategoryID    *string    `json:"expenseCategoryId,omitempty"`
	ExpenseSubcategoryID *string    `json:"expenseSubcategoryId,omitempty"`
	IncomeCategoryID     *string    `json:"incomeCategoryId,omitempty"`
	Tag                  *string    `json:"tag,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
	RecurringTemplateID  *uuid.UUID `json:"recurringTemplateId,omitempty"`
}

// TodaySummaryResponse aggregates the user's local day.
type TodaySummaryResponse struct {
	ExpenseTotal   string `json:"expenseTotal"`
	ExpenseCount   int    `json:"expenseCount"`
	IncomeTotal    string `json:"incomeTotal"`
	IncomeCount    int    `json:"incomeCount"`
	HasLoggedToday bool   `json:"hasLoggedToday"`
}

func toTransactionResponse(tx *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                   tx.ID,
		OccurredAt:           util.FormatDate(tx.OccurredAt),
		Amount:               tx.Amount.StringFixed(2),
		Kind:                 string(tx.Kind),
		ExpenseCategoryID:    tx.ExpenseCategoryID,
		ExpenseSubcategoryID: tx.ExpenseSubcategoryID,
		IncomeCategoryID:     tx.IncomeCategoryID,
		Tag:                  tx.Tag,
		Notes:                tx.Notes,
		RecurringTemplateID:  tx.RecurringTemplateID,
	}
}

func toTransactionResponses(txs []*domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

// parseAmount accepts a JSON number or numeric string.
func parseAmount(n json.Number) (decimal.Decimal, error) {
	return decimal.NewFromString(n.String())
}

// CreateExpense handles POST /api/v1/transactions/create-expense
func (h *TransactionHandler) CreateExpense(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	var req CreateExpenseRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	occurredAt, err := util.ParseDate(req.OccurredAt)
	if err != nil {
		return NewValidationError(c, "occurredAt must be a YYYY-MM-DD date", nil)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "amount must be a number", nil)
	}

	tx, err := h.service.CreateExpense(userID, service.CreateExpenseInput{
		OccurredAt:           occurredAt,
		Amount:               amount,
		ExpenseCategoryID:    req.ExpenseCategoryID,
		ExpenseSubcategoryID: req.ExpenseSubcategoryID,
		Tag:                  req.Tag,
		Notes:                req.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// CreateIncome handles POST /api/v1/transactions/create-income
func (h *TransactionHandler) CreateIncome(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	var req CreateIncomeRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	occurredAt, err := util.ParseDate(req.OccurredAt)
	if err != nil {
		return NewValidationError(c, "occurredAt must be a YYYY-MM-DD date", nil)
	}
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return NewValidationError(c, "amount must be a number", nil)
	}

	tx, err := h.service.CreateIncome(userID, service.CreateIncomeInput{
		OccurredAt:       occurredAt,
		Amount:           amount,
		IncomeCategoryID: req.IncomeCategoryID,
		Notes:            req.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTransactionResponse(tx))
}

// List handles GET /api/v1/transactions/list?start_date=...&end_date=...
func (h *TransactionHandler) List(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	start, err := util.ParseDate(c.QueryParam("start_date"))
	if err != nil {
		return NewValidationError(c, "start_date must be a YYYY-MM-DD date", nil)
	}
	end, err := util.ParseDate(c.QueryParam("end_date"))
	if err != nil {
		return NewValidationError(c, "end_date must be a YYYY-MM-DD date", nil)
	}

	txs, err := h.service.List(userID, start, end)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponses(txs))
}

// TodaySummary handles GET /api/v1/transactions/today-summary
func (h *TransactionHandler) TodaySummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	summary, err := h.service.TodaySummary(userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, TodaySummaryResponse{
		ExpenseTotal:   summary.ExpenseTotal.StringFixed(2),
		ExpenseCount:   summary.ExpenseCount,
		IncomeTotal:    summary.IncomeTotal.StringFixed(2),
		IncomeCount:    summary.IncomeCount,
		HasLoggedToday: summary.HasLoggedToday,
	})
}

// Update handles PATCH /api/v1/transactions/update/:id
func (h *TransactionHandler) Update(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "invalid transaction id", nil)
	}

	var req UpdateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}

	input := service.UpdateTransactionInput{
		ExpenseCategoryID:    req.ExpenseCategoryID,
		ExpenseSubcategoryID: req.ExpenseSubcategoryID,
		IncomeCategoryID:     req.IncomeCategoryID,
		Tag:                  req.Tag,
		Notes:                req.Notes,
	}
	if req.Kind != nil {
		kind := domain.TransactionKind(*req.Kind)
		input.Kind = &kind
	}
	if req.OccurredAt != nil {
		occurredAt, err := util.ParseDate(*req.OccurredAt)
		if err != nil {
			return NewValidationError(c, "occurredAt must be a YYYY-MM-DD date", nil)
		}
		input.OccurredAt = &occurredAt
	}
	if req.Amount != nil {
		amount, err := parseAmount(*req.Amount)
		if err != nil {
			return NewValidationError(c, "amount must be a number", nil)
		}
		input.Amount = &amount
	}

	tx, err := h.service.Update(userID, id, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(tx))
}

// Delete handles DELETE /api/v1/transactions/delete/:id
func (h *TransactionHandler) Delete(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return NewValidationError(c, "invalid transaction id", nil)
	}

	if err := h.service.Delete(userID, id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

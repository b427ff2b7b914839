package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/middleware"
	"github.com/juanpmar/finko/finko-backend/internal/service"
)

// BudgetPlanHandler handles budget plan endpoints
type BudgetPlanHandler struct {
	service *service.BudgetPlanService
}

// NewBudgetPlanHandler creates a new BudgetPlanHandler
func NewBudgetPlanHandler(s *service.BudgetPlanService) *BudgetPlanHandler {
	return &BudgetPlanHandler{service: s}
}

// BudgetPlanRequest carries the plan goals. Absent goals stay unchanged on
// update and unset on create.
type BudgetPlanRequest struct {
	SavingsGoal    *json.Number `json:"savingsGoal"`
	InvestmentGoal *json.Number `json:"investmentGoal"`
}

// BudgetPlanResponse is the wire form of a plan.
type BudgetPlanResponse struct {
	ID             uuid.UUID `json:"id"`
	SavingsGoal    *string   `json:"savingsGoal,omitempty"`
	InvestmentGoal *string   `json:"investmentGoal,omitempty"`
}

// BudgetPlanViewResponse is a plan with its derived expected income.
type BudgetPlanViewResponse struct {
	Plan           BudgetPlanResponse `json:"plan"`
	ExpectedIncome string             `json:"expectedIncome"`
}

func toBudgetPlanResponse(plan *domain.BudgetPlan) BudgetPlanResponse {
	resp := BudgetPlanResponse{ID: plan.ID}
	if plan.SavingsGoal != nil {
		goal := plan.SavingsGoal.StringFixed(2)
		resp.SavingsGoal = &goal
	}
	if plan.InvestmentGoal != nil {
		goal := plan.InvestmentGoal.StringFixed(2)
		resp.InvestmentGoal = &goal
	}
	return resp
}

func (r BudgetPlanRequest) toInput() (service.BudgetPlanInput, error) {
	var input service.BudgetPlanInput
	if r.SavingsGoal != nil {
		goal, err := decimal.NewFromString(r.SavingsGoal.String())
		if err != nil {
			return input, err
		}
		input.SavingsGoal = &goal
	}
	if r.InvestmentGoal != nil {
		goal, err := decimal.NewFromString(r.InvestmentGoal.String())
		if err != nil {
			return input, err
		}
		input.InvestmentGoal = &goal
	}
	return input, nil
}

// Create handles POST /api/v1/budget-plans/create
func (h *BudgetPlanHandler) Create(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	var req BudgetPlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}
	input, err := req.toInput()
	if err != nil {
		return NewValidationError(c, "goals must be numbers", nil)
	}

	plan, err := h.service.Create(userID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toBudgetPlanResponse(plan))
}

// Get handles GET /api/v1/budget-plans/get?year=...&month=...
// The current UTC month is used when the query is absent.
func (h *BudgetPlanHandler) Get(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	if v := c.QueryParam("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "year must be an integer", nil)
		}
		year = parsed
	}
	if v := c.QueryParam("month"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "month must be an integer", nil)
		}
		month = parsed
	}

	view, err := h.service.Get(userID, year, month)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, BudgetPlanViewResponse{
		Plan:           toBudgetPlanResponse(view.Plan),
		ExpectedIncome: view.ExpectedIncome.StringFixed(2),
	})
}

// Update handles PATCH /api/v1/budget-plans/update
func (h *BudgetPlanHandler) Update(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "authentication required")
	}

	var req BudgetPlanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "invalid request body", nil)
	}
	input, err := req.toInput()
	if err != nil {
		return NewValidationError(c, "goals must be numbers", nil)
	}

	plan, err := h.service.Update(userID, input)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toBudgetPlanResponse(plan))
}

package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/service"
	"github.com/juanpmar/finko/finko-backend/internal/testutil"
)

func newBudgetPlanHandler() (*BudgetPlanHandler, *testutil.MockTransactionRepository) {
	planRepo := testutil.NewMockBudgetPlanRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	svc := service.NewBudgetPlanService(planRepo, transactionRepo)
	return NewBudgetPlanHandler(svc), transactionRepo
}

func TestCreateBudgetPlanHandler_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newBudgetPlanHandler()
	userID := uuid.New()

	body := `{"savingsGoal": "300.00"}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/budget-plans/create", body, userID)

	if err := handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BudgetPlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.SavingsGoal == nil || *response.SavingsGoal != "300.00" {
		t.Error("Expected savings goal '300.00'")
	}
	if response.InvestmentGoal != nil {
		t.Error("Expected no investment goal")
	}
}

func TestCreateBudgetPlanHandler_Duplicate(t *testing.T) {
	e := echo.New()
	handler, _ := newBudgetPlanHandler()
	userID := uuid.New()

	c, _ := authedRequest(e, http.MethodPost, "/api/v1/budget-plans/create", `{}`, userID)
	if err := handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := authedRequest(e, http.MethodPost, "/api/v1/budget-plans/create", `{}`, userID)
	if err := handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected status 409 on a second plan, got %d", rec.Code)
	}

	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v", err)
	}
	if problem.Type != ErrorTypeConflict {
		t.Errorf("Expected conflict problem type, got %s", problem.Type)
	}
}

func TestCreateBudgetPlanHandler_NegativeGoal(t *testing.T) {
	e := echo.New()
	handler, _ := newBudgetPlanHandler()
	userID := uuid.New()

	body := `{"savingsGoal": -10}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/budget-plans/create", body, userID)

	if err := handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestGetBudgetPlanHandler_WithExplicitMonth(t *testing.T) {
	e := echo.New()
	handler, transactionRepo := newBudgetPlanHandler()
	userID := uuid.New()

	c, _ := authedRequest(e, http.MethodPost, "/api/v1/budget-plans/create", `{"savingsGoal": 100}`, userID)
	if err := handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	salary := "salary"
	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:           userID,
		OccurredAt:       mustDate(t, "2024-06-01"),
		Amount:           decimalFromString(t, "2000"),
		Kind:             domain.KindIncome,
		IncomeCategoryID: &salary,
	})

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/budget-plans/get?year=2024&month=6", "", userID)
	if err := handler.Get(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BudgetPlanViewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.ExpectedIncome != "2000.00" {
		t.Errorf("Expected income '2000.00', got %s", response.ExpectedIncome)
	}
}

func TestGetBudgetPlanHandler_DefaultsToCurrentMonth(t *testing.T) {
	e := echo.New()
	handler, _ := newBudgetPlanHandler()
	userID := uuid.New()

	c, _ := authedRequest(e, http.MethodPost, "/api/v1/budget-plans/create", `{}`, userID)
	if err := handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/budget-plans/get", "", userID)
	if err := handler.Get(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200 without query params, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestGetBudgetPlanHandler_NotFound(t *testing.T) {
	e := echo.New()
	handler, _ := newBudgetPlanHandler()
	userID := uuid.New()

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/budget-plans/get?year=2024&month=6", "", userID)
	if err := handler.Get(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestUpdateBudgetPlanHandler_Success(t *testing.T) {
	e := echo.New()
	handler, _ := newBudgetPlanHandler()
	userID := uuid.New()

	c, _ := authedRequest(e, http.MethodPost, "/api/v1/budget-plans/create", `{"savingsGoal": 100, "investmentGoal": 50}`, userID)
	if err := handler.Create(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec := authedRequest(e, http.MethodPatch, "/api/v1/budget-plans/update", `{"savingsGoal": 500}`, userID)
	if err := handler.Update(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BudgetPlanResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.SavingsGoal == nil || *response.SavingsGoal != "500.00" {
		t.Error("Expected savings goal '500.00'")
	}
	if response.InvestmentGoal == nil || *response.InvestmentGoal != "50.00" {
		t.Error("Expected the investment goal untouched")
	}
}

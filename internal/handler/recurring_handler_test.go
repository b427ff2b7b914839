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

func newRecurringHandler() (*RecurringHandler, *testutil.MockTransactionRepository, *testutil.MockProfileRepository) {
	templateRepo := testutil.NewMockRecurringTemplateRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	profileRepo := testutil.NewMockProfileRepository()
	catalog := testutil.NewMockCatalogRepository()
	svc := service.NewRecurringService(templateRepo, transactionRepo, catalog)
	return NewRecurringHandler(svc, service.NewProfileService(profileRepo)), transactionRepo, profileRepo
}

func TestCreateRecurringExpenseHandler_Success(t *testing.T) {
	e := echo.New()
	handler, _, _ := newRecurringHandler()
	userID := uuid.New()

	body := `{"amount": "900.00", "expenseCategoryId": "food", "tag": "rent", "frequency": "monthly", "dayOfMonth": 15, "startDate": "2024-01-01"}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/transactions/recurring/create", body, userID)

	if err := handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Amount != "900.00" {
		t.Errorf("Expected amount '900.00', got %s", response.Amount)
	}
	if response.Frequency != "monthly" {
		t.Errorf("Expected frequency 'monthly', got %s", response.Frequency)
	}
	if response.DayOfMonth == nil || *response.DayOfMonth != 15 {
		t.Error("Expected dayOfMonth 15")
	}
	if response.IsPaused {
		t.Error("Expected a new template to start active")
	}
}

func TestCreateRecurringExpenseHandler_BadSchedule(t *testing.T) {
	e := echo.New()
	handler, _, _ := newRecurringHandler()
	userID := uuid.New()

	body := `{"amount": "900.00", "expenseCategoryId": "food", "tag": "rent", "frequency": "monthly", "startDate": "2024-01-01"}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/transactions/recurring/create", body, userID)

	if err := handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without a day of month, got %d", rec.Code)
	}
}

func TestCreateRecurringIncomeHandler_Success(t *testing.T) {
	e := echo.New()
	handler, _, _ := newRecurringHandler()
	userID := uuid.New()

	body := `{"amount": 2500, "incomeCategoryId": "salary", "frequency": "monthly", "dayOfMonth": 1, "startDate": "2024-01-01"}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/transactions/recurring/create-income", body, userID)

	if err := handler.CreateIncome(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if response.Kind != "income" {
		t.Errorf("Expected kind 'income', got %s", response.Kind)
	}
	if response.Tag != nil {
		t.Error("Expected no tag on an income template")
	}
}

func TestPauseHandler_Roundtrip(t *testing.T) {
	e := echo.New()
	handler, _, _ := newRecurringHandler()
	userID := uuid.New()

	body := `{"amount": "900.00", "expenseCategoryId": "food", "tag": "rent", "frequency": "monthly", "dayOfMonth": 15, "startDate": "2024-01-01"}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/transactions/recurring/create", body, userID)
	if err := handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var created RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	c, rec = authedRequest(e, http.MethodPatch, "/api/v1/transactions/recurring/"+created.ID.String()+"/pause", "", userID)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := handler.Pause(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var paused RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &paused); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if !paused.IsPaused {
		t.Error("Expected the template to pause")
	}

	c, rec = authedRequest(e, http.MethodPatch, "/api/v1/transactions/recurring/"+created.ID.String()+"/resume", "", userID)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := handler.Resume(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var resumed RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resumed); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if resumed.IsPaused {
		t.Error("Expected the template to resume")
	}
}

func TestDeleteRecurringHandler_Success(t *testing.T) {
	e := echo.New()
	handler, _, profileRepo := newRecurringHandler()
	userID := uuid.New()
	profileRepo.AddProfile(&domain.Profile{UserID: userID, Timezone: "UTC", CurrentLevel: 1})

	body := `{"amount": "900.00", "expenseCategoryId": "food", "tag": "rent", "frequency": "monthly", "dayOfMonth": 15, "startDate": "2024-01-01"}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/transactions/recurring/create", body, userID)
	if err := handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var created RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	c, rec = authedRequest(e, http.MethodDelete, "/api/v1/transactions/recurring/"+created.ID.String()+"/delete", "", userID)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := handler.Delete(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d: %s", rec.Code, rec.Body.String())
	}

	c, rec = authedRequest(e, http.MethodGet, "/api/v1/transactions/recurring/"+created.ID.String()+"/get", "", userID)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := handler.Get(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 after delete, got %d", rec.Code)
	}
}

func TestListRecurringHandler_HidesPausedByDefault(t *testing.T) {
	e := echo.New()
	handler, _, _ := newRecurringHandler()
	userID := uuid.New()

	body := `{"amount": "900.00", "expenseCategoryId": "food", "tag": "rent", "frequency": "monthly", "dayOfMonth": 15, "startDate": "2024-01-01"}`
	c, rec := authedRequest(e, http.MethodPost, "/api/v1/transactions/recurring/create", body, userID)
	if err := handler.CreateExpense(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var created RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	c, _ = authedRequest(e, http.MethodPatch, "/api/v1/transactions/recurring/"+created.ID.String()+"/pause", "", userID)
	c.SetParamNames("id")
	c.SetParamValues(created.ID.String())
	if err := handler.Pause(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	c, rec = authedRequest(e, http.MethodGet, "/api/v1/transactions/recurring/list", "", userID)
	if err := handler.List(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var active []RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &active); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("Expected paused templates hidden, got %d", len(active))
	}

	c, rec = authedRequest(e, http.MethodGet, "/api/v1/transactions/recurring/list?include_paused=true", "", userID)
	if err := handler.List(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	var all []RecurringTemplateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &all); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("Expected 1 template with include_paused, got %d", len(all))
	}
}

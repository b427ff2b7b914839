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

func newInsightsHandler() (*InsightsHandler, *testutil.MockTransactionRepository, *testutil.MockBudgetPlanRepository) {
	transactionRepo := testutil.NewMockTransactionRepository()
	templateRepo := testutil.NewMockRecurringTemplateRepository()
	planRepo := testutil.NewMockBudgetPlanRepository()
	catalog := testutil.NewMockCatalogRepository()
	materializer := service.NewMaterializationService(templateRepo, transactionRepo)
	goalAwarder := service.NewExperienceService(testutil.NewMockProfileRepository(), testutil.NewMockXPEventRepository())
	svc := service.NewInsightsService(transactionRepo, planRepo, catalog, materializer, goalAwarder)
	return NewInsightsHandler(svc), transactionRepo, planRepo
}

func TestMonthSnapshotHandler_Success(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, planRepo := newInsightsHandler()
	userID := uuid.New()

	if _, err := planRepo.Create(&domain.BudgetPlan{UserID: userID}); err != nil {
		t.Fatalf("Failed to seed plan: %v", err)
	}
	category := "food"
	tag := "lunch"
	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:            userID,
		OccurredAt:        mustDate(t, "2024-06-10"),
		Amount:            decimalFromString(t, "50.00"),
		Kind:              domain.KindExpense,
		ExpenseCategoryID: &category,
		Tag:               &tag,
	})

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/insights/month-snapshot?year=2024&month=6", "", userID)

	if err := handler.MonthSnapshot(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var snapshot domain.MonthSnapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if snapshot.Key != "jun-2024" {
		t.Errorf("Expected key 'jun-2024', got %s", snapshot.Key)
	}
	if snapshot.Label != "June 2024" {
		t.Errorf("Expected label 'June 2024', got %s", snapshot.Label)
	}
	if len(snapshot.Categories) != 1 || snapshot.Categories[0].Percent != 100 {
		t.Error("Expected one category at 100 percent")
	}
}

func TestMonthSnapshotHandler_RequiresParams(t *testing.T) {
	e := echo.New()
	handler, _, _ := newInsightsHandler()
	userID := uuid.New()

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/insights/month-snapshot", "", userID)

	if err := handler.MonthSnapshot(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 without year/month, got %d", rec.Code)
	}
}

func TestMonthSnapshotHandler_BadMonth(t *testing.T) {
	e := echo.New()
	handler, _, planRepo := newInsightsHandler()
	userID := uuid.New()

	if _, err := planRepo.Create(&domain.BudgetPlan{UserID: userID}); err != nil {
		t.Fatalf("Failed to seed plan: %v", err)
	}

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/insights/month-snapshot?year=2024&month=13", "", userID)

	if err := handler.MonthSnapshot(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for month 13, got %d", rec.Code)
	}
}

func TestMonthSnapshotHandler_MissingPlan(t *testing.T) {
	e := echo.New()
	handler, _, _ := newInsightsHandler()
	userID := uuid.New()

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/insights/month-snapshot?year=2024&month=6", "", userID)

	if err := handler.MonthSnapshot(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 without a budget plan, got %d", rec.Code)
	}
}

func TestAvailableMonthsHandler_Success(t *testing.T) {
	e := echo.New()
	handler, transactionRepo, _ := newInsightsHandler()
	userID := uuid.New()

	category := "food"
	tag := "lunch"
	transactionRepo.AddTransaction(&domain.Transaction{
		UserID:            userID,
		OccurredAt:        mustDate(t, "2024-06-10"),
		Amount:            decimalFromString(t, "50.00"),
		Kind:              domain.KindExpense,
		ExpenseCategoryID: &category,
		Tag:               &tag,
	})

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/insights/available-months", "", userID)

	if err := handler.AvailableMonths(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var months []service.MonthOption
	if err := json.Unmarshal(rec.Body.Bytes(), &months); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(months) != 1 || months[0].Key != "jun-2024" {
		t.Errorf("Expected one month 'jun-2024', got %+v", months)
	}
}

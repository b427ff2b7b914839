package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/testutil"
)

func TestListExpenseCategoriesHandler(t *testing.T) {
	e := echo.New()
	handler := NewCategoryHandler(testutil.NewMockCatalogRepository())

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/expense-categories/list", "", uuid.New())

	if err := handler.ListExpenseCategories(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var categories []domain.ExpenseCategory
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("Expected the catalog to have entries")
	}
	if categories[0].ID != "food" {
		t.Errorf("Expected 'food' first by sort order, got %s", categories[0].ID)
	}
	if len(categories[0].Subcategories) == 0 {
		t.Error("Expected food to carry subcategories")
	}
}

func TestListIncomeCategoriesHandler(t *testing.T) {
	e := echo.New()
	handler := NewCategoryHandler(testutil.NewMockCatalogRepository())

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/income-categories/list", "", uuid.New())

	if err := handler.ListIncomeCategories(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var categories []domain.IncomeCategory
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(categories) == 0 {
		t.Fatal("Expected the catalog to have entries")
	}
	if categories[0].ID != "salary" {
		t.Errorf("Expected 'salary' first by sort order, got %s", categories[0].ID)
	}
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// CategoryHandler serves the fixed category catalog
type CategoryHandler struct {
	catalog domain.CatalogRepository
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(catalog domain.CatalogRepository) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

// ListExpenseCategories handles GET /api/v1/expense-categories/list
func (h *CategoryHandler) ListExpenseCategories(c echo.Context) error {
	categories, err := h.catalog.ListExpenseCategories()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

// ListIncomeCategories handles GET /api/v1/income-categories/list
func (h *CategoryHandler) ListIncomeCategories(c echo.Context) error {
	categories, err := h.catalog.ListIncomeCategories()
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

package postgres

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// CatalogRepository implements domain.CatalogRepository using PostgreSQL.
// The catalog is read-only at runtime, so the color maps are loaded once
// and cached for the life of the process.
type CatalogRepository struct {
	pool *pgxpool.Pool

	mu                sync.Mutex
	loaded            bool
	categoryColors    map[string]string
	subcategoryColors map[string]string
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// CategoryExists reports whether a category id exists on the given side.
func (r *CatalogRepository) CategoryExists(id string, kind domain.TransactionKind) (bool, error) {
	table := "expense_categories"
	if kind == domain.KindIncome {
		table = "income_categories"
	}
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// SubcategoryExists reports whether an expense subcategory id exists.
func (r *CatalogRepository) SubcategoryExists(id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM expense_subcategories WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

// ListExpenseCategories returns the catalog with nested subcategories, both
// levels ordered by sort_order.
func (r *CatalogRepository) ListExpenseCategories() ([]domain.ExpenseCategory, error) {
	ctx := context.Background()
	rows, err := r.pool.Query(ctx, `
		SELECT id, label, color, sort_order
		FROM expense_categories
		ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.ExpenseCategory
	index := make(map[string]int)
	for rows.Next() {
		var c domain.ExpenseCategory
		if err := rows.Scan(&c.ID, &c.Label, &c.Color, &c.SortOrder); err != nil {
			return nil, err
		}
		index[c.ID] = len(categories)
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	subRows, err := r.pool.Query(ctx, `
		SELECT id, category_id, label, color, sort_order
		FROM expense_subcategories
		ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer subRows.Close()

	for subRows.Next() {
		var s domain.ExpenseSubcategory
		if err := subRows.Scan(&s.ID, &s.CategoryID, &s.Label, &s.Color, &s.SortOrder); err != nil {
			return nil, err
		}
		if i, ok := index[s.CategoryID]; ok {
			categories[i].Subcategories = append(categories[i].Subcategories, s)
		}
	}
	return categories, subRows.Err()
}

// ListIncomeCategories returns income categories ordered by sort_order.
func (r *CatalogRepository) ListIncomeCategories() ([]domain.IncomeCategory, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT id, label, color, sort_order
		FROM income_categories
		ORDER BY sort_order`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []domain.IncomeCategory
	for rows.Next() {
		var c domain.IncomeCategory
		if err := rows.Scan(&c.ID, &c.Label, &c.Color, &c.SortOrder); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CategoryColors returns the expense-category color map, cached after the
// first load.
func (r *CatalogRepository) CategoryColors() (map[string]string, error) {
	if err := r.loadColors(); err != nil {
		return nil, err
	}
	return r.categoryColors, nil
}

// SubcategoryColors returns the subcategory color map, cached after the
// first load.
func (r *CatalogRepository) SubcategoryColors() (map[string]string, error) {
	if err := r.loadColors(); err != nil {
		return nil, err
	}
	return r.subcategoryColors, nil
}

func (r *CatalogRepository) loadColors() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}

	ctx := context.Background()
	categoryColors := make(map[string]string)
	rows, err := r.pool.Query(ctx, `SELECT id, color FROM expense_categories`)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id, color string
		if err := rows.Scan(&id, &color); err != nil {
			return err
		}
		categoryColors[id] = color
	}
	if err := rows.Err(); err != nil {
		return err
	}

	subcategoryColors := make(map[string]string)
	subRows, err := r.pool.Query(ctx, `SELECT id, color FROM expense_subcategories`)
	if err != nil {
		return err
	}
	defer subRows.Close()
	for subRows.Next() {
		var id, color string
		if err := subRows.Scan(&id, &color); err != nil {
			return err
		}
		subcategoryColors[id] = color
	}
	if err := subRows.Err(); err != nil {
		return err
	}

	r.categoryColors = categoryColors
	r.subcategoryColors = subcategoryColors
	r.loaded = true
	return nil
}

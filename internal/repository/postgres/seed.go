package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

type seedCategory struct {
	id, label, color string
	sortOrder        int
}

type seedSubcategory struct {
	id, categoryID, label, color string
	sortOrder                    int
}

var seedExpenseCategories = []seedCategory{
	{"housing", "Housing", "#4e79a7", 1},
	{"food", "Food & Groceries", "#f28e2b", 2},
	{"transport", "Transport", "#e15759", 3},
	{"health", "Health", "#76b7b2", 4},
	{"entertainment", "Entertainment", "#59a14f", 5},
	{"shopping", "Shopping", "#edc948", 6},
	{"savings", "Savings", "#b07aa1", 7},
	{"investments", "Investments", "#ff9da7", 8},
	{"other_expense", "Other", "#9c755f", 9},
}

var seedExpenseSubcategories = []seedSubcategory{
	{"rent", "housing", "Rent", "#4e79a7", 1},
	{"utilities", "housing", "Utilities", "#6a93c1", 2},
	{"groceries", "food", "Groceries", "#f28e2b", 1},
	{"restaurants", "food", "Restaurants", "#f5a960", 2},
	{"delivery", "food", "Delivery", "#f8c48f", 3},
	{"fuel", "transport", "Fuel", "#e15759", 1},
	{"public_transport", "transport", "Public Transport", "#e87f81", 2},
	{"pharmacy", "health", "Pharmacy", "#76b7b2", 1},
	{"gym", "health", "Gym", "#94c8c4", 2},
	{"streaming", "entertainment", "Streaming", "#59a14f", 1},
	{"going_out", "entertainment", "Going Out", "#7cb972", 2},
	{"clothing", "shopping", "Clothing", "#edc948", 1},
	{"electronics", "shopping", "Electronics", "#f1d674", 2},
}

var seedIncomeCategories = []seedCategory{
	{"salary", "Salary", "#4e79a7", 1},
	{"freelance", "Freelance", "#f28e2b", 2},
	{"investment_returns", "Investment Returns", "#59a14f", 3},
	{"gifts", "Gifts", "#b07aa1", 4},
	{"other_income", "Other", "#9c755f", 5},
}

// SeedCatalog inserts the default reference catalog. Existing rows are left
// untouched, so the loader is safe to run on every boot.
func SeedCatalog(pool *pgxpool.Pool) error {
	ctx := context.Background()

	for _, c := range seedExpenseCategories {
		_, err := pool.Exec(ctx, `
			INSERT INTO expense_categories (id, label, color, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			c.id, c.label, c.color, c.sortOrder)
		if err != nil {
			return err
		}
	}
	for _, s := range seedExpenseSubcategories {
		_, err := pool.Exec(ctx, `
			INSERT INTO expense_subcategories (id, category_id, label, color, sort_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			s.id, s.categoryID, s.label, s.color, s.sortOrder)
		if err != nil {
			return err
		}
	}
	for _, c := range seedIncomeCategories {
		_, err := pool.Exec(ctx, `
			INSERT INTO income_categories (id, label, color, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO NOTHING`,
			c.id, c.label, c.color, c.sortOrder)
		if err != nil {
			return err
		}
	}

	log.Info().
		Int("expense_categories", len(seedExpenseCategories)).
		Int("income_categories", len(seedIncomeCategories)).
		Msg("Reference catalog seeded")
	return nil
}

package domain

// ExpenseCategory is a read-only reference catalog entry. Ids are stable
// string slugs; the catalog never changes at runtime.
type ExpenseCategory struct {
	ID            string               `json:"id"`
	Label         string               `json:"label"`
	Color         string               `json:"color"`
	SortOrder     int                  `json:"sortOrder"`
	Subcategories []ExpenseSubcategory `json:"subcategories,omitempty"`
}

// ExpenseSubcategory belongs to exactly one expense category.
type ExpenseSubcategory struct {
	ID         string `json:"id"`
	CategoryID string `json:"categoryId"`
	Label      string `json:"label"`
	Color      string `json:"color"`
	SortOrder  int    `json:"sortOrder"`
}

// IncomeCategory is a read-only reference catalog entry.
type IncomeCategory struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Color     string `json:"color"`
	SortOrder int    `json:"sortOrder"`
}

// CatalogRepository is the read-only reference catalog.
type CatalogRepository interface {
	CategoryExists(id string, kind TransactionKind) (bool, error)
	SubcategoryExists(id string) (bool, error)
	ListExpenseCategories() ([]ExpenseCategory, error)
	ListIncomeCategories() ([]IncomeCategory, error)
	CategoryColors() (map[string]string, error)
	SubcategoryColors() (map[string]string, error)
}

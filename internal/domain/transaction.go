package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionKind discriminates the two sides of a transaction.
type TransactionKind string

const (
	KindExpense TransactionKind = "expense"
	KindIncome  TransactionKind = "income"
)

// Transaction is a concrete money event on a calendar date. Exactly one of
// the expense/income category sides is populated, matching Kind.
type Transaction struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"userId"`
	OccurredAt           time.Time       `json:"occurredAt"` // date-only, UTC midnight
	Amount               decimal.Decimal `json:"amount"`
	Kind                 TransactionKind `json:"kind"`
	ExpenseCategoryID    *string         `json:"expenseCategoryId,omitempty"`
	ExpenseSubcategoryID *string         `json:"expenseSubcategoryId,omitempty"`
	IncomeCategoryID     *string         `json:"incomeCategoryId,omitempty"`
	Tag                  *string         `json:"tag,omitempty"`
	Notes                *string         `json:"notes,omitempty"`
	RecurringTemplateID  *uuid.UUID      `json:"recurringTemplateId,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
}

// TodaySummary aggregates a single user-local day.
type TodaySummary struct {
	ExpenseTotal   decimal.Decimal `json:"expenseTotal"`
	ExpenseCount   int             `json:"expenseCount"`
	IncomeTotal    decimal.Decimal `json:"incomeTotal"`
	IncomeCount    int             `json:"incomeCount"`
	HasLoggedToday bool            `json:"hasLoggedToday"`
}

// CategoryAggregate is a per-(category, subcategory) expense rollup.
type CategoryAggregate struct {
	CategoryID    string
	SubcategoryID *string
	Total         decimal.Decimal
	Count         int
}

// WeekAggregate is a per-week-band expense rollup.
type WeekAggregate struct {
	Week  int
	Total decimal.Decimal
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// TransactionRepository defines transaction persistence operations.
// All lookups are scoped to a user id for authorization.
type TransactionRepository interface {
	Create(tx *Transaction) (*Transaction, error)
	// CreateIfAbsent inserts a materialized occurrence and reports whether a
	// row was created. A (template, occurred_at) uniqueness conflict is not
	// an error.
	CreateIfAbsent(tx *Transaction) (bool, error)
	GetByID(userID, id uuid.UUID) (*Transaction, error)
	Update(tx *Transaction) (*Transaction, error)
	Delete(userID, id uuid.UUID) error
	ListByDateRange(userID uuid.UUID, start, end time.Time) ([]*Transaction, error)
	TodaySummary(userID uuid.UUID, day time.Time) (*TodaySummary, error)

	AggregateByCategory(userID uuid.UUID, start, end time.Time) ([]CategoryAggregate, error)
	AggregateByWeek(userID uuid.UUID, start, end time.Time) ([]WeekAggregate, error)
	CountLoggedDays(userID uuid.UUID, start, end time.Time) (int, error)
	Recent(userID uuid.UUID, start, end time.Time, limit int) ([]*Transaction, error)
	TotalByCategory(userID uuid.UUID, categoryID string, start, end time.Time) (decimal.Decimal, error)
	TotalIncome(userID uuid.UUID, start, end time.Time) (decimal.Decimal, error)
	DistinctMonths(userID uuid.UUID) ([]YearMonth, error)

	// DetachTemplate nulls recurring_template_id on rows produced by the
	// template, keeping history when a template is deleted.
	DetachTemplate(userID, templateID uuid.UUID) error
	DeleteFutureForTemplate(userID, templateID uuid.UUID, after time.Time) error
}

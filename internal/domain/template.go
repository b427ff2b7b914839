package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Frequency is a recurrence cadence.
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// RecurringTemplate is a recurrence specification. It holds no money itself;
// materialization produces transaction rows from it.
type RecurringTemplate struct {
	ID                   uuid.UUID       `json:"id"`
	UserID               uuid.UUID       `json:"userId"`
	Amount               decimal.Decimal `json:"amount"`
	Kind                 TransactionKind `json:"kind"`
	ExpenseCategoryID    *string         `json:"expenseCategoryId,omitempty"`
	ExpenseSubcategoryID *string         `json:"expenseSubcategoryId,omitempty"`
	IncomeCategoryID     *string         `json:"incomeCategoryId,omitempty"`
	Tag                  *string         `json:"tag,omitempty"`
	Notes                *string         `json:"notes,omitempty"`
	Frequency            Frequency       `json:"frequency"`
	DayOfWeek            *int            `json:"dayOfWeek,omitempty"`  // 0-6, Monday=0
	DayOfMonth           *int            `json:"dayOfMonth,omitempty"` // 1-31, clamped per month
	StartDate            time.Time       `json:"startDate"`
	EndDate              *time.Time      `json:"endDate,omitempty"`
	TotalOccurrences     *int            `json:"totalOccurrences,omitempty"`
	IsPaused             bool            `json:"isPaused"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

// RecurringTemplateRepository defines template persistence operations.
type RecurringTemplateRepository interface {
	Create(tpl *RecurringTemplate) (*RecurringTemplate, error)
	GetByID(userID, id uuid.UUID) (*RecurringTemplate, error)
	Update(tpl *RecurringTemplate) (*RecurringTemplate, error)
	Delete(userID, id uuid.UUID) error
	List(userID uuid.UUID, includePaused bool) ([]*RecurringTemplate, error)
	// ActiveForRange returns non-paused templates whose effective interval
	// overlaps [start, end].
	ActiveForRange(userID uuid.UUID, start, end time.Time) ([]*RecurringTemplate, error)
	SetPaused(userID, id uuid.UUID, paused bool) (*RecurringTemplate, error)
}

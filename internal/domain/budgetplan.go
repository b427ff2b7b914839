package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BudgetPlan holds a user's savings and investment goals. At most one plan
// exists per user. Expected income is derived from transactions, not stored.
type BudgetPlan struct {
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"userId"`
	SavingsGoal    *decimal.Decimal `json:"savingsGoal,omitempty"`
	InvestmentGoal *decimal.Decimal `json:"investmentGoal,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

// BudgetPlanRepository defines budget plan persistence operations.
type BudgetPlanRepository interface {
	Create(plan *BudgetPlan) (*BudgetPlan, error)
	GetByUserID(userID uuid.UUID) (*BudgetPlan, error)
	Update(plan *BudgetPlan) (*BudgetPlan, error)
}

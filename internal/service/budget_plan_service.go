package service

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

// BudgetPlanService manages the per-user savings/investment goals.
type BudgetPlanService struct {
	planRepo        domain.BudgetPlanRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetPlanService creates a new BudgetPlanService
func NewBudgetPlanService(planRepo domain.BudgetPlanRepository, transactionRepo domain.TransactionRepository) *BudgetPlanService {
	return &BudgetPlanService{
		planRepo:        planRepo,
		transactionRepo: transactionRepo,
	}
}

// BudgetPlanInput carries the goal fields. Nil means "not set" on create
// and "unchanged" on update.
type BudgetPlanInput struct {
	SavingsGoal    *decimal.Decimal
	InvestmentGoal *decimal.Decimal
}

// BudgetPlanView is a plan with its derived expected income for a month.
type BudgetPlanView struct {
	Plan           *domain.BudgetPlan `json:"plan"`
	ExpectedIncome decimal.Decimal    `json:"expectedIncome"`
}

// Create stores the user's plan. A user can hold at most one.
func (s *BudgetPlanService) Create(userID uuid.UUID, input BudgetPlanInput) (*domain.BudgetPlan, error) {
	if err := validateGoals(input); err != nil {
		return nil, err
	}
	return s.planRepo.Create(&domain.BudgetPlan{
		UserID:         userID,
		SavingsGoal:    input.SavingsGoal,
		InvestmentGoal: input.InvestmentGoal,
	})
}

// Get returns the plan with expected income derived from the income
// transactions of the given month.
func (s *BudgetPlanService) Get(userID uuid.UUID, year, month int) (*BudgetPlanView, error) {
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return nil, domain.ErrInvalidMonthRange
	}
	plan, err := s.planRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	first, last := util.MonthBounds(year, month)
	income, err := s.transactionRepo.TotalIncome(userID, first, last)
	if err != nil {
		return nil, err
	}
	return &BudgetPlanView{Plan: plan, ExpectedIncome: income}, nil
}

// Update rewrites the goals of an existing plan. Nil fields keep their
// current value.
func (s *BudgetPlanService) Update(userID uuid.UUID, input BudgetPlanInput) (*domain.BudgetPlan, error) {
	if err := validateGoals(input); err != nil {
		return nil, err
	}
	plan, err := s.planRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if input.SavingsGoal != nil {
		plan.SavingsGoal = input.SavingsGoal
	}
	if input.InvestmentGoal != nil {
		plan.InvestmentGoal = input.InvestmentGoal
	}
	return s.planRepo.Update(plan)
}

func validateGoals(input BudgetPlanInput) error {
	if input.SavingsGoal != nil && input.SavingsGoal.IsNegative() {
		return domain.ErrNegativeGoal
	}
	if input.InvestmentGoal != nil && input.InvestmentGoal.IsNegative() {
		return domain.ErrNegativeGoal
	}
	return nil
}

package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// BudgetPlanRepository implements domain.BudgetPlanRepository using PostgreSQL
type BudgetPlanRepository struct {
	pool *pgxpool.Pool
}

// NewBudgetPlanRepository creates a new BudgetPlanRepository
func NewBudgetPlanRepository(pool *pgxpool.Pool) *BudgetPlanRepository {
	return &BudgetPlanRepository{pool: pool}
}

const budgetPlanColumns = `id, user_id, savings_goal, investment_goal, created_at, updated_at`

func scanBudgetPlan(row pgx.Row) (*domain.BudgetPlan, error) {
	var (
		id, userID           pgtype.UUID
		savings, investment  pgtype.Numeric
		createdAt, updatedAt time.Time
	)
	err := row.Scan(&id, &userID, &savings, &investment, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.BudgetPlan{
		ID:             uuidFromPg(id),
		UserID:         uuidFromPg(userID),
		SavingsGoal:    pgNumericToDecimalPtr(savings),
		InvestmentGoal: pgNumericToDecimalPtr(investment),
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

// Create inserts the user's plan. A second plan for the same user trips the
// unique constraint and maps to ErrBudgetPlanExists.
func (r *BudgetPlanRepository) Create(plan *domain.BudgetPlan) (*domain.BudgetPlan, error) {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO budget_plans (id, user_id, savings_goal, investment_goal)
		VALUES ($1, $2, $3, $4)
		RETURNING `+budgetPlanColumns,
		pgUUID(plan.ID), pgUUID(plan.UserID),
		decimalPtrToPgNumeric(plan.SavingsGoal), decimalPtrToPgNumeric(plan.InvestmentGoal))
	created, err := scanBudgetPlan(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrBudgetPlanExists
		}
		return nil, err
	}
	return created, nil
}

// GetByUserID retrieves the user's plan.
func (r *BudgetPlanRepository) GetByUserID(userID uuid.UUID) (*domain.BudgetPlan, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+budgetPlanColumns+` FROM budget_plans WHERE user_id = $1`,
		pgUUID(userID))
	plan, err := scanBudgetPlan(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// Update rewrites the plan's goals.
func (r *BudgetPlanRepository) Update(plan *domain.BudgetPlan) (*domain.BudgetPlan, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE budget_plans
		SET savings_goal = $2, investment_goal = $3, updated_at = now()
		WHERE user_id = $1
		RETURNING `+budgetPlanColumns,
		pgUUID(plan.UserID),
		decimalPtrToPgNumeric(plan.SavingsGoal), decimalPtrToPgNumeric(plan.InvestmentGoal))
	updated, err := scanBudgetPlan(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBudgetPlanNotFound
		}
		return nil, err
	}
	return updated, nil
}

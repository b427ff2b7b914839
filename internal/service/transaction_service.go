package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

// TransactionXPAwarder grants XP for logged transactions. Failures are the
// caller's to swallow; a failed award never fails the write it rewards.
type TransactionXPAwarder interface {
	AwardTransactionXP(userID uuid.UUID) (*TransactionXPResult, error)
}

// TransactionService manages concrete transactions.
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	profileRepo     domain.ProfileRepository
	catalog         domain.CatalogRepository
	materializer    *MaterializationService
	xp              TransactionXPAwarder
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, profileRepo domain.ProfileRepository, catalog domain.CatalogRepository, materializer *MaterializationService, xp TransactionXPAwarder) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		profileRepo:     profileRepo,
		catalog:         catalog,
		materializer:    materializer,
		xp:              xp,
	}
}

// CreateExpenseInput carries the fields for a new expense.
type CreateExpenseInput struct {
	OccurredAt           time.Time
	Amount               decimal.Decimal
	ExpenseCategoryID    string
	ExpenseSubcategoryID *string
	Tag                  string
	Notes                *string
}

// CreateIncomeInput carries the fields for a new income entry.
type CreateIncomeInput struct {
	OccurredAt       time.Time
	Amount           decimal.Decimal
	IncomeCategoryID string
	Notes            *string
}

// UpdateTransactionInput carries a partial update. Kind is immutable.
type UpdateTransactionInput struct {
	Kind                 *domain.TransactionKind
	OccurredAt           *time.Time
	Amount               *decimal.Decimal
	ExpenseCategoryID    *string
	ExpenseSubcategoryID *string
	IncomeCategoryID     *string
	Tag                  *string
	Notes                *string
}

// CreateExpense validates and stores an expense, then awards transaction XP.
// XP failures are logged and swallowed.
func (s *TransactionService) CreateExpense(userID uuid.UUID, input CreateExpenseInput) (*domain.Transaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	tag := input.Tag
	if err := validateCategoryRefs(s.catalog, domain.KindExpense, &input.ExpenseCategoryID, input.ExpenseSubcategoryID, nil, &tag); err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(&domain.Transaction{
		UserID:               userID,
		OccurredAt:           input.OccurredAt,
		Amount:               input.Amount,
		Kind:                 domain.KindExpense,
		ExpenseCategoryID:    &input.ExpenseCategoryID,
		ExpenseSubcategoryID: input.ExpenseSubcategoryID,
		Tag:                  &tag,
		Notes:                input.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.awardXP(userID)
	return created, nil
}

// CreateIncome validates and stores an income entry, then awards
// transaction XP. XP failures are logged and swallowed.
func (s *TransactionService) CreateIncome(userID uuid.UUID, input CreateIncomeInput) (*domain.Transaction, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if err := validateCategoryRefs(s.catalog, domain.KindIncome, nil, nil, &input.IncomeCategoryID, nil); err != nil {
		return nil, err
	}

	created, err := s.transactionRepo.Create(&domain.Transaction{
		UserID:           userID,
		OccurredAt:       input.OccurredAt,
		Amount:           input.Amount,
		Kind:             domain.KindIncome,
		IncomeCategoryID: &input.IncomeCategoryID,
		Notes:            input.Notes,
	})
	if err != nil {
		return nil, err
	}
	s.awardXP(userID)
	return created, nil
}

func (s *TransactionService) awardXP(userID uuid.UUID) {
	if s.xp == nil {
		return
	}
	if _, err := s.xp.AwardTransactionXP(userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Transaction XP award failed")
	}
}

// Get returns a transaction owned by the user.
func (s *TransactionService) Get(userID, id uuid.UUID) (*domain.Transaction, error) {
	return s.transactionRepo.GetByID(userID, id)
}

// List materializes recurring occurrences over the window, then returns all
// transactions in it, newest first.
func (s *TransactionService) List(userID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	if end.Before(start) {
		return nil, domain.ErrInvalidDateRange
	}
	if _, err := s.materializer.MaterializeRange(userID, start, end); err != nil {
		return nil, err
	}
	return s.transactionRepo.ListByDateRange(userID, start, end)
}

// TodaySummary materializes and aggregates the user's local day.
func (s *TransactionService) TodaySummary(userID uuid.UUID) (*domain.TodaySummary, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	today := util.TodayIn(profile.Timezone)
	if _, err := s.materializer.MaterializeRange(userID, today, today); err != nil {
		return nil, err
	}
	return s.transactionRepo.TodaySummary(userID, today)
}

// Update applies a partial update to a transaction. The kind is immutable;
// category references are validated against the catalog.
func (s *TransactionService) Update(userID, id uuid.UUID, input UpdateTransactionInput) (*domain.Transaction, error) {
	tx, err := s.transactionRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if input.Kind != nil && *input.Kind != tx.Kind {
		return nil, domain.ErrKindImmutable
	}

	if input.OccurredAt != nil {
		tx.OccurredAt = *input.OccurredAt
	}
	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
		tx.Amount = *input.Amount
	}
	if input.ExpenseCategoryID != nil {
		tx.ExpenseCategoryID = input.ExpenseCategoryID
	}
	if input.ExpenseSubcategoryID != nil {
		tx.ExpenseSubcategoryID = input.ExpenseSubcategoryID
	}
	if input.IncomeCategoryID != nil {
		tx.IncomeCategoryID = input.IncomeCategoryID
	}
	if input.Tag != nil {
		tx.Tag = input.Tag
	}
	if input.Notes != nil {
		tx.Notes = input.Notes
	}

	if err := validateCategoryRefs(s.catalog, tx.Kind, tx.ExpenseCategoryID, tx.ExpenseSubcategoryID, tx.IncomeCategoryID, tx.Tag); err != nil {
		return nil, err
	}
	return s.transactionRepo.Update(tx)
}

// Delete removes a transaction owned by the user.
func (s *TransactionService) Delete(userID, id uuid.UUID) error {
	return s.transactionRepo.Delete(userID, id)
}

// validateCategoryRefs checks the category side of a payload against the
// catalog: category first, then the expense tag, then the subcategory.
func validateCategoryRefs(catalog domain.CatalogRepository, kind domain.TransactionKind, expenseCategoryID, expenseSubcategoryID, incomeCategoryID, tag *string) error {
	switch kind {
	case domain.KindExpense:
		if expenseCategoryID == nil {
			return domain.ErrCategoryNotFound
		}
		exists, err := catalog.CategoryExists(*expenseCategoryID, domain.KindExpense)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrCategoryNotFound
		}
		if tag == nil || *tag == "" {
			return domain.ErrMissingTag
		}
		if expenseSubcategoryID != nil {
			exists, err := catalog.SubcategoryExists(*expenseSubcategoryID)
			if err != nil {
				return err
			}
			if !exists {
				return domain.ErrSubcategoryNotFound
			}
		}
	case domain.KindIncome:
		if incomeCategoryID == nil {
			return domain.ErrCategoryNotFound
		}
		exists, err := catalog.CategoryExists(*incomeCategoryID, domain.KindIncome)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrCategoryNotFound
		}
	default:
		return domain.ErrKindImmutable
	}
	return nil
}

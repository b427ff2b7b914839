package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// RecurringService manages recurring transaction templates.
type RecurringService struct {
	templateRepo    domain.RecurringTemplateRepository
	transactionRepo domain.TransactionRepository
	catalog         domain.CatalogRepository
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(templateRepo domain.RecurringTemplateRepository, transactionRepo domain.TransactionRepository, catalog domain.CatalogRepository) *RecurringService {
	return &RecurringService{
		templateRepo:    templateRepo,
		transactionRepo: transactionRepo,
		catalog:         catalog,
	}
}

// CreateTemplateInput carries the fields for a new template.
type CreateTemplateInput struct {
	Amount               decimal.Decimal
	Kind                 domain.TransactionKind
	ExpenseCategoryID    *string
	ExpenseSubcategoryID *string
	IncomeCategoryID     *string
	Tag                  *string
	Notes                *string
	Frequency            domain.Frequency
	DayOfWeek            *int
	DayOfMonth           *int
	StartDate            time.Time
	EndDate              *time.Time
	TotalOccurrences     *int
}

// UpdateTemplateInput carries a partial template update. Nil fields are
// left unchanged; the frequency and its day field move together.
type UpdateTemplateInput struct {
	Amount               *decimal.Decimal
	ExpenseCategoryID    *string
	ExpenseSubcategoryID *string
	IncomeCategoryID     *string
	Tag                  *string
	Notes                *string
	Frequency            *domain.Frequency
	DayOfWeek            *int
	DayOfMonth           *int
	StartDate            *time.Time
	EndDate              *time.Time
	TotalOccurrences     *int
}

// Create validates and stores a new template.
func (s *RecurringService) Create(userID uuid.UUID, input CreateTemplateInput) (*domain.RecurringTemplate, error) {
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}
	if err := validateCategoryRefs(s.catalog, input.Kind, input.ExpenseCategoryID, input.ExpenseSubcategoryID, input.IncomeCategoryID, input.Tag); err != nil {
		return nil, err
	}
	if err := validateSchedule(input.Frequency, input.DayOfWeek, input.DayOfMonth); err != nil {
		return nil, err
	}
	if input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	tpl := &domain.RecurringTemplate{
		UserID:               userID,
		Amount:               input.Amount,
		Kind:                 input.Kind,
		ExpenseCategoryID:    input.ExpenseCategoryID,
		ExpenseSubcategoryID: input.ExpenseSubcategoryID,
		IncomeCategoryID:     input.IncomeCategoryID,
		Tag:                  input.Tag,
		Notes:                input.Notes,
		Frequency:            input.Frequency,
		DayOfWeek:            input.DayOfWeek,
		DayOfMonth:           input.DayOfMonth,
		StartDate:            input.StartDate,
		EndDate:              input.EndDate,
		TotalOccurrences:     input.TotalOccurrences,
	}
	if tpl.Kind == domain.KindIncome {
		tpl.ExpenseCategoryID = nil
		tpl.ExpenseSubcategoryID = nil
		tpl.Tag = nil
	} else {
		tpl.IncomeCategoryID = nil
	}
	return s.templateRepo.Create(tpl)
}

// Get returns a template owned by the user.
func (s *RecurringService) Get(userID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	return s.templateRepo.GetByID(userID, id)
}

// List returns the user's templates, optionally including paused ones.
func (s *RecurringService) List(userID uuid.UUID, includePaused bool) ([]*domain.RecurringTemplate, error) {
	return s.templateRepo.List(userID, includePaused)
}

// Update applies a partial update. The template's kind never changes.
func (s *RecurringService) Update(userID, id uuid.UUID, input UpdateTemplateInput) (*domain.RecurringTemplate, error) {
	tpl, err := s.templateRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if input.Amount != nil {
		if input.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, domain.ErrInvalidAmount
		}
		tpl.Amount = *input.Amount
	}
	if input.ExpenseCategoryID != nil {
		tpl.ExpenseCategoryID = input.ExpenseCategoryID
	}
	if input.ExpenseSubcategoryID != nil {
		tpl.ExpenseSubcategoryID = input.ExpenseSubcategoryID
	}
	if input.IncomeCategoryID != nil {
		tpl.IncomeCategoryID = input.IncomeCategoryID
	}
	if input.Tag != nil {
		tpl.Tag = input.Tag
	}
	if input.Notes != nil {
		tpl.Notes = input.Notes
	}
	if input.Frequency != nil {
		tpl.Frequency = *input.Frequency
		tpl.DayOfWeek = input.DayOfWeek
		tpl.DayOfMonth = input.DayOfMonth
	} else {
		if input.DayOfWeek != nil {
			tpl.DayOfWeek = input.DayOfWeek
		}
		if input.DayOfMonth != nil {
			tpl.DayOfMonth = input.DayOfMonth
		}
	}
	if input.StartDate != nil {
		tpl.StartDate = *input.StartDate
	}
	if input.EndDate != nil {
		tpl.EndDate = input.EndDate
	}
	if input.TotalOccurrences != nil {
		tpl.TotalOccurrences = input.TotalOccurrences
	}

	if err := validateCategoryRefs(s.catalog, tpl.Kind, tpl.ExpenseCategoryID, tpl.ExpenseSubcategoryID, tpl.IncomeCategoryID, tpl.Tag); err != nil {
		return nil, err
	}
	if err := validateSchedule(tpl.Frequency, tpl.DayOfWeek, tpl.DayOfMonth); err != nil {
		return nil, err
	}
	if tpl.EndDate != nil && tpl.EndDate.Before(tpl.StartDate) {
		return nil, domain.ErrInvalidDateRange
	}

	return s.templateRepo.Update(tpl)
}

// Delete removes a template. Past generated rows keep their history but lose
// the template back-reference; rows dated after today are removed.
func (s *RecurringService) Delete(userID, id uuid.UUID, today time.Time) error {
	if _, err := s.templateRepo.GetByID(userID, id); err != nil {
		return err
	}
	if err := s.transactionRepo.DeleteFutureForTemplate(userID, id, today); err != nil {
		return err
	}
	if err := s.transactionRepo.DetachTemplate(userID, id); err != nil {
		return err
	}
	return s.templateRepo.Delete(userID, id)
}

// Pause stops materialization for a template.
func (s *RecurringService) Pause(userID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	return s.templateRepo.SetPaused(userID, id, true)
}

// Resume re-enables materialization for a template.
func (s *RecurringService) Resume(userID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	return s.templateRepo.SetPaused(userID, id, false)
}

func validateSchedule(frequency domain.Frequency, dayOfWeek, dayOfMonth *int) error {
	switch frequency {
	case domain.FrequencyMonthly:
		if dayOfMonth == nil || dayOfWeek != nil {
			return domain.ErrInvalidDayOfMonth
		}
		if *dayOfMonth < 1 || *dayOfMonth > 31 {
			return domain.ErrInvalidDayOfMonth
		}
	case domain.FrequencyWeekly, domain.FrequencyBiweekly:
		if dayOfWeek == nil || dayOfMonth != nil {
			return domain.ErrInvalidDayOfWeek
		}
		if *dayOfWeek < 0 || *dayOfWeek > 6 {
			return domain.ErrInvalidDayOfWeek
		}
	default:
		return domain.ErrInvalidFrequency
	}
	return nil
}

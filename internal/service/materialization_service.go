package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

// MaterializationService fills date ranges with transaction rows generated
// from recurring templates. Reads call it before querying, so recurring
// money appears without any background scheduler.
type MaterializationService struct {
	templateRepo    domain.RecurringTemplateRepository
	transactionRepo domain.TransactionRepository
}

// NewMaterializationService creates a new MaterializationService
func NewMaterializationService(templateRepo domain.RecurringTemplateRepository, transactionRepo domain.TransactionRepository) *MaterializationService {
	return &MaterializationService{
		templateRepo:    templateRepo,
		transactionRepo: transactionRepo,
	}
}

// MaterializeRange ensures every occurrence of every active template inside
// [start, end] exists as a transaction row. Occurrences that already exist
// are left alone; the (template, date) uniqueness constraint makes racing
// materializations safe. Returns the number of rows created.
func (s *MaterializationService) MaterializeRange(userID uuid.UUID, start, end time.Time) (int, error) {
	templates, err := s.templateRepo.ActiveForRange(userID, start, end)
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, tpl := range templates {
		for _, occurrence := range s.CalculateOccurrences(tpl, start, end) {
			created, err := s.transactionRepo.CreateIfAbsent(transactionFromTemplate(tpl, occurrence))
			if err != nil {
				// Partial materialization is acceptable; the next read retries.
				log.Error().Err(err).
					Str("template_id", tpl.ID.String()).
					Str("occurred_at", util.FormatDate(occurrence)).
					Msg("Failed to materialize occurrence")
				return generated, err
			}
			if created {
				generated++
			}
		}
	}
	return generated, nil
}

// CalculateOccurrences returns the occurrence dates of a template inside
// [start, end], ascending.
func (s *MaterializationService) CalculateOccurrences(tpl *domain.RecurringTemplate, start, end time.Time) []time.Time {
	switch tpl.Frequency {
	case domain.FrequencyMonthly:
		return monthlyOccurrences(tpl, start, end)
	case domain.FrequencyWeekly, domain.FrequencyBiweekly:
		return weeklyOccurrences(tpl, start, end)
	default:
		return nil
	}
}

func monthlyOccurrences(tpl *domain.RecurringTemplate, start, end time.Time) []time.Time {
	if tpl.DayOfMonth == nil {
		return nil
	}

	var occurrences []time.Time
	year, month := tpl.StartDate.Year(), int(tpl.StartDate.Month())
	count := 0

	for {
		firstOfMonth := util.Date(year, time.Month(month), 1)
		if firstOfMonth.After(end) {
			break
		}
		if tpl.EndDate != nil && firstOfMonth.After(*tpl.EndDate) {
			break
		}
		if tpl.TotalOccurrences != nil && count >= *tpl.TotalOccurrences {
			break
		}

		// Day 31 in February fires on the 28th (or 29th).
		day := util.ClampDay(year, month, *tpl.DayOfMonth)
		occurrence := util.Date(year, time.Month(month), day)

		// The occurrence cap counts from the template's start date, not from
		// the queried window; a window opening mid-life must not reset it.
		if !occurrence.Before(tpl.StartDate) &&
			(tpl.EndDate == nil || !occurrence.After(*tpl.EndDate)) {
			if !occurrence.Before(start) && !occurrence.After(end) {
				occurrences = append(occurrences, occurrence)
			}
			count++
		}

		if month == 12 {
			year, month = year+1, 1
		} else {
			month++
		}
	}
	return occurrences
}

func weeklyOccurrences(tpl *domain.RecurringTemplate, start, end time.Time) []time.Time {
	if tpl.DayOfWeek == nil {
		return nil
	}
	interval := 7
	if tpl.Frequency == domain.FrequencyBiweekly {
		interval = 14
	}

	// The cadence anchors on the first date at or after start_date that
	// falls on the template's weekday.
	current := tpl.StartDate
	for util.Weekday(current) != *tpl.DayOfWeek {
		current = current.AddDate(0, 0, 1)
	}

	var occurrences []time.Time
	count := 0
	for !current.After(end) {
		if tpl.EndDate != nil && current.After(*tpl.EndDate) {
			break
		}
		if tpl.TotalOccurrences != nil && count >= *tpl.TotalOccurrences {
			break
		}
		// count tracks every occurrence since the template's start date, so
		// the cap holds across partially materialized windows.
		if !current.Before(start) {
			occurrences = append(occurrences, current)
		}
		count++
		current = current.AddDate(0, 0, interval)
	}
	return occurrences
}

func transactionFromTemplate(tpl *domain.RecurringTemplate, occurrence time.Time) *domain.Transaction {
	templateID := tpl.ID
	return &domain.Transaction{
		ID:                   uuid.New(),
		UserID:               tpl.UserID,
		OccurredAt:           occurrence,
		Amount:               tpl.Amount,
		Kind:                 tpl.Kind,
		ExpenseCategoryID:    tpl.ExpenseCategoryID,
		ExpenseSubcategoryID: tpl.ExpenseSubcategoryID,
		IncomeCategoryID:     tpl.IncomeCategoryID,
		Tag:                  tpl.Tag,
		Notes:                tpl.Notes,
		RecurringTemplateID:  &templateID,
	}
}

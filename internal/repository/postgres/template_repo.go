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

// RecurringTemplateRepository implements domain.RecurringTemplateRepository using PostgreSQL
type RecurringTemplateRepository struct {
	pool *pgxpool.Pool
}

// NewRecurringTemplateRepository creates a new RecurringTemplateRepository
func NewRecurringTemplateRepository(pool *pgxpool.Pool) *RecurringTemplateRepository {
	return &RecurringTemplateRepository{pool: pool}
}

const templateColumns = `id, user_id, amount, kind,
	expense_category_id, expense_subcategory_id, income_category_id,
	transaction_tag, notes, frequency, day_of_week, day_of_month,
	start_date, end_date, total_occurrences, is_paused, created_at, updated_at`

func scanTemplate(row pgx.Row) (*domain.RecurringTemplate, error) {
	var (
		id, userID             pgtype.UUID
		amount                 pgtype.Numeric
		kind, frequency        string
		expCat, expSub, incCat pgtype.Text
		tag, notes             pgtype.Text
		dayOfWeek, dayOfMonth  pgtype.Int4
		startDate, endDate     pgtype.Date
		totalOccurrences       pgtype.Int4
		isPaused               bool
		createdAt, updatedAt   time.Time
	)
	err := row.Scan(&id, &userID, &amount, &kind, &expCat, &expSub, &incCat,
		&tag, &notes, &frequency, &dayOfWeek, &dayOfMonth,
		&startDate, &endDate, &totalOccurrences, &isPaused, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.RecurringTemplate{
		ID:                   uuidFromPg(id),
		UserID:               uuidFromPg(userID),
		Amount:               pgNumericToDecimal(amount),
		Kind:                 domain.TransactionKind(kind),
		ExpenseCategoryID:    textPtrFromPg(expCat),
		ExpenseSubcategoryID: textPtrFromPg(expSub),
		IncomeCategoryID:     textPtrFromPg(incCat),
		Tag:                  textPtrFromPg(tag),
		Notes:                textPtrFromPg(notes),
		Frequency:            domain.Frequency(frequency),
		DayOfWeek:            intPtrFromPg(dayOfWeek),
		DayOfMonth:           intPtrFromPg(dayOfMonth),
		StartDate:            dateFromPg(startDate),
		EndDate:              datePtrFromPg(endDate),
		TotalOccurrences:     intPtrFromPg(totalOccurrences),
		IsPaused:             isPaused,
		CreatedAt:            createdAt,
		UpdatedAt:            updatedAt,
	}, nil
}

// Create inserts a new template.
func (r *RecurringTemplateRepository) Create(tpl *domain.RecurringTemplate) (*domain.RecurringTemplate, error) {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO recurring_templates (id, user_id, amount, kind,
			expense_category_id, expense_subcategory_id, income_category_id,
			transaction_tag, notes, frequency, day_of_week, day_of_month,
			start_date, end_date, total_occurrences, is_paused)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+templateColumns,
		pgUUID(tpl.ID), pgUUID(tpl.UserID), decimalToPgNumeric(tpl.Amount),
		string(tpl.Kind), pgTextPtr(tpl.ExpenseCategoryID),
		pgTextPtr(tpl.ExpenseSubcategoryID), pgTextPtr(tpl.IncomeCategoryID),
		pgTextPtr(tpl.Tag), pgTextPtr(tpl.Notes), string(tpl.Frequency),
		pgInt4Ptr(tpl.DayOfWeek), pgInt4Ptr(tpl.DayOfMonth),
		pgDate(tpl.StartDate), pgDatePtr(tpl.EndDate),
		pgInt4Ptr(tpl.TotalOccurrences), tpl.IsPaused)
	return scanTemplate(row)
}

// GetByID retrieves a template owned by the user.
func (r *RecurringTemplateRepository) GetByID(userID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+templateColumns+`
		FROM recurring_templates
		WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID))
	tpl, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

// Update rewrites the mutable fields of a template.
func (r *RecurringTemplateRepository) Update(tpl *domain.RecurringTemplate) (*domain.RecurringTemplate, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE recurring_templates
		SET amount = $3, expense_category_id = $4, expense_subcategory_id = $5,
			income_category_id = $6, transaction_tag = $7, notes = $8,
			frequency = $9, day_of_week = $10, day_of_month = $11,
			start_date = $12, end_date = $13, total_occurrences = $14,
			is_paused = $15, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+templateColumns,
		pgUUID(tpl.ID), pgUUID(tpl.UserID), decimalToPgNumeric(tpl.Amount),
		pgTextPtr(tpl.ExpenseCategoryID), pgTextPtr(tpl.ExpenseSubcategoryID),
		pgTextPtr(tpl.IncomeCategoryID), pgTextPtr(tpl.Tag), pgTextPtr(tpl.Notes),
		string(tpl.Frequency), pgInt4Ptr(tpl.DayOfWeek), pgInt4Ptr(tpl.DayOfMonth),
		pgDate(tpl.StartDate), pgDatePtr(tpl.EndDate),
		pgInt4Ptr(tpl.TotalOccurrences), tpl.IsPaused)
	updated, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a template owned by the user.
func (r *RecurringTemplateRepository) Delete(userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(), `
		DELETE FROM recurring_templates WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

// List returns the user's templates, newest first. Paused templates are
// included only when requested.
func (r *RecurringTemplateRepository) List(userID uuid.UUID, includePaused bool) ([]*domain.RecurringTemplate, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+templateColumns+`
		FROM recurring_templates
		WHERE user_id = $1 AND (is_paused = false OR $2)
		ORDER BY created_at DESC`,
		pgUUID(userID), includePaused)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// ActiveForRange returns non-paused templates whose effective interval
// overlaps [start, end].
func (r *RecurringTemplateRepository) ActiveForRange(userID uuid.UUID, start, end time.Time) ([]*domain.RecurringTemplate, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+templateColumns+`
		FROM recurring_templates
		WHERE user_id = $1 AND is_paused = false
			AND start_date <= $3
			AND (end_date IS NULL OR end_date >= $2)`,
		pgUUID(userID), pgDate(start), pgDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTemplates(rows)
}

// SetPaused flips the pause flag.
func (r *RecurringTemplateRepository) SetPaused(userID, id uuid.UUID, paused bool) (*domain.RecurringTemplate, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE recurring_templates
		SET is_paused = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+templateColumns,
		pgUUID(id), pgUUID(userID), paused)
	tpl, err := scanTemplate(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTemplateNotFound
		}
		return nil, err
	}
	return tpl, nil
}

func collectTemplates(rows pgx.Rows) ([]*domain.RecurringTemplate, error) {
	var result []*domain.RecurringTemplate
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}

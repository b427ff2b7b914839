package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

const transactionColumns = `id, user_id, occurred_at, amount, kind,
	expense_category_id, expense_subcategory_id, income_category_id,
	transaction_tag, notes, recurring_template_id, created_at`

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		id, userID, templateID pgtype.UUID
		occurredAt             pgtype.Date
		amount                 pgtype.Numeric
		kind                   string
		expCat, expSub, incCat pgtype.Text
		tag, notes             pgtype.Text
		createdAt              time.Time
	)
	err := row.Scan(&id, &userID, &occurredAt, &amount, &kind,
		&expCat, &expSub, &incCat, &tag, &notes, &templateID, &createdAt)
	if err != nil {
		return nil, err
	}
	return &domain.Transaction{
		ID:                   uuidFromPg(id),
		UserID:               uuidFromPg(userID),
		OccurredAt:           dateFromPg(occurredAt),
		Amount:               pgNumericToDecimal(amount),
		Kind:                 domain.TransactionKind(kind),
		ExpenseCategoryID:    textPtrFromPg(expCat),
		ExpenseSubcategoryID: textPtrFromPg(expSub),
		IncomeCategoryID:     textPtrFromPg(incCat),
		Tag:                  textPtrFromPg(tag),
		Notes:                textPtrFromPg(notes),
		RecurringTemplateID:  uuidPtrFromPg(templateID),
		CreatedAt:            createdAt,
	}, nil
}

// Create inserts a new transaction and returns the stored row.
func (r *TransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO transactions (id, user_id, occurred_at, amount, kind,
			expense_category_id, expense_subcategory_id, income_category_id,
			transaction_tag, notes, recurring_template_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+transactionColumns,
		pgUUID(tx.ID), pgUUID(tx.UserID), pgDate(tx.OccurredAt),
		decimalToPgNumeric(tx.Amount), string(tx.Kind),
		pgTextPtr(tx.ExpenseCategoryID), pgTextPtr(tx.ExpenseSubcategoryID),
		pgTextPtr(tx.IncomeCategoryID), pgTextPtr(tx.Tag), pgTextPtr(tx.Notes),
		pgUUIDPtr(tx.RecurringTemplateID))
	return scanTransaction(row)
}

// CreateIfAbsent inserts a materialized occurrence. A concurrent insert of
// the same (template, date) pair is not an error; the row count reports
// whether this call created the row.
func (r *TransactionRepository) CreateIfAbsent(tx *domain.Transaction) (bool, error) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	tag, err := r.pool.Exec(context.Background(), `
		INSERT INTO transactions (id, user_id, occurred_at, amount, kind,
			expense_category_id, expense_subcategory_id, income_category_id,
			transaction_tag, notes, recurring_template_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (recurring_template_id, occurred_at)
			WHERE recurring_template_id IS NOT NULL
			DO NOTHING`,
		pgUUID(tx.ID), pgUUID(tx.UserID), pgDate(tx.OccurredAt),
		decimalToPgNumeric(tx.Amount), string(tx.Kind),
		pgTextPtr(tx.ExpenseCategoryID), pgTextPtr(tx.ExpenseSubcategoryID),
		pgTextPtr(tx.IncomeCategoryID), pgTextPtr(tx.Tag), pgTextPtr(tx.Notes),
		pgUUIDPtr(tx.RecurringTemplateID))
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// GetByID retrieves a transaction owned by the user. Rows belonging to other
// users are indistinguishable from missing rows.
func (r *TransactionRepository) GetByID(userID, id uuid.UUID) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID))
	tx, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return tx, nil
}

// Update rewrites the mutable fields of a transaction.
func (r *TransactionRepository) Update(tx *domain.Transaction) (*domain.Transaction, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE transactions
		SET occurred_at = $3, amount = $4,
			expense_category_id = $5, expense_subcategory_id = $6,
			income_category_id = $7, transaction_tag = $8, notes = $9
		WHERE id = $1 AND user_id = $2
		RETURNING `+transactionColumns,
		pgUUID(tx.ID), pgUUID(tx.UserID), pgDate(tx.OccurredAt),
		decimalToPgNumeric(tx.Amount),
		pgTextPtr(tx.ExpenseCategoryID), pgTextPtr(tx.ExpenseSubcategoryID),
		pgTextPtr(tx.IncomeCategoryID), pgTextPtr(tx.Tag), pgTextPtr(tx.Notes))
	updated, err := scanTransaction(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a transaction owned by the user.
func (r *TransactionRepository) Delete(userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(context.Background(), `
		DELETE FROM transactions WHERE id = $1 AND user_id = $2`,
		pgUUID(id), pgUUID(userID))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

// ListByDateRange returns transactions in [start, end] ordered by occurrence
// date descending, ties broken by creation instant descending.
func (r *TransactionRepository) ListByDateRange(userID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC, created_at DESC`,
		pgUUID(userID), pgDate(start), pgDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

// TodaySummary aggregates the given calendar day.
func (r *TransactionRepository) TodaySummary(userID uuid.UUID, day time.Time) (*domain.TodaySummary, error) {
	var (
		expenseTotal, incomeTotal pgtype.Numeric
		expenseCount, incomeCount int
	)
	err := r.pool.QueryRow(context.Background(), `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE kind = 'expense'), 0),
			COUNT(*) FILTER (WHERE kind = 'expense'),
			COALESCE(SUM(amount) FILTER (WHERE kind = 'income'), 0),
			COUNT(*) FILTER (WHERE kind = 'income')
		FROM transactions
		WHERE user_id = $1 AND occurred_at = $2`,
		pgUUID(userID), pgDate(day)).
		Scan(&expenseTotal, &expenseCount, &incomeTotal, &incomeCount)
	if err != nil {
		return nil, err
	}
	return &domain.TodaySummary{
		ExpenseTotal:   pgNumericToDecimal(expenseTotal),
		ExpenseCount:   expenseCount,
		IncomeTotal:    pgNumericToDecimal(incomeTotal),
		IncomeCount:    incomeCount,
		HasLoggedToday: expenseCount+incomeCount > 0,
	}, nil
}

// AggregateByCategory rolls up expenses per (category, subcategory).
func (r *TransactionRepository) AggregateByCategory(userID uuid.UUID, start, end time.Time) ([]domain.CategoryAggregate, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT expense_category_id, expense_subcategory_id, SUM(amount), COUNT(*)
		FROM transactions
		WHERE user_id = $1 AND kind = 'expense'
			AND occurred_at >= $2 AND occurred_at <= $3
		GROUP BY expense_category_id, expense_subcategory_id`,
		pgUUID(userID), pgDate(start), pgDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.CategoryAggregate
	for rows.Next() {
		var (
			categoryID    string
			subcategoryID pgtype.Text
			total         pgtype.Numeric
			count         int
		)
		if err := rows.Scan(&categoryID, &subcategoryID, &total, &count); err != nil {
			return nil, err
		}
		result = append(result, domain.CategoryAggregate{
			CategoryID:    categoryID,
			SubcategoryID: textPtrFromPg(subcategoryID),
			Total:         pgNumericToDecimal(total),
			Count:         count,
		})
	}
	return result, rows.Err()
}

// AggregateByWeek rolls up expenses per week band (days 1-7, 8-14, ...).
func (r *TransactionRepository) AggregateByWeek(userID uuid.UUID, start, end time.Time) ([]domain.WeekAggregate, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT ((EXTRACT(DAY FROM occurred_at)::int - 1) / 7) + 1 AS week, SUM(amount)
		FROM transactions
		WHERE user_id = $1 AND kind = 'expense'
			AND occurred_at >= $2 AND occurred_at <= $3
		GROUP BY week
		ORDER BY week`,
		pgUUID(userID), pgDate(start), pgDate(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.WeekAggregate
	for rows.Next() {
		var (
			week  int
			total pgtype.Numeric
		)
		if err := rows.Scan(&week, &total); err != nil {
			return nil, err
		}
		result = append(result, domain.WeekAggregate{Week: week, Total: pgNumericToDecimal(total)})
	}
	return result, rows.Err()
}

// CountLoggedDays counts distinct days with at least one expense row.
func (r *TransactionRepository) CountLoggedDays(userID uuid.UUID, start, end time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(context.Background(), `
		SELECT COUNT(DISTINCT occurred_at)
		FROM transactions
		WHERE user_id = $1 AND kind = 'expense'
			AND occurred_at >= $2 AND occurred_at <= $3`,
		pgUUID(userID), pgDate(start), pgDate(end)).Scan(&count)
	return count, err
}

// Recent returns the most recent expense rows in the range.
func (r *TransactionRepository) Recent(userID uuid.UUID, start, end time.Time, limit int) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE user_id = $1 AND kind = 'expense'
			AND occurred_at >= $2 AND occurred_at <= $3
		ORDER BY occurred_at DESC, created_at DESC
		LIMIT $4`,
		pgUUID(userID), pgDate(start), pgDate(end), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTransactions(rows)
}

// TotalByCategory sums expenses for one category over the range.
func (r *TransactionRepository) TotalByCategory(userID uuid.UUID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND kind = 'expense' AND expense_category_id = $2
			AND occurred_at >= $3 AND occurred_at <= $4`,
		pgUUID(userID), categoryID, pgDate(start), pgDate(end)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// TotalIncome sums income transactions over the range.
func (r *TransactionRepository) TotalIncome(userID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	var total pgtype.Numeric
	err := r.pool.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = $1 AND kind = 'income'
			AND occurred_at >= $2 AND occurred_at <= $3`,
		pgUUID(userID), pgDate(start), pgDate(end)).Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(total), nil
}

// DistinctMonths returns every (year, month) with at least one transaction,
// most recent first.
func (r *TransactionRepository) DistinctMonths(userID uuid.UUID) ([]domain.YearMonth, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT DISTINCT
			EXTRACT(YEAR FROM occurred_at)::int AS year,
			EXTRACT(MONTH FROM occurred_at)::int AS month
		FROM transactions
		WHERE user_id = $1
		ORDER BY year DESC, month DESC`,
		pgUUID(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.YearMonth
	for rows.Next() {
		var ym domain.YearMonth
		if err := rows.Scan(&ym.Year, &ym.Month); err != nil {
			return nil, err
		}
		result = append(result, ym)
	}
	return result, rows.Err()
}

// DetachTemplate clears the template back-reference on generated rows.
func (r *TransactionRepository) DetachTemplate(userID, templateID uuid.UUID) error {
	_, err := r.pool.Exec(context.Background(), `
		UPDATE transactions
		SET recurring_template_id = NULL
		WHERE user_id = $1 AND recurring_template_id = $2`,
		pgUUID(userID), pgUUID(templateID))
	return err
}

// DeleteFutureForTemplate removes generated rows after the given date.
func (r *TransactionRepository) DeleteFutureForTemplate(userID, templateID uuid.UUID, after time.Time) error {
	_, err := r.pool.Exec(context.Background(), `
		DELETE FROM transactions
		WHERE user_id = $1 AND recurring_template_id = $2 AND occurred_at > $3`,
		pgUUID(userID), pgUUID(templateID), pgDate(after))
	return err
}

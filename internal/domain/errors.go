package domain

import "errors"

// Domain errors
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTemplateNotFound    = errors.New("recurring template not found")
	ErrBudgetPlanNotFound  = errors.New("budget plan not found")
	ErrBudgetPlanExists    = errors.New("budget plan already exists")
	ErrCategoryNotFound    = errors.New("category not found")
	ErrSubcategoryNotFound = errors.New("subcategory not found")

	ErrInvalidAmount      = errors.New("amount must be greater than zero")
	ErrMissingTag         = errors.New("transaction tag is required for expenses")
	ErrKindImmutable      = errors.New("transaction kind cannot be changed")
	ErrInvalidFrequency   = errors.New("frequency must be weekly, biweekly or monthly")
	ErrInvalidDayOfWeek   = errors.New("day of week must be between 0 and 6")
	ErrInvalidDayOfMonth  = errors.New("day of month must be between 1 and 31")
	ErrInvalidDateRange   = errors.New("end date must not precede start date")
	ErrNegativeGoal       = errors.New("goals must be zero or positive")
	ErrInvalidMonthRange  = errors.New("year must be 2000-2100 and month 1-12")
	ErrInvalidTimezone    = errors.New("unknown IANA timezone")
	ErrInvalidPagination  = errors.New("limit must be 1-100 and offset non-negative")
)

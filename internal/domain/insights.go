package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthSnapshot is the derived aggregate view of one calendar month.
type MonthSnapshot struct {
	Key            string              `json:"key"`   // e.g. "jun-2024"
	Label          string              `json:"label"` // e.g. "June 2024"
	CurrentDate    time.Time           `json:"currentDate"`
	TotalSpent     decimal.Decimal     `json:"totalSpent"`
	TotalDays      int                 `json:"totalDays"`
	LoggedDays     int                 `json:"loggedDays"`
	Budget         decimal.Decimal     `json:"budget"`
	LastMonthDelta float64             `json:"lastMonthDelta"`
	Categories     []CategoryBreakdown `json:"categories"`
	Weekly         []WeeklySpend       `json:"weekly"`
	Savings        SavingsBreakdown    `json:"savings"`
	Transactions   []RecentTransaction `json:"transactions"`
}

// CategoryBreakdown is a category slice of the month total. Percent values
// are integers summing to exactly 100 across the snapshot, or all zero when
// nothing was spent.
type CategoryBreakdown struct {
	CategoryID    string                 `json:"categoryId"`
	Color         string                 `json:"color"`
	Total         decimal.Decimal        `json:"total"`
	Percent       int                    `json:"percent"`
	Count         int                    `json:"count"`
	Subcategories []SubcategoryBreakdown `json:"subcategories,omitempty"`
}

// SubcategoryBreakdown is a slice of its parent category total.
type SubcategoryBreakdown struct {
	SubcategoryID string          `json:"subcategoryId"`
	Color         string          `json:"color"`
	Total         decimal.Decimal `json:"total"`
	Percent       int             `json:"percent"`
	Count         int             `json:"count"`
}

// WeeklySpend is one week band of the month. Weeks with no spending appear
// with a zero total.
type WeeklySpend struct {
	Week  int             `json:"week"`
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// SavingsBreakdown reports the savings and investments categories with
// month-over-month deltas. A delta is nil when the previous month total
// was zero.
type SavingsBreakdown struct {
	Saved         decimal.Decimal `json:"saved"`
	Invested      decimal.Decimal `json:"invested"`
	SavedDelta    *float64        `json:"savedDelta,omitempty"`
	InvestedDelta *float64        `json:"investedDelta,omitempty"`
}

// RecentTransaction is a trimmed expense row for the snapshot.
type RecentTransaction struct {
	Amount        decimal.Decimal `json:"amount"`
	CategoryID    string          `json:"categoryId"`
	SubcategoryID *string         `json:"subcategoryId,omitempty"`
	Date          time.Time       `json:"date"`
}

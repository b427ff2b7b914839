package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

// defaultCategoryColor is used when a category id is missing from the
// catalog color map.
const defaultCategoryColor = "#cccccc"

// FinancialGoalAwarder is the hook for per-month goal bonuses.
type FinancialGoalAwarder interface {
	AwardFinancialGoalXP(userID uuid.UUID, month, year int) ([]*domain.XPEvent, error)
}

// InsightsService folds transaction aggregates into month snapshots.
type InsightsService struct {
	transactionRepo domain.TransactionRepository
	planRepo        domain.BudgetPlanRepository
	catalog         domain.CatalogRepository
	materializer    *MaterializationService
	goalAwarder     FinancialGoalAwarder
}

// NewInsightsService creates a new InsightsService
func NewInsightsService(transactionRepo domain.TransactionRepository, planRepo domain.BudgetPlanRepository, catalog domain.CatalogRepository, materializer *MaterializationService, goalAwarder FinancialGoalAwarder) *InsightsService {
	return &InsightsService{
		transactionRepo: transactionRepo,
		planRepo:        planRepo,
		catalog:         catalog,
		materializer:    materializer,
		goalAwarder:     goalAwarder,
	}
}

// MonthOption identifies a month the user has data for.
type MonthOption struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

// MonthSnapshot builds the aggregate view of one month. The window is
// materialized first so recurring money is included.
func (s *InsightsService) MonthSnapshot(userID uuid.UUID, year, month int) (*domain.MonthSnapshot, error) {
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return nil, domain.ErrInvalidMonthRange
	}
	if _, err := s.planRepo.GetByUserID(userID); err != nil {
		return nil, err
	}

	first, last := util.MonthBounds(year, month)
	if _, err := s.materializer.MaterializeRange(userID, first, last); err != nil {
		return nil, err
	}

	prevYear, prevMonth := util.PreviousMonth(year, month)
	prevFirst, prevLast := util.MonthBounds(prevYear, prevMonth)

	aggregates, err := s.transactionRepo.AggregateByCategory(userID, first, last)
	if err != nil {
		return nil, err
	}
	totalSpent := decimal.Zero
	for _, a := range aggregates {
		totalSpent = totalSpent.Add(a.Total)
	}

	prevAggregates, err := s.transactionRepo.AggregateByCategory(userID, prevFirst, prevLast)
	if err != nil {
		return nil, err
	}
	prevSpent := decimal.Zero
	for _, a := range prevAggregates {
		prevSpent = prevSpent.Add(a.Total)
	}

	categories, err := s.buildCategories(aggregates, totalSpent)
	if err != nil {
		return nil, err
	}

	weekly, err := s.buildWeekly(userID, year, month, first, last)
	if err != nil {
		return nil, err
	}

	loggedDays, err := s.transactionRepo.CountLoggedDays(userID, first, last)
	if err != nil {
		return nil, err
	}

	budget, err := s.transactionRepo.TotalIncome(userID, first, last)
	if err != nil {
		return nil, err
	}

	savings, err := s.buildSavings(userID, first, last, prevFirst, prevLast)
	if err != nil {
		return nil, err
	}

	recent, err := s.transactionRepo.Recent(userID, first, last, 5)
	if err != nil {
		return nil, err
	}
	transactions := make([]domain.RecentTransaction, 0, len(recent))
	for _, tx := range recent {
		item := domain.RecentTransaction{
			Amount:        tx.Amount,
			SubcategoryID: tx.ExpenseSubcategoryID,
			Date:          tx.OccurredAt,
		}
		if tx.ExpenseCategoryID != nil {
			item.CategoryID = *tx.ExpenseCategoryID
		}
		transactions = append(transactions, item)
	}

	// Goal bonuses are not active yet; the hook is kept warm so the award
	// path has a single call site once product settles the rules.
	if _, err := s.goalAwarder.AwardFinancialGoalXP(userID, month, year); err != nil {
		log.Warn().Err(err).Str("user_id", userID.String()).Msg("Financial goal XP hook failed")
	}

	monthName := time.Month(month).String()
	return &domain.MonthSnapshot{
		Key:            fmt.Sprintf("%s-%d", strings.ToLower(monthName[:3]), year),
		Label:          fmt.Sprintf("%s %d", monthName, year),
		CurrentDate:    time.Date(year, time.Month(month), 15, 12, 0, 0, 0, time.UTC),
		TotalSpent:     totalSpent,
		TotalDays:      util.DaysInMonth(year, month),
		LoggedDays:     loggedDays,
		Budget:         budget,
		LastMonthDelta: deltaRatio(totalSpent, prevSpent),
		Categories:     categories,
		Weekly:         weekly,
		Savings:        savings,
		Transactions:   transactions,
	}, nil
}

// AvailableMonths returns the months with any transaction, newest first.
func (s *InsightsService) AvailableMonths(userID uuid.UUID) ([]MonthOption, error) {
	months, err := s.transactionRepo.DistinctMonths(userID)
	if err != nil {
		return nil, err
	}
	result := make([]MonthOption, 0, len(months))
	for _, ym := range months {
		name := time.Month(ym.Month).String()
		result = append(result, MonthOption{
			Year:  ym.Year,
			Month: ym.Month,
			Key:   fmt.Sprintf("%s-%d", strings.ToLower(name[:3]), ym.Year),
			Label: fmt.Sprintf("%s %d", name, ym.Year),
		})
	}
	return result, nil
}

func (s *InsightsService) buildCategories(aggregates []domain.CategoryAggregate, totalSpent decimal.Decimal) ([]domain.CategoryBreakdown, error) {
	categoryColors, err := s.catalog.CategoryColors()
	if err != nil {
		return nil, err
	}
	subcategoryColors, err := s.catalog.SubcategoryColors()
	if err != nil {
		return nil, err
	}
	catalogOrder, err := s.categorySortOrder()
	if err != nil {
		return nil, err
	}

	// Fold (category, subcategory) aggregates into parent totals with
	// nested subcategory slices, keeping first-seen order stable before
	// the percent sort.
	var order []string
	parents := make(map[string]*domain.CategoryBreakdown)
	for _, a := range aggregates {
		parent, ok := parents[a.CategoryID]
		if !ok {
			color := categoryColors[a.CategoryID]
			if color == "" {
				color = defaultCategoryColor
			}
			parent = &domain.CategoryBreakdown{CategoryID: a.CategoryID, Color: color, Total: decimal.Zero}
			parents[a.CategoryID] = parent
			order = append(order, a.CategoryID)
		}
		parent.Total = parent.Total.Add(a.Total)
		parent.Count += a.Count
		if a.SubcategoryID != nil {
			color := subcategoryColors[*a.SubcategoryID]
			if color == "" {
				color = defaultCategoryColor
			}
			parent.Subcategories = append(parent.Subcategories, domain.SubcategoryBreakdown{
				SubcategoryID: *a.SubcategoryID,
				Color:         color,
				Total:         a.Total,
				Count:         a.Count,
			})
		}
	}

	categories := make([]domain.CategoryBreakdown, 0, len(order))
	totals := make([]decimal.Decimal, 0, len(order))
	for _, id := range order {
		categories = append(categories, *parents[id])
		totals = append(totals, parents[id].Total)
	}

	percents := roundPercentages(totals, totalSpent)
	for i := range categories {
		categories[i].Percent = percents[i]

		subTotals := make([]decimal.Decimal, len(categories[i].Subcategories))
		for j, sub := range categories[i].Subcategories {
			subTotals[j] = sub.Total
		}
		subPercents := roundPercentages(subTotals, categories[i].Total)
		for j := range categories[i].Subcategories {
			categories[i].Subcategories[j].Percent = subPercents[j]
		}
	}

	sort.SliceStable(categories, func(i, j int) bool {
		if categories[i].Percent != categories[j].Percent {
			return categories[i].Percent > categories[j].Percent
		}
		return catalogOrder[categories[i].CategoryID] < catalogOrder[categories[j].CategoryID]
	})
	return categories, nil
}

func (s *InsightsService) categorySortOrder() (map[string]int, error) {
	list, err := s.catalog.ListExpenseCategories()
	if err != nil {
		return nil, err
	}
	orderMap := make(map[string]int, len(list))
	for _, c := range list {
		orderMap[c.ID] = c.SortOrder
	}
	return orderMap, nil
}

func (s *InsightsService) buildWeekly(userID uuid.UUID, year, month int, first, last time.Time) ([]domain.WeeklySpend, error) {
	aggregates, err := s.transactionRepo.AggregateByWeek(userID, first, last)
	if err != nil {
		return nil, err
	}
	byWeek := make(map[int]decimal.Decimal, len(aggregates))
	for _, a := range aggregates {
		byWeek[a.Week] = a.Total
	}

	maxWeek := util.MaxWeekOfMonth(year, month)
	weekly := make([]domain.WeeklySpend, 0, maxWeek)
	for week := 1; week <= maxWeek; week++ {
		total, ok := byWeek[week]
		if !ok {
			total = decimal.Zero
		}
		weekly = append(weekly, domain.WeeklySpend{
			Week:  week,
			Label: fmt.Sprintf("Week %d", week),
			Total: total,
		})
	}
	return weekly, nil
}

func (s *InsightsService) buildSavings(userID uuid.UUID, first, last, prevFirst, prevLast time.Time) (domain.SavingsBreakdown, error) {
	var breakdown domain.SavingsBreakdown

	saved, err := s.transactionRepo.TotalByCategory(userID, "savings", first, last)
	if err != nil {
		return breakdown, err
	}
	invested, err := s.transactionRepo.TotalByCategory(userID, "investments", first, last)
	if err != nil {
		return breakdown, err
	}
	prevSaved, err := s.transactionRepo.TotalByCategory(userID, "savings", prevFirst, prevLast)
	if err != nil {
		return breakdown, err
	}
	prevInvested, err := s.transactionRepo.TotalByCategory(userID, "investments", prevFirst, prevLast)
	if err != nil {
		return breakdown, err
	}

	breakdown.Saved = saved
	breakdown.Invested = invested
	// Deltas are omitted when there is no previous baseline to compare to.
	if prevSaved.IsPositive() {
		delta := deltaRatio(saved, prevSaved)
		breakdown.SavedDelta = &delta
	}
	if prevInvested.IsPositive() {
		delta := deltaRatio(invested, prevInvested)
		breakdown.InvestedDelta = &delta
	}
	return breakdown, nil
}

// deltaRatio computes (current-previous)/previous. A zero previous maps to
// 1.0 when anything was spent and 0.0 otherwise.
func deltaRatio(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsPositive() {
			return 1.0
		}
		return 0.0
	}
	ratio, _ := current.Sub(previous).Div(previous).Float64()
	return ratio
}

// roundPercentages converts totals into integer percentages that sum to
// exactly 100 via largest-remainder rounding: floor everything, then hand
// the leftover points to the entries with the biggest fractional part,
// lower index first on ties. A zero overall total yields all zeros.
func roundPercentages(totals []decimal.Decimal, total decimal.Decimal) []int {
	percents := make([]int, len(totals))
	if len(totals) == 0 || total.IsZero() {
		return percents
	}

	type entry struct {
		index int
		frac  decimal.Decimal
	}
	fracs := make([]entry, len(totals))
	sum := 0
	hundred := decimal.NewFromInt(100)
	for i, t := range totals {
		raw := t.Mul(hundred).Div(total)
		floor := raw.Floor()
		percents[i] = int(floor.IntPart())
		fracs[i] = entry{index: i, frac: raw.Sub(floor)}
		sum += percents[i]
	}

	residual := 100 - sum
	if residual > 0 {
		sort.SliceStable(fracs, func(i, j int) bool {
			return fracs[i].frac.GreaterThan(fracs[j].frac)
		})
		for i := 0; i < residual && i < len(fracs); i++ {
			percents[fracs[i].index]++
		}
	} else if residual < 0 {
		// Division rounding can overshoot; take the excess back from the
		// smallest fractional parts.
		sort.SliceStable(fracs, func(i, j int) bool {
			return fracs[i].frac.LessThan(fracs[j].frac)
		})
		for i := 0; i < -residual && i < len(fracs); i++ {
			if percents[fracs[i].index] > 0 {
				percents[fracs[i].index]--
			}
		}
	}
	return percents
}

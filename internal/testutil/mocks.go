package testutil

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// MockTransactionRepository is a mock implementation of domain.TransactionRepository
type MockTransactionRepository struct {
	Transactions []*domain.Transaction
	seq          int
}

// NewMockTransactionRepository creates a new MockTransactionRepository
func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{}
}

// AddTransaction adds a transaction to the mock repository (helper for tests)
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		m.seq++
		tx.CreatedAt = time.Unix(int64(m.seq), 0).UTC()
	}
	m.Transactions = append(m.Transactions, tx)
}

// Create creates a new transaction
func (m *MockTransactionRepository) Create(tx *domain.Transaction) (*domain.Transaction, error) {
	m.AddTransaction(tx)
	return tx, nil
}

// CreateIfAbsent inserts a materialized occurrence unless one already exists
// for the same (template, date) pair
func (m *MockTransactionRepository) CreateIfAbsent(tx *domain.Transaction) (bool, error) {
	if tx.RecurringTemplateID != nil {
		for _, existing := range m.Transactions {
			if existing.RecurringTemplateID != nil &&
				*existing.RecurringTemplateID == *tx.RecurringTemplateID &&
				existing.OccurredAt.Equal(tx.OccurredAt) {
				return false, nil
			}
		}
	}
	m.AddTransaction(tx)
	return true, nil
}

// GetByID retrieves a transaction by ID
func (m *MockTransactionRepository) GetByID(userID, id uuid.UUID) (*domain.Transaction, error) {
	for _, tx := range m.Transactions {
		if tx.ID == id && tx.UserID == userID {
			return tx, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

// Update updates an existing transaction
func (m *MockTransactionRepository) Update(tx *domain.Transaction) (*domain.Transaction, error) {
	for i, existing := range m.Transactions {
		if existing.ID == tx.ID && existing.UserID == tx.UserID {
			m.Transactions[i] = tx
			return tx, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

// Delete removes a transaction
func (m *MockTransactionRepository) Delete(userID, id uuid.UUID) error {
	for i, tx := range m.Transactions {
		if tx.ID == id && tx.UserID == userID {
			m.Transactions = append(m.Transactions[:i], m.Transactions[i+1:]...)
			return nil
		}
	}
	return domain.ErrTransactionNotFound
}

func (m *MockTransactionRepository) inRange(userID uuid.UUID, start, end time.Time) []*domain.Transaction {
	var result []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.UserID == userID && !tx.OccurredAt.Before(start) && !tx.OccurredAt.After(end) {
			result = append(result, tx)
		}
	}
	return result
}

// ListByDateRange returns transactions in the range, newest first
func (m *MockTransactionRepository) ListByDateRange(userID uuid.UUID, start, end time.Time) ([]*domain.Transaction, error) {
	result := m.inRange(userID, start, end)
	sort.SliceStable(result, func(i, j int) bool {
		if !result[i].OccurredAt.Equal(result[j].OccurredAt) {
			return result[i].OccurredAt.After(result[j].OccurredAt)
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// TodaySummary aggregates one calendar day
func (m *MockTransactionRepository) TodaySummary(userID uuid.UUID, day time.Time) (*domain.TodaySummary, error) {
	summary := &domain.TodaySummary{
		ExpenseTotal: decimal.Zero,
		IncomeTotal:  decimal.Zero,
	}
	for _, tx := range m.inRange(userID, day, day) {
		if tx.Kind == domain.KindExpense {
			summary.ExpenseTotal = summary.ExpenseTotal.Add(tx.Amount)
			summary.ExpenseCount++
		} else {
			summary.IncomeTotal = summary.IncomeTotal.Add(tx.Amount)
			summary.IncomeCount++
		}
	}
	summary.HasLoggedToday = summary.ExpenseCount+summary.IncomeCount > 0
	return summary, nil
}

// AggregateByCategory rolls up expenses per (category, subcategory)
func (m *MockTransactionRepository) AggregateByCategory(userID uuid.UUID, start, end time.Time) ([]domain.CategoryAggregate, error) {
	type key struct {
		category    string
		subcategory string
	}
	index := make(map[key]int)
	var result []domain.CategoryAggregate
	for _, tx := range m.inRange(userID, start, end) {
		if tx.Kind != domain.KindExpense || tx.ExpenseCategoryID == nil {
			continue
		}
		k := key{category: *tx.ExpenseCategoryID}
		if tx.ExpenseSubcategoryID != nil {
			k.subcategory = *tx.ExpenseSubcategoryID
		}
		i, ok := index[k]
		if !ok {
			i = len(result)
			index[k] = i
			result = append(result, domain.CategoryAggregate{
				CategoryID:    *tx.ExpenseCategoryID,
				SubcategoryID: tx.ExpenseSubcategoryID,
				Total:         decimal.Zero,
			})
		}
		result[i].Total = result[i].Total.Add(tx.Amount)
		result[i].Count++
	}
	return result, nil
}

// AggregateByWeek rolls up expenses per week band
func (m *MockTransactionRepository) AggregateByWeek(userID uuid.UUID, start, end time.Time) ([]domain.WeekAggregate, error) {
	totals := make(map[int]decimal.Decimal)
	for _, tx := range m.inRange(userID, start, end) {
		if tx.Kind != domain.KindExpense {
			continue
		}
		week := ((tx.OccurredAt.Day() - 1) / 7) + 1
		totals[week] = totals[week].Add(tx.Amount)
	}
	weeks := make([]int, 0, len(totals))
	for w := range totals {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	result := make([]domain.WeekAggregate, 0, len(weeks))
	for _, w := range weeks {
		result = append(result, domain.WeekAggregate{Week: w, Total: totals[w]})
	}
	return result, nil
}

// CountLoggedDays counts distinct days with at least one expense
func (m *MockTransactionRepository) CountLoggedDays(userID uuid.UUID, start, end time.Time) (int, error) {
	days := make(map[string]bool)
	for _, tx := range m.inRange(userID, start, end) {
		if tx.Kind == domain.KindExpense {
			days[tx.OccurredAt.Format("2006-01-02")] = true
		}
	}
	return len(days), nil
}

// Recent returns the most recent expense rows in the range
func (m *MockTransactionRepository) Recent(userID uuid.UUID, start, end time.Time, limit int) ([]*domain.Transaction, error) {
	all, _ := m.ListByDateRange(userID, start, end)
	var result []*domain.Transaction
	for _, tx := range all {
		if tx.Kind != domain.KindExpense {
			continue
		}
		result = append(result, tx)
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

// TotalByCategory sums expenses for one category over the range
func (m *MockTransactionRepository) TotalByCategory(userID uuid.UUID, categoryID string, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range m.inRange(userID, start, end) {
		if tx.Kind == domain.KindExpense && tx.ExpenseCategoryID != nil && *tx.ExpenseCategoryID == categoryID {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// TotalIncome sums income transactions over the range
func (m *MockTransactionRepository) TotalIncome(userID uuid.UUID, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, tx := range m.inRange(userID, start, end) {
		if tx.Kind == domain.KindIncome {
			total = total.Add(tx.Amount)
		}
	}
	return total, nil
}

// DistinctMonths returns every (year, month) with a transaction, newest first
func (m *MockTransactionRepository) DistinctMonths(userID uuid.UUID) ([]domain.YearMonth, error) {
	seen := make(map[domain.YearMonth]bool)
	for _, tx := range m.Transactions {
		if tx.UserID == userID {
			seen[domain.YearMonth{Year: tx.OccurredAt.Year(), Month: int(tx.OccurredAt.Month())}] = true
		}
	}
	result := make([]domain.YearMonth, 0, len(seen))
	for ym := range seen {
		result = append(result, ym)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Month > result[j].Month
	})
	return result, nil
}

// DetachTemplate clears the template back-reference on generated rows
func (m *MockTransactionRepository) DetachTemplate(userID, templateID uuid.UUID) error {
	for _, tx := range m.Transactions {
		if tx.UserID == userID && tx.RecurringTemplateID != nil && *tx.RecurringTemplateID == templateID {
			tx.RecurringTemplateID = nil
		}
	}
	return nil
}

// DeleteFutureForTemplate removes generated rows after the given date
func (m *MockTransactionRepository) DeleteFutureForTemplate(userID, templateID uuid.UUID, after time.Time) error {
	kept := m.Transactions[:0]
	for _, tx := range m.Transactions {
		if tx.UserID == userID && tx.RecurringTemplateID != nil &&
			*tx.RecurringTemplateID == templateID && tx.OccurredAt.After(after) {
			continue
		}
		kept = append(kept, tx)
	}
	m.Transactions = kept
	return nil
}

// MockRecurringTemplateRepository is a mock implementation of domain.RecurringTemplateRepository
type MockRecurringTemplateRepository struct {
	Templates []*domain.RecurringTemplate
}

// NewMockRecurringTemplateRepository creates a new MockRecurringTemplateRepository
func NewMockRecurringTemplateRepository() *MockRecurringTemplateRepository {
	return &MockRecurringTemplateRepository{}
}

// AddTemplate adds a template to the mock repository (helper for tests)
func (m *MockRecurringTemplateRepository) AddTemplate(tpl *domain.RecurringTemplate) {
	if tpl.ID == uuid.Nil {
		tpl.ID = uuid.New()
	}
	m.Templates = append(m.Templates, tpl)
}

// Create creates a new template
func (m *MockRecurringTemplateRepository) Create(tpl *domain.RecurringTemplate) (*domain.RecurringTemplate, error) {
	m.AddTemplate(tpl)
	return tpl, nil
}

// GetByID retrieves a template by ID
func (m *MockRecurringTemplateRepository) GetByID(userID, id uuid.UUID) (*domain.RecurringTemplate, error) {
	for _, tpl := range m.Templates {
		if tpl.ID == id && tpl.UserID == userID {
			return tpl, nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

// Update updates an existing template
func (m *MockRecurringTemplateRepository) Update(tpl *domain.RecurringTemplate) (*domain.RecurringTemplate, error) {
	for i, existing := range m.Templates {
		if existing.ID == tpl.ID && existing.UserID == tpl.UserID {
			m.Templates[i] = tpl
			return tpl, nil
		}
	}
	return nil, domain.ErrTemplateNotFound
}

// Delete removes a template
func (m *MockRecurringTemplateRepository) Delete(userID, id uuid.UUID) error {
	for i, tpl := range m.Templates {
		if tpl.ID == id && tpl.UserID == userID {
			m.Templates = append(m.Templates[:i], m.Templates[i+1:]...)
			return nil
		}
	}
	return domain.ErrTemplateNotFound
}

// List returns the user's templates
func (m *MockRecurringTemplateRepository) List(userID uuid.UUID, includePaused bool) ([]*domain.RecurringTemplate, error) {
	var result []*domain.RecurringTemplate
	for _, tpl := range m.Templates {
		if tpl.UserID != userID {
			continue
		}
		if tpl.IsPaused && !includePaused {
			continue
		}
		result = append(result, tpl)
	}
	return result, nil
}

// ActiveForRange returns non-paused templates overlapping the range
func (m *MockRecurringTemplateRepository) ActiveForRange(userID uuid.UUID, start, end time.Time) ([]*domain.RecurringTemplate, error) {
	var result []*domain.RecurringTemplate
	for _, tpl := range m.Templates {
		if tpl.UserID != userID || tpl.IsPaused {
			continue
		}
		if tpl.StartDate.After(end) {
			continue
		}
		if tpl.EndDate != nil && tpl.EndDate.Before(start) {
			continue
		}
		result = append(result, tpl)
	}
	return result, nil
}

// SetPaused toggles materialization for a template
func (m *MockRecurringTemplateRepository) SetPaused(userID, id uuid.UUID, paused bool) (*domain.RecurringTemplate, error) {
	tpl, err := m.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	tpl.IsPaused = paused
	return tpl, nil
}

// MockProfileRepository is a mock implementation of domain.ProfileRepository
type MockProfileRepository struct {
	mu          sync.Mutex
	Profiles    map[uuid.UUID]*domain.Profile
	SavedEvents []*domain.XPEvent
	SaveErr     error
	// EventSink receives events committed through MutateWithEvents, so tests
	// can wire the profile and XP event mocks together.
	EventSink *MockXPEventRepository
}

// NewMockProfileRepository creates a new MockProfileRepository
func NewMockProfileRepository() *MockProfileRepository {
	return &MockProfileRepository{Profiles: make(map[uuid.UUID]*domain.Profile)}
}

// AddProfile adds a profile to the mock repository (helper for tests)
func (m *MockProfileRepository) AddProfile(profile *domain.Profile) {
	m.Profiles[profile.UserID] = profile
}

// Create creates a new profile
func (m *MockProfileRepository) Create(profile *domain.Profile) (*domain.Profile, error) {
	m.Profiles[profile.UserID] = profile
	return profile, nil
}

// GetByUserID retrieves a profile by user ID
func (m *MockProfileRepository) GetByUserID(userID uuid.UUID) (*domain.Profile, error) {
	if profile, ok := m.Profiles[userID]; ok {
		return profile, nil
	}
	return nil, domain.ErrProfileNotFound
}

// Update updates an existing profile
func (m *MockProfileRepository) Update(profile *domain.Profile) (*domain.Profile, error) {
	if _, ok := m.Profiles[profile.UserID]; !ok {
		return nil, domain.ErrProfileNotFound
	}
	m.Profiles[profile.UserID] = profile
	return profile, nil
}

// MutateWithEvents runs mutate against the stored profile and commits the
// resulting events. The mutex serializes callers the way the row lock does
// in the real repository.
func (m *MockProfileRepository) MutateWithEvents(userID uuid.UUID, mutate func(profile *domain.Profile) ([]*domain.XPEvent, error)) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return nil, m.SaveErr
	}
	profile, ok := m.Profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	events, err := mutate(profile)
	if err != nil {
		return nil, err
	}
	for _, event := range events {
		m.SavedEvents = append(m.SavedEvents, event)
		if m.EventSink != nil {
			m.EventSink.AddEvent(event)
		}
	}
	return profile, nil
}

// UpdateTimezone sets the profile timezone
func (m *MockProfileRepository) UpdateTimezone(userID uuid.UUID, timezone string) (*domain.Profile, error) {
	profile, ok := m.Profiles[userID]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	profile.Timezone = timezone
	return profile, nil
}

// MockXPEventRepository is a mock implementation of domain.XPEventRepository
type MockXPEventRepository struct {
	Events []*domain.XPEvent
	seq    int64
}

// NewMockXPEventRepository creates a new MockXPEventRepository
func NewMockXPEventRepository() *MockXPEventRepository {
	return &MockXPEventRepository{}
}

// AddEvent adds an event to the mock repository, assigning its sequence
// number the way the store does on insert (helper for tests)
func (m *MockXPEventRepository) AddEvent(event *domain.XPEvent) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	m.seq++
	event.Sequence = m.seq
	m.Events = append(m.Events, event)
}

// Create appends an event to the ledger
func (m *MockXPEventRepository) Create(event *domain.XPEvent) (*domain.XPEvent, error) {
	m.AddEvent(event)
	return event, nil
}

func (m *MockXPEventRepository) byUser(userID uuid.UUID) []*domain.XPEvent {
	var result []*domain.XPEvent
	for _, event := range m.Events {
		if event.UserID == userID {
			result = append(result, event)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Sequence > result[j].Sequence
	})
	return result
}

// ListByUser returns a page of the user's events, newest first
func (m *MockXPEventRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]*domain.XPEvent, error) {
	events := m.byUser(userID)
	if offset >= len(events) {
		return nil, nil
	}
	events = events[offset:]
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// CountByUser counts the user's events
func (m *MockXPEventRepository) CountByUser(userID uuid.UUID) (int, error) {
	return len(m.byUser(userID)), nil
}

// GetMilestoneEvent finds the milestone event for a streak length
func (m *MockXPEventRepository) GetMilestoneEvent(userID uuid.UUID, days int) (*domain.XPEvent, error) {
	marker := fmt.Sprintf("%d-day", days)
	for _, event := range m.Events {
		if event.UserID == userID && event.EventType == domain.EventStreakMilestone &&
			strings.Contains(event.Description, marker) {
			return event, nil
		}
	}
	return nil, nil
}

// FinancialGoalEventsForMonth finds financial goal events for a month
func (m *MockXPEventRepository) FinancialGoalEventsForMonth(userID uuid.UUID, month, year int) ([]*domain.XPEvent, error) {
	marker := fmt.Sprintf("%d/%d", month, year)
	var result []*domain.XPEvent
	for _, event := range m.Events {
		if event.UserID == userID && event.EventType == domain.EventFinancialGoal &&
			strings.Contains(event.Description, marker) {
			result = append(result, event)
		}
	}
	return result, nil
}

// MockBudgetPlanRepository is a mock implementation of domain.BudgetPlanRepository
type MockBudgetPlanRepository struct {
	Plans map[uuid.UUID]*domain.BudgetPlan
}

// NewMockBudgetPlanRepository creates a new MockBudgetPlanRepository
func NewMockBudgetPlanRepository() *MockBudgetPlanRepository {
	return &MockBudgetPlanRepository{Plans: make(map[uuid.UUID]*domain.BudgetPlan)}
}

// AddPlan adds a plan to the mock repository (helper for tests)
func (m *MockBudgetPlanRepository) AddPlan(plan *domain.BudgetPlan) {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	m.Plans[plan.UserID] = plan
}

// Create stores a plan, enforcing one per user
func (m *MockBudgetPlanRepository) Create(plan *domain.BudgetPlan) (*domain.BudgetPlan, error) {
	if _, ok := m.Plans[plan.UserID]; ok {
		return nil, domain.ErrBudgetPlanExists
	}
	m.AddPlan(plan)
	return plan, nil
}

// GetByUserID retrieves the user's plan
func (m *MockBudgetPlanRepository) GetByUserID(userID uuid.UUID) (*domain.BudgetPlan, error) {
	if plan, ok := m.Plans[userID]; ok {
		return plan, nil
	}
	return nil, domain.ErrBudgetPlanNotFound
}

// Update rewrites the user's plan
func (m *MockBudgetPlanRepository) Update(plan *domain.BudgetPlan) (*domain.BudgetPlan, error) {
	if _, ok := m.Plans[plan.UserID]; !ok {
		return nil, domain.ErrBudgetPlanNotFound
	}
	m.Plans[plan.UserID] = plan
	return plan, nil
}

// MockCatalogRepository is a mock implementation of domain.CatalogRepository
// seeded with a small fixed catalog.
type MockCatalogRepository struct {
	ExpenseCategories []domain.ExpenseCategory
	IncomeCategories  []domain.IncomeCategory
}

// NewMockCatalogRepository creates a MockCatalogRepository with default entries
func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{
		ExpenseCategories: []domain.ExpenseCategory{
			{ID: "food", Label: "Food", Color: "#4e79a7", SortOrder: 1, Subcategories: []domain.ExpenseSubcategory{
				{ID: "groceries", CategoryID: "food", Label: "Groceries", Color: "#a0cbe8", SortOrder: 1},
				{ID: "restaurants", CategoryID: "food", Label: "Restaurants", Color: "#f28e2b", SortOrder: 2},
			}},
			{ID: "transport", Label: "Transport", Color: "#59a14f", SortOrder: 2},
			{ID: "entertainment", Label: "Entertainment", Color: "#e15759", SortOrder: 3},
			{ID: "savings", Label: "Savings", Color: "#b07aa1", SortOrder: 7},
			{ID: "investments", Label: "Investments", Color: "#ff9da7", SortOrder: 8},
		},
		IncomeCategories: []domain.IncomeCategory{
			{ID: "salary", Label: "Salary", Color: "#76b7b2", SortOrder: 1},
			{ID: "freelance", Label: "Freelance", Color: "#edc948", SortOrder: 2},
		},
	}
}

// CategoryExists reports whether a category id exists for the kind
func (m *MockCatalogRepository) CategoryExists(id string, kind domain.TransactionKind) (bool, error) {
	if kind == domain.KindIncome {
		for _, cat := range m.IncomeCategories {
			if cat.ID == id {
				return true, nil
			}
		}
		return false, nil
	}
	for _, cat := range m.ExpenseCategories {
		if cat.ID == id {
			return true, nil
		}
	}
	return false, nil
}

// SubcategoryExists reports whether a subcategory id exists
func (m *MockCatalogRepository) SubcategoryExists(id string) (bool, error) {
	for _, cat := range m.ExpenseCategories {
		for _, sub := range cat.Subcategories {
			if sub.ID == id {
				return true, nil
			}
		}
	}
	return false, nil
}

// ListExpenseCategories returns the expense catalog
func (m *MockCatalogRepository) ListExpenseCategories() ([]domain.ExpenseCategory, error) {
	return m.ExpenseCategories, nil
}

// ListIncomeCategories returns the income catalog
func (m *MockCatalogRepository) ListIncomeCategories() ([]domain.IncomeCategory, error) {
	return m.IncomeCategories, nil
}

// CategoryColors returns the expense category color map
func (m *MockCatalogRepository) CategoryColors() (map[string]string, error) {
	colors := make(map[string]string)
	for _, cat := range m.ExpenseCategories {
		colors[cat.ID] = cat.Color
	}
	return colors, nil
}

// SubcategoryColors returns the subcategory color map
func (m *MockCatalogRepository) SubcategoryColors() (map[string]string, error) {
	colors := make(map[string]string)
	for _, cat := range m.ExpenseCategories {
		for _, sub := range cat.Subcategories {
			colors[sub.ID] = sub.Color
		}
	}
	return colors, nil
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// XPEventType classifies entries in the XP ledger.
type XPEventType string

const (
	EventDailyLogin        XPEventType = "daily_login"
	EventTransaction       XPEventType = "transaction"
	EventStreakMilestone   XPEventType = "streak_milestone"
	EventInactivityPenalty XPEventType = "inactivity_penalty"
	EventFinancialGoal     XPEventType = "financial_goal"
)

// XPEvent is one append-only entry in the XP ledger. Amounts are signed;
// penalties are negative. Events are never mutated after insert. Sequence
// is assigned by the store on insert and totally orders the ledger, even
// across events written in the same transaction.
type XPEvent struct {
	ID          uuid.UUID         `json:"id"`
	UserID      uuid.UUID         `json:"userId"`
	XPAmount    int               `json:"xpAmount"`
	EventType   XPEventType       `json:"eventType"`
	Description string            `json:"description"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Sequence    int64             `json:"-"`
	CreatedAt   time.Time         `json:"createdAt"`
}

// XPEventRepository defines the append-only XP ledger.
type XPEventRepository interface {
	Create(event *XPEvent) (*XPEvent, error)
	ListByUser(userID uuid.UUID, limit, offset int) ([]*XPEvent, error)
	CountByUser(userID uuid.UUID) (int, error)
	// GetMilestoneEvent finds the streak_milestone event for the given streak
	// length, matching by the "<N>-day" description marker. Returns
	// ErrNotFound-style nil, nil when absent.
	GetMilestoneEvent(userID uuid.UUID, days int) (*XPEvent, error)
	// FinancialGoalEventsForMonth finds financial_goal events whose
	// description carries the "<M>/<Y>" month marker.
	FinancialGoalEventsForMonth(userID uuid.UUID, month, year int) ([]*XPEvent, error)
}

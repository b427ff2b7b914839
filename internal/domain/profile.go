package domain

import (
	"time"

	"github.com/google/uuid"
)

// Profile holds the per-user settings and gamification counters. The id
// matches the identity service's user id.
type Profile struct {
	UserID                 uuid.UUID  `json:"userId"`
	Timezone               string     `json:"timezone"`
	CurrentLevel           int        `json:"currentLevel"`
	CurrentXP              int        `json:"currentXp"`
	CurrentStreak          int        `json:"currentStreak"`
	LongestStreak          int        `json:"longestStreak"`
	LastLoginDate          *time.Time `json:"lastLoginDate,omitempty"` // date-only
	TotalXPEarned          int        `json:"totalXpEarned"`
	TransactionsTodayCount int        `json:"transactionsTodayCount"`
	LastTransactionDate    *time.Time `json:"lastTransactionDate,omitempty"` // date-only
	CreatedAt              time.Time  `json:"createdAt"`
	UpdatedAt              time.Time  `json:"updatedAt"`
}

// ProfileRepository defines profile persistence operations.
type ProfileRepository interface {
	Create(profile *Profile) (*Profile, error)
	GetByUserID(userID uuid.UUID) (*Profile, error)
	Update(profile *Profile) (*Profile, error)
	// MutateWithEvents locks the profile row, hands the fresh row to mutate,
	// and commits the modified profile plus the returned XP events in one
	// transaction. Concurrent gamification steps for the same user serialize
	// on the row lock, so mutate always decides on current state.
	MutateWithEvents(userID uuid.UUID, mutate func(profile *Profile) ([]*XPEvent, error)) (*Profile, error)
	UpdateTimezone(userID uuid.UUID, timezone string) (*Profile, error)
}

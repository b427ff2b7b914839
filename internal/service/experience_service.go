package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

const (
	// DailyLoginXP is awarded once per user-local day at check-in.
	DailyLoginXP = 15
	// TransactionXP is awarded per logged transaction, up to the daily limit.
	TransactionXP = 3
	// TransactionDailyLimit caps XP-awarding transaction creates per day.
	TransactionDailyLimit = 5
	// InactivityPenaltyStep scales the per-day penalty: day d costs 15*d XP.
	InactivityPenaltyStep = 15
)

// StreakMilestones maps streak length in days to its one-time XP bonus.
var StreakMilestones = map[int]int{
	7:   50,
	14:  75,
	30:  150,
	60:  250,
	100: 400,
	150: 500,
	200: 600,
	365: 1000,
}

// XPRequiredForNextLevel returns the XP needed to go from level to level+1.
func XPRequiredForNextLevel(level int) int {
	return level * 10
}

// TotalXPForLevel returns the cumulative XP needed to reach a level.
func TotalXPForLevel(level int) int {
	return 5 * (level - 1) * level
}

// LevelFromXP returns the largest level whose cumulative requirement is
// within the given XP total. Never below 1.
func LevelFromXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	level := int((-1+math.Sqrt(1+0.8*float64(xp)))/2) + 1
	if level < 1 {
		level = 1
	}
	// Guard against float rounding at the exact boundaries.
	for TotalXPForLevel(level+1) <= xp {
		level++
	}
	for level > 1 && TotalXPForLevel(level) > xp {
		level--
	}
	return level
}

// EvolutionStage buckets a level for presentation.
func EvolutionStage(level int) string {
	switch {
	case level <= 5:
		return "Baby"
	case level <= 15:
		return "Young"
	case level <= 30:
		return "Adult"
	case level <= 50:
		return "Prime"
	default:
		return "Legendary"
	}
}

// ExperienceService drives the level/XP/streak state machine.
type ExperienceService struct {
	profileRepo domain.ProfileRepository
	xpRepo      domain.XPEventRepository
}

// NewExperienceService creates a new ExperienceService
func NewExperienceService(profileRepo domain.ProfileRepository, xpRepo domain.XPEventRepository) *ExperienceService {
	return &ExperienceService{
		profileRepo: profileRepo,
		xpRepo:      xpRepo,
	}
}

// ExperienceStatus is the current gamification state of a user.
type ExperienceStatus struct {
	UserID                 uuid.UUID  `json:"userId"`
	CurrentLevel           int        `json:"currentLevel"`
	CurrentXP              int        `json:"currentXp"`
	XPForNextLevel         int        `json:"xpForNextLevel"`
	TotalXPForCurrentLevel int        `json:"totalXpForCurrentLevel"`
	EvolutionStage         string     `json:"evolutionStage"`
	CurrentStreak          int        `json:"currentStreak"`
	LongestStreak          int        `json:"longestStreak"`
	LastLoginDate          *time.Time `json:"lastLoginDate,omitempty"`
	TransactionsTodayCount int        `json:"transactionsTodayCount"`
	TransactionsDailyLimit int        `json:"transactionsDailyLimit"`
}

// MilestoneAward reports a milestone reached during a check-in.
type MilestoneAward struct {
	Days     int `json:"days"`
	XPReward int `json:"xpReward"`
}

// CheckInResult reports the outcome of a daily check-in.
type CheckInResult struct {
	XPAwarded           int               `json:"xpAwarded"`
	NewTotalXP          int               `json:"newTotalXp"`
	NewLevel            int               `json:"newLevel"`
	LevelUp             bool              `json:"levelUp"`
	PreviousLevel       *int              `json:"previousLevel,omitempty"`
	StreakIncremented   bool              `json:"streakIncremented"`
	NewStreak           int               `json:"newStreak"`
	StreakBroken        bool              `json:"streakBroken"`
	InactivityPenalties []*domain.XPEvent `json:"inactivityPenalties"`
	MilestoneReached    *MilestoneAward   `json:"milestoneReached,omitempty"`
	Message             string            `json:"message"`
}

// TransactionXPResult reports a transaction XP award. Nil when the daily
// cap was already reached.
type TransactionXPResult struct {
	XPAwarded              int `json:"xpAwarded"`
	NewTotalXP             int `json:"newTotalXp"`
	TransactionsTodayCount int `json:"transactionsTodayCount"`
}

// XPHistory is one page of the XP ledger.
type XPHistory struct {
	Events []*domain.XPEvent `json:"events"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// MilestoneStatus describes one streak milestone for the listing endpoint.
type MilestoneStatus struct {
	Days          int        `json:"days"`
	XPReward      int        `json:"xpReward"`
	Achieved      bool       `json:"achieved"`
	AchievedAt    *time.Time `json:"achievedAt,omitempty"`
	DaysRemaining *int       `json:"daysRemaining,omitempty"`
}

// Status returns the user's current gamification state. The daily
// transaction counter resets when a new user-local day has started.
func (s *ExperienceService) Status(userID uuid.UUID) (*ExperienceStatus, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	today := util.TodayIn(profile.Timezone)
	if profile.LastTransactionDate == nil || !util.SameDate(*profile.LastTransactionDate, today) {
		profile.TransactionsTodayCount = 0
		profile.LastTransactionDate = &today
		if profile, err = s.profileRepo.Update(profile); err != nil {
			return nil, err
		}
	}

	return &ExperienceStatus{
		UserID:                 profile.UserID,
		CurrentLevel:           profile.CurrentLevel,
		CurrentXP:              profile.CurrentXP,
		XPForNextLevel:         XPRequiredForNextLevel(profile.CurrentLevel),
		TotalXPForCurrentLevel: TotalXPForLevel(profile.CurrentLevel),
		EvolutionStage:         EvolutionStage(profile.CurrentLevel),
		CurrentStreak:          profile.CurrentStreak,
		LongestStreak:          profile.LongestStreak,
		LastLoginDate:          profile.LastLoginDate,
		TransactionsTodayCount: profile.TransactionsTodayCount,
		TransactionsDailyLimit: TransactionDailyLimit,
	}, nil
}

// CheckIn awards the daily login XP, advances the streak, applies
// inactivity penalties and milestone bonuses. The whole decision runs
// against the row-locked profile, so a pair of racing check-ins serializes
// and the loser lands on the same-day no-op. Checking in twice on the same
// user-local day is a no-op.
func (s *ExperienceService) CheckIn(userID uuid.UUID) (*CheckInResult, error) {
	var result *CheckInResult
	_, err := s.profileRepo.MutateWithEvents(userID, func(profile *domain.Profile) ([]*domain.XPEvent, error) {
		// The server derives "today" from the profile timezone; the client's
		// clock is never trusted.
		today := util.TodayIn(profile.Timezone)

		if profile.LastLoginDate != nil && util.SameDate(*profile.LastLoginDate, today) {
			result = &CheckInResult{
				XPAwarded:           0,
				NewTotalXP:          profile.CurrentXP,
				NewLevel:            profile.CurrentLevel,
				StreakIncremented:   false,
				NewStreak:           profile.CurrentStreak,
				InactivityPenalties: []*domain.XPEvent{},
				Message:             "Already checked in today",
			}
			return nil, nil
		}

		now := time.Now().UTC()
		var events []*domain.XPEvent

		// Inactivity penalties for each fully missed day.
		penalties := []*domain.XPEvent{}
		streakBroken := false
		if profile.LastLoginDate != nil {
			daysMissed := int(today.Sub(*profile.LastLoginDate).Hours()/24) - 1
			if daysMissed > 0 {
				for day := 1; day <= daysMissed; day++ {
					event := &domain.XPEvent{
						ID:          uuid.New(),
						UserID:      userID,
						XPAmount:    -(InactivityPenaltyStep * day),
						EventType:   domain.EventInactivityPenalty,
						Description: fmt.Sprintf("Missed day %d of inactivity", day),
						CreatedAt:   now,
					}
					events = append(events, event)
					penalties = append(penalties, event)
					// Penalties cannot drive XP below zero; lifetime XP is kept.
					if profile.CurrentXP += event.XPAmount; profile.CurrentXP < 0 {
						profile.CurrentXP = 0
					}
				}
				profile.CurrentLevel = LevelFromXP(profile.CurrentXP)
				profile.CurrentStreak = 0
				streakBroken = true
			}
		}

		previousLevel := profile.CurrentLevel

		events = append(events, &domain.XPEvent{
			ID:          uuid.New(),
			UserID:      userID,
			XPAmount:    DailyLoginXP,
			EventType:   domain.EventDailyLogin,
			Description: "Daily check-in",
			CreatedAt:   now,
		})
		profile.CurrentXP += DailyLoginXP
		profile.TotalXPEarned += DailyLoginXP

		if !streakBroken {
			profile.CurrentStreak++
			if profile.CurrentStreak > profile.LongestStreak {
				profile.LongestStreak = profile.CurrentStreak
			}
		}

		milestone, milestoneEvent, err := s.pendingMilestone(userID, profile.CurrentStreak)
		if err != nil {
			return nil, err
		}
		if milestoneEvent != nil {
			milestoneEvent.CreatedAt = now
			events = append(events, milestoneEvent)
			profile.CurrentXP += milestoneEvent.XPAmount
			profile.TotalXPEarned += milestoneEvent.XPAmount
		}

		profile.LastLoginDate = &today
		newLevel := LevelFromXP(profile.CurrentXP)
		levelUp := newLevel > previousLevel
		profile.CurrentLevel = newLevel

		result = &CheckInResult{
			XPAwarded:           DailyLoginXP,
			NewTotalXP:          profile.CurrentXP,
			NewLevel:            newLevel,
			LevelUp:             levelUp,
			StreakIncremented:   !streakBroken,
			NewStreak:           profile.CurrentStreak,
			StreakBroken:        streakBroken,
			InactivityPenalties: penalties,
			MilestoneReached:    milestone,
			Message:             fmt.Sprintf("Welcome back! +%d XP", DailyLoginXP),
		}
		if levelUp {
			result.PreviousLevel = &previousLevel
		}
		return events, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// pendingMilestone builds the milestone event for the streak if one is due
// and has never been awarded. The "<N>-day" description marker is what
// makes re-awards detectable.
func (s *ExperienceService) pendingMilestone(userID uuid.UUID, streak int) (*MilestoneAward, *domain.XPEvent, error) {
	reward, ok := StreakMilestones[streak]
	if !ok {
		return nil, nil, nil
	}
	existing, err := s.xpRepo.GetMilestoneEvent(userID, streak)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, nil
	}
	event := &domain.XPEvent{
		ID:          uuid.New(),
		UserID:      userID,
		XPAmount:    reward,
		EventType:   domain.EventStreakMilestone,
		Description: fmt.Sprintf("%d-day streak bonus", streak),
	}
	return &MilestoneAward{Days: streak, XPReward: reward}, event, nil
}

// AwardTransactionXP grants +3 XP for a logged transaction, capped at five
// awards per user-local day. The cap check runs against the row-locked
// profile, so concurrent creates cannot push past it. Returns nil when the
// cap is reached.
func (s *ExperienceService) AwardTransactionXP(userID uuid.UUID) (*TransactionXPResult, error) {
	var result *TransactionXPResult
	_, err := s.profileRepo.MutateWithEvents(userID, func(profile *domain.Profile) ([]*domain.XPEvent, error) {
		today := util.TodayIn(profile.Timezone)
		if profile.LastTransactionDate == nil || !util.SameDate(*profile.LastTransactionDate, today) {
			profile.TransactionsTodayCount = 0
			profile.LastTransactionDate = &today
		}

		if profile.TransactionsTodayCount >= TransactionDailyLimit {
			log.Debug().Str("user_id", userID.String()).Msg("Transaction XP daily cap reached")
			return nil, nil
		}

		event := &domain.XPEvent{
			ID:          uuid.New(),
			UserID:      userID,
			XPAmount:    TransactionXP,
			EventType:   domain.EventTransaction,
			Description: "Logged transaction",
			CreatedAt:   time.Now().UTC(),
		}
		profile.CurrentXP += TransactionXP
		profile.TotalXPEarned += TransactionXP
		profile.TransactionsTodayCount++
		profile.CurrentLevel = LevelFromXP(profile.CurrentXP)

		result = &TransactionXPResult{
			XPAwarded:              TransactionXP,
			NewTotalXP:             profile.CurrentXP,
			TransactionsTodayCount: profile.TransactionsTodayCount,
		}
		return []*domain.XPEvent{event}, nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// History returns a page of the XP ledger, newest first.
func (s *ExperienceService) History(userID uuid.UUID, limit, offset int) (*XPHistory, error) {
	if limit < 1 || limit > 100 || offset < 0 {
		return nil, domain.ErrInvalidPagination
	}
	events, err := s.xpRepo.ListByUser(userID, limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.xpRepo.CountByUser(userID)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []*domain.XPEvent{}
	}
	return &XPHistory{Events: events, Total: total, Limit: limit, Offset: offset}, nil
}

// Milestones lists every streak milestone with its achievement state.
func (s *ExperienceService) Milestones(userID uuid.UUID) ([]MilestoneStatus, error) {
	profile, err := s.profileRepo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	days := make([]int, 0, len(StreakMilestones))
	for d := range StreakMilestones {
		days = append(days, d)
	}
	sort.Ints(days)

	result := make([]MilestoneStatus, 0, len(days))
	for _, d := range days {
		status := MilestoneStatus{Days: d, XPReward: StreakMilestones[d]}
		event, err := s.xpRepo.GetMilestoneEvent(userID, d)
		if err != nil {
			return nil, err
		}
		if event != nil {
			status.Achieved = true
			achievedAt := event.CreatedAt
			status.AchievedAt = &achievedAt
		} else {
			remaining := d - profile.CurrentStreak
			if remaining < 0 {
				remaining = 0
			}
			status.DaysRemaining = &remaining
		}
		result = append(result, status)
	}
	return result, nil
}

// AwardFinancialGoalXP is a hook for per-month goal bonuses. The product
// behavior is not settled, so it awards nothing yet.
func (s *ExperienceService) AwardFinancialGoalXP(userID uuid.UUID, month, year int) ([]*domain.XPEvent, error) {
	return []*domain.XPEvent{}, nil
}

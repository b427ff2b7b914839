package service

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/testutil"
	"github.com/juanpmar/finko/finko-backend/internal/util"
)

func newExperienceFixture() (*ExperienceService, *testutil.MockProfileRepository, *testutil.MockXPEventRepository) {
	profileRepo := testutil.NewMockProfileRepository()
	xpRepo := testutil.NewMockXPEventRepository()
	profileRepo.EventSink = xpRepo
	return NewExperienceService(profileRepo, xpRepo), profileRepo, xpRepo
}

func addProfile(profileRepo *testutil.MockProfileRepository, userID uuid.UUID) *domain.Profile {
	profile := &domain.Profile{
		UserID:       userID,
		Timezone:     "UTC",
		CurrentLevel: 1,
	}
	profileRepo.AddProfile(profile)
	return profile
}

func TestLevelMath_RoundTrip(t *testing.T) {
	for level := 1; level <= 60; level++ {
		total := TotalXPForLevel(level)
		if got := LevelFromXP(total); got != level {
			t.Errorf("LevelFromXP(%d) = %d, want %d", total, got, level)
		}
		if level > 1 {
			if got := LevelFromXP(total - 1); got != level-1 {
				t.Errorf("LevelFromXP(%d) = %d, want %d", total-1, got, level-1)
			}
		}
	}
}

func TestLevelMath_RequirementGrowsLinearly(t *testing.T) {
	if XPRequiredForNextLevel(1) != 10 {
		t.Errorf("Expected level 1 to require 10 XP, got %d", XPRequiredForNextLevel(1))
	}
	if XPRequiredForNextLevel(7) != 70 {
		t.Errorf("Expected level 7 to require 70 XP, got %d", XPRequiredForNextLevel(7))
	}
	if LevelFromXP(0) != 1 {
		t.Errorf("Expected zero XP to be level 1, got %d", LevelFromXP(0))
	}
	if LevelFromXP(-5) != 1 {
		t.Errorf("Expected negative XP to clamp to level 1, got %d", LevelFromXP(-5))
	}
}

func TestEvolutionStage_Buckets(t *testing.T) {
	cases := map[int]string{
		1:  "Baby",
		5:  "Baby",
		6:  "Young",
		15: "Young",
		16: "Adult",
		30: "Adult",
		31: "Prime",
		50: "Prime",
		51: "Legendary",
	}
	for level, want := range cases {
		if got := EvolutionStage(level); got != want {
			t.Errorf("EvolutionStage(%d) = %s, want %s", level, got, want)
		}
	}
}

func TestCheckIn_FirstLogin(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	addProfile(profileRepo, userID)

	result, err := svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.XPAwarded != DailyLoginXP {
		t.Errorf("Expected %d XP awarded, got %d", DailyLoginXP, result.XPAwarded)
	}
	if result.NewStreak != 1 {
		t.Errorf("Expected streak 1, got %d", result.NewStreak)
	}
	if !result.StreakIncremented {
		t.Error("Expected the streak to increment")
	}
	if result.StreakBroken {
		t.Error("Expected no broken streak on first login")
	}
	if len(result.InactivityPenalties) != 0 {
		t.Errorf("Expected no penalties, got %d", len(result.InactivityPenalties))
	}

	profile := profileRepo.Profiles[userID]
	if profile.CurrentXP != DailyLoginXP {
		t.Errorf("Expected %d XP, got %d", DailyLoginXP, profile.CurrentXP)
	}
	if profile.LongestStreak != 1 {
		t.Errorf("Expected longest streak 1, got %d", profile.LongestStreak)
	}
}

func TestCheckIn_SameDayIsNoOp(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	addProfile(profileRepo, userID)

	if _, err := svc.CheckIn(userID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	xpAfterFirst := profileRepo.Profiles[userID].CurrentXP

	result, err := svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.XPAwarded != 0 {
		t.Errorf("Expected 0 XP on the second check-in, got %d", result.XPAwarded)
	}
	if result.Message != "Already checked in today" {
		t.Errorf("Unexpected message %q", result.Message)
	}
	if profileRepo.Profiles[userID].CurrentXP != xpAfterFirst {
		t.Error("Expected XP to stay unchanged on a same-day check-in")
	}
}

func TestCheckIn_ConsecutiveDayIncrementsStreak(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)

	yesterday := util.TodayIn("UTC").AddDate(0, 0, -1)
	profile.LastLoginDate = &yesterday
	profile.CurrentStreak = 6
	profile.LongestStreak = 6

	result, err := svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.NewStreak != 7 {
		t.Errorf("Expected streak 7, got %d", result.NewStreak)
	}
	if result.StreakBroken {
		t.Error("Expected an unbroken streak")
	}
}

func TestCheckIn_GapAppliesEscalatingPenalties(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)

	threeDaysAgo := util.TodayIn("UTC").AddDate(0, 0, -3)
	profile.LastLoginDate = &threeDaysAgo
	profile.CurrentStreak = 10
	profile.LongestStreak = 10
	profile.CurrentXP = 100
	profile.TotalXPEarned = 100
	profile.CurrentLevel = LevelFromXP(100)

	result, err := svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.InactivityPenalties) != 2 {
		t.Fatalf("Expected 2 penalties, got %d", len(result.InactivityPenalties))
	}
	if result.InactivityPenalties[0].XPAmount != -15 {
		t.Errorf("Expected first penalty -15, got %d", result.InactivityPenalties[0].XPAmount)
	}
	if result.InactivityPenalties[1].XPAmount != -30 {
		t.Errorf("Expected second penalty -30, got %d", result.InactivityPenalties[1].XPAmount)
	}
	if !result.StreakBroken {
		t.Error("Expected the streak to break")
	}
	if result.NewStreak != 0 {
		t.Errorf("Expected streak reset to 0, got %d", result.NewStreak)
	}
	// 100 - 15 - 30 + 15 login XP
	if result.NewTotalXP != 70 {
		t.Errorf("Expected 70 XP, got %d", result.NewTotalXP)
	}
}

func TestCheckIn_PenaltiesFloorAtZero(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)

	fourDaysAgo := util.TodayIn("UTC").AddDate(0, 0, -4)
	profile.LastLoginDate = &fourDaysAgo
	profile.CurrentXP = 10
	profile.TotalXPEarned = 10

	result, err := svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	// XP floors at zero under the penalties, then the login award lands.
	if result.NewTotalXP != DailyLoginXP {
		t.Errorf("Expected %d XP, got %d", DailyLoginXP, result.NewTotalXP)
	}
	if profileRepo.Profiles[userID].TotalXPEarned != 10+DailyLoginXP {
		t.Errorf("Expected lifetime XP to never decrease, got %d", profileRepo.Profiles[userID].TotalXPEarned)
	}
}

func TestCheckIn_AwardsMilestoneOnce(t *testing.T) {
	svc, profileRepo, xpRepo := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)

	yesterday := util.TodayIn("UTC").AddDate(0, 0, -1)
	profile.LastLoginDate = &yesterday
	profile.CurrentStreak = 6
	profile.LongestStreak = 6

	result, err := svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.MilestoneReached == nil {
		t.Fatal("Expected the 7-day milestone")
	}
	if result.MilestoneReached.Days != 7 || result.MilestoneReached.XPReward != 50 {
		t.Errorf("Expected {7, 50}, got {%d, %d}", result.MilestoneReached.Days, result.MilestoneReached.XPReward)
	}
	if result.NewTotalXP != DailyLoginXP+50 {
		t.Errorf("Expected %d XP, got %d", DailyLoginXP+50, result.NewTotalXP)
	}

	// Break back down to 6 and climb again: the bonus must not repeat.
	again := profileRepo.Profiles[userID]
	again.CurrentStreak = 6
	dayBefore := util.TodayIn("UTC").AddDate(0, 0, -1)
	again.LastLoginDate = &dayBefore

	result, err = svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result.MilestoneReached != nil {
		t.Error("Expected no repeat milestone award")
	}

	event, err := xpRepo.GetMilestoneEvent(userID, 7)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if event == nil {
		t.Error("Expected the milestone event in the ledger")
	}
}

func TestCheckIn_LevelUpReportsPreviousLevel(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)
	profile.CurrentXP = TotalXPForLevel(2) - 5
	profile.CurrentLevel = 1

	result, err := svc.CheckIn(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !result.LevelUp {
		t.Fatal("Expected a level up")
	}
	if result.PreviousLevel == nil || *result.PreviousLevel != 1 {
		t.Error("Expected previous level 1")
	}
	if result.NewLevel != 2 {
		t.Errorf("Expected level 2, got %d", result.NewLevel)
	}
}

func TestAwardTransactionXP_CapsPerDay(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	addProfile(profileRepo, userID)

	for i := 1; i <= TransactionDailyLimit; i++ {
		result, err := svc.AwardTransactionXP(userID)
		if err != nil {
			t.Fatalf("Expected no error on award %d, got %v", i, err)
		}
		if result == nil {
			t.Fatalf("Expected an award on transaction %d", i)
		}
		if result.TransactionsTodayCount != i {
			t.Errorf("Expected counter %d, got %d", i, result.TransactionsTodayCount)
		}
	}

	result, err := svc.AwardTransactionXP(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Error("Expected nil once the daily cap is reached")
	}
	if profileRepo.Profiles[userID].CurrentXP != TransactionDailyLimit*TransactionXP {
		t.Errorf("Expected %d XP, got %d", TransactionDailyLimit*TransactionXP, profileRepo.Profiles[userID].CurrentXP)
	}
}

func TestCheckIn_ConcurrentCallsAwardOnce(t *testing.T) {
	svc, profileRepo, xpRepo := newExperienceFixture()
	userID := uuid.New()
	addProfile(profileRepo, userID)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.CheckIn(userID); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	logins := 0
	for _, event := range xpRepo.Events {
		if event.UserID == userID && event.EventType == domain.EventDailyLogin {
			logins++
		}
	}
	if logins != 1 {
		t.Errorf("Expected exactly 1 daily login event, got %d", logins)
	}
	if profileRepo.Profiles[userID].CurrentXP != DailyLoginXP {
		t.Errorf("Expected %d XP, got %d", DailyLoginXP, profileRepo.Profiles[userID].CurrentXP)
	}
	if profileRepo.Profiles[userID].CurrentStreak != 1 {
		t.Errorf("Expected streak 1, got %d", profileRepo.Profiles[userID].CurrentStreak)
	}
}

func TestAwardTransactionXP_ConcurrentCallsRespectCap(t *testing.T) {
	svc, profileRepo, xpRepo := newExperienceFixture()
	userID := uuid.New()
	addProfile(profileRepo, userID)

	var wg sync.WaitGroup
	for i := 0; i < 2*TransactionDailyLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.AwardTransactionXP(userID); err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
		}()
	}
	wg.Wait()

	awards := 0
	for _, event := range xpRepo.Events {
		if event.UserID == userID && event.EventType == domain.EventTransaction {
			awards++
		}
	}
	if awards != TransactionDailyLimit {
		t.Errorf("Expected %d transaction awards, got %d", TransactionDailyLimit, awards)
	}
	if profileRepo.Profiles[userID].CurrentXP != TransactionDailyLimit*TransactionXP {
		t.Errorf("Expected %d XP, got %d", TransactionDailyLimit*TransactionXP, profileRepo.Profiles[userID].CurrentXP)
	}
}

func TestAwardTransactionXP_ResetsOnNewDay(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)

	yesterday := util.TodayIn("UTC").AddDate(0, 0, -1)
	profile.LastTransactionDate = &yesterday
	profile.TransactionsTodayCount = TransactionDailyLimit

	result, err := svc.AwardTransactionXP(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result == nil {
		t.Fatal("Expected the counter to reset on a new day")
	}
	if result.TransactionsTodayCount != 1 {
		t.Errorf("Expected counter 1, got %d", result.TransactionsTodayCount)
	}
}

func TestStatus_ResetsStaleDailyCounter(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)

	yesterday := util.TodayIn("UTC").AddDate(0, 0, -1)
	profile.LastTransactionDate = &yesterday
	profile.TransactionsTodayCount = 4

	status, err := svc.Status(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if status.TransactionsTodayCount != 0 {
		t.Errorf("Expected counter reset to 0, got %d", status.TransactionsTodayCount)
	}
	if status.TransactionsDailyLimit != TransactionDailyLimit {
		t.Errorf("Expected limit %d, got %d", TransactionDailyLimit, status.TransactionsDailyLimit)
	}
}

func TestHistory_ValidatesPagination(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	addProfile(profileRepo, userID)

	if _, err := svc.History(userID, 0, 0); err != domain.ErrInvalidPagination {
		t.Errorf("Expected ErrInvalidPagination for limit 0, got %v", err)
	}
	if _, err := svc.History(userID, 101, 0); err != domain.ErrInvalidPagination {
		t.Errorf("Expected ErrInvalidPagination for limit 101, got %v", err)
	}
	if _, err := svc.History(userID, 10, -1); err != domain.ErrInvalidPagination {
		t.Errorf("Expected ErrInvalidPagination for negative offset, got %v", err)
	}
}

func TestHistory_PagesNewestFirst(t *testing.T) {
	svc, _, xpRepo := newExperienceFixture()
	userID := uuid.New()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		xpRepo.AddEvent(&domain.XPEvent{
			UserID:      userID,
			XPAmount:    3,
			EventType:   domain.EventTransaction,
			Description: "Logged transaction",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
	}

	history, err := svc.History(userID, 2, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if history.Total != 5 {
		t.Errorf("Expected total 5, got %d", history.Total)
	}
	if len(history.Events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(history.Events))
	}
	if !history.Events[0].CreatedAt.After(history.Events[1].CreatedAt) {
		t.Error("Expected newest-first ordering")
	}
}

func TestHistory_OrdersEventsWithinOneCheckIn(t *testing.T) {
	svc, profileRepo, _ := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)

	// A two-day gap writes two penalties and the login award in one
	// check-in, all with the same timestamp. Insert order must still win.
	threeDaysAgo := util.TodayIn("UTC").AddDate(0, 0, -3)
	profile.LastLoginDate = &threeDaysAgo
	profile.CurrentXP = 100
	profile.TotalXPEarned = 100
	profile.CurrentLevel = LevelFromXP(100)

	if _, err := svc.CheckIn(userID); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	history, err := svc.History(userID, 10, 0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(history.Events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(history.Events))
	}
	if history.Events[0].EventType != domain.EventDailyLogin {
		t.Errorf("Expected the login award first, got %s", history.Events[0].EventType)
	}
	if history.Events[1].XPAmount != -30 || history.Events[2].XPAmount != -15 {
		t.Errorf("Expected penalties in reverse insert order, got %d then %d",
			history.Events[1].XPAmount, history.Events[2].XPAmount)
	}
}

func TestMilestones_ReportsProgress(t *testing.T) {
	svc, profileRepo, xpRepo := newExperienceFixture()
	userID := uuid.New()
	profile := addProfile(profileRepo, userID)
	profile.CurrentStreak = 10

	achievedAt := time.Now().UTC()
	xpRepo.AddEvent(&domain.XPEvent{
		UserID:      userID,
		XPAmount:    50,
		EventType:   domain.EventStreakMilestone,
		Description: "7-day streak bonus",
		CreatedAt:   achievedAt,
	})

	milestones, err := svc.Milestones(userID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(milestones) != len(StreakMilestones) {
		t.Fatalf("Expected %d milestones, got %d", len(StreakMilestones), len(milestones))
	}
	if milestones[0].Days != 7 || !milestones[0].Achieved {
		t.Error("Expected the 7-day milestone to be achieved")
	}
	if milestones[0].AchievedAt == nil {
		t.Error("Expected an achievement timestamp")
	}
	if milestones[1].Days != 14 || milestones[1].Achieved {
		t.Error("Expected the 14-day milestone to be pending")
	}
	if milestones[1].DaysRemaining == nil || *milestones[1].DaysRemaining != 4 {
		t.Error("Expected 4 days remaining to the 14-day milestone")
	}
}

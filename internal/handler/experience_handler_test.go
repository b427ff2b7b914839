package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/service"
	"github.com/juanpmar/finko/finko-backend/internal/testutil"
)

func newExperienceHandler() (*ExperienceHandler, *testutil.MockProfileRepository) {
	profileRepo := testutil.NewMockProfileRepository()
	xpRepo := testutil.NewMockXPEventRepository()
	profileRepo.EventSink = xpRepo
	svc := service.NewExperienceService(profileRepo, xpRepo)
	return NewExperienceHandler(svc), profileRepo
}

func TestStatusHandler_Success(t *testing.T) {
	e := echo.New()
	handler, profileRepo := newExperienceHandler()
	userID := uuid.New()
	profileRepo.AddProfile(&domain.Profile{UserID: userID, Timezone: "UTC", CurrentLevel: 1, CurrentXP: 40})

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/experience/status", "", userID)

	if err := handler.Status(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status service.ExperienceStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if status.CurrentXP != 40 {
		t.Errorf("Expected 40 XP, got %d", status.CurrentXP)
	}
	if status.EvolutionStage == "" {
		t.Error("Expected an evolution stage")
	}
}

func TestStatusHandler_ProfileNotFound(t *testing.T) {
	e := echo.New()
	handler, _ := newExperienceHandler()

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/experience/status", "", uuid.New())

	if err := handler.Status(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestCheckInHandler_FirstLogin(t *testing.T) {
	e := echo.New()
	handler, profileRepo := newExperienceHandler()
	userID := uuid.New()
	profileRepo.AddProfile(&domain.Profile{UserID: userID, Timezone: "UTC", CurrentLevel: 1})

	c, rec := authedRequest(e, http.MethodPost, "/api/v1/experience/check-in", "", userID)

	if err := handler.CheckIn(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result service.CheckInResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if result.XPAwarded != 15 {
		t.Errorf("Expected 15 XP for a daily check-in, got %d", result.XPAwarded)
	}
	if result.NewStreak != 1 {
		t.Errorf("Expected streak 1, got %d", result.NewStreak)
	}
}

func TestHistoryHandler_InvalidLimit(t *testing.T) {
	e := echo.New()
	handler, profileRepo := newExperienceHandler()
	userID := uuid.New()
	profileRepo.AddProfile(&domain.Profile{UserID: userID, Timezone: "UTC", CurrentLevel: 1})

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/experience/history?limit=500", "", userID)

	if err := handler.History(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an oversized limit, got %d", rec.Code)
	}
}

func TestHistoryHandler_Defaults(t *testing.T) {
	e := echo.New()
	handler, profileRepo := newExperienceHandler()
	userID := uuid.New()
	profileRepo.AddProfile(&domain.Profile{UserID: userID, Timezone: "UTC", CurrentLevel: 1})

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/experience/history", "", userID)

	if err := handler.History(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var history service.XPHistory
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if history.Limit != 50 || history.Offset != 0 {
		t.Errorf("Expected default paging 50/0, got %d/%d", history.Limit, history.Offset)
	}
}

func TestMilestonesHandler_Success(t *testing.T) {
	e := echo.New()
	handler, profileRepo := newExperienceHandler()
	userID := uuid.New()
	profileRepo.AddProfile(&domain.Profile{UserID: userID, Timezone: "UTC", CurrentLevel: 1, CurrentStreak: 3})

	c, rec := authedRequest(e, http.MethodGet, "/api/v1/experience/streak-milestones", "", userID)

	if err := handler.Milestones(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var milestones []service.MilestoneStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &milestones); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(milestones) == 0 {
		t.Fatal("Expected the milestone ladder")
	}
	if milestones[0].Days != 7 {
		t.Errorf("Expected the ladder to start at 7 days, got %d", milestones[0].Days)
	}
}

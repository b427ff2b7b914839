package service

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
	"github.com/juanpmar/finko/finko-backend/internal/testutil"
)

func TestUpdateTimezone_ValidatesIANAName(t *testing.T) {
	profileRepo := testutil.NewMockProfileRepository()
	svc := NewProfileService(profileRepo)
	userID := uuid.New()
	profileRepo.AddProfile(&domain.Profile{UserID: userID, Timezone: "UTC", CurrentLevel: 1})

	for _, tz := range []string{"", "Not/AZone", "garbage"} {
		if _, err := svc.UpdateTimezone(userID, tz); !errors.Is(err, domain.ErrInvalidTimezone) {
			t.Errorf("Expected ErrInvalidTimezone for %q, got %v", tz, err)
		}
	}

	profile, err := svc.UpdateTimezone(userID, "Europe/Madrid")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if profile.Timezone != "Europe/Madrid" {
		t.Errorf("Expected Europe/Madrid, got %s", profile.Timezone)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := NewProfileService(testutil.NewMockProfileRepository())

	if _, err := svc.Get(uuid.New()); !errors.Is(err, domain.ErrProfileNotFound) {
		t.Errorf("Expected ErrProfileNotFound, got %v", err)
	}
}

package service

import (
	"time"

	"github.com/google/uuid"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// ProfileService manages user profile settings.
type ProfileService struct {
	profileRepo domain.ProfileRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo domain.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

// Get returns the user's profile.
func (s *ProfileService) Get(userID uuid.UUID) (*domain.Profile, error) {
	return s.profileRepo.GetByUserID(userID)
}

// UpdateTimezone sets the profile timezone after validating the IANA name.
func (s *ProfileService) UpdateTimezone(userID uuid.UUID, timezone string) (*domain.Profile, error) {
	if timezone == "" {
		return nil, domain.ErrInvalidTimezone
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, domain.ErrInvalidTimezone
	}
	return s.profileRepo.UpdateTimezone(userID, timezone)
}

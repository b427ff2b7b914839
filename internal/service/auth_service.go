package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// IdentityProvider provisions user accounts in the external identity
// service.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
}

// AuthService creates identities and their local profiles.
type AuthService struct {
	identity    IdentityProvider
	profileRepo domain.ProfileRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(identity IdentityProvider, profileRepo domain.ProfileRepository) *AuthService {
	return &AuthService{
		identity:    identity,
		profileRepo: profileRepo,
	}
}

// SignUp provisions the account with the identity service and creates the
// matching profile with fresh gamification counters.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*domain.Profile, error) {
	userID, err := s.identity.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.Create(&domain.Profile{
		UserID:       userID,
		Timezone:     "UTC",
		CurrentLevel: 1,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID.String()).Msg("User signed up")
	return profile, nil
}

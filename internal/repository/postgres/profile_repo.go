package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// ProfileRepository implements domain.ProfileRepository using PostgreSQL
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

const profileColumns = `user_id, timezone, current_level, current_xp,
	current_streak, longest_streak, last_login_date, total_xp_earned,
	transactions_today_count, last_transaction_date, created_at, updated_at`

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var (
		userID                        pgtype.UUID
		timezone                      string
		level, xp, streak, longest    int
		lastLogin, lastTransaction    pgtype.Date
		totalXP, transactionsToday    int
		createdAt, updatedAt          time.Time
	)
	err := row.Scan(&userID, &timezone, &level, &xp, &streak, &longest,
		&lastLogin, &totalXP, &transactionsToday, &lastTransaction,
		&createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{
		UserID:                 uuidFromPg(userID),
		Timezone:               timezone,
		CurrentLevel:           level,
		CurrentXP:              xp,
		CurrentStreak:          streak,
		LongestStreak:          longest,
		LastLoginDate:          datePtrFromPg(lastLogin),
		TotalXPEarned:          totalXP,
		TransactionsTodayCount: transactionsToday,
		LastTransactionDate:    datePtrFromPg(lastTransaction),
		CreatedAt:              createdAt,
		UpdatedAt:              updatedAt,
	}, nil
}

// Create inserts a fresh profile for a new user.
func (r *ProfileRepository) Create(profile *domain.Profile) (*domain.Profile, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO profiles (user_id, timezone, current_level, current_xp,
			current_streak, longest_streak, total_xp_earned, transactions_today_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+profileColumns,
		pgUUID(profile.UserID), profile.Timezone, profile.CurrentLevel,
		profile.CurrentXP, profile.CurrentStreak, profile.LongestStreak,
		profile.TotalXPEarned, profile.TransactionsTodayCount)
	return scanProfile(row)
}

// GetByUserID retrieves a profile.
func (r *ProfileRepository) GetByUserID(userID uuid.UUID) (*domain.Profile, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+profileColumns+` FROM profiles WHERE user_id = $1`,
		pgUUID(userID))
	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

const updateProfileSQL = `
	UPDATE profiles
	SET timezone = $2, current_level = $3, current_xp = $4,
		current_streak = $5, longest_streak = $6, last_login_date = $7,
		total_xp_earned = $8, transactions_today_count = $9,
		last_transaction_date = $10, updated_at = now()
	WHERE user_id = $1`

// Update rewrites the profile's settings and counters.
func (r *ProfileRepository) Update(profile *domain.Profile) (*domain.Profile, error) {
	row := r.pool.QueryRow(context.Background(),
		updateProfileSQL+` RETURNING `+profileColumns,
		pgUUID(profile.UserID), profile.Timezone, profile.CurrentLevel,
		profile.CurrentXP, profile.CurrentStreak, profile.LongestStreak,
		pgDatePtr(profile.LastLoginDate), profile.TotalXPEarned,
		profile.TransactionsTodayCount, pgDatePtr(profile.LastTransactionDate))
	updated, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return updated, nil
}

// MutateWithEvents runs one gamification step against the row-locked
// profile. The row is read with SELECT ... FOR UPDATE, mutate decides and
// modifies it, and the updated counters plus the returned XP events commit
// together. Concurrent steps for the same user queue on the lock, so the
// same-day and daily-cap checks inside mutate always see committed state.
func (r *ProfileRepository) MutateWithEvents(userID uuid.UUID, mutate func(profile *domain.Profile) ([]*domain.XPEvent, error)) (*domain.Profile, error) {
	ctx := context.Background()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+profileColumns+` FROM profiles WHERE user_id = $1 FOR UPDATE`,
		pgUUID(userID))
	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}

	events, err := mutate(profile)
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, updateProfileSQL,
		pgUUID(profile.UserID), profile.Timezone, profile.CurrentLevel,
		profile.CurrentXP, profile.CurrentStreak, profile.LongestStreak,
		pgDatePtr(profile.LastLoginDate), profile.TotalXPEarned,
		profile.TransactionsTodayCount, pgDatePtr(profile.LastTransactionDate)); err != nil {
		return nil, err
	}

	for _, event := range events {
		if event.ID == uuid.Nil {
			event.ID = uuid.New()
		}
		if err := insertXPEvent(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateTimezone sets the profile timezone.
func (r *ProfileRepository) UpdateTimezone(userID uuid.UUID, timezone string) (*domain.Profile, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE profiles SET timezone = $2, updated_at = now()
		WHERE user_id = $1
		RETURNING `+profileColumns,
		pgUUID(userID), timezone)
	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/juanpmar/finko/finko-backend/internal/domain"
)

// XPEventRepository implements domain.XPEventRepository using PostgreSQL.
// The table is append-only; there are no update or delete paths.
type XPEventRepository struct {
	pool *pgxpool.Pool
}

// NewXPEventRepository creates a new XPEventRepository
func NewXPEventRepository(pool *pgxpool.Pool) *XPEventRepository {
	return &XPEventRepository{pool: pool}
}

const xpEventColumns = `id, user_id, xp_amount, event_type, description, metadata, sequence, created_at`

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertXPEvent(ctx context.Context, db execer, event *domain.XPEvent) error {
	var metadata any
	if event.Metadata != nil {
		metadata = event.Metadata
	}
	// Ordering comes from the sequence identity column, not created_at.
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := db.Exec(ctx, `
		INSERT INTO xp_events (id, user_id, xp_amount, event_type, description, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pgUUID(event.ID), pgUUID(event.UserID), event.XPAmount,
		string(event.EventType), event.Description, metadata, createdAt)
	return err
}

func scanXPEvent(row pgx.Row) (*domain.XPEvent, error) {
	var (
		id, userID  pgtype.UUID
		xpAmount    int
		eventType   string
		description string
		metadata    map[string]string
		sequence    int64
		createdAt   time.Time
	)
	err := row.Scan(&id, &userID, &xpAmount, &eventType, &description, &metadata, &sequence, &createdAt)
	if err != nil {
		return nil, err
	}
	return &domain.XPEvent{
		ID:          uuidFromPg(id),
		UserID:      uuidFromPg(userID),
		XPAmount:    xpAmount,
		EventType:   domain.XPEventType(eventType),
		Description: description,
		Metadata:    metadata,
		Sequence:    sequence,
		CreatedAt:   createdAt,
	}, nil
}

// Create appends a single event.
func (r *XPEventRepository) Create(event *domain.XPEvent) (*domain.XPEvent, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if err := insertXPEvent(context.Background(), r.pool, event); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+xpEventColumns+` FROM xp_events WHERE id = $1`, pgUUID(event.ID))
	return scanXPEvent(row)
}

// ListByUser returns a page of events, newest first.
func (r *XPEventRepository) ListByUser(userID uuid.UUID, limit, offset int) ([]*domain.XPEvent, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+xpEventColumns+`
		FROM xp_events
		WHERE user_id = $1
		ORDER BY sequence DESC
		LIMIT $2 OFFSET $3`,
		pgUUID(userID), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.XPEvent
	for rows.Next() {
		event, err := scanXPEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

// CountByUser counts all events for a user.
func (r *XPEventRepository) CountByUser(userID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM xp_events WHERE user_id = $1`,
		pgUUID(userID)).Scan(&count)
	return count, err
}

// GetMilestoneEvent finds the streak_milestone event for a streak length,
// matched by the "<N>-day" description marker. Returns (nil, nil) when no
// such event exists.
func (r *XPEventRepository) GetMilestoneEvent(userID uuid.UUID, days int) (*domain.XPEvent, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+xpEventColumns+`
		FROM xp_events
		WHERE user_id = $1 AND event_type = 'streak_milestone'
			AND description LIKE '%' || $2 || '%'
		ORDER BY sequence
		LIMIT 1`,
		pgUUID(userID), fmt.Sprintf("%d-day", days))
	event, err := scanXPEvent(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return event, nil
}

// FinancialGoalEventsForMonth finds financial_goal events carrying the
// "<M>/<Y>" month marker in their description.
func (r *XPEventRepository) FinancialGoalEventsForMonth(userID uuid.UUID, month, year int) ([]*domain.XPEvent, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+xpEventColumns+`
		FROM xp_events
		WHERE user_id = $1 AND event_type = 'financial_goal'
			AND description LIKE '%' || $2 || '%'`,
		pgUUID(userID), fmt.Sprintf("%d/%d", month, year))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.XPEvent
	for rows.Next() {
		event, err := scanXPEvent(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, event)
	}
	return result, rows.Err()
}

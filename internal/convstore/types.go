package convstore

import (
	"context"
	"time"
)

// TurnRecord is the append-only record handed off per completed exchange,
// keyed by session id. The store's wider schema is its own business.
type TurnRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	TripType  string    `json:"trip_type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists and retrieves conversation turns.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	RecentTurns(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)
	Close() error
}

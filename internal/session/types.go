package session

import "time"

// Turn is one completed exchange recorded in a session's history. Immutable
// once appended.
type Turn struct {
	Ordinal       int       `json:"ordinal"`
	UserText      string    `json:"user_text"`
	AssistantText string    `json:"assistant_text"`
	TripType      string    `json:"trip_type,omitempty"`
	At            time.Time `json:"at"`
}

// CreateRequest defines payload for creating a new session.
type CreateRequest struct {
	UserID string `json:"user_id"`
}

// CreateResponse returns created session metadata.
type CreateResponse struct {
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	Status          Status    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	InactivityTTLMS int64     `json:"inactivity_ttl_ms"`
}

package engine

import (
	"github.com/mlenarti/itinera/internal/travel"
)

// Stage is the turn state machine position. Transitions are strictly
// forward; recoverable stage failures demote their contribution to empty
// instead of moving the machine backwards.
type Stage string

const (
	StageReceived     Stage = "received"
	StageExtracted    Stage = "extracted"
	StageDataGathered Stage = "data_gathered"
	StageRetrieved    Stage = "retrieved"
	StageAssembled    Stage = "assembled"
	StagePrompted     Stage = "prompted"
	StageCompleted    Stage = "completed"
	StageFormatted    Stage = "formatted"
	StageDelivered    Stage = "delivered"
)

// FallbackMessage is the fixed, non-generated reply used when the
// completion endpoint fails. The session survives the turn.
const FallbackMessage = "I'm having trouble generating an answer right now. Please try again in a moment."

// Reply is the delivered result of one turn.
type Reply struct {
	SessionID string               `json:"session_id"`
	TurnID    string               `json:"turn_id"`
	Ordinal   int                  `json:"ordinal"`
	Text      string               `json:"text"`
	Stage     Stage                `json:"stage"`
	Fallback  bool                 `json:"fallback"`
	Sources   []travel.FetchResult `json:"sources,omitempty"`
	Passages  int                  `json:"passages"`
}

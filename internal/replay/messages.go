package replay

import (
	"time"

	"github.com/hersh/gblocks/internal/game"
)

// RecordType identifies the kind of line in a recording.
type RecordType string

const (
	RecHeader  RecordType = "header"
	RecInput   RecordType = "input"
	RecRestart RecordType = "restart"
	RecEnd     RecordType = "end"
)

// Envelope is the format of every line of a recording.
type Envelope struct {
	Type    RecordType `json:"type"`
	Payload any        `json:"payload"`
}

// HeaderPayload opens a recording. Seed and Config are enough to rebuild the
// session exactly.
type HeaderPayload struct {
	SessionID string      `json:"session_id"`
	Seed      int64       `json:"seed"`
	Config    game.Config `json:"config"`
	Started   time.Time   `json:"started"`
}

// InputPayload says the held commands changed at Tick and stay the same
// until the next input line.
type InputPayload struct {
	Tick     uint64       `json:"tick"`
	Commands game.Command `json:"commands"`
}

// RestartPayload marks a restart after Tick ticks of the previous game.
type RestartPayload struct {
	Tick uint64 `json:"tick"`
}

// EndPayload closes a recording with the state the game ended in.
type EndPayload struct {
	Tick  uint64  `json:"tick"`
	Score int     `json:"score"`
	Field []uint8 `json:"field"`
}

package game

// Phase is the live state of a session. Exactly one of *Running, *AfterShock,
// *Clearing or *Paused.
type Phase interface {
	Kind() PhaseKind
	sealed()
}

type PhaseKind uint8

const (
	PhasePaused PhaseKind = iota
	PhaseRunning
	PhaseAfterShock
	PhaseClearing
)

func (k PhaseKind) String() string {
	switch k {
	case PhasePaused:
		return "paused"
	case PhaseRunning:
		return "running"
	case PhaseAfterShock:
		return "aftershock"
	case PhaseClearing:
		return "clearing"
	}
	return "unknown"
}

// Running is normal play with a piece under control.
type Running struct {
	Active        ActivePiece
	LastDrop      uint64
	LastHorizMove uint64
	// WaitingToMove is set by any sideways press and only cleared once the
	// move has been serviced, so a short tap always moves once.
	WaitingToMove bool
	// AlreadyRotated holds a rotation until the rotate keys are released.
	AlreadyRotated bool

	// net sideways direction of the last tick a move key was held
	moveDir int
}

func newRunning(active ActivePiece, tick uint64) *Running {
	return &Running{
		Active:        active,
		LastDrop:      tick,
		LastHorizMove: tick,
	}
}

// AfterShock is the short pause after a lock that cleared nothing.
type AfterShock struct {
	StartTick uint64
	EndTick   uint64
}

// Clearing flashes the completed lines before they are removed.
type Clearing struct {
	StartTick uint64
	EndTick   uint64
	Lines     []int
}

// Paused keeps the interrupted running state. Nothing in Tick enters it.
type Paused struct {
	Previous *Running
}

func (*Running) Kind() PhaseKind    { return PhaseRunning }
func (*AfterShock) Kind() PhaseKind { return PhaseAfterShock }
func (*Clearing) Kind() PhaseKind   { return PhaseClearing }
func (*Paused) Kind() PhaseKind     { return PhasePaused }

func (*Running) sealed()    {}
func (*AfterShock) sealed() {}
func (*Clearing) sealed()   {}
func (*Paused) sealed()     {}

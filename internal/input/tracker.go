package input

import (
	"sync"
	"time"

	"github.com/hersh/gblocks/internal/game"
)

// DefaultHoldWindow covers the gap between a terminal's first key event and
// its auto-repeat.
const DefaultHoldWindow = 120 * time.Millisecond

var keyCommands = map[string]game.Command{
	"left":  game.CmdMoveLeft,
	"h":     game.CmdMoveLeft,
	"a":     game.CmdMoveLeft,
	"right": game.CmdMoveRight,
	"l":     game.CmdMoveRight,
	"d":     game.CmdMoveRight,
	"down":  game.CmdFastFall,
	"j":     game.CmdFastFall,
	"s":     game.CmdFastFall,
	"up":    game.CmdRotateLeft,
	"z":     game.CmdRotateLeft,
	"k":     game.CmdRotateLeft,
	"x":     game.CmdRotateRight,
	"w":     game.CmdRotateRight,
}

// CommandFor returns the command bound to a key name, as reported by
// bubbletea's KeyMsg.String().
func CommandFor(key string) (game.Command, bool) {
	c, ok := keyCommands[key]
	return c, ok
}

// Tracker turns key presses into held commands. Terminals report presses and
// auto-repeats but never releases, so a key counts as held until no event for
// it arrived within the hold window.
type Tracker struct {
	mu     sync.Mutex
	window time.Duration
	now    func() time.Time
	last   map[game.Command]time.Time
}

type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

func NewTracker(window time.Duration, opts ...Option) *Tracker {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	t := &Tracker{
		window: window,
		now:    time.Now,
		last:   make(map[game.Command]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Press records a key event. It reports whether the key is bound to a command.
func (t *Tracker) Press(key string) bool {
	cmd, ok := keyCommands[key]
	if !ok {
		return false
	}
	t.mu.Lock()
	t.last[cmd] = t.now()
	t.mu.Unlock()
	return true
}

// Commands returns every command whose key was seen within the hold window.
func (t *Tracker) Commands() game.Command {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var cmds game.Command
	for cmd, at := range t.last {
		if now.Sub(at) < t.window {
			cmds |= cmd
		} else {
			delete(t.last, cmd)
		}
	}
	return cmds
}

// Reset forgets every held key.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.last)
}

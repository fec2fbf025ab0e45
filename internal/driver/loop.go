package driver

import (
	"context"
	"sync"
	"time"

	"github.com/hersh/gblocks/internal/game"
	"go.uber.org/zap"
)

// Ticker fires once per game tick.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type timeTicker struct {
	t *time.Ticker
}

// NewTicker wraps a time.Ticker firing every d.
func NewTicker(d time.Duration) Ticker {
	return &timeTicker{t: time.NewTicker(d)}
}

func (t *timeTicker) C() <-chan time.Time { return t.t.C }
func (t *timeTicker) Stop()               { t.t.Stop() }

// CommandSource reports the commands held for the next tick.
type CommandSource interface {
	Commands() game.Command
}

// CommandFunc adapts a plain function to a CommandSource.
type CommandFunc func() game.Command

func (f CommandFunc) Commands() game.Command { return f() }

// Step is what a hook sees after every tick or restart.
type Step struct {
	Commands game.Command
	Events   game.Event
	Snapshot game.Snapshot
	// Restart is set when the step is a restart rather than a tick.
	Restart bool
}

type Hook func(Step)

// Loop is the single writer of a session. Readers only ever see the snapshot
// published after the last completed step.
type Loop struct {
	mu      sync.RWMutex
	session *game.Session
	snap    game.Snapshot
	hooks   []Hook
	log     *zap.Logger

	// held from the state change until its hooks return
	hookMu sync.Mutex
}

func New(session *game.Session, log *zap.Logger) *Loop {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loop{
		session: session,
		snap:    session.Snapshot(),
		log:     log,
	}
}

// OnStep registers a hook. Hooks run on the stepping goroutine in
// registration order, and every hook has seen a step before the next step or
// restart is applied. Hooks must not call Step or Restart.
func (l *Loop) OnStep(h Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, h)
}

// Step advances the session by exactly one tick.
func (l *Loop) Step(cmds game.Command) game.Event {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()

	l.mu.Lock()
	ev := l.session.Tick(cmds)
	l.snap = l.session.Snapshot()
	st := Step{Commands: cmds, Events: ev, Snapshot: l.snap}
	hooks := l.hooks
	l.mu.Unlock()

	for _, h := range hooks {
		h(st)
	}
	return ev
}

// Restart begins a new game on the same session and generator.
func (l *Loop) Restart() {
	l.hookMu.Lock()
	defer l.hookMu.Unlock()

	l.mu.Lock()
	// tick of the abandoned game, so a replay can restart at the same point
	tick := l.session.TickNo()
	l.session.Restart()
	l.snap = l.session.Snapshot()
	st := Step{Snapshot: l.snap, Restart: true}
	st.Snapshot.Tick = tick
	hooks := l.hooks
	l.mu.Unlock()

	l.log.Info("game restarted", zap.Uint64("at_tick", tick))
	for _, h := range hooks {
		h(st)
	}
}

// Snapshot returns the last published snapshot. Its slices are shared with
// other readers and must not be modified.
func (l *Loop) Snapshot() game.Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snap
}

// Run steps once per ticker fire until ctx is done. It owns the ticker and
// stops it on return.
func (l *Loop) Run(ctx context.Context, ticker Ticker, src CommandSource) error {
	defer ticker.Stop()

	l.log.Info("driver started", zap.Uint64("tick", l.Snapshot().Tick))
	for {
		select {
		case <-ctx.Done():
			l.log.Info("driver stopped", zap.Uint64("tick", l.Snapshot().Tick), zap.Error(ctx.Err()))
			return ctx.Err()
		case <-ticker.C():
			cmds := src.Commands()
			ev := l.Step(cmds)
			if ev != game.EventNone {
				l.log.Debug("tick events",
					zap.Uint64("tick", l.Snapshot().Tick),
					zap.Stringer("commands", cmds),
					zap.Stringer("events", ev),
				)
			}
		}
	}
}

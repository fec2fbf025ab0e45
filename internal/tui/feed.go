package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hersh/gblocks/internal/driver"
	"github.com/hersh/gblocks/internal/game"
	"go.uber.org/zap"
)

const feedBuffer = 256

// StepMsg carries the events of one driver step to the program. Frames only
// sample snapshots, so without it events between two frames would be lost.
type StepMsg struct {
	Tick    uint64
	Events  game.Event
	Restart bool
}

// Feed forwards driver steps to a bubbletea program without ever blocking
// the driver.
type Feed struct {
	mu      sync.Mutex
	program *tea.Program
	ch      chan StepMsg
	done    chan struct{}
	closed  bool
	log     *zap.Logger
}

func NewFeed(log *zap.Logger) *Feed {
	if log == nil {
		log = zap.NewNop()
	}
	return &Feed{
		ch:   make(chan StepMsg, feedBuffer),
		done: make(chan struct{}),
		log:  log,
	}
}

// SetProgram sets the program steps are sent to.
func (f *Feed) SetProgram(p *tea.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.program = p
}

// Start launches the pump goroutine.
func (f *Feed) Start() {
	go f.pump()
}

// Hook is registered with the driver. Steps without events are not forwarded.
func (f *Feed) Hook(st driver.Step) {
	if st.Events == game.EventNone && !st.Restart {
		return
	}
	msg := StepMsg{Tick: st.Snapshot.Tick, Events: st.Events, Restart: st.Restart}
	select {
	case f.ch <- msg:
	default:
		f.log.Warn("feed full, dropping step", zap.Uint64("tick", msg.Tick), zap.Stringer("events", msg.Events))
	}
}

// Close stops the pump. Steps still buffered are dropped.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	close(f.done)
}

func (f *Feed) pump() {
	for {
		select {
		case msg := <-f.ch:
			f.mu.Lock()
			p := f.program
			f.mu.Unlock()
			if p != nil {
				p.Send(msg)
			}
		case <-f.done:
			return
		}
	}
}

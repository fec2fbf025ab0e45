package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/hersh/gblocks/internal/driver"
	"github.com/hersh/gblocks/internal/game"
	"github.com/hersh/gblocks/internal/input"
)

// FrameMsg asks the model to sample a new snapshot.
type FrameMsg time.Time

// cueTicks is how long an event indicator stays lit.
const cueTicks = 12

var cueEvents = []game.Event{
	game.EventPieceMove,
	game.EventPieceFall,
	game.EventPieceCollision,
	game.EventLineClear,
}

type Model struct {
	loop  *driver.Loop
	keys  *input.Tracker
	frame time.Duration
	info  Info

	snap   game.Snapshot
	cues   map[game.Event]uint64
	width  int
	height int
}

// NewModel creates the game screen. It only reads from loop and never steps it.
func NewModel(loop *driver.Loop, keys *input.Tracker, fps int, info Info) Model {
	if fps <= 0 {
		fps = 30
	}
	return Model{
		loop:  loop,
		keys:  keys,
		frame: time.Second / time.Duration(fps),
		info:  info,
		snap:  loop.Snapshot(),
		cues:  make(map[game.Event]uint64),
	}
}

func (m Model) Init() tea.Cmd {
	return frameCmd(m.frame)
}

func frameCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return FrameMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case FrameMsg:
		m.snap = m.loop.Snapshot()
		return m, frameCmd(m.frame)
	case StepMsg:
		return m.handleStep(msg), nil
	}
	return m, nil
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "r":
		m.keys.Reset()
		m.loop.Restart()
		m.snap = m.loop.Snapshot()
		return m, nil
	}
	m.keys.Press(msg.String())
	return m, nil
}

func (m Model) handleStep(msg StepMsg) Model {
	if msg.Restart {
		m.cues = make(map[game.Event]uint64)
		return m
	}
	cues := make(map[game.Event]uint64, len(m.cues)+1)
	for ev, tick := range m.cues {
		cues[ev] = tick
	}
	for _, ev := range cueEvents {
		if msg.Events.Has(ev) {
			cues[ev] = msg.Tick
		}
	}
	m.cues = cues
	return m
}

// activeCues reports the indicators lit at the current snapshot tick.
func (m Model) activeCues() map[game.Event]bool {
	active := make(map[game.Event]bool, len(m.cues))
	for ev, tick := range m.cues {
		if m.snap.Tick >= tick && m.snap.Tick-tick < cueTicks {
			active[ev] = true
		}
	}
	return active
}

func (m Model) View() string {
	board := lipgloss.NewStyle().
		Padding(1, 2).
		Render(RenderBoard(m.snap))

	side := lipgloss.JoinVertical(
		lipgloss.Left,
		RenderInfo(m.snap, m.info),
		RenderPreview(m.snap.Preview),
		"",
		RenderEvents(m.activeCues()),
		"",
		RenderControls(),
	)
	leftPanel := lipgloss.NewStyle().
		Width(28).
		Padding(1, 0).
		Render(side)

	return lipgloss.NewStyle().
		Width(m.width).
		Height(m.height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, board))
}

package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGenerator hands out a fixed sequence of pieces, cycling.
type scriptedGenerator struct {
	pieces []PieceState
	n      int
}

func script(pieces ...PieceState) *scriptedGenerator {
	return &scriptedGenerator{pieces: pieces}
}

func (g *scriptedGenerator) Next() PieceState {
	p := g.pieces[g.n%len(g.pieces)]
	g.n++
	return p
}

var (
	pieceIHoriz = NewPieceState(ShapeI, 1) // 0xF000
	pieceIVert  = NewPieceState(ShapeI, 0) // 0x8888
	pieceO      = NewPieceState(ShapeO, 0)
	pieceT      = NewPieceState(ShapeT, 0) // 0xE400
)

func newTestSession(t *testing.T, gen Generator) *Session {
	t.Helper()
	s, err := NewSession(DefaultConfig(), gen)
	require.NoError(t, err)
	return s
}

func mustRunning(t *testing.T, s *Session) *Running {
	t.Helper()
	r, ok := s.Phase().(*Running)
	require.True(t, ok, "phase is %s", s.Phase().Kind())
	return r
}

// place replaces the active piece, restarting its gravity and move timers at
// the current tick.
func place(s *Session, p PieceState, row, col int) *Running {
	r := newRunning(ActivePiece{Row: row, Col: col, Piece: p}, s.tick)
	s.phase = r
	return r
}

func tickN(s *Session, n int, cmds Command) Event {
	var all Event
	for i := 0; i < n; i++ {
		all |= s.Tick(cmds)
	}
	return all
}

func TestNewSessionSpawnsAboveField(t *testing.T) {
	s := newTestSession(t, script(pieceIHoriz))

	r := mustRunning(t, s)
	assert.Equal(t, -1, r.Active.Row)
	assert.Equal(t, 3, r.Active.Col)
	assert.Equal(t, uint64(0), s.TickNo())
	assert.Equal(t, 0, s.Score())
	assert.Equal(t, []PieceState{pieceIHoriz}, s.Preview().Pieces())
	assert.Equal(t, make([]uint8, 160), s.Field().Cells())
}

func TestNewSessionRejectsBadInput(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rows = 3
	_, err := NewSession(cfg, script(pieceO))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewSession(DefaultConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPieceFallsAndLocksOnFloor(t *testing.T) {
	s := newTestSession(t, script(pieceIHoriz))

	tickN(s, 29, CmdNone)
	assert.Equal(t, -1, mustRunning(t, s).Active.Row)
	ev := s.Tick(CmdNone)
	assert.Equal(t, EventPieceFall, ev)
	assert.Equal(t, 0, mustRunning(t, s).Active.Row)

	for {
		if _, ok := s.Phase().(*Running); !ok {
			break
		}
		ev = s.Tick(CmdNone)
	}

	// sixteen drops to reach the bottom row, one more gravity step to lock
	assert.Equal(t, uint64(17*30), s.TickNo())
	assert.True(t, ev.Has(EventPieceCollision))
	assert.True(t, ev.Has(EventPieceFall))
	assert.False(t, ev.Has(EventLineClear))

	cells := s.Field().Cells()
	for i, c := range cells {
		if i >= 153 && i <= 156 {
			assert.Equal(t, pieceIHoriz.Color, c, "cell %d", i)
		} else {
			assert.Equal(t, ColorEmpty, c, "cell %d", i)
		}
	}

	shock, ok := s.Phase().(*AfterShock)
	require.True(t, ok)
	assert.Equal(t, uint64(510), shock.StartTick)
	assert.Equal(t, uint64(525), shock.EndTick)
}

func TestAfterShockSpawnsNextPiece(t *testing.T) {
	s := newTestSession(t, script(pieceO, pieceT, pieceIHoriz))
	place(s, pieceO, 14, 0)

	tickN(s, 30, CmdNone)
	require.IsType(t, &AfterShock{}, s.Phase())

	// commands are ignored while the aftershock runs
	tickN(s, 14, CmdMoveLeft|CmdRotateRight)
	require.IsType(t, &AfterShock{}, s.Phase())

	s.Tick(CmdNone)
	r := mustRunning(t, s)
	// the queued piece spawns and the generator refills the preview
	assert.Equal(t, pieceO, r.Active.Piece)
	assert.Equal(t, -2, r.Active.Row)
	assert.Equal(t, uint64(45), r.LastDrop)
	assert.Equal(t, []PieceState{pieceIHoriz}, s.Preview().Pieces())
}

func TestSpawnWithoutPreview(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreviewDepth = 0
	s, err := NewSession(cfg, script(pieceIHoriz, pieceT))
	require.NoError(t, err)
	assert.Empty(t, s.Preview().Pieces())
	assert.Equal(t, pieceIHoriz, mustRunning(t, s).Active.Piece)

	place(s, pieceO, 14, 0)
	tickN(s, 45, CmdNone)
	assert.Equal(t, pieceT, mustRunning(t, s).Active.Piece)
	assert.Empty(t, s.Preview().Pieces())
}

func TestLineClearFlashesThenShifts(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	fillRow(s.field, 15, 7, 9)
	place(s, pieceIVert, 12, 9)

	ev := tickN(s, 29, CmdNone)
	assert.Equal(t, EventNone, ev)
	ev = s.Tick(CmdNone)
	assert.True(t, ev.Has(EventLineClear))
	assert.True(t, ev.Has(EventPieceFall))
	assert.False(t, ev.Has(EventPieceCollision))

	clr, ok := s.Phase().(*Clearing)
	require.True(t, ok)
	assert.Equal(t, []int{15}, clr.Lines)
	assert.Equal(t, uint64(30), clr.StartTick)
	assert.Equal(t, uint64(75), clr.EndTick)

	cfg := s.Config()
	for s.TickNo() < 74 {
		s.Tick(CmdNone)
		want := cfg.FlashHiColor
		if math.Mod(float64(s.TickNo()), cfg.TicksPerFlash()) < cfg.TicksPerFlash()/2 {
			want = cfg.FlashLoColor
		}
		for col := 0; col < 10; col++ {
			require.Equal(t, want, s.Field().At(15, col), "tick %d col %d", s.TickNo(), col)
		}
		require.IsType(t, &Clearing{}, s.Phase())
	}

	s.Tick(CmdNone)
	mustRunning(t, s)

	color := pieceIVert.Color
	for row := 0; row < 16; row++ {
		for col := 0; col < 10; col++ {
			want := ColorEmpty
			if col == 9 && row >= 13 {
				want = color
			}
			assert.Equal(t, want, s.Field().At(row, col), "(%d,%d)", row, col)
		}
	}
	assert.Equal(t, 0, s.Score())
}

func TestFlashAlternatesLowAndHigh(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	fillRow(s.field, 15, 7, 9)
	place(s, pieceIVert, 12, 9)
	tickN(s, 30, CmdNone)

	s.Tick(CmdNone) // tick 31, 1 tick into a 15 tick cycle
	assert.Equal(t, ColorFlash, s.Field().At(15, 0))
	tickN(s, 7, CmdNone) // tick 38
	assert.Equal(t, uint8(1), s.Field().At(15, 0))
	tickN(s, 7, CmdNone) // tick 45, new cycle
	assert.Equal(t, ColorFlash, s.Field().At(15, 0))
}

func TestShortTapMovesOnce(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	require.Equal(t, 4, mustRunning(t, s).Active.Col)

	ev := s.Tick(CmdMoveLeft)
	assert.False(t, ev.Has(EventPieceMove))
	assert.True(t, mustRunning(t, s).WaitingToMove)

	for tick := 2; tick <= 20; tick++ {
		ev = s.Tick(CmdNone)
		r := mustRunning(t, s)
		switch {
		case tick < 5:
			assert.Equal(t, 4, r.Active.Col, "tick %d", tick)
		case tick == 5:
			assert.True(t, ev.Has(EventPieceMove))
			assert.Equal(t, 3, r.Active.Col)
			assert.False(t, r.WaitingToMove)
		default:
			assert.False(t, ev.Has(EventPieceMove), "tick %d", tick)
			assert.Equal(t, 3, r.Active.Col, "tick %d", tick)
		}
	}
}

func TestHeldMoveRepeats(t *testing.T) {
	s := newTestSession(t, script(pieceO))

	ev := tickN(s, 10, CmdMoveRight)
	assert.True(t, ev.Has(EventPieceMove))
	assert.Equal(t, 6, mustRunning(t, s).Active.Col)
}

func TestMoveBlockedByWall(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	place(s, pieceO, 5, 8)

	ev := tickN(s, 5, CmdMoveRight)
	r := mustRunning(t, s)
	assert.False(t, ev.Has(EventPieceMove))
	assert.Equal(t, 8, r.Active.Col)
	assert.False(t, r.WaitingToMove)
	assert.Equal(t, uint64(5), r.LastHorizMove)
}

func TestMoveBlockedAtCandidateColumn(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	s.field.Set(10, 2, 7)
	place(s, pieceO, 10, 3)

	ev := tickN(s, 5, CmdMoveLeft)
	assert.False(t, ev.Has(EventPieceMove))
	assert.Equal(t, 3, mustRunning(t, s).Active.Col)

	// the same block does not stop a move to the right
	ev = tickN(s, 5, CmdMoveRight)
	assert.True(t, ev.Has(EventPieceMove))
	assert.Equal(t, 4, mustRunning(t, s).Active.Col)
}

func TestOpposingMoveKeysCancel(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	ev := tickN(s, 10, CmdMoveLeft|CmdMoveRight)
	assert.False(t, ev.Has(EventPieceMove))
	assert.Equal(t, 4, mustRunning(t, s).Active.Col)
}

func TestRotationOncePerPress(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	place(s, pieceT, 5, 3)

	s.Tick(CmdRotateRight)
	r := mustRunning(t, s)
	assert.Equal(t, 1, r.Active.Piece.Rotation)
	assert.True(t, r.AlreadyRotated)

	tickN(s, 3, CmdRotateRight)
	assert.Equal(t, 1, mustRunning(t, s).Active.Piece.Rotation)

	s.Tick(CmdNone)
	assert.False(t, mustRunning(t, s).AlreadyRotated)
	s.Tick(CmdRotateRight)
	assert.Equal(t, 2, mustRunning(t, s).Active.Piece.Rotation)
}

func TestRotateLeftWraps(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	place(s, pieceT, 5, 3)

	s.Tick(CmdRotateLeft)
	r := mustRunning(t, s)
	assert.Equal(t, 3, r.Active.Piece.Rotation)
	assert.Equal(t, Pattern(0x4C40), r.Active.Piece.Pattern())
}

func TestBothRotateKeysClearDebounce(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	r := place(s, pieceT, 5, 3)
	r.AlreadyRotated = true

	s.Tick(CmdRotateLeft | CmdRotateRight)
	r = mustRunning(t, s)
	assert.False(t, r.AlreadyRotated)
	assert.Equal(t, 0, r.Active.Piece.Rotation)
}

func TestRotationRejected(t *testing.T) {
	tests := []struct {
		name     string
		piece    PieceState
		row, col int
		blocks   [][2]int
	}{
		{"wall", NewPieceState(ShapeT, 1), 5, 8, nil},
		{"floor", pieceIHoriz, 13, 0, nil},
		{"block", pieceIHoriz, 5, 0, [][2]int{{6, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t, script(pieceO))
			for _, b := range tt.blocks {
				s.field.Set(b[0], b[1], 7)
			}
			place(s, tt.piece, tt.row, tt.col)

			s.Tick(CmdRotateRight)
			r := mustRunning(t, s)
			assert.Equal(t, tt.piece, r.Active.Piece)
			assert.Equal(t, tt.row, r.Active.Row)
			assert.Equal(t, tt.col, r.Active.Col)
			assert.True(t, r.AlreadyRotated)
		})
	}
}

// ticksToNextRow counts ticks until the active piece moves down one row.
func ticksToNextRow(s *Session, cmds Command) int {
	start := s.phase.(*Running).Active.Row
	n := 0
	for s.phase.(*Running).Active.Row == start {
		s.Tick(cmds)
		n++
	}
	return n
}

func TestGravityCadence(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	place(s, pieceO, 0, 4)
	baseline := ticksToNextRow(s, CmdNone)
	assert.Equal(t, 30, baseline)
	assert.Equal(t, 30, ticksToNextRow(s, CmdNone))

	fast := ticksToNextRow(s, CmdFastFall)
	want := int(math.Ceil(s.Config().TicksPerRow() / s.Config().FastFallMultiplier))
	assert.Equal(t, want, fast)
	assert.Equal(t, 2, fast)
}

func TestLockStampsWholePiece(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	place(s, pieceT, 14, 0)

	ev := tickN(s, 30, CmdNone)
	assert.True(t, ev.Has(EventPieceCollision))

	want := map[[2]int]bool{{14, 0}: true, {14, 1}: true, {14, 2}: true, {15, 1}: true}
	set := 0
	for row := 0; row < 16; row++ {
		for col := 0; col < 10; col++ {
			if c := s.Field().At(row, col); c != ColorEmpty {
				set++
				assert.True(t, want[[2]int{row, col}], "(%d,%d)", row, col)
				assert.Equal(t, pieceT.Color, c)
			}
		}
	}
	assert.Equal(t, 4, set)
}

func TestEventsResetEachTick(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	tickN(s, 29, CmdNone)
	assert.Equal(t, EventPieceFall, s.Tick(CmdNone))
	assert.Equal(t, EventNone, s.Tick(CmdNone))
	assert.Equal(t, EventNone, s.Events())
}

func TestPausedDoesNothing(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	prev := mustRunning(t, s)
	paused := &Paused{Previous: prev}
	s.phase = paused

	ev := tickN(s, 100, CmdMoveLeft|CmdFastFall|CmdRotateLeft)
	assert.Equal(t, EventNone, ev)
	assert.Equal(t, uint64(100), s.TickNo())
	assert.Same(t, paused, s.Phase())
	assert.Equal(t, 4, prev.Active.Col)
	assert.Equal(t, -2, prev.Active.Row)
}

type bogusPhase struct{}

func (bogusPhase) Kind() PhaseKind { return PhaseKind(99) }
func (bogusPhase) sealed()         {}

func TestUnknownPhasePanics(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	s.phase = bogusPhase{}
	assert.Panics(t, func() { s.Tick(CmdNone) })
}

func TestRestart(t *testing.T) {
	s := newTestSession(t, script(pieceO, pieceT))
	place(s, pieceO, 14, 0)
	tickN(s, 40, CmdNone)
	require.NotEqual(t, make([]uint8, 160), s.Field().Cells())

	s.Restart()
	assert.Equal(t, uint64(0), s.TickNo())
	assert.Equal(t, make([]uint8, 160), s.Field().Cells())
	mustRunning(t, s)
	assert.Len(t, s.Preview().Pieces(), 1)
}

func TestSnapshot(t *testing.T) {
	s := newTestSession(t, script(pieceO))
	place(s, pieceT, 3, 2)

	snap := s.Snapshot()
	require.NotNil(t, snap.Active)
	assert.Equal(t, PhaseRunning, snap.Phase)
	assert.Equal(t, pieceT.Color, snap.CellAt(3, 2))
	assert.Equal(t, pieceT.Color, snap.CellAt(4, 3))
	assert.Equal(t, ColorEmpty, snap.CellAt(4, 2))

	snap.Field[0] = 9
	snap.Preview[0] = pieceT
	assert.Equal(t, ColorEmpty, s.Field().At(0, 0))
	assert.Equal(t, pieceO, s.Preview().Pieces()[0])

	place(s, pieceO, 14, 0)
	tickN(s, 30, CmdNone)
	snap = s.Snapshot()
	assert.Equal(t, PhaseAfterShock, snap.Phase)
	assert.Nil(t, snap.Active)
	assert.Equal(t, pieceO.Color, snap.CellAt(15, 1))
}

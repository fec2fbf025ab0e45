package game

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Session is one game: the field, the current phase and the preview queue,
// advanced one tick at a time by Tick. It is not safe for concurrent use;
// see the driver package for a locked wrapper.
type Session struct {
	cfg     Config
	log     *zap.Logger
	gen     Generator
	field   *Field
	preview *Preview
	phase   Phase

	tick   uint64
	score  int
	events Event
}

type Option func(*Session)

// WithLogger makes the session log its phase transitions.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		s.log = l
	}
}

// NewSession validates cfg and starts a game with its first piece already
// spawned above the field.
func NewSession(cfg Config, gen Generator, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, fmt.Errorf("%w: nil piece generator", ErrInvalidConfig)
	}
	s := &Session{
		cfg: cfg,
		log: zap.NewNop(),
		gen: gen,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.start()
	return s, nil
}

func (s *Session) start() {
	s.field = NewField(s.cfg.Rows, s.cfg.Cols)
	s.preview = newPreview(s.cfg.PreviewDepth, s.gen)
	s.tick = 0
	s.score = 0
	s.events = EventNone
	s.phase = newRunning(spawnPiece(s.gen.Next(), s.cfg.Cols), 0)
}

// Restart throws the current game away and begins a new one.
func (s *Session) Restart() {
	s.log.Debug("session restart", zap.Uint64("tick", s.tick))
	s.start()
}

func (s *Session) Config() Config    { return s.cfg }
func (s *Session) Field() *Field     { return s.field }
func (s *Session) Phase() Phase      { return s.phase }
func (s *Session) TickNo() uint64    { return s.tick }
func (s *Session) Events() Event     { return s.events }
func (s *Session) Preview() *Preview { return s.preview }

// Score is never incremented by the rules; it is kept for the front end.
func (s *Session) Score() int { return s.score }

// Tick advances the game by one fixed step with the given commands held and
// returns the events of this step only.
func (s *Session) Tick(cmds Command) Event {
	s.tick++
	s.events = EventNone

	switch p := s.phase.(type) {
	case *AfterShock:
		if s.tick >= p.EndTick {
			s.spawnNext()
		}
	case *Clearing:
		s.tickClearing(p)
	case *Running:
		s.tickRunning(p, cmds)
	case *Paused:
	default:
		panic(fmt.Sprintf("game: unknown phase %T", s.phase))
	}
	return s.events
}

func (s *Session) tickClearing(p *Clearing) {
	perFlash := s.cfg.TicksPerFlash()
	color := s.cfg.FlashHiColor
	if math.Mod(float64(s.tick), perFlash) < perFlash/2 {
		color = s.cfg.FlashLoColor
	}
	for _, row := range p.Lines {
		s.field.FillRow(row, color)
	}

	if s.tick >= p.EndTick {
		s.field.ShiftLines(p.Lines)
		s.log.Debug("lines removed", zap.Ints("lines", p.Lines), zap.Uint64("tick", s.tick))
		s.spawnNext()
	}
}

func (s *Session) spawnNext() {
	next := s.preview.Dequeue()
	active := spawnPiece(next, s.cfg.Cols)
	s.phase = newRunning(active, s.tick)
	s.log.Debug("piece spawned",
		zap.Stringer("shape", next.Shape),
		zap.Int("rotation", next.Rotation),
		zap.Int("col", active.Col),
		zap.Uint64("tick", s.tick),
	)
}

// fits reports whether the piece can occupy (row, col). Wall and floor are
// tested first so HitsBlock only ever reads inside the field.
func (s *Session) fits(p PieceState, row, col int) bool {
	w, h := p.Width(), p.Height()
	if s.field.HitsWall(col, w) || s.field.HitsFloor(row, h) {
		return false
	}
	return !s.field.HitsBlock(p.Box(), row, col, w, h)
}

func (s *Session) tickRunning(r *Running, cmds Command) {
	piece := &r.Active

	// rotation: exactly one rotate key, once per press
	rotL, rotR := cmds.Has(CmdRotateLeft), cmds.Has(CmdRotateRight)
	if rotL == rotR {
		r.AlreadyRotated = false
	} else if !r.AlreadyRotated {
		delta := 1
		if rotL {
			delta = -1
		}
		candidate := piece.Piece.Rotated(delta)
		if s.fits(candidate, piece.Row, piece.Col) {
			piece.Piece = candidate
		}
		r.AlreadyRotated = true
	}

	// sideways movement, at most once per repeat window
	left, right := cmds.Has(CmdMoveLeft), cmds.Has(CmdMoveRight)
	if left || right {
		r.WaitingToMove = true
		r.moveDir = 0
		if left {
			r.moveDir--
		}
		if right {
			r.moveDir++
		}
	}
	if r.WaitingToMove && float64(s.tick-r.LastHorizMove) >= s.cfg.HorizMoveTicksPerBlock() {
		if r.moveDir != 0 {
			col := piece.Col + r.moveDir
			p := piece.Piece
			if !s.field.HitsWall(col, p.Width()) &&
				!s.field.HitsBlock(p.Box(), piece.Row, col, p.Width(), p.Height()) {
				piece.Col = col
				s.events |= EventPieceMove
			}
		}
		r.LastHorizMove = s.tick
		r.WaitingToMove = false
	}

	// gravity
	factor := 1.0
	if cmds.Has(CmdFastFall) {
		factor = s.cfg.FastFallMultiplier
	}
	if float64(s.tick-r.LastDrop) < s.cfg.TicksPerRow()/factor {
		return
	}
	s.events |= EventPieceFall
	r.LastDrop = s.tick

	if s.fits(piece.Piece, piece.Row+1, piece.Col) {
		piece.Row++
		return
	}
	s.lock(piece)
}

func (s *Session) lock(piece *ActivePiece) {
	p := piece.Piece
	s.field.Stamp(p.Box(), piece.Row, piece.Col, p.Color)

	cleared := s.field.LinesClear(piece.Row)
	if len(cleared) > 0 {
		s.events |= EventLineClear
		s.phase = &Clearing{
			StartTick: s.tick,
			EndTick:   s.tick + s.cfg.ClearLineTicks,
			Lines:     cleared,
		}
		s.log.Debug("piece locked with line clear",
			zap.Stringer("shape", p.Shape),
			zap.Int("row", piece.Row),
			zap.Int("col", piece.Col),
			zap.Ints("lines", cleared),
			zap.Uint64("tick", s.tick),
		)
		return
	}

	s.events |= EventPieceCollision
	s.phase = &AfterShock{
		StartTick: s.tick,
		EndTick:   s.tick + s.cfg.AfterShockTicks,
	}
	s.log.Debug("piece locked",
		zap.Stringer("shape", p.Shape),
		zap.Int("row", piece.Row),
		zap.Int("col", piece.Col),
		zap.Uint64("tick", s.tick),
	)
}

package game

// Snapshot is a copy of everything a renderer or audio consumer may read.
// It shares no memory with the session.
type Snapshot struct {
	Tick    uint64          `json:"tick"`
	Rows    int             `json:"rows"`
	Cols    int             `json:"cols"`
	Field   []uint8         `json:"field"`
	Phase   PhaseKind       `json:"phase"`
	Active  *ActiveSnapshot `json:"active,omitempty"`
	Preview []PieceState    `json:"preview"`
	Score   int             `json:"score"`
	Events  Event           `json:"events"`
}

// ActiveSnapshot describes the falling piece. Only present while running.
type ActiveSnapshot struct {
	Row     int     `json:"row"`
	Col     int     `json:"col"`
	Shape   Shape   `json:"shape"`
	Pattern Pattern `json:"pattern"`
	Box     Box     `json:"-"`
	Color   uint8   `json:"color"`
}

func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:    s.tick,
		Rows:    s.field.Rows,
		Cols:    s.field.Cols,
		Field:   s.field.Cells(),
		Phase:   s.phase.Kind(),
		Preview: s.preview.Pieces(),
		Score:   s.score,
		Events:  s.events,
	}
	if r, ok := s.phase.(*Running); ok {
		a := r.Active
		snap.Active = &ActiveSnapshot{
			Row:     a.Row,
			Col:     a.Col,
			Shape:   a.Piece.Shape,
			Pattern: a.Piece.Pattern(),
			Box:     a.Piece.Box(),
			Color:   a.Piece.Color,
		}
	}
	return snap
}

// CellAt returns the colour shown at (row, col): the active piece on top of
// the field.
func (s Snapshot) CellAt(row, col int) uint8 {
	if a := s.Active; a != nil {
		r, c := row-a.Row, col-a.Col
		if r >= 0 && r < 4 && c >= 0 && c < 4 && a.Box[r][c] {
			return a.Color
		}
	}
	return s.Field[row*s.Cols+col]
}

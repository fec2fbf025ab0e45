package game

// PieceState is one piece instance: which shape, which rotation, which color.
type PieceState struct {
	Shape    Shape `json:"shape"`
	Rotation int   `json:"rotation"`
	Color    uint8 `json:"color"`
}

// NewPieceState returns a piece of the given shape in its colour.
func NewPieceState(s Shape, rotation int) PieceState {
	return PieceState{Shape: s, Rotation: rotation, Color: s.Color()}
}

func (p PieceState) Pattern() Pattern { return PatternFor(p.Shape, p.Rotation) }
func (p PieceState) Width() int       { return p.Pattern().Width() }
func (p PieceState) Height() int      { return p.Pattern().Height() }
func (p PieceState) Box() Box         { return p.Pattern().Box() }

// Rotated returns the piece turned by delta steps through its rotation cycle.
func (p PieceState) Rotated(delta int) PieceState {
	n := p.Shape.Rotations()
	r := (p.Rotation + delta) % n
	if r < 0 {
		r += n
	}
	p.Rotation = r
	return p
}

// ActivePiece is the piece under player control. Row and Col may be negative
// while the piece is still above the field.
type ActivePiece struct {
	Row   int
	Col   int
	Piece PieceState
}

// spawnPiece places a piece horizontally centred and fully above the field.
func spawnPiece(p PieceState, cols int) ActivePiece {
	w := p.Width()
	return ActivePiece{
		Row:   -p.Height(),
		Col:   cols/2 - (w+1)/2,
		Piece: p,
	}
}

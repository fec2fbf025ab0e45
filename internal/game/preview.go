package game

// Preview is the queue of upcoming pieces shown to the player.
type Preview struct {
	depth  int
	gen    Generator
	pieces []PieceState
}

func newPreview(depth int, gen Generator) *Preview {
	p := &Preview{depth: depth, gen: gen, pieces: make([]PieceState, 0, depth)}
	p.fill()
	return p
}

func (p *Preview) fill() {
	for len(p.pieces) < p.depth {
		p.pieces = append(p.pieces, p.gen.Next())
	}
}

// Dequeue hands out the next piece and tops the queue back up.
func (p *Preview) Dequeue() PieceState {
	var next PieceState
	if len(p.pieces) == 0 {
		next = p.gen.Next()
	} else {
		next = p.pieces[0]
		p.pieces = p.pieces[1:]
	}
	p.fill()
	return next
}

// Pieces returns a copy of the queued pieces, head first.
func (p *Preview) Pieces() []PieceState {
	out := make([]PieceState, len(p.pieces))
	copy(out, p.pieces)
	return out
}

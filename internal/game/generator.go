package game

import (
	"math/rand"
	"time"
)

// Generator supplies the pieces a session spawns.
type Generator interface {
	Next() PieceState
}

// RandomGenerator picks a shape uniformly, then a rotation uniformly among that
// shape's rotations. Two generators created with the same seed produce
// identical sequences.
type RandomGenerator struct {
	rng *rand.Rand
}

// NewRandomGenerator creates a seeded generator. A zero seed is replaced by the clock.
func NewRandomGenerator(seed int64) *RandomGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomGenerator{rng: rand.New(rand.NewSource(seed))}
}

func (g *RandomGenerator) Next() PieceState {
	s := Shape(g.rng.Intn(NumShapes))
	return NewPieceState(s, g.rng.Intn(s.Rotations()))
}

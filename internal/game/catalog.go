package game

import "fmt"

// Shape identifies one of the seven pieces.
type Shape uint8

const (
	ShapeI Shape = iota
	ShapeT
	ShapeO
	ShapeL
	ShapeJ
	ShapeS
	ShapeZ
)

// NumShapes is the number of cataloged shapes.
const NumShapes = 7

// Pattern is a 4x4 occupancy mask. Bit 15 is the top-left cell, bit 0 the
// bottom-right one.
type Pattern uint16

// pieceShapes lists every rotation of every shape, indexed by Shape.
var pieceShapes = [NumShapes][]Pattern{
	ShapeI: {0x8888, 0xF000},
	ShapeT: {0xE400, 0x8C80, 0x4E00, 0x4C40},
	ShapeO: {0xCC00},
	ShapeL: {0x88C0, 0x2E00, 0xC440, 0xE800},
	ShapeJ: {0x44C0, 0xE200, 0xC880, 0x8E00},
	ShapeS: {0x6C00, 0x8C40},
	ShapeZ: {0xC600, 0x4C80},
}

var shapeNames = [NumShapes]string{"I", "T", "O", "L", "J", "S", "Z"}

func (s Shape) String() string {
	if int(s) < NumShapes {
		return shapeNames[s]
	}
	return fmt.Sprintf("Shape(%d)", uint8(s))
}

// Rotations returns how many distinct rotations the shape has.
func (s Shape) Rotations() int {
	return len(pieceShapes[s])
}

// Color returns the palette index pieces of this shape are drawn with.
func (s Shape) Color() uint8 {
	return uint8(s) + 1
}

// PatternFor looks up the pattern of a shape at a rotation index.
func PatternFor(s Shape, rotation int) Pattern {
	return pieceShapes[s][rotation]
}

// Width is the number of occupied columns, counted from the left edge of the box.
func (p Pattern) Width() int {
	switch {
	case p&0x1111 != 0:
		return 4
	case p&0x2222 != 0:
		return 3
	case p&0x4444 != 0:
		return 2
	case p&0x8888 != 0:
		return 1
	}
	panic(fmt.Sprintf("game: width of empty pattern %#04x", uint16(p)))
}

// Height is the number of occupied rows, counted from the top edge of the box.
func (p Pattern) Height() int {
	switch {
	case p&0x000F != 0:
		return 4
	case p&0x00F0 != 0:
		return 3
	case p&0x0F00 != 0:
		return 2
	case p&0xF000 != 0:
		return 1
	}
	panic(fmt.Sprintf("game: height of empty pattern %#04x", uint16(p)))
}

// Box is a pattern unpacked into reading order: Box[row][col].
type Box [4][4]bool

// Box unpacks the pattern. Cell (row, col) is bit (3-row)*4 + (3-col).
func (p Pattern) Box() Box {
	var b Box
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			bit := uint((3-row)*4 + (3 - col))
			b[row][col] = p&(1<<bit) != 0
		}
	}
	return b
}

// Width is the number of columns up to the rightmost occupied cell.
func (b Box) Width() int {
	w := 0
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if b[row][col] && col+1 > w {
				w = col + 1
			}
		}
	}
	return w
}

// Height is the number of rows up to the lowest occupied cell.
func (b Box) Height() int {
	h := 0
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			if b[row][col] {
				h = row + 1
			}
		}
	}
	return h
}

// Count returns the number of occupied cells.
func (b Box) Count() int {
	n := 0
	for row := range b {
		for _, c := range b[row] {
			if c {
				n++
			}
		}
	}
	return n
}

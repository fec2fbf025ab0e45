package game

import "github.com/kamstrup/intmap"

// Palette indices with a fixed meaning. 1..7 are piece colours.
const (
	ColorEmpty  uint8 = 0
	ColorFringe uint8 = 9
	ColorFlash  uint8 = 10
)

// linesClearSpan is how many rows a lock can complete: a piece is at most 4 tall.
const linesClearSpan = 4

// Field is the playing grid stored row-major as palette indices (0 = empty).
type Field struct {
	Rows  int
	Cols  int
	cells []uint8
}

func NewField(rows, cols int) *Field {
	return &Field{
		Rows:  rows,
		Cols:  cols,
		cells: make([]uint8, rows*cols),
	}
}

func (f *Field) At(row, col int) uint8 {
	return f.cells[row*f.Cols+col]
}

func (f *Field) Set(row, col int, color uint8) {
	f.cells[row*f.Cols+col] = color
}

// Cells returns a copy of the grid as a flat array, row*Cols+col.
func (f *Field) Cells() []uint8 {
	flat := make([]uint8, len(f.cells))
	copy(flat, f.cells)
	return flat
}

// Reset empties every cell.
func (f *Field) Reset() {
	clear(f.cells)
}

// FillRow paints a whole row with one colour.
func (f *Field) FillRow(row int, color uint8) {
	start := row * f.Cols
	for i := start; i < start+f.Cols; i++ {
		f.cells[i] = color
	}
}

// HitsWall reports whether a piece of the given width at col sticks out of the sides.
func (f *Field) HitsWall(col, width int) bool {
	return col < 0 || col+width > f.Cols
}

// HitsFloor reports whether a piece of the given height at row sticks out of the bottom.
func (f *Field) HitsFloor(row, height int) bool {
	return row+height > f.Rows
}

// HitsBlock reports whether any set cell of box, placed with its top-left at
// (row, col), lands on an occupied cell. Cells above the top row are empty
// space. The caller must have ruled out wall and floor hits first.
func (f *Field) HitsBlock(box Box, row, col, width, height int) bool {
	for r := 0; r < height; r++ {
		fr := row + r
		if fr < 0 {
			continue
		}
		for c := 0; c < width; c++ {
			if box[r][c] && f.cells[fr*f.Cols+col+c] != ColorEmpty {
				return true
			}
		}
	}
	return false
}

// Stamp writes every set cell of box into the field. Cells that are still
// above the top row are dropped.
func (f *Field) Stamp(box Box, row, col int, color uint8) {
	for r := 0; r < 4; r++ {
		fr := row + r
		if fr < 0 || fr >= f.Rows {
			continue
		}
		for c := 0; c < 4; c++ {
			if box[r][c] {
				f.cells[fr*f.Cols+col+c] = color
			}
		}
	}
}

// LinesClear returns the full rows among the four starting at startRow.
func (f *Field) LinesClear(startRow int) []int {
	end := min(startRow+linesClearSpan, f.Rows)
	var lines []int
	for row := max(startRow, 0); row < end; row++ {
		if f.rowFull(row) {
			lines = append(lines, row)
		}
	}
	return lines
}

func (f *Field) rowFull(row int) bool {
	for _, c := range f.cells[row*f.Cols : (row+1)*f.Cols] {
		if c == ColorEmpty {
			return false
		}
	}
	return true
}

// ShiftLines removes the cleared rows and lets everything above them fall,
// in a single bottom-up pass.
func (f *Field) ShiftLines(cleared []int) {
	skip := intmap.NewSet[int](len(cleared))
	for _, row := range cleared {
		skip.Add(row)
		f.FillRow(row, ColorEmpty)
	}

	offset := 0
	for row := f.Rows - 1; row >= 0; row-- {
		if skip.Has(row) {
			offset++
			continue
		}
		if offset == 0 {
			continue
		}
		copy(f.cells[(row+offset)*f.Cols:(row+offset+1)*f.Cols], f.cells[row*f.Cols:(row+1)*f.Cols])
	}
	// rows vacated at the top
	for row := 0; row < offset; row++ {
		f.FillRow(row, ColorEmpty)
	}
}

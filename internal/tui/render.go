package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hersh/gblocks/internal/game"
)

var (
	// indexed by field colour; 9 is the fringe, 10 the low flash colour
	colors = []string{
		"0",
		"51",
		"201",
		"226",
		"208",
		"21",
		"46",
		"196",
		"248",
		"240",
		"255",
	}

	cellChar  = "██"
	emptyChar = "  "

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("51"))

	infoStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("15"))

	eventOnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("226"))

	eventOffStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func colorCell(color uint8) string {
	if color == game.ColorEmpty {
		return emptyChar
	}
	c := "248"
	if int(color) < len(colors) {
		c = colors[color]
	}
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(c)).
		Render(cellChar)
}

// RenderBoard draws the field inside a fringe on both sides and the bottom,
// with the active piece on top while the game is running.
func RenderBoard(snap game.Snapshot) string {
	var sb strings.Builder
	fringe := colorCell(game.ColorFringe)

	for row := 0; row < snap.Rows; row++ {
		sb.WriteString(fringe)
		for col := 0; col < snap.Cols; col++ {
			sb.WriteString(colorCell(snap.CellAt(row, col)))
		}
		sb.WriteString(fringe)
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat(fringe, snap.Cols+2))
	return sb.String()
}

// RenderPiece draws a piece in its own bounding box.
func RenderPiece(p game.PieceState) string {
	box := p.Box()
	w, h := p.Width(), p.Height()

	var sb strings.Builder
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			if box[r][c] {
				sb.WriteString(colorCell(p.Color))
			} else {
				sb.WriteString(emptyChar)
			}
		}
		if r < h-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func RenderPreview(pieces []game.PieceState) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("NEXT") + "\n")
	if len(pieces) == 0 {
		sb.WriteString(infoStyle.Render("-"))
		return sb.String()
	}
	for i, p := range pieces {
		sb.WriteString(RenderPiece(p))
		if i < len(pieces)-1 {
			sb.WriteString("\n\n")
		}
	}
	return sb.String()
}

// Info is the side panel content that does not come from the snapshot.
type Info struct {
	Speed float64
	Seed  int64
}

func RenderInfo(snap game.Snapshot, info Info) string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("GBLOCKS") + "\n\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Score: %d", snap.Score)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Speed: %g rows/s", info.Speed)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Tick:  %d", snap.Tick)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Phase: %s", snap.Phase)) + "\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("Seed:  %d", info.Seed)) + "\n")
	return sb.String()
}

// RenderEvents shows which sound cues are currently sounding.
func RenderEvents(active map[game.Event]bool) string {
	cues := []struct {
		ev   game.Event
		name string
	}{
		{game.EventPieceMove, "move"},
		{game.EventPieceFall, "fall"},
		{game.EventPieceCollision, "thud"},
		{game.EventLineClear, "clear"},
	}

	parts := make([]string, 0, len(cues))
	for _, c := range cues {
		if active[c.ev] {
			parts = append(parts, eventOnStyle.Render("♪"+c.name))
		} else {
			parts = append(parts, eventOffStyle.Render(" "+c.name))
		}
	}
	return strings.Join(parts, " ")
}

func RenderControls() string {
	return infoStyle.Render(`Controls:
  ← → / h l   Move
  ↓ / j       Fast fall
  ↑ / z       Rotate left
  x           Rotate right
  r           Restart
  q           Quit`)
}

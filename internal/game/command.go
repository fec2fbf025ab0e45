package game

import "strings"

// Command is the bitmask of inputs held during one tick.
type Command uint8

const (
	CmdNone        Command = 0
	CmdRotateRight Command = 0x01
	CmdRotateLeft  Command = 0x02
	CmdFastFall    Command = 0x04
	CmdPause       Command = 0x08 // defined, not consumed by Tick
	CmdUnpause     Command = 0x10 // defined, not consumed by Tick
	CmdMoveLeft    Command = 0x20
	CmdMoveRight   Command = 0x40
)

// Event is the bitmask of things that happened during one tick.
type Event uint8

const (
	EventNone           Event = 0
	EventPieceMove      Event = 0x01
	EventPieceFall      Event = 0x02
	EventPieceCollision Event = 0x04
	EventPieceRotation  Event = 0x08 // reserved
	EventLineClear      Event = 0x10
	EventNextPiece      Event = 0x20 // reserved
)

func (c Command) Has(bit Command) bool { return c&bit != 0 }
func (e Event) Has(bit Event) bool     { return e&bit != 0 }

var commandNames = []struct {
	bit  Command
	name string
}{
	{CmdRotateRight, "rotate_right"},
	{CmdRotateLeft, "rotate_left"},
	{CmdFastFall, "fast_fall"},
	{CmdPause, "pause"},
	{CmdUnpause, "unpause"},
	{CmdMoveLeft, "move_left"},
	{CmdMoveRight, "move_right"},
}

var eventNames = []struct {
	bit  Event
	name string
}{
	{EventPieceMove, "piece_move"},
	{EventPieceFall, "piece_fall"},
	{EventPieceCollision, "piece_collision"},
	{EventPieceRotation, "piece_rotation"},
	{EventLineClear, "line_clear"},
	{EventNextPiece, "next_piece"},
}

func (c Command) String() string {
	if c == CmdNone {
		return "none"
	}
	var parts []string
	for _, n := range commandNames {
		if c.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

func (e Event) String() string {
	if e == EventNone {
		return "none"
	}
	var parts []string
	for _, n := range eventNames {
		if e.Has(n.bit) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

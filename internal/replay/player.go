package replay

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hersh/gblocks/internal/game"
	"go.uber.org/zap"
)

var ErrDesync = errors.New("replay desynchronised")

// maxLine bounds a single JSON line; the end record carries the whole field.
const maxLine = 1 << 20

// Entry is one input or restart line, in recording order.
type Entry struct {
	Type     RecordType
	Tick     uint64
	Commands game.Command
}

type Recording struct {
	Header  HeaderPayload
	Entries []Entry
	// End is nil when the recording was cut short.
	End *EndPayload
}

// Load parses a recording. Any malformed or out of order line fails with
// ErrBadRecord.
func Load(r io.Reader) (*Recording, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)

	var (
		rec     Recording
		line    int
		haveHdr bool
		tick    uint64
	)
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var env struct {
			Type    RecordType      `json:"type"`
			Payload json.RawMessage `json:"payload"`
		}
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
		}
		if !haveHdr && env.Type != RecHeader {
			return nil, fmt.Errorf("%w: line %d: expected header, got %q", ErrBadRecord, line, env.Type)
		}
		if rec.End != nil {
			return nil, fmt.Errorf("%w: line %d: data after end record", ErrBadRecord, line)
		}

		switch env.Type {
		case RecHeader:
			if haveHdr {
				return nil, fmt.Errorf("%w: line %d: second header", ErrBadRecord, line)
			}
			if err := json.Unmarshal(env.Payload, &rec.Header); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
			}
			if rec.Header.Seed == 0 {
				return nil, fmt.Errorf("%w: header has no seed", ErrBadRecord)
			}
			if err := rec.Header.Config.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrBadRecord, err)
			}
			haveHdr = true
		case RecInput:
			var p InputPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
			}
			if p.Tick == 0 || p.Tick <= tick {
				return nil, fmt.Errorf("%w: line %d: input tick %d after %d", ErrBadRecord, line, p.Tick, tick)
			}
			tick = p.Tick
			rec.Entries = append(rec.Entries, Entry{Type: RecInput, Tick: p.Tick, Commands: p.Commands})
		case RecRestart:
			var p RestartPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
			}
			if p.Tick < tick {
				return nil, fmt.Errorf("%w: line %d: restart tick %d before %d", ErrBadRecord, line, p.Tick, tick)
			}
			tick = 0
			rec.Entries = append(rec.Entries, Entry{Type: RecRestart, Tick: p.Tick})
		case RecEnd:
			var p EndPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrBadRecord, line, err)
			}
			if p.Tick < tick {
				return nil, fmt.Errorf("%w: line %d: end tick %d before %d", ErrBadRecord, line, p.Tick, tick)
			}
			rec.End = &p
		default:
			return nil, fmt.Errorf("%w: line %d: unknown type %q", ErrBadRecord, line, env.Type)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read recording: %w", err)
	}
	if !haveHdr {
		return nil, fmt.Errorf("%w: empty recording", ErrBadRecord)
	}
	return &rec, nil
}

// Play rebuilds the session from the header and feeds it the recorded
// commands. With an end record the final field and score must match, or
// the returned error wraps ErrDesync.
func Play(rec *Recording, log *zap.Logger) (game.Snapshot, error) {
	if log == nil {
		log = zap.NewNop()
	}
	h := rec.Header
	s, err := game.NewSession(h.Config, game.NewRandomGenerator(h.Seed), game.WithLogger(log))
	if err != nil {
		return game.Snapshot{}, err
	}

	cur := game.CmdNone
	advance := func(to uint64) {
		for s.TickNo() < to {
			s.Tick(cur)
		}
	}
	for _, e := range rec.Entries {
		switch e.Type {
		case RecInput:
			advance(e.Tick - 1)
			cur = e.Commands
		case RecRestart:
			advance(e.Tick)
			s.Restart()
			cur = game.CmdNone
		}
	}

	if rec.End == nil {
		log.Warn("recording has no end record", zap.String("session_id", h.SessionID))
		if n := len(rec.Entries); n > 0 && rec.Entries[n-1].Type == RecInput {
			advance(rec.Entries[n-1].Tick)
		}
		return s.Snapshot(), nil
	}

	advance(rec.End.Tick)
	snap := s.Snapshot()
	if !bytes.Equal(snap.Field, rec.End.Field) {
		return snap, fmt.Errorf("%w: field differs at tick %d", ErrDesync, snap.Tick)
	}
	if snap.Score != rec.End.Score {
		return snap, fmt.Errorf("%w: score %d, recorded %d", ErrDesync, snap.Score, rec.End.Score)
	}
	log.Info("replay verified", zap.String("session_id", h.SessionID), zap.Uint64("tick", snap.Tick))
	return snap, nil
}

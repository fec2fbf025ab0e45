package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hersh/gblocks/internal/driver"
	"github.com/hersh/gblocks/internal/game"
	"go.uber.org/zap"
)

var ErrBadRecord = errors.New("bad replay record")

// Recorder writes a recording as JSON lines. Register Hook with the driver;
// only changes of the held commands are written.
type Recorder struct {
	mu   sync.Mutex
	id   string
	w    *bufio.Writer
	enc  *json.Encoder
	dst  io.Writer
	last game.Command
	err  error
	log  *zap.Logger
}

// NewRecorder writes the header line. seed must be the one the session's
// generator was created with.
func NewRecorder(w io.Writer, seed int64, cfg game.Config, log *zap.Logger) (*Recorder, error) {
	if seed == 0 {
		return nil, fmt.Errorf("%w: seed 0 cannot be replayed", ErrBadRecord)
	}
	if log == nil {
		log = zap.NewNop()
	}
	bw := bufio.NewWriter(w)
	r := &Recorder{
		id:  uuid.NewString(),
		w:   bw,
		enc: json.NewEncoder(bw),
		dst: w,
		log: log,
	}
	err := r.write(RecHeader, HeaderPayload{
		SessionID: r.id,
		Seed:      seed,
		Config:    cfg,
		Started:   time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}
	log.Info("recording started", zap.String("session_id", r.id), zap.Int64("seed", seed))
	return r, nil
}

// SessionID identifies the recording.
func (r *Recorder) SessionID() string { return r.id }

func (r *Recorder) write(t RecordType, payload any) error {
	if err := r.enc.Encode(Envelope{Type: t, Payload: payload}); err != nil {
		return fmt.Errorf("write %s record: %w", t, err)
	}
	return nil
}

// Hook records one driver step.
func (r *Recorder) Hook(st driver.Step) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return
	}

	switch {
	case st.Restart:
		r.err = r.write(RecRestart, RestartPayload{Tick: st.Snapshot.Tick})
		r.last = game.CmdNone
	case st.Commands != r.last:
		r.err = r.write(RecInput, InputPayload{Tick: st.Snapshot.Tick, Commands: st.Commands})
		r.last = st.Commands
	}
	if r.err != nil {
		r.log.Error("recording failed", zap.String("session_id", r.id), zap.Error(r.err))
	}
}

// Close writes the end line from the final snapshot, flushes, and closes the
// destination if it is an io.Closer. It returns the first write error seen.
func (r *Recorder) Close(final game.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err == nil {
		r.err = r.write(RecEnd, EndPayload{Tick: final.Tick, Score: final.Score, Field: final.Field})
	}
	if r.err == nil {
		r.err = r.w.Flush()
	}
	if c, ok := r.dst.(io.Closer); ok {
		if err := c.Close(); err != nil && r.err == nil {
			r.err = err
		}
	}
	r.log.Info("recording closed", zap.String("session_id", r.id), zap.Uint64("tick", final.Tick), zap.Error(r.err))
	return r.err
}

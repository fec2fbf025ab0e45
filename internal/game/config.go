package game

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds every tunable of a session. It is passed by value and never
// modified once the session exists.
type Config struct {
	Rows                  int     `json:"rows"`
	Cols                  int     `json:"cols"`
	PreviewDepth          int     `json:"preview_depth"`
	TicksPerSecond        int     `json:"ticks_per_second"`
	SpeedRowsPerSec       float64 `json:"speed_rows_per_sec"`
	FastFallMultiplier    float64 `json:"fast_fall_multiplier"`
	HorizMoveBlocksPerSec float64 `json:"horiz_move_blocks_per_sec"`
	AfterShockTicks       uint64  `json:"aftershock_ticks"`
	ClearLineTicks        uint64  `json:"clearline_ticks"`
	LineClearFlashes      int     `json:"lineclear_flashes"`
	FlashLoColor          uint8   `json:"flash_lo_color"`
	FlashHiColor          uint8   `json:"flash_hi_color"`
}

const (
	DefaultRows            = 16
	DefaultCols            = 10
	DefaultTicksPerSecond  = 60
	DefaultSpeedRowsPerSec = 2
)

// DefaultConfig returns the standard 10x16 game at 60 ticks per second.
func DefaultConfig() Config {
	return Config{
		Rows:                  DefaultRows,
		Cols:                  DefaultCols,
		PreviewDepth:          1,
		TicksPerSecond:        DefaultTicksPerSecond,
		SpeedRowsPerSec:       DefaultSpeedRowsPerSec,
		FastFallMultiplier:    16,
		HorizMoveBlocksPerSec: 12,
		AfterShockTicks:       secondsToTicks(DefaultTicksPerSecond, 0.25),
		ClearLineTicks:        secondsToTicks(DefaultTicksPerSecond, 0.75),
		LineClearFlashes:      3,
		FlashLoColor:          ColorFlash,
		FlashHiColor:          1,
	}
}

func secondsToTicks(tps int, secs float64) uint64 {
	return uint64(math.Ceil(float64(tps) * secs))
}

// TicksPerRow is the gravity delay at normal speed.
func (c Config) TicksPerRow() float64 {
	return float64(c.TicksPerSecond) / c.SpeedRowsPerSec
}

// HorizMoveTicksPerBlock is the minimum number of ticks between two sideways moves.
func (c Config) HorizMoveTicksPerBlock() float64 {
	return float64(c.TicksPerSecond) / c.HorizMoveBlocksPerSec
}

// TicksPerFlash is the length of one low/high flash cycle while clearing.
func (c Config) TicksPerFlash() float64 {
	return float64(c.ClearLineTicks) / float64(c.LineClearFlashes)
}

// TickDuration is the wall-clock length of one tick.
func (c Config) TickDuration() time.Duration {
	return time.Second / time.Duration(c.TicksPerSecond)
}

func (c Config) Validate() error {
	switch {
	case c.Rows < 4:
		return fmt.Errorf("%w: rows must be at least 4, got %d", ErrInvalidConfig, c.Rows)
	case c.Cols < 4:
		return fmt.Errorf("%w: cols must be at least 4, got %d", ErrInvalidConfig, c.Cols)
	case c.PreviewDepth < 0:
		return fmt.Errorf("%w: negative preview depth %d", ErrInvalidConfig, c.PreviewDepth)
	case c.TicksPerSecond <= 0:
		return fmt.Errorf("%w: ticks per second must be positive", ErrInvalidConfig)
	case c.SpeedRowsPerSec <= 0:
		return fmt.Errorf("%w: speed must be positive, got %v", ErrInvalidConfig, c.SpeedRowsPerSec)
	case c.FastFallMultiplier < 1:
		return fmt.Errorf("%w: fast fall multiplier must be >= 1, got %v", ErrInvalidConfig, c.FastFallMultiplier)
	case c.HorizMoveBlocksPerSec <= 0:
		return fmt.Errorf("%w: horizontal move speed must be positive", ErrInvalidConfig)
	case c.LineClearFlashes <= 0:
		return fmt.Errorf("%w: line clear flashes must be positive", ErrInvalidConfig)
	}
	return nil
}

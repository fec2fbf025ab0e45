package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/hersh/gblocks/internal/game"
	"github.com/hersh/gblocks/internal/input"
	"github.com/joho/godotenv"
)

var ErrInvalidSetting = errors.New("invalid setting")

const (
	DefaultEnvFile   = ".env"
	DefaultFrameRate = 30
)

// Settings is everything the binaries need: the game rules plus how to run them.
type Settings struct {
	Game       game.Config
	Seed       int64
	LogFile    string
	Debug      bool
	RecordPath string
	HoldWindow time.Duration
	FrameRate  int
}

// Load reads .env, then the environment, then args. Later sources win.
func Load(args []string) (Settings, error) {
	return LoadFrom(DefaultEnvFile, args)
}

// LoadFrom is Load with an explicit .env path. The file is skipped when
// APP_ENV=production or when it does not exist.
func LoadFrom(envFile string, args []string) (Settings, error) {
	if os.Getenv("APP_ENV") != "production" && envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("%w: %s: %v", ErrInvalidSetting, envFile, err)
		}
	}

	st := Settings{
		Game:       game.DefaultConfig(),
		HoldWindow: input.DefaultHoldWindow,
		FrameRate:  DefaultFrameRate,
	}
	if err := st.fromEnv(); err != nil {
		return Settings{}, err
	}

	fset := flag.NewFlagSet("gblocks", flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.Float64Var(&st.Game.SpeedRowsPerSec, "speed", st.Game.SpeedRowsPerSec, "gravity in rows per second")
	fset.IntVar(&st.Game.Rows, "rows", st.Game.Rows, "field height")
	fset.IntVar(&st.Game.Cols, "cols", st.Game.Cols, "field width")
	fset.IntVar(&st.Game.PreviewDepth, "preview", st.Game.PreviewDepth, "number of upcoming pieces shown")
	fset.Int64Var(&st.Seed, "seed", st.Seed, "piece generator seed (0 = clock)")
	fset.StringVar(&st.LogFile, "log", st.LogFile, "JSON log file (empty disables logging)")
	fset.BoolVar(&st.Debug, "debug", st.Debug, "log at debug level")
	fset.StringVar(&st.RecordPath, "record", st.RecordPath, "write a replay to this file")
	fset.DurationVar(&st.HoldWindow, "hold", st.HoldWindow, "how long a key counts as held after its last event")
	fset.IntVar(&st.FrameRate, "fps", st.FrameRate, "render frames per second")
	if err := fset.Parse(args); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrInvalidSetting, err)
	}

	if err := st.Game.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %w", ErrInvalidSetting, err)
	}
	if st.HoldWindow <= 0 {
		return Settings{}, fmt.Errorf("%w: hold window must be positive, got %s", ErrInvalidSetting, st.HoldWindow)
	}
	if st.FrameRate <= 0 {
		return Settings{}, fmt.Errorf("%w: frame rate must be positive, got %d", ErrInvalidSetting, st.FrameRate)
	}
	if st.Seed == 0 {
		st.Seed = time.Now().UnixNano()
	}
	return st, nil
}

func (st *Settings) fromEnv() error {
	if err := envFloat("GBLOCKS_SPEED", &st.Game.SpeedRowsPerSec); err != nil {
		return err
	}
	if err := envInt("GBLOCKS_ROWS", &st.Game.Rows); err != nil {
		return err
	}
	if err := envInt("GBLOCKS_COLS", &st.Game.Cols); err != nil {
		return err
	}
	if err := envInt("GBLOCKS_PREVIEW", &st.Game.PreviewDepth); err != nil {
		return err
	}
	if err := envInt64("GBLOCKS_SEED", &st.Seed); err != nil {
		return err
	}
	if err := envInt("GBLOCKS_FPS", &st.FrameRate); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("GBLOCKS_HOLD"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: GBLOCKS_HOLD=%q: %v", ErrInvalidSetting, v, err)
		}
		st.HoldWindow = d
	}
	if v, ok := os.LookupEnv("GBLOCKS_LOG"); ok {
		st.LogFile = v
	}
	if v, ok := os.LookupEnv("GBLOCKS_RECORD"); ok {
		st.RecordPath = v
	}
	if v, ok := os.LookupEnv("GBLOCKS_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: GBLOCKS_DEBUG=%q: %v", ErrInvalidSetting, v, err)
		}
		st.Debug = b
	}
	return nil
}

func envInt(name string, dst *int) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalidSetting, name, v, err)
	}
	*dst = n
	return nil
}

func envInt64(name string, dst *int64) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalidSetting, name, v, err)
	}
	*dst = n
	return nil
}

func envFloat(name string, dst *float64) error {
	v, ok := os.LookupEnv(name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%w: %s=%q: %v", ErrInvalidSetting, name, v, err)
	}
	*dst = f
	return nil
}

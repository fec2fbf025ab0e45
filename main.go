package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hersh/gblocks/internal/config"
	"github.com/hersh/gblocks/internal/driver"
	"github.com/hersh/gblocks/internal/game"
	"github.com/hersh/gblocks/internal/input"
	"github.com/hersh/gblocks/internal/logging"
	"github.com/hersh/gblocks/internal/replay"
	"github.com/hersh/gblocks/internal/tui"
	"go.uber.org/zap"
)

// Interactive game. Settings come from .env, GBLOCKS_* variables and flags;
// see go run . -h. Recordings are replayed with go run ./cmd/replay.

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	st, err := config.Load(os.Args[1:])
	if err != nil {
		return err
	}

	log, err := logging.New(st.LogFile, st.Debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	session, err := game.NewSession(st.Game, game.NewRandomGenerator(st.Seed), game.WithLogger(log.Named("game")))
	if err != nil {
		return err
	}
	loop := driver.New(session, log.Named("driver"))

	if st.RecordPath != "" {
		f, err := os.Create(st.RecordPath)
		if err != nil {
			return fmt.Errorf("create recording: %w", err)
		}
		rec, err := replay.NewRecorder(f, st.Seed, st.Game, log.Named("replay"))
		if err != nil {
			f.Close()
			return err
		}
		loop.OnStep(rec.Hook)
		defer func() {
			if err := rec.Close(loop.Snapshot()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: recording: %v\n", err)
			}
		}()
	}

	keys := input.NewTracker(st.HoldWindow)
	feed := tui.NewFeed(log.Named("feed"))
	loop.OnStep(feed.Hook)

	model := tui.NewModel(loop, keys, st.FrameRate, tui.Info{Speed: st.Game.SpeedRowsPerSec, Seed: st.Seed})
	p := tea.NewProgram(model, tea.WithAltScreen())
	feed.SetProgram(p)
	feed.Start()
	defer feed.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- loop.Run(ctx, driver.NewTicker(st.Game.TickDuration()), keys)
	}()

	log.Info("game started",
		zap.Int64("seed", st.Seed),
		zap.Float64("speed", st.Game.SpeedRowsPerSec),
		zap.Int("rows", st.Game.Rows),
		zap.Int("cols", st.Game.Cols),
	)
	_, uiErr := p.Run()

	cancel()
	if err := <-done; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return uiErr
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hersh/gblocks/internal/game"
	"github.com/hersh/gblocks/internal/logging"
	"github.com/hersh/gblocks/internal/replay"
	"go.uber.org/zap"
)

func main() {
	debug := flag.Bool("debug", false, "Log every lock and spawn")
	quiet := flag.Bool("quiet", false, "Do not print the final field")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] recording.jsonl\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	log, err := logging.Console(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	code := run(flag.Arg(0), *quiet, log)
	log.Sync()
	os.Exit(code)
}

func run(path string, quiet bool, log *zap.Logger) int {
	f, err := os.Open(path)
	if err != nil {
		log.Error("open recording", zap.Error(err))
		return 1
	}
	defer f.Close()

	rec, err := replay.Load(f)
	if err != nil {
		log.Error("load recording", zap.String("path", path), zap.Error(err))
		return 1
	}
	log.Info("replaying",
		zap.String("session_id", rec.Header.SessionID),
		zap.Int64("seed", rec.Header.Seed),
		zap.Int("entries", len(rec.Entries)),
	)

	snap, err := replay.Play(rec, log.Named("game"))
	if !quiet {
		fmt.Print(renderField(snap))
	}
	if errors.Is(err, replay.ErrDesync) {
		log.Error("replay does not match recording", zap.Error(err))
		return 3
	}
	if err != nil {
		log.Error("replay failed", zap.Error(err))
		return 1
	}
	fmt.Printf("tick %d  phase %s  score %d\n", snap.Tick, snap.Phase, snap.Score)
	return 0
}

// renderField prints the field as text, one character per cell.
func renderField(snap game.Snapshot) string {
	var sb strings.Builder
	for row := 0; row < snap.Rows; row++ {
		sb.WriteByte('|')
		for col := 0; col < snap.Cols; col++ {
			c := snap.CellAt(row, col)
			switch {
			case c == game.ColorEmpty:
				sb.WriteByte('.')
			case c < 10:
				sb.WriteByte('0' + c)
			default:
				sb.WriteByte('#')
			}
		}
		sb.WriteString("|\n")
	}
	sb.WriteString("+" + strings.Repeat("-", snap.Cols) + "+\n")
	return sb.String()
}

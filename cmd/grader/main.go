package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/programme-lv/grader/internal/environment"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	setLogger(slog.LevelInfo)
	env := environment.ReadEnvConfig(slog.Default())

	cmd := &cli.Command{
		Name:  "grader",
		Usage: "grade programming assignment submissions",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "debug logging and per-test terminal output",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("verbose") {
				setLogger(slog.LevelDebug)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			gradeCommand(env),
			fetchCommand(env),
			checkCommand(),
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("grader failed", "error", err)
		os.Exit(1)
	}
}

func setLogger(level slog.Level) {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})))
}

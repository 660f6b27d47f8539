package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/environment"
	"github.com/programme-lv/grader/internal/gatherer/loggath"
	"github.com/programme-lv/grader/internal/gatherer/multigath"
	"github.com/programme-lv/grader/internal/gatherer/natsgath"
	"github.com/programme-lv/grader/internal/gatherer/sqsgath"
	"github.com/programme-lv/grader/internal/gatherer/termgath"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/sandbox"
	"github.com/programme-lv/grader/internal/summary"
	"github.com/programme-lv/grader/internal/xdg"
	"github.com/urfave/cli/v3"
)

func gradeCommand(env *environment.EnvConfig) *cli.Command {
	return &cli.Command{
		Name:  "grade",
		Usage: "grade every submission archive in a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "kulms_submissions", Usage: "directory with submission archives"},
			&cli.StringFlag{Name: "config", Usage: "assignment TOML file (built-in Assignment 1 when empty)"},
			&cli.StringFlag{Name: "log", Value: "grading_results.log", Usage: "grading log output"},
			&cli.StringFlag{Name: "csv", Value: "grading_summary.csv", Usage: "summary table output"},
			&cli.IntFlag{Name: "jobs", Value: 1, Usage: "submissions graded at the same time"},
			&cli.StringFlag{Name: "scratch", Value: env.ScratchDir, Usage: "root for per-submission scratch dirs"},
			&cli.StringFlag{Name: "nats-url", Value: env.NatsURL, Usage: "stream grading events to this NATS server"},
			&cli.StringFlag{Name: "nats-subject", Value: env.NatsSubject},
			&cli.StringFlag{Name: "results-sqs-url", Value: env.ResultsSqsURL, Usage: "send final records to this SQS queue"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return grade(ctx, cmd, env)
		},
	}
}

func grade(ctx context.Context, cmd *cli.Command, env *environment.EnvConfig) error {
	logger := slog.Default()

	asg, err := loadAssignment(cmd.String("config"))
	if err != nil {
		return err
	}

	dir := cmd.String("dir")
	subs, err := grading.Discover(dir, asg)
	if err != nil {
		return err
	}
	logger.Info("found submissions", "dir", dir, "count", len(subs), "tests", asg.TestCount())

	logFile, err := os.Create(cmd.String("log"))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()
	csvFile, err := os.Create(cmd.String("csv"))
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer csvFile.Close()

	table := summary.NewWriter(csvFile, asg.Manifest().Names())
	if err := table.WriteHeader(); err != nil {
		return err
	}
	gradingLog := loggath.New(logFile)

	if len(subs) == 0 {
		logger.Warn("no archives found", "dir", dir)
		gradingLog.NoSubmissions()
		if err := table.Flush(); err != nil {
			return err
		}
		return gradingLog.Err()
	}

	scratch, err := scratchRoot(cmd.String("scratch"))
	if err != nil {
		return err
	}

	factories := []grading.GathererFactory{
		gradingLog.Factory(),
		termgath.New(os.Stdout, len(subs), cmd.Bool("verbose")).Factory(),
	}
	if url := cmd.String("nats-url"); url != "" {
		nc, err := natsgath.Connect(url)
		if err != nil {
			return err
		}
		defer nc.Drain()
		factories = append(factories, natsgath.Factory(nc, cmd.String("nats-subject"), logger))
	}
	if url := cmd.String("results-sqs-url"); url != "" {
		client, err := sqsgath.NewClient(ctx, env.AWSRegion, env.AWSProfile)
		if err != nil {
			return err
		}
		factories = append(factories, sqsgath.Factory(ctx, client, url, logger))
	}

	limits := sandbox.DefaultLimits()
	limits.BuildWall = asg.BuildWall
	logger.Debug("sandbox limits", "limits", limits.String())

	g := grading.NewGrader(asg, sandbox.NewRunner(limits, logger), multigath.Factory(factories...), grading.Options{
		ScratchRoot: scratch,
		Jobs:        int(cmd.Int("jobs")),
		Logger:      logger,
	})
	if err := g.GradeAll(ctx, subs, table.Write); err != nil {
		return err
	}
	if err := gradingLog.Err(); err != nil {
		return err
	}

	logger.Info("grading finished", "rows", table.Rows(), "log", cmd.String("log"), "csv", cmd.String("csv"))
	return nil
}

func loadAssignment(path string) (*assignment.Assignment, error) {
	if path == "" {
		return assignment.Default(), nil
	}
	return assignment.Load(path)
}

// scratchRoot resolves and creates the directory holding per-submission
// extraction dirs, defaulting to $XDG_RUNTIME_DIR/grader.
func scratchRoot(flag string) (string, error) {
	dirs := xdg.NewXDGDirs()
	root := flag
	if root == "" {
		root = dirs.AppRuntimeDir("grader")
	}
	if err := dirs.EnsureRuntimeDir(root); err != nil {
		return "", fmt.Errorf("failed to create scratch root %s: %w", root, err)
	}
	return root, nil
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/programme-lv/grader/internal/environment"
	"github.com/programme-lv/grader/internal/s3downl"
	"github.com/programme-lv/grader/internal/xdg"
	"github.com/urfave/cli/v3"
)

func fetchCommand(env *environment.EnvConfig) *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "download submission archives from S3",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bucket", Required: true},
			&cli.StringFlag{Name: "prefix", Usage: "key prefix of the assignment's submissions"},
			&cli.StringFlag{Name: "dest", Usage: "download directory (cache dir when empty)"},
			&cli.StringFlag{Name: "region", Value: env.AWSRegion},
			&cli.StringFlag{Name: "profile", Value: env.AWSProfile},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dest := cmd.String("dest")
			if dest == "" {
				dest = filepath.Join(xdg.NewXDGDirs().AppCacheDir("grader"), "submissions")
			}
			client, err := s3downl.NewClient(ctx, cmd.String("region"), cmd.String("profile"))
			if err != nil {
				return err
			}
			paths, err := s3downl.New(client, slog.Default()).
				FetchPrefix(ctx, cmd.String("bucket"), cmd.String("prefix"), dest)
			if err != nil {
				return err
			}
			slog.Info("fetched submissions", "count", len(paths), "dest", dest)
			fmt.Println(dest)
			return nil
		},
	}
}

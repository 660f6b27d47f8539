package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/programme-lv/grader/internal/assignment"
	"github.com/urfave/cli/v3"
)

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "validate an assignment config and print its contents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "assignment TOML file (built-in Assignment 1 when empty)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			asg, err := loadAssignment(cmd.String("config"))
			if err != nil {
				return err
			}
			describe(os.Stdout, asg)
			return nil
		},
	}
}

func describe(w io.Writer, asg *assignment.Assignment) {
	fmt.Fprintf(w, "assignment:    %s\n", asg.Name)
	fmt.Fprintf(w, "id prefix:     %q\n", asg.IDPrefix)
	fmt.Fprintf(w, "report:        *%s\n", asg.ReportExt)
	if asg.BuildCmd != "" {
		fmt.Fprintf(w, "build:         %s (limit %s)\n", asg.BuildCmd, asg.BuildWall)
	}
	fmt.Fprintf(w, "run:           %s\n", asg.RunCmd)
	fmt.Fprintf(w, "stop on error: %v\n", asg.StopOnError)
	for _, sp := range asg.SubProjects {
		fmt.Fprintf(w, "- %s: %d tests, requires %v\n", sp.Name, len(sp.Tests), sp.Required)
		for i, tc := range sp.Tests {
			fmt.Fprintf(w, "    #%d limit %s, %d input bytes\n", i+1, tc.Limit, len(tc.Input))
		}
	}
}

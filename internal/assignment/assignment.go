package assignment

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/grader/internal/archive"
	"github.com/programme-lv/grader/internal/layout"
)

//go:embed default.toml
var defaultConfig []byte

// TestCase is one input with its expected output and wall clock limit.
type TestCase struct {
	Input    string
	Expected string
	Limit    time.Duration
}

type SubProject struct {
	Name     string
	Required []string
	Tests    []TestCase
}

// Assignment is the static grading configuration of one homework.
type Assignment struct {
	Name      string
	IDPrefix  string
	ReportExt string
	BuildCmd  string
	RunCmd    string
	BuildWall time.Duration
	// StopOnError skips the remaining tests of a sub-project after a crash or build failure.
	StopOnError bool

	SubProjects []SubProject
}

type fileTest struct {
	In     string `toml:"in"`
	Ans    string `toml:"ans"`
	WallMs int64  `toml:"wall_ms"`
}

type fileSubProject struct {
	Name     string     `toml:"name"`
	Required []string   `toml:"required"`
	Tests    []fileTest `toml:"tests"`
}

type fileRoot struct {
	Name        string           `toml:"name"`
	IDPrefix    string           `toml:"id_prefix"`
	ReportExt   string           `toml:"report_ext"`
	BuildCmd    string           `toml:"build_cmd"`
	RunCmd      string           `toml:"run_cmd"`
	WallMs      int64            `toml:"wall_ms"`
	BuildWallMs int64            `toml:"build_wall_ms"`
	StopOnError *bool            `toml:"stop_on_error"`
	SubProjects []fileSubProject `toml:"subprojects"`
}

const (
	defaultWallMs      = 2000
	defaultBuildWallMs = 120_000
	defaultReportExt   = ".pdf"
)

// Default returns the built-in configuration with the three Rust problems of Assignment 1.
func Default() *Assignment {
	a, err := Parse(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("embedded assignment config is invalid: %v", err))
	}
	return a
}

// Load reads an assignment TOML file.
func Load(path string) (*Assignment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assignment file: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Parse decodes and validates an assignment TOML document, filling in defaults.
func Parse(data []byte) (*Assignment, error) {
	var root fileRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	if strings.TrimSpace(root.RunCmd) == "" {
		return nil, fmt.Errorf("run_cmd is required")
	}
	if len(root.SubProjects) == 0 {
		return nil, fmt.Errorf("at least one [[subprojects]] entry is required")
	}
	if root.WallMs < 0 || root.BuildWallMs < 0 {
		return nil, fmt.Errorf("time limits must not be negative")
	}

	wallMs := root.WallMs
	if wallMs == 0 {
		wallMs = defaultWallMs
	}
	buildWallMs := root.BuildWallMs
	if buildWallMs == 0 {
		buildWallMs = defaultBuildWallMs
	}
	reportExt := root.ReportExt
	if reportExt == "" {
		reportExt = defaultReportExt
	}
	if !strings.HasPrefix(reportExt, ".") {
		reportExt = "." + reportExt
	}
	stopOnError := true
	if root.StopOnError != nil {
		stopOnError = *root.StopOnError
	}

	a := &Assignment{
		Name:        root.Name,
		IDPrefix:    root.IDPrefix,
		ReportExt:   reportExt,
		BuildCmd:    strings.TrimSpace(root.BuildCmd),
		RunCmd:      strings.TrimSpace(root.RunCmd),
		BuildWall:   time.Duration(buildWallMs) * time.Millisecond,
		StopOnError: stopOnError,
		SubProjects: make([]SubProject, 0, len(root.SubProjects)),
	}

	seen := mapset.NewThreadUnsafeSet[string]()
	for i, sp := range root.SubProjects {
		if sp.Name == "" {
			return nil, fmt.Errorf("subproject %d has no name", i+1)
		}
		if strings.ContainsAny(sp.Name, `/\`) || sp.Name == "." || sp.Name == ".." {
			return nil, fmt.Errorf("subproject name %q must be a plain directory name", sp.Name)
		}
		if !seen.Add(sp.Name) {
			return nil, fmt.Errorf("duplicate subproject %q", sp.Name)
		}
		if len(sp.Required) == 0 {
			return nil, fmt.Errorf("subproject %q lists no required files", sp.Name)
		}

		tests := make([]TestCase, 0, len(sp.Tests))
		for j, t := range sp.Tests {
			ms := t.WallMs
			if ms < 0 {
				return nil, fmt.Errorf("subproject %q test %d: negative wall_ms", sp.Name, j+1)
			}
			if ms == 0 {
				ms = wallMs
			}
			tests = append(tests, TestCase{
				Input:    t.In,
				Expected: t.Ans,
				Limit:    time.Duration(ms) * time.Millisecond,
			})
		}
		a.SubProjects = append(a.SubProjects, SubProject{
			Name:     sp.Name,
			Required: sp.Required,
			Tests:    tests,
		})
	}

	return a, nil
}

// Manifest returns the required-file layout of all sub-projects.
func (a *Assignment) Manifest() layout.Manifest {
	m := make(layout.Manifest, len(a.SubProjects))
	for i, sp := range a.SubProjects {
		m[i] = layout.Entry{Name: sp.Name, Required: sp.Required}
	}
	return m
}

// StudentID derives the student identifier from an archive file name.
func (a *Assignment) StudentID(archivePath string) string {
	name, _ := archive.TrimExt(filepath.Base(archivePath))
	if a.IDPrefix != "" && strings.HasPrefix(name, a.IDPrefix) && len(name) > len(a.IDPrefix) {
		name = name[len(a.IDPrefix):]
	}
	return name
}

// TestCount returns the number of test cases over all sub-projects.
func (a *Assignment) TestCount() int {
	n := 0
	for _, sp := range a.SubProjects {
		n += len(sp.Tests)
	}
	return n
}

package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Entry names a sub-project directory and the files it must contain,
// relative to that directory.
type Entry struct {
	Name     string
	Required []string
}

// Manifest is the ordered list of sub-projects a submission has to provide.
type Manifest []Entry

// Names returns sub-project names in manifest order.
func (m Manifest) Names() []string {
	names := make([]string, len(m))
	for i, e := range m {
		names[i] = e.Name
	}
	return names
}

// Issue is the first missing path found for an unusable sub-project.
type Issue struct {
	SubProject string
	// Path is relative to the sub-project directory, empty if the directory itself is missing.
	Path string
}

func (i Issue) String() string {
	if i.Path == "" {
		return fmt.Sprintf("missing folder %s", i.SubProject)
	}
	return fmt.Sprintf("missing %s in %s", i.Path, i.SubProject)
}

type Result struct {
	Missing mapset.Set[string]
	Issues  []Issue
}

// Usable reports whether the named sub-project passed validation.
func (r Result) Usable(name string) bool {
	return !r.Missing.Contains(name)
}

// Validate checks every manifest entry below root. Sub-projects lacking their
// directory or any required file are reported as missing; the rest are usable.
func Validate(root string, m Manifest) Result {
	res := Result{Missing: mapset.NewThreadUnsafeSet[string]()}
	for _, e := range m {
		dir := filepath.Join(root, e.Name)
		if !isDir(dir) {
			res.Missing.Add(e.Name)
			res.Issues = append(res.Issues, Issue{SubProject: e.Name})
			continue
		}
		for _, rel := range e.Required {
			if !isFile(filepath.Join(dir, filepath.FromSlash(rel))) {
				res.Missing.Add(e.Name)
				res.Issues = append(res.Issues, Issue{SubProject: e.Name, Path: rel})
				break
			}
		}
	}
	return res
}

// HasReport reports whether root directly contains a regular file with the given extension.
func HasReport(root string, ext string) (bool, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return false, fmt.Errorf("failed to list submission root: %w", err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			return true, nil
		}
	}
	return false, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

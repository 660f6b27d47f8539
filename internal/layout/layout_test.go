package layout_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/programme-lv/grader/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var rustManifest = layout.Manifest{
	{Name: "Problem_1", Required: []string{"src/main.rs", "Cargo.toml"}},
	{Name: "Problem_2", Required: []string{"src/main.rs", "Cargo.toml"}},
	{Name: "Problem_3", Required: []string{"src/main.rs", "Cargo.toml"}},
}

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, nil, 0644))
}

func TestValidateComplete(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"Problem_1", "Problem_2", "Problem_3"} {
		touch(t, root, p+"/Cargo.toml")
		touch(t, root, p+"/src/main.rs")
	}

	res := layout.Validate(root, rustManifest)
	assert.Equal(t, 0, res.Missing.Cardinality())
	assert.Empty(t, res.Issues)
	assert.True(t, res.Usable("Problem_2"))
}

func TestValidatePartial(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "Problem_1/Cargo.toml")
	touch(t, root, "Problem_1/src/main.rs")
	// program entry file missing
	touch(t, root, "Problem_2/Cargo.toml")
	// Problem_3 absent entirely

	res := layout.Validate(root, rustManifest)
	assert.True(t, res.Usable("Problem_1"))
	assert.False(t, res.Usable("Problem_2"))
	assert.False(t, res.Usable("Problem_3"))
	assert.ElementsMatch(t, []string{"Problem_2", "Problem_3"}, res.Missing.ToSlice())
	assert.Equal(t, []layout.Issue{
		{SubProject: "Problem_2", Path: "src/main.rs"},
		{SubProject: "Problem_3"},
	}, res.Issues)
	assert.Equal(t, "missing src/main.rs in Problem_2", res.Issues[0].String())
	assert.Equal(t, "missing folder Problem_3", res.Issues[1].String())
}

func TestValidateRequiredPathIsDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Problem_1", "Cargo.toml"), 0755))
	touch(t, root, "Problem_1/src/main.rs")

	res := layout.Validate(root, rustManifest[:1])
	assert.False(t, res.Usable("Problem_1"))
}

func TestValidateMissingRoot(t *testing.T) {
	res := layout.Validate(filepath.Join(t.TempDir(), "nope"), rustManifest)
	assert.Equal(t, 3, res.Missing.Cardinality())
}

func TestHasReport(t *testing.T) {
	root := t.TempDir()
	ok, err := layout.HasReport(root, ".pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	// reports nested in sub-folders do not count
	touch(t, root, "docs/report.pdf")
	ok, err = layout.HasReport(root, ".pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	touch(t, root, "Report.PDF")
	ok, err = layout.HasReport(root, ".pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestManifestNames(t *testing.T) {
	assert.Equal(t, []string{"Problem_1", "Problem_2", "Problem_3"}, rustManifest.Names())
}

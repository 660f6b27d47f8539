package compare_test

import (
	"testing"

	"github.com/programme-lv/grader/internal/compare"
	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	entries := []struct {
		actual, expected string
		want             compare.Class
	}{
		{"A+\n", "A+\n", compare.Exact},
		{"", "", compare.Exact},
		{"A0", "A0\n", compare.WhitespaceOnly},
		{"  A0\n\n", "A0\n", compare.WhitespaceOnly},
		{"\n", "", compare.WhitespaceOnly},
		{"A0\n", "A+\n", compare.Mismatch},
		{"1 2\n", "1  2\n", compare.Mismatch},
		{"3\n102\n", "3\r\n102\n", compare.Mismatch},
	}
	for _, e := range entries {
		assert.Equal(t, e.want, compare.Compare(e.actual, e.expected),
			"Compare(%q, %q)", e.actual, e.expected)
	}
}

func TestCompareExactNeverWhitespaceOnly(t *testing.T) {
	for _, s := range []string{"A+\n", " x ", "\n\n", "impossible\n"} {
		assert.Equal(t, compare.Exact, compare.Compare(s, s))
	}
}

func TestDiff(t *testing.T) {
	line, want, got := compare.Diff("3\n102\n2503\n", "3\n102\n2502\n")
	assert.Equal(t, 3, line)
	assert.Equal(t, "2502", want)
	assert.Equal(t, "2503", got)

	line, want, got = compare.Diff("3\n", "3\nERROR\n")
	assert.Equal(t, 2, line)
	assert.Equal(t, "ERROR", want)
	assert.Equal(t, "", got)

	line, _, _ = compare.Diff("A0", "A0\n")
	assert.Equal(t, 0, line)
}

package compare

import (
	"strings"
)

// Class is the result of comparing a program's output with the expected answer.
type Class int

const (
	Mismatch Class = iota
	Exact
	WhitespaceOnly
)

func (c Class) String() string {
	switch c {
	case Exact:
		return "exact"
	case WhitespaceOnly:
		return "whitespace-only"
	default:
		return "mismatch"
	}
}

// Compare classifies actual against expected. Byte-identical output is Exact;
// output that only differs in leading or trailing whitespace is WhitespaceOnly.
func Compare(actual, expected string) Class {
	if actual == expected {
		return Exact
	}
	if strings.TrimSpace(actual) == strings.TrimSpace(expected) {
		return WhitespaceOnly
	}
	return Mismatch
}

// Diff returns the first line (1-based) where the trimmed outputs differ,
// together with the expected and actual text of that line. Line is 0 when
// the trimmed outputs are equal.
func Diff(actual, expected string) (line int, want string, got string) {
	a := strings.Split(strings.TrimSpace(actual), "\n")
	e := strings.Split(strings.TrimSpace(expected), "\n")
	for i := 0; i < len(a) || i < len(e); i++ {
		var av, ev string
		if i < len(a) {
			av = a[i]
		}
		if i < len(e) {
			ev = e[i]
		}
		if i >= len(a) || i >= len(e) || av != ev {
			return i + 1, ev, av
		}
	}
	return 0, "", ""
}

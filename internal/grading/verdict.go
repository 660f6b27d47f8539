package grading

// Outcome classifies one run of a sub-project against one test case.
type Outcome int

const (
	Pass Outcome = iota
	PassWhitespaceOnly
	FailMismatch
	FailTimeout
	FailError
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "PASS"
	case PassWhitespaceOnly:
		return "PASS (whitespace differences only)"
	case FailMismatch:
		return "FAIL (wrong answer)"
	case FailTimeout:
		return "FAIL (time limit exceeded)"
	case FailError:
		return "FAIL (build or runtime error)"
	default:
		return "UNKNOWN"
	}
}

// Code is a short machine-readable name used in wire messages.
func (o Outcome) Code() string {
	switch o {
	case Pass:
		return "pass"
	case PassWhitespaceOnly:
		return "pass_ws"
	case FailMismatch:
		return "mismatch"
	case FailTimeout:
		return "timeout"
	case FailError:
		return "error"
	default:
		return "unknown"
	}
}

func (o Outcome) Passed() bool {
	return o == Pass || o == PassWhitespaceOnly
}

// Verdict is the summary symbol of a sub-project or of the report check.
// The zero value is VerdictAbsent.
type Verdict int

const (
	VerdictAbsent Verdict = iota
	VerdictPass
	VerdictFail
)

// Symbol renders the verdict as a summary table cell.
func (v Verdict) Symbol() string {
	switch v {
	case VerdictPass:
		return "O"
	case VerdictFail:
		return "X"
	default:
		return "-"
	}
}

func (v Verdict) String() string {
	switch v {
	case VerdictPass:
		return "pass"
	case VerdictFail:
		return "fail"
	default:
		return "absent"
	}
}

func verdictOf(ok bool) Verdict {
	if ok {
		return VerdictPass
	}
	return VerdictFail
}

package termgath

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/grader/internal/assignment"
	"github.com/programme-lv/grader/internal/grading"
	"github.com/programme-lv/grader/internal/layout"
	"github.com/programme-lv/grader/internal/sandbox"
)

var (
	passColor   = color.New(color.FgGreen, color.Bold)
	failColor   = color.New(color.FgRed, color.Bold)
	absentColor = color.New(color.FgYellow)
	dimColor    = color.New(color.Faint)
)

// Terminal prints one progress line per finished submission and, when
// verbose, the per-test results below it.
type Terminal struct {
	mu      sync.Mutex
	w       io.Writer
	total   int
	done    int
	verbose bool
}

func New(w io.Writer, total int, verbose bool) *Terminal {
	return &Terminal{w: w, total: total, verbose: verbose}
}

func (t *Terminal) Factory() grading.GathererFactory {
	return func(sub grading.Submission) grading.Gatherer {
		return &TerminalGatherer{term: t, StartedAt: time.Now()}
	}
}

type TerminalGatherer struct {
	term      *Terminal
	StartedAt time.Time
	details   []string
}

var _ grading.Gatherer = (*TerminalGatherer)(nil)

func (t *TerminalGatherer) note(format string, args ...any) {
	t.details = append(t.details, "    "+fmt.Sprintf(format, args...))
}

func (t *TerminalGatherer) StartSubmission(sub grading.Submission) {}

func (t *TerminalGatherer) CorruptArchive(err error) {
	t.note("%s %v", failColor.Sprint("corrupt archive:"), err)
}

func (t *TerminalGatherer) InternalError(err error) {
	t.note("%s %v", failColor.Sprint("internal error:"), err)
}

func (t *TerminalGatherer) MissingSubProject(issue layout.Issue) {
	t.note("%s %s", absentColor.Sprint("skipped:"), issue)
}

func (t *TerminalGatherer) StartSubProject(name string, tests int) {}

func (t *TerminalGatherer) FinishBuild(name string, res *sandbox.Result, err error) {
	if err != nil || res.Failed() {
		t.note("%s build failed", name)
	}
}

func (t *TerminalGatherer) ReachTest(name string, tc assignment.TestCase, index int) {}

func (t *TerminalGatherer) IgnoreTest(name string, index int) {
	t.note("%s #%d %s", name, index, dimColor.Sprint("ignored"))
}

func (t *TerminalGatherer) FinishTest(name string, tc assignment.TestCase, res grading.TestResult) {
	c := failColor
	if res.Outcome.Passed() {
		c = passColor
	}
	t.note("%s #%d %s %s", name, res.Index, c.Sprint(res.Outcome), dimColor.Sprintf("%dms", res.Elapsed.Milliseconds()))
}

func (t *TerminalGatherer) FinishSubProject(res grading.SubProjectResult) {}

func (t *TerminalGatherer) CheckReport(found bool, ext string) {}

func (t *TerminalGatherer) FinishSubmission(rec grading.Record) {
	cells := make([]string, 0, len(rec.SubProjects)+1)
	for _, sp := range rec.SubProjects {
		cells = append(cells, sp.Name+" "+symbol(sp.Verdict))
	}
	cells = append(cells, "Report "+symbol(rec.Report))
	dur := time.Since(t.StartedAt).Round(time.Millisecond)

	term := t.term
	term.mu.Lock()
	defer term.mu.Unlock()
	term.done++
	fmt.Fprintf(term.w, "[%d/%d] %-16s %s %s\n", term.done, term.total,
		rec.Submission.StudentID, strings.Join(cells, "  "), dimColor.Sprint(dur))
	if term.verbose {
		for _, line := range t.details {
			fmt.Fprintln(term.w, line)
		}
	}
}

func symbol(v grading.Verdict) string {
	switch v {
	case grading.VerdictPass:
		return passColor.Sprint(v.Symbol())
	case grading.VerdictFail:
		return failColor.Sprint(v.Symbol())
	default:
		return absentColor.Sprint(v.Symbol())
	}
}

package api

import "time"

// MsgType is a message type for streaming responses
type MsgType string

// Streaming message type constants
const (
	StartSubmissionMsg  MsgType = "submission_start"
	CorruptArchiveMsg   MsgType = "archive_corrupt"
	SkipSubProjectMsg   MsgType = "subproject_skip"
	StartSubProjectMsg  MsgType = "subproject_start"
	FinishBuildMsg      MsgType = "build_finish"
	ReachTestMsg        MsgType = "test_reach"
	IgnoreTestMsg       MsgType = "test_ignore"
	FinishTestMsg       MsgType = "test_finish"
	FinishSubProjectMsg MsgType = "subproject_finish"
	CheckReportMsg      MsgType = "report_check"
	FinishSubmissionMsg MsgType = "submission_finish"
)

// Runtime data size constraints for streaming
const (
	MaxRuntimeDataHeight = 40
	MaxRuntimeDataWidth  = 80
)

// Header is the common header for all streaming response messages
type Header struct {
	SubmUuid  string  `json:"subm_uuid"`
	StudentID string  `json:"student_id"`
	MsgType   MsgType `json:"msg_type"`
}

// RuntimeData contains execution information for a process (streaming version)
type RuntimeData struct {
	Stdout   string `json:"out"`
	Stderr   string `json:"err"`
	ExitCode int64  `json:"exit"`

	WallMillis int64 `json:"wall_ms"`
	TimedOut   bool  `json:"timed_out"`
	Truncated  bool  `json:"truncated"`
}

type StartSubmission struct {
	Header
	Archive     string `json:"archive"`
	StartedTime string `json:"started_time"`
}

type CorruptArchive struct {
	Header
	ErrorMessage string `json:"error_message"`
}

// SkipSubProject is sent for a sub-project that failed structure validation.
type SkipSubProject struct {
	Header
	SubProject string `json:"subproject"`
	Reason     string `json:"reason"`
}

type StartSubProject struct {
	Header
	SubProject string `json:"subproject"`
	TestCount  int    `json:"test_count"`
}

type FinishBuild struct {
	Header
	SubProject   string       `json:"subproject"`
	RuntimeData  *RuntimeData `json:"runtime_data"`
	ErrorMessage *string      `json:"error_message"`
}

type ReachTest struct {
	Header
	SubProject string  `json:"subproject"`
	TestId     int64   `json:"test_id"`
	Input      *string `json:"input"`
	Answer     *string `json:"answer"`
}

type IgnoreTest struct {
	Header
	SubProject string `json:"subproject"`
	TestId     int64  `json:"test_id"`
}

type FinishTest struct {
	Header
	SubProject string       `json:"subproject"`
	TestId     int64        `json:"test_id"`
	Outcome    string       `json:"outcome"`
	Submission *RuntimeData `json:"submission"`
}

type FinishSubProject struct {
	Header
	SubProject string `json:"subproject"`
	Verdict    string `json:"verdict"`
	Passed     int    `json:"passed"`
	Total      int    `json:"total"`
}

type CheckReport struct {
	Header
	Extension string `json:"extension"`
	Found     bool   `json:"found"`
}

// FinishSubmission message sent when grading of an archive completes
type FinishSubmission struct {
	Header
	Symbols       []string `json:"symbols"`
	ErrorMessage  *string  `json:"error_message"`
	CorruptError  bool     `json:"corrupt_error"`
	InternalError bool     `json:"internal_error"`
}

// Helper function to create a header
func NewHeader(submUuid, studentID string, msgType MsgType) Header {
	return Header{
		SubmUuid:  submUuid,
		StudentID: studentID,
		MsgType:   msgType,
	}
}

func NewStartSubmission(h Header, archive string) StartSubmission {
	h.MsgType = StartSubmissionMsg
	return StartSubmission{
		Header:      h,
		Archive:     archive,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewCorruptArchive(h Header, msg string) CorruptArchive {
	h.MsgType = CorruptArchiveMsg
	return CorruptArchive{Header: h, ErrorMessage: msg}
}

func NewSkipSubProject(h Header, subProject, reason string) SkipSubProject {
	h.MsgType = SkipSubProjectMsg
	return SkipSubProject{Header: h, SubProject: subProject, Reason: reason}
}

func NewStartSubProject(h Header, subProject string, testCount int) StartSubProject {
	h.MsgType = StartSubProjectMsg
	return StartSubProject{Header: h, SubProject: subProject, TestCount: testCount}
}

func NewFinishBuild(h Header, subProject string, data *RuntimeData, errorMessage *string) FinishBuild {
	h.MsgType = FinishBuildMsg
	return FinishBuild{Header: h, SubProject: subProject, RuntimeData: data, ErrorMessage: errorMessage}
}

func NewReachTest(h Header, subProject string, testId int64, input, answer *string) ReachTest {
	h.MsgType = ReachTestMsg
	return ReachTest{Header: h, SubProject: subProject, TestId: testId, Input: input, Answer: answer}
}

func NewIgnoreTest(h Header, subProject string, testId int64) IgnoreTest {
	h.MsgType = IgnoreTestMsg
	return IgnoreTest{Header: h, SubProject: subProject, TestId: testId}
}

func NewFinishTest(h Header, subProject string, testId int64, outcome string, submission *RuntimeData) FinishTest {
	h.MsgType = FinishTestMsg
	return FinishTest{Header: h, SubProject: subProject, TestId: testId, Outcome: outcome, Submission: submission}
}

func NewFinishSubProject(h Header, subProject, verdict string, passed, total int) FinishSubProject {
	h.MsgType = FinishSubProjectMsg
	return FinishSubProject{Header: h, SubProject: subProject, Verdict: verdict, Passed: passed, Total: total}
}

func NewCheckReport(h Header, ext string, found bool) CheckReport {
	h.MsgType = CheckReportMsg
	return CheckReport{Header: h, Extension: ext, Found: found}
}

func NewFinishSubmission(h Header, symbols []string, errorMessage *string, corrupt, internal bool) FinishSubmission {
	h.MsgType = FinishSubmissionMsg
	return FinishSubmission{
		Header:        h,
		Symbols:       symbols,
		ErrorMessage:  errorMessage,
		CorruptError:  corrupt,
		InternalError: internal,
	}
}

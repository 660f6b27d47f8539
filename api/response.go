package api

// Simple, non-streaming response types for grading results

// TestResult represents the result of a single test case
type TestResult struct {
	TestId  int32  `json:"test_id"`
	Outcome string `json:"outcome"`

	WallMillis  *int64 `json:"wall_ms,omitempty"`
	LimitMillis int64  `json:"limit_ms"`
	ExitCode    *int64 `json:"exit_code,omitempty"`

	// Output (truncated for simple response)
	Stdout *string `json:"stdout,omitempty"`
	Stderr *string `json:"stderr,omitempty"`
}

// BuildResult represents the outcome of the optional build step
type BuildResult struct {
	Success    bool    `json:"success"`
	Error      *string `json:"error,omitempty"`
	WallMillis *int64  `json:"wall_ms,omitempty"`
}

type SubProjectResult struct {
	Name    string  `json:"name"`
	Verdict string  `json:"verdict"`
	Issue   *string `json:"issue,omitempty"`

	Build       *BuildResult `json:"build,omitempty"`
	TestResults []TestResult `json:"test_results"`
	Ignored     []int32      `json:"ignored,omitempty"`
}

type RecordStatus string

const (
	Graded               RecordStatus = "graded"
	CorruptArchiveStatus RecordStatus = "corrupt_archive"
	InternalError        RecordStatus = "internal_error"
)

// Record is a complete grading result of one submission archive
type Record struct {
	SubmUuid  string `json:"subm_uuid"`
	StudentID string `json:"student_id"`
	Archive   string `json:"archive"`

	Status      RecordStatus       `json:"status"`
	SubProjects []SubProjectResult `json:"subprojects"`
	Report      string             `json:"report"`

	// Overall error message (for corrupt archives and internal errors)
	ErrorMessage *string `json:"error_message,omitempty"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`
}

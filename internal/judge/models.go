package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/code_drill/drill/internal/drill_errors"
)

// judge0 status ids
const (
	StatusInQueue           = 1
	StatusProcessing        = 2
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
	StatusRuntimeSIGSEGV    = 7
	StatusRuntimeSIGXFSZ    = 8
	StatusRuntimeSIGFPE     = 9
	StatusRuntimeSIGABRT    = 10
	StatusRuntimeNZEC       = 11
	StatusRuntimeOther      = 12
	StatusInternalError     = 13
	StatusExecFormatError   = 14
)

const (
	CategoryQueued            = "queued"
	CategoryProcessing        = "processing"
	CategoryAccepted          = "accepted"
	CategoryWrongAnswer       = "wrong_answer"
	CategoryTimeLimitExceeded = "time_limit_exceeded"
	CategoryCompilationError  = "compilation_error"
	CategoryRuntimeError      = "runtime_error"
	CategoryInternalError     = "internal_error"
)

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"output"`
}

// SubmissionRequest is one unit of work sent to the judge.
type SubmissionRequest struct {
	SourceCode     string `json:"source_code"`
	LanguageID     int    `json:"language_id"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

// Token identifies one in-flight SubmissionRequest. Tokens are only valid
// for the judging run that created them.
type Token string

type Status struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// Pending reports whether the judge is still working on the submission.
func (s Status) Pending() bool {
	return s.ID == StatusInQueue || s.ID == StatusProcessing
}

func (s Status) Accepted() bool {
	return s.ID == StatusAccepted
}

func (s Status) Category() string {
	switch s.ID {
	case StatusInQueue:
		return CategoryQueued
	case StatusProcessing:
		return CategoryProcessing
	case StatusAccepted:
		return CategoryAccepted
	case StatusWrongAnswer:
		return CategoryWrongAnswer
	case StatusTimeLimitExceeded:
		return CategoryTimeLimitExceeded
	case StatusCompilationError:
		return CategoryCompilationError
	case StatusRuntimeSIGSEGV, StatusRuntimeSIGXFSZ, StatusRuntimeSIGFPE,
		StatusRuntimeSIGABRT, StatusRuntimeNZEC, StatusRuntimeOther, StatusExecFormatError:
		return CategoryRuntimeError
	default:
		return CategoryInternalError
	}
}

// Metric is a resource usage value as reported by the judge. Judge0 sends
// time as a string and memory as a number, so both forms are accepted and
// kept as text until parsed. Empty means the judge reported nothing.
type Metric string

func (m *Metric) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) || len(data) == 0 {
		*m = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Metric(s)
		return nil
	}
	// numeric form
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("metric %s is neither a string nor a number", data)
	}
	*m = Metric(data)
	return nil
}

// JudgeResult is the judge's final report for one test case.
type JudgeResult struct {
	Token         Token   `json:"token,omitempty"`
	Status        Status  `json:"status"`
	Time          Metric  `json:"time"`
	Memory        Metric  `json:"memory"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
}

type CaseMetrics struct {
	TimeSeconds *float64 `json:"time_seconds"`
	MemoryKB    *float64 `json:"memory_kb"`
}

// Verdict is the aggregated outcome of one judging run.
type Verdict struct {
	Passed         bool          `json:"passed"`
	FailedIndex    *int          `json:"failed_index"`
	FailedReason   *string       `json:"failed_reason"`
	FailedCategory *string       `json:"failed_category"`
	PerCaseMetrics []CaseMetrics `json:"per_case_metrics"`
	Results        []JudgeResult `json:"results"`
}

// ReferenceSolution pairs a language name with a known-correct solution.
type ReferenceSolution struct {
	Language string
	Code     string
}

// ReferenceFailure identifies the first (language, test case) combination
// whose reference solution did not pass. Index is 0-based.
type ReferenceFailure struct {
	Language string
	Index    int
	Verdict  Verdict
}

func (rf *ReferenceFailure) Error() string {
	return fmt.Sprintf("Testcase %d failed for language %s", rf.Index+1, rf.Language)
}

func (rf *ReferenceFailure) Unwrap() error {
	return drill_errors.ErrReferenceSolutionFailed
}

package submission_service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service/problem_service"
)

const (
	StatusAccepted    = "Accepted"
	StatusWrongAnswer = "Wrong Answer"
)

type SubmissionStore interface {
	RecordGradedSubmission(ctx context.Context, arg database.RecordGradedSubmissionParams) (database.Submission, []database.TestCaseResult, error)
	ListSubmissionsByUser(ctx context.Context, userID uuid.UUID) ([]database.Submission, error)
	ListSubmissionsByUserAndProblem(ctx context.Context, arg database.ListSubmissionsByUserAndProblemParams) ([]database.Submission, error)
	CountSubmissionsByProblem(ctx context.Context, problemID uuid.UUID) (int64, error)
	ListTestCaseResults(ctx context.Context, submissionIDs []uuid.UUID) ([]database.TestCaseResult, error)
	ListSubmissionMetricsByUser(ctx context.Context, userID uuid.UUID) ([]database.ListSubmissionMetricsByUserRow, error)
	CountProblemsSolvedByDifficulty(ctx context.Context, userID uuid.UUID) ([]database.CountProblemsSolvedByDifficultyRow, error)
}

// Executor runs code on the judge.
type Executor interface {
	ExecuteLanguageID(ctx context.Context, languageID int, source string, cases []judge.TestCase) (judge.Verdict, error)
	Languages() *judge.Languages
}

type ProblemReader interface {
	GetProblemById(ctx context.Context, id uuid.UUID) (problem_service.Problem, error)
}

type SubmissionService struct {
	DB             SubmissionStore
	Judge          Executor
	ProblemService ProblemReader
	logger         *logrus.Entry
}

type ExecuteRequest struct {
	SourceCode      string    `json:"source_code" validate:"required"`
	LanguageID      int       `json:"language_id" validate:"required,gt=0"`
	Stdin           []string  `json:"stdin"`
	ExpectedOutputs []string  `json:"expected_outputs"`
	ProblemID       uuid.UUID `json:"problemId"`
}

type TestCaseResult struct {
	TestCase      int     `json:"testCase"`
	Passed        bool    `json:"passed"`
	Stdout        *string `json:"stdout"`
	Expected      string  `json:"expected"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compileOutput"`
	Status        string  `json:"status"`
	Memory        *string `json:"memory"`
	Time          *string `json:"time"`
}

type Submission struct {
	ID            uuid.UUID        `json:"id"`
	UserID        uuid.UUID        `json:"userId"`
	ProblemID     uuid.UUID        `json:"problemId"`
	SourceCode    string           `json:"sourceCode"`
	Language      string           `json:"language"`
	Stdin         []string         `json:"stdin"`
	Stdout        []*string        `json:"stdout"`
	Stderr        []*string        `json:"stderr"`
	CompileOutput []*string        `json:"compileOutput"`
	Status        string           `json:"status"`
	Memory        []*string        `json:"memory"`
	Time          []*string        `json:"time"`
	CreatedAt     time.Time        `json:"createdAt"`
	TestCases     []TestCaseResult `json:"testCases,omitempty"`
}

// RunResult is the outcome of an unsaved run.
type RunResult struct {
	Passed         bool             `json:"passed"`
	Language       string           `json:"language"`
	FailedIndex    *int             `json:"failedIndex"`
	FailedReason   *string          `json:"failedReason"`
	FailedCategory *string          `json:"failedCategory"`
	TestCases      []TestCaseResult `json:"testCases"`
}

type DifficultyStats struct {
	Submissions   int    `json:"submissions"`
	Accepted      int    `json:"accepted"`
	AverageTime   string `json:"averageTime"`
	AverageMemory string `json:"averageMemory"`
}

type UserStats struct {
	AcceptedProblemsByDifficulty map[string]int             `json:"acceptedProblemsByDifficulty"`
	TotalSubmissions             int                        `json:"totalSubmissions"`
	AcceptedSubmissions          int                        `json:"acceptedSubmissions"`
	AverageTime                  string                     `json:"averageTime"`
	AverageMemory                string                     `json:"averageMemory"`
	ByDifficulty                 map[string]DifficultyStats `json:"byDifficulty"`
}

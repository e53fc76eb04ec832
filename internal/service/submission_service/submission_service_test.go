package submission_service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service"
	"github.com/code_drill/drill/internal/service/problem_service"
)

func TestMain(m *testing.M) {
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)
	service.InitializeServices("test-secret")
	os.Exit(m.Run())
}

type memorySubmissions struct {
	submissions []database.Submission
	results     []database.TestCaseResult
	solved      map[uuid.UUID]bool
	difficulty  map[uuid.UUID]string
}

func newMemorySubmissions() *memorySubmissions {
	return &memorySubmissions{solved: make(map[uuid.UUID]bool), difficulty: make(map[uuid.UUID]string)}
}

func (m *memorySubmissions) RecordGradedSubmission(_ context.Context, arg database.RecordGradedSubmissionParams) (database.Submission, []database.TestCaseResult, error) {
	s := database.Submission{
		ID: uuid.New(), UserID: arg.Submission.UserID, ProblemID: arg.Submission.ProblemID,
		SourceCode: arg.Submission.SourceCode, Language: arg.Submission.Language,
		Stdin: arg.Submission.Stdin, Stdout: arg.Submission.Stdout, Stderr: arg.Submission.Stderr,
		CompileOutput: arg.Submission.CompileOutput, Status: arg.Submission.Status,
		Memory: arg.Submission.Memory, Time: arg.Submission.Time, CreatedAt: time.Now(),
	}
	m.submissions = append(m.submissions, s)
	var stored []database.TestCaseResult
	for _, r := range arg.Results {
		res := database.TestCaseResult{
			ID: uuid.New(), SubmissionID: s.ID, TestCase: r.TestCase, Passed: r.Passed, Stdout: r.Stdout,
			Expected: r.Expected, Stderr: r.Stderr, CompileOutput: r.CompileOutput, Status: r.Status,
			Memory: r.Memory, Time: r.Time,
		}
		stored = append(stored, res)
	}
	m.results = append(m.results, stored...)
	if arg.Solved {
		m.solved[s.ProblemID] = true
	}
	return s, stored, nil
}

func (m *memorySubmissions) ListSubmissionsByUser(_ context.Context, userID uuid.UUID) ([]database.Submission, error) {
	var out []database.Submission
	for _, s := range m.submissions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySubmissions) ListSubmissionsByUserAndProblem(_ context.Context, arg database.ListSubmissionsByUserAndProblemParams) ([]database.Submission, error) {
	var out []database.Submission
	for _, s := range m.submissions {
		if s.UserID == arg.UserID && s.ProblemID == arg.ProblemID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memorySubmissions) CountSubmissionsByProblem(_ context.Context, problemID uuid.UUID) (int64, error) {
	var n int64
	for _, s := range m.submissions {
		if s.ProblemID == problemID {
			n++
		}
	}
	return n, nil
}

func (m *memorySubmissions) ListTestCaseResults(_ context.Context, ids []uuid.UUID) ([]database.TestCaseResult, error) {
	want := make(map[uuid.UUID]bool)
	for _, id := range ids {
		want[id] = true
	}
	var out []database.TestCaseResult
	for _, r := range m.results {
		if want[r.SubmissionID] {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memorySubmissions) ListSubmissionMetricsByUser(_ context.Context, userID uuid.UUID) ([]database.ListSubmissionMetricsByUserRow, error) {
	var out []database.ListSubmissionMetricsByUserRow
	for _, s := range m.submissions {
		if s.UserID == userID {
			out = append(out, database.ListSubmissionMetricsByUserRow{
				Difficulty: m.difficulty[s.ProblemID], Status: s.Status, Time: s.Time, Memory: s.Memory,
			})
		}
	}
	return out, nil
}

func (m *memorySubmissions) CountProblemsSolvedByDifficulty(_ context.Context, _ uuid.UUID) ([]database.CountProblemsSolvedByDifficultyRow, error) {
	counts := make(map[string]int32)
	for id := range m.solved {
		counts[m.difficulty[id]]++
	}
	var out []database.CountProblemsSolvedByDifficultyRow
	for d, n := range counts {
		out = append(out, database.CountProblemsSolvedByDifficultyRow{Difficulty: d, Solved: n})
	}
	return out, nil
}

// stubExecutor accepts every case unless failAt is set.
type stubExecutor struct {
	calls  int
	failAt int
	err    error
	cases  []judge.TestCase
}

func (s *stubExecutor) ExecuteLanguageID(_ context.Context, languageID int, _ string, cases []judge.TestCase) (judge.Verdict, error) {
	s.calls++
	s.cases = cases
	if s.err != nil {
		return judge.Verdict{}, s.err
	}
	if !judge.DefaultLanguages().Supports(languageID) {
		return judge.Verdict{}, drill_errors.ErrUnsupportedLanguage
	}
	results := make([]judge.JudgeResult, len(cases))
	for i, tc := range cases {
		out := tc.ExpectedOutput
		status := judge.Status{ID: judge.StatusAccepted, Description: "Accepted"}
		if s.failAt == i+1 {
			out = "wrong"
			status = judge.Status{ID: judge.StatusWrongAnswer, Description: "Wrong Answer"}
		}
		results[i] = judge.JudgeResult{Status: status, Stdout: &out, Time: "0.010", Memory: "2048"}
	}
	return judge.Aggregate(results), nil
}

func (s *stubExecutor) Languages() *judge.Languages {
	return judge.DefaultLanguages()
}

type stubProblems struct {
	problems map[uuid.UUID]problem_service.Problem
}

func (s stubProblems) GetProblemById(_ context.Context, id uuid.UUID) (problem_service.Problem, error) {
	p, ok := s.problems[id]
	if !ok {
		return problem_service.Problem{}, drill_errors.HandleDBErrors(pgx.ErrNoRows, nil, "cannot fetch problem")
	}
	return p, nil
}

type fixture struct {
	svc       *SubmissionService
	store     *memorySubmissions
	executor  *stubExecutor
	problemID uuid.UUID
	ctx       context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	problemID := uuid.New()
	store := newMemorySubmissions()
	store.difficulty[problemID] = problem_service.DifficultyEasy
	executor := &stubExecutor{}
	svc := &SubmissionService{
		DB:    store,
		Judge: executor,
		ProblemService: stubProblems{problems: map[uuid.UUID]problem_service.Problem{
			problemID: {
				ID:         problemID,
				Difficulty: problem_service.DifficultyEasy,
				Testcases: []judge.TestCase{
					{Input: "1 2", ExpectedOutput: "3"},
					{Input: "2 2", ExpectedOutput: "4"},
				},
			},
		}},
	}
	svc.Start()
	ctx := service.ContextWithClaims(context.Background(), service.UserCredentialClaims{UserId: uuid.New()})
	return fixture{svc: svc, store: store, executor: executor, problemID: problemID, ctx: ctx}
}

func TestGradeAccepted(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Grade(f.ctx, ExecuteRequest{
		SourceCode: "print(sum(map(int, input().split())))",
		LanguageID: 71,
		ProblemID:  f.problemID,
		// ignored, the problem has stored cases
		Stdin:           []string{"9 9"},
		ExpectedOutputs: []string{"18"},
	})
	if err != nil {
		t.Fatalf("grade failed: %v", err)
	}
	if res.Status != StatusAccepted || res.Language != "PYTHON" {
		t.Errorf("unexpected submission %+v", res)
	}
	if len(f.executor.cases) != 2 || f.executor.cases[0].Input != "1 2" {
		t.Errorf("grading should use stored cases, used %+v", f.executor.cases)
	}
	if len(res.TestCases) != 2 || !res.TestCases[1].Passed || res.TestCases[1].TestCase != 2 {
		t.Errorf("unexpected test case results %+v", res.TestCases)
	}
	if res.Time[0] == nil || *res.Time[0] != "0.010 s" || *res.Memory[0] != "2048 KB" {
		t.Errorf("metrics should be stored with units, got %v %v", res.Time, res.Memory)
	}
	if res.Stderr != nil {
		t.Errorf("stderr with no output should be null, got %v", res.Stderr)
	}
	if !f.store.solved[f.problemID] {
		t.Errorf("accepted submission should mark the problem solved")
	}
}

func TestGradeWrongAnswer(t *testing.T) {
	f := newFixture(t)
	f.executor.failAt = 2
	res, err := f.svc.Grade(f.ctx, ExecuteRequest{SourceCode: "print(3)", LanguageID: 71, ProblemID: f.problemID})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != StatusWrongAnswer || res.TestCases[1].Passed || !res.TestCases[0].Passed {
		t.Errorf("unexpected result %+v", res)
	}
	if f.store.solved[f.problemID] {
		t.Errorf("wrong answer must not mark the problem solved")
	}

	var stdin []string
	if err = json.Unmarshal(f.store.submissions[0].Stdin, &stdin); err != nil || len(stdin) != 2 {
		t.Errorf("stdin should be stored as a json array, got %s", f.store.submissions[0].Stdin)
	}
}

func TestGradeFailures(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Grade(f.ctx, ExecuteRequest{SourceCode: "x", LanguageID: 71, ProblemID: uuid.New()})
	if !errors.Is(err, drill_errors.ErrNotFound) {
		t.Errorf("unknown problem: expected ErrNotFound, got %v", err)
	}
	_, err = f.svc.Grade(f.ctx, ExecuteRequest{SourceCode: "x", LanguageID: 71})
	if !errors.Is(err, drill_errors.ErrInvalidRequest) {
		t.Errorf("missing problem: expected ErrInvalidRequest, got %v", err)
	}

	f.executor.err = drill_errors.ErrJudgeUnavailable
	_, err = f.svc.Grade(f.ctx, ExecuteRequest{SourceCode: "x", LanguageID: 71, ProblemID: f.problemID})
	if !errors.Is(err, drill_errors.ErrJudgeUnavailable) {
		t.Errorf("expected ErrJudgeUnavailable, got %v", err)
	}
	if len(f.store.submissions) != 0 {
		t.Errorf("failed runs must not be recorded")
	}
}

func TestRun(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Run(f.ctx, ExecuteRequest{
		SourceCode:      "print(input())",
		LanguageID:      71,
		Stdin:           []string{"a", "b", "c"},
		ExpectedOutputs: []string{"a", "b", "c"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Passed || len(res.TestCases) != 3 || res.FailedIndex != nil {
		t.Errorf("unexpected run result %+v", res)
	}
	if len(f.store.submissions) != 0 {
		t.Errorf("runs must not be recorded")
	}

	for _, req := range []ExecuteRequest{
		{SourceCode: "x", LanguageID: 71},
		{SourceCode: "x", LanguageID: 71, Stdin: []string{"a"}, ExpectedOutputs: []string{"a", "b"}},
		{SourceCode: "", LanguageID: 71, Stdin: []string{"a"}, ExpectedOutputs: []string{"a"}},
	} {
		if _, err = f.svc.Run(f.ctx, req); !errors.Is(err, drill_errors.ErrInvalidRequest) {
			t.Errorf("%+v: expected ErrInvalidRequest, got %v", req, err)
		}
	}
}

func TestHistoryAndStats(t *testing.T) {
	f := newFixture(t)
	req := ExecuteRequest{SourceCode: "x", LanguageID: 71, ProblemID: f.problemID}
	if _, err := f.svc.Grade(f.ctx, req); err != nil {
		t.Fatal(err)
	}
	f.executor.failAt = 1
	if _, err := f.svc.Grade(f.ctx, req); err != nil {
		t.Fatal(err)
	}

	all, err := f.svc.ListSubmissions(f.ctx)
	if err != nil || len(all) != 2 || len(all[0].TestCases) != 2 {
		t.Fatalf("list = (%+v, %v)", all, err)
	}
	forProblem, err := f.svc.ListSubmissionsForProblem(f.ctx, f.problemID)
	if err != nil || len(forProblem) != 2 {
		t.Errorf("for problem = (%d, %v)", len(forProblem), err)
	}
	count, err := f.svc.CountSubmissionsForProblem(f.ctx, f.problemID)
	if err != nil || count != 2 {
		t.Errorf("count = (%d, %v)", count, err)
	}

	// one malformed metric is skipped
	bad := "fast"
	badTime, _ := json.Marshal([]*string{&bad})
	f.store.submissions[1].Time = badTime

	stats, err := f.svc.UserStats(f.ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.AcceptedProblemsByDifficulty[problem_service.DifficultyEasy] != 1 ||
		stats.AcceptedProblemsByDifficulty[problem_service.DifficultyHard] != 0 {
		t.Errorf("accepted by difficulty = %v", stats.AcceptedProblemsByDifficulty)
	}
	if stats.TotalSubmissions != 2 || stats.AcceptedSubmissions != 1 {
		t.Errorf("totals = %d/%d", stats.AcceptedSubmissions, stats.TotalSubmissions)
	}
	if stats.AverageTime != "0.010 s" || stats.AverageMemory != "2048.00 KB" {
		t.Errorf("averages = %s, %s", stats.AverageTime, stats.AverageMemory)
	}
	if easy := stats.ByDifficulty[problem_service.DifficultyEasy]; easy.Submissions != 2 {
		t.Errorf("easy stats = %+v", easy)
	}
}

package submission_service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service"
)

var (
	errMsgs = map[string]map[string]string{
		drill_errors.CodeForeignKeyConstraint: {
			"fk_submissions_problem": "problem no longer exists",
			"fk_submissions_user":    "user no longer exists",
		},
	}
)

func (sub *SubmissionService) Start() {
	for _, field := range []struct {
		field any
		name  string
	}{
		{sub.DB, "database"}, {sub.Judge, "judge"}, {sub.ProblemService, "problem service"},
	} {
		if field.field == nil {
			panic(fmt.Sprintf("submission service expects non-nil %v", field.name))
		}
	}

	sub.logger = logrus.WithFields(logrus.Fields{
		"from": "submission-service",
	})
	sub.logger.Info("initialized submission service")
}

// Grade judges the caller's code against the stored test cases of a problem
// and records the outcome.
func (sub *SubmissionService) Grade(
	ctx context.Context,
	request ExecuteRequest,
) (Submission, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return Submission{}, err
	}
	if err = service.ValidateInput(request); err != nil {
		return Submission{}, err
	}
	if request.ProblemID == uuid.Nil {
		return Submission{}, fmt.Errorf("%w, problemId is required", drill_errors.ErrInvalidRequest)
	}

	problem, err := sub.ProblemService.GetProblemById(ctx, request.ProblemID)
	if err != nil {
		return Submission{}, err
	}
	cases := problem.Testcases
	if len(cases) == 0 {
		// problems always carry cases, the request's are a fallback
		if cases, err = casesFromRequest(request); err != nil {
			return Submission{}, err
		}
	}

	verdict, err := sub.Judge.ExecuteLanguageID(ctx, request.LanguageID, request.SourceCode, cases)
	if err != nil {
		return Submission{}, err
	}

	language := sub.Judge.Languages().ResolveLanguageName(request.LanguageID)
	params, err := buildRecord(claims.UserId, request, language, cases, verdict)
	if err != nil {
		return Submission{}, err
	}

	dbSub, dbResults, err := sub.DB.RecordGradedSubmission(ctx, params)
	if err != nil {
		return Submission{}, drill_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot record submission for problem %v", request.ProblemID),
		)
	}

	sub.logger.WithFields(logrus.Fields{
		"submission_id": dbSub.ID,
		"problem_id":    dbSub.ProblemID,
		"user_id":       dbSub.UserID,
		"status":        dbSub.Status,
	}).Info("submission graded")

	res := submissionFromDB(dbSub)
	res.TestCases = testCasesFromDB(dbResults)
	return res, nil
}

// Run judges code against caller supplied cases without saving anything.
func (sub *SubmissionService) Run(
	ctx context.Context,
	request ExecuteRequest,
) (RunResult, error) {
	if err := service.ValidateInput(request); err != nil {
		return RunResult{}, err
	}
	cases, err := casesFromRequest(request)
	if err != nil {
		return RunResult{}, err
	}

	verdict, err := sub.Judge.ExecuteLanguageID(ctx, request.LanguageID, request.SourceCode, cases)
	if err != nil {
		return RunResult{}, err
	}

	return RunResult{
		Passed:         verdict.Passed,
		Language:       sub.Judge.Languages().ResolveLanguageName(request.LanguageID),
		FailedIndex:    verdict.FailedIndex,
		FailedReason:   verdict.FailedReason,
		FailedCategory: verdict.FailedCategory,
		TestCases:      caseResults(cases, verdict),
	}, nil
}

func casesFromRequest(request ExecuteRequest) ([]judge.TestCase, error) {
	if len(request.Stdin) == 0 {
		return nil, fmt.Errorf("%w, stdin must contain at least one test case", drill_errors.ErrInvalidRequest)
	}
	if len(request.Stdin) != len(request.ExpectedOutputs) {
		return nil, fmt.Errorf(
			"%w, got %d stdin entries but %d expected outputs",
			drill_errors.ErrInvalidRequest, len(request.Stdin), len(request.ExpectedOutputs),
		)
	}
	cases := make([]judge.TestCase, len(request.Stdin))
	for i := range request.Stdin {
		cases[i] = judge.TestCase{Input: request.Stdin[i], ExpectedOutput: request.ExpectedOutputs[i]}
	}
	return cases, nil
}

func caseResults(cases []judge.TestCase, verdict judge.Verdict) []TestCaseResult {
	results := make([]TestCaseResult, len(verdict.Results))
	for i, res := range verdict.Results {
		status := res.Status.Description
		if status == "" {
			status = res.Status.Category()
		}
		results[i] = TestCaseResult{
			TestCase:      i + 1,
			Passed:        res.Status.Accepted(),
			Stdout:        res.Stdout,
			Expected:      cases[i].ExpectedOutput,
			Stderr:        res.Stderr,
			CompileOutput: res.CompileOutput,
			Status:        status,
			Memory:        judge.MemoryText(res.Memory),
			Time:          judge.TimeText(res.Time),
		}
	}
	return results
}

func buildRecord(
	userID uuid.UUID,
	request ExecuteRequest,
	language string,
	cases []judge.TestCase,
	verdict judge.Verdict,
) (database.RecordGradedSubmissionParams, error) {
	results := caseResults(cases, verdict)

	stdin := make([]string, len(cases))
	var stdout, stderr, compileOutput, memory, timing []*string
	for i, r := range results {
		stdin[i] = cases[i].Input
		stdout = append(stdout, r.Stdout)
		stderr = append(stderr, r.Stderr)
		compileOutput = append(compileOutput, r.CompileOutput)
		memory = append(memory, r.Memory)
		timing = append(timing, r.Time)
	}

	status := StatusWrongAnswer
	if verdict.Passed {
		status = StatusAccepted
	}

	params := database.RecordGradedSubmissionParams{
		Submission: database.CreateSubmissionParams{
			UserID:     userID,
			ProblemID:  request.ProblemID,
			SourceCode: request.SourceCode,
			Language:   language,
			Status:     status,
		},
		Solved: verdict.Passed,
	}

	var err error
	encode := func(v any) []byte {
		if err != nil {
			return nil
		}
		var b []byte
		b, err = json.Marshal(v)
		return b
	}
	params.Submission.Stdin = encode(stdin)
	params.Submission.Stdout = encode(stdout)
	params.Submission.Stderr = encodeIfAny(stderr, encode)
	params.Submission.CompileOutput = encodeIfAny(compileOutput, encode)
	params.Submission.Memory = encode(memory)
	params.Submission.Time = encode(timing)
	if err != nil {
		return database.RecordGradedSubmissionParams{}, fmt.Errorf(
			"%w, cannot encode submission, %w", drill_errors.ErrInternal, err,
		)
	}

	for _, r := range results {
		params.Results = append(params.Results, database.CreateTestCaseResultParams{
			TestCase:      int32(r.TestCase),
			Passed:        r.Passed,
			Stdout:        r.Stdout,
			Expected:      r.Expected,
			Stderr:        r.Stderr,
			CompileOutput: r.CompileOutput,
			Status:        r.Status,
			Memory:        r.Memory,
			Time:          r.Time,
		})
	}
	return params, nil
}

// encodeIfAny stores NULL instead of an all-null array.
func encodeIfAny(values []*string, encode func(any) []byte) []byte {
	for _, v := range values {
		if v != nil {
			return encode(values)
		}
	}
	return nil
}

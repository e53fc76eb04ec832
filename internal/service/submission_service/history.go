package submission_service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/service"
)

// ListSubmissions returns every submission of the caller, newest first.
func (sub *SubmissionService) ListSubmissions(ctx context.Context) ([]Submission, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := sub.DB.ListSubmissionsByUser(ctx, claims.UserId)
	if err != nil {
		return nil, drill_errors.HandleDBErrors(err, errMsgs, "cannot list submissions")
	}
	return sub.withTestCases(ctx, rows)
}

// ListSubmissionsForProblem returns the caller's submissions to one problem.
func (sub *SubmissionService) ListSubmissionsForProblem(ctx context.Context, problemID uuid.UUID) ([]Submission, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := sub.DB.ListSubmissionsByUserAndProblem(ctx, database.ListSubmissionsByUserAndProblemParams{
		UserID:    claims.UserId,
		ProblemID: problemID,
	})
	if err != nil {
		return nil, drill_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot list submissions for problem %v", problemID),
		)
	}
	return sub.withTestCases(ctx, rows)
}

// CountSubmissionsForProblem counts submissions of all users to a problem.
func (sub *SubmissionService) CountSubmissionsForProblem(ctx context.Context, problemID uuid.UUID) (int64, error) {
	count, err := sub.DB.CountSubmissionsByProblem(ctx, problemID)
	if err != nil {
		return 0, drill_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot count submissions for problem %v", problemID),
		)
	}
	return count, nil
}

func (sub *SubmissionService) withTestCases(ctx context.Context, rows []database.Submission) ([]Submission, error) {
	submissions := make([]Submission, 0, len(rows))
	if len(rows) == 0 {
		return submissions, nil
	}

	ids := make([]uuid.UUID, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	results, err := sub.DB.ListTestCaseResults(ctx, ids)
	if err != nil {
		return nil, drill_errors.HandleDBErrors(err, errMsgs, "cannot list test case results")
	}
	bySubmission := make(map[uuid.UUID][]database.TestCaseResult, len(rows))
	for _, r := range results {
		bySubmission[r.SubmissionID] = append(bySubmission[r.SubmissionID], r)
	}

	for _, row := range rows {
		s := submissionFromDB(row)
		s.TestCases = testCasesFromDB(bySubmission[row.ID])
		submissions = append(submissions, s)
	}
	return submissions, nil
}

func submissionFromDB(row database.Submission) Submission {
	var stdin []string
	// tolerate rows written by older clients
	_ = json.Unmarshal(row.Stdin, &stdin)
	return Submission{
		ID:            row.ID,
		UserID:        row.UserID,
		ProblemID:     row.ProblemID,
		SourceCode:    row.SourceCode,
		Language:      row.Language,
		Stdin:         stdin,
		Stdout:        decodeStrings(row.Stdout),
		Stderr:        decodeStrings(row.Stderr),
		CompileOutput: decodeStrings(row.CompileOutput),
		Status:        row.Status,
		Memory:        decodeStrings(row.Memory),
		Time:          decodeStrings(row.Time),
		CreatedAt:     row.CreatedAt,
	}
}

func testCasesFromDB(rows []database.TestCaseResult) []TestCaseResult {
	res := make([]TestCaseResult, len(rows))
	for i, r := range rows {
		res[i] = TestCaseResult{
			TestCase:      int(r.TestCase),
			Passed:        r.Passed,
			Stdout:        r.Stdout,
			Expected:      r.Expected,
			Stderr:        r.Stderr,
			CompileOutput: r.CompileOutput,
			Status:        r.Status,
			Memory:        r.Memory,
			Time:          r.Time,
		}
	}
	return res
}

func decodeStrings(raw []byte) []*string {
	if len(raw) == 0 {
		return nil
	}
	var values []*string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

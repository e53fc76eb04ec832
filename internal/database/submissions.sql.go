package database

import (
	"context"

	"github.com/google/uuid"
)

const submissionColumns = `s.id, s.user_id, s.problem_id, s.source_code, s.language, s.stdin, s.stdout,
    s.stderr, s.compile_output, s.status, s.memory, s.time, s.created_at, s.updated_at`

func submissionFields(s *Submission) []any {
	return []any{
		&s.ID,
		&s.UserID,
		&s.ProblemID,
		&s.SourceCode,
		&s.Language,
		&s.Stdin,
		&s.Stdout,
		&s.Stderr,
		&s.CompileOutput,
		&s.Status,
		&s.Memory,
		&s.Time,
		&s.CreatedAt,
		&s.UpdatedAt,
	}
}

func collectSubmissions(ctx context.Context, q *Queries, query string, args ...any) ([]Submission, error) {
	rows, err := q.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Submission
	for rows.Next() {
		var s Submission
		if err := rows.Scan(submissionFields(&s)...); err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createSubmission = `-- name: CreateSubmission :one
INSERT INTO submissions AS s (
    user_id, problem_id, source_code, language, stdin, stdout,
    stderr, compile_output, status, memory, time
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING ` + submissionColumns

type CreateSubmissionParams struct {
	UserID        uuid.UUID
	ProblemID     uuid.UUID
	SourceCode    string
	Language      string
	Stdin         []byte
	Stdout        []byte
	Stderr        []byte
	CompileOutput []byte
	Status        string
	Memory        []byte
	Time          []byte
}

func (q *Queries) CreateSubmission(ctx context.Context, arg CreateSubmissionParams) (Submission, error) {
	var s Submission
	err := q.db.QueryRow(ctx, createSubmission,
		arg.UserID,
		arg.ProblemID,
		arg.SourceCode,
		arg.Language,
		arg.Stdin,
		arg.Stdout,
		arg.Stderr,
		arg.CompileOutput,
		arg.Status,
		arg.Memory,
		arg.Time,
	).Scan(submissionFields(&s)...)
	return s, err
}

const listSubmissionsByUser = `-- name: ListSubmissionsByUser :many
SELECT ` + submissionColumns + ` FROM submissions s
WHERE s.user_id = $1
ORDER BY s.created_at DESC`

func (q *Queries) ListSubmissionsByUser(ctx context.Context, userID uuid.UUID) ([]Submission, error) {
	return collectSubmissions(ctx, q, listSubmissionsByUser, userID)
}

const listSubmissionsByUserAndProblem = `-- name: ListSubmissionsByUserAndProblem :many
SELECT ` + submissionColumns + ` FROM submissions s
WHERE s.user_id = $1 AND s.problem_id = $2
ORDER BY s.created_at DESC`

type ListSubmissionsByUserAndProblemParams struct {
	UserID    uuid.UUID
	ProblemID uuid.UUID
}

func (q *Queries) ListSubmissionsByUserAndProblem(ctx context.Context, arg ListSubmissionsByUserAndProblemParams) ([]Submission, error) {
	return collectSubmissions(ctx, q, listSubmissionsByUserAndProblem, arg.UserID, arg.ProblemID)
}

const countSubmissionsByProblem = `-- name: CountSubmissionsByProblem :one
SELECT COUNT(*) FROM submissions WHERE problem_id = $1`

func (q *Queries) CountSubmissionsByProblem(ctx context.Context, problemID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countSubmissionsByProblem, problemID).Scan(&count)
	return count, err
}

const listSubmissionMetricsByUser = `-- name: ListSubmissionMetricsByUser :many
SELECT p.difficulty, s.status, s.time, s.memory
FROM submissions s
JOIN problems p ON p.id = s.problem_id
WHERE s.user_id = $1`

type ListSubmissionMetricsByUserRow struct {
	Difficulty string
	Status     string
	Time       []byte
	Memory     []byte
}

func (q *Queries) ListSubmissionMetricsByUser(ctx context.Context, userID uuid.UUID) ([]ListSubmissionMetricsByUserRow, error) {
	rows, err := q.db.Query(ctx, listSubmissionMetricsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListSubmissionMetricsByUserRow
	for rows.Next() {
		var i ListSubmissionMetricsByUserRow
		if err := rows.Scan(&i.Difficulty, &i.Status, &i.Time, &i.Memory); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createTestCaseResult = `-- name: CreateTestCaseResult :one
INSERT INTO test_case_results (
    submission_id, test_case, passed, stdout, expected, stderr,
    compile_output, status, memory, time
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING id, submission_id, test_case, passed, stdout, expected, stderr,
    compile_output, status, memory, time, created_at`

type CreateTestCaseResultParams struct {
	SubmissionID  uuid.UUID
	TestCase      int32
	Passed        bool
	Stdout        *string
	Expected      string
	Stderr        *string
	CompileOutput *string
	Status        string
	Memory        *string
	Time          *string
}

func testCaseResultFields(r *TestCaseResult) []any {
	return []any{
		&r.ID,
		&r.SubmissionID,
		&r.TestCase,
		&r.Passed,
		&r.Stdout,
		&r.Expected,
		&r.Stderr,
		&r.CompileOutput,
		&r.Status,
		&r.Memory,
		&r.Time,
		&r.CreatedAt,
	}
}

func (q *Queries) CreateTestCaseResult(ctx context.Context, arg CreateTestCaseResultParams) (TestCaseResult, error) {
	var r TestCaseResult
	err := q.db.QueryRow(ctx, createTestCaseResult,
		arg.SubmissionID,
		arg.TestCase,
		arg.Passed,
		arg.Stdout,
		arg.Expected,
		arg.Stderr,
		arg.CompileOutput,
		arg.Status,
		arg.Memory,
		arg.Time,
	).Scan(testCaseResultFields(&r)...)
	return r, err
}

const listTestCaseResults = `-- name: ListTestCaseResults :many
SELECT id, submission_id, test_case, passed, stdout, expected, stderr,
    compile_output, status, memory, time, created_at
FROM test_case_results
WHERE submission_id = ANY($1::uuid[])
ORDER BY submission_id, test_case`

func (q *Queries) ListTestCaseResults(ctx context.Context, submissionIDs []uuid.UUID) ([]TestCaseResult, error) {
	rows, err := q.db.Query(ctx, listTestCaseResults, submissionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TestCaseResult
	for rows.Next() {
		var r TestCaseResult
		if err := rows.Scan(testCaseResultFields(&r)...); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const markProblemSolved = `-- name: MarkProblemSolved :exec
INSERT INTO problem_solved (user_id, problem_id)
VALUES ($1, $2)
ON CONFLICT ON CONSTRAINT uq_problem_solved_user_problem DO NOTHING`

type MarkProblemSolvedParams struct {
	UserID    uuid.UUID
	ProblemID uuid.UUID
}

func (q *Queries) MarkProblemSolved(ctx context.Context, arg MarkProblemSolvedParams) error {
	_, err := q.db.Exec(ctx, markProblemSolved, arg.UserID, arg.ProblemID)
	return err
}

// RecordGradedSubmissionParams is a submission together with its per test
// case rows. SubmissionID of each result is filled in on insert.
type RecordGradedSubmissionParams struct {
	Submission CreateSubmissionParams
	Results    []CreateTestCaseResultParams
	Solved     bool
}

// RecordGradedSubmission stores a graded submission, its test case results
// and, when accepted, the solved marker in one transaction.
func (s *Store) RecordGradedSubmission(
	ctx context.Context,
	arg RecordGradedSubmissionParams,
) (submission Submission, results []TestCaseResult, err error) {
	err = s.ExecTx(ctx, func(q *Queries) error {
		var txErr error
		submission, txErr = q.CreateSubmission(ctx, arg.Submission)
		if txErr != nil {
			return txErr
		}

		results = make([]TestCaseResult, 0, len(arg.Results))
		for _, r := range arg.Results {
			r.SubmissionID = submission.ID
			res, txErr := q.CreateTestCaseResult(ctx, r)
			if txErr != nil {
				return txErr
			}
			results = append(results, res)
		}

		if arg.Solved {
			return q.MarkProblemSolved(ctx, MarkProblemSolvedParams{
				UserID:    arg.Submission.UserID,
				ProblemID: arg.Submission.ProblemID,
			})
		}
		return nil
	})
	return
}

package database

import (
	"context"

	"github.com/google/uuid"
)

const problemColumns = `p.id, p.title, p.description, p.difficulty, p.tags, p.user_id, p.examples,
    p.constraints, p.hints, p.editorial, p.testcases, p.code_snippets, p.reference_solutions,
    p.created_at, p.updated_at`

func problemFields(p *Problem) []any {
	return []any{
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Difficulty,
		&p.Tags,
		&p.UserID,
		&p.Examples,
		&p.Constraints,
		&p.Hints,
		&p.Editorial,
		&p.Testcases,
		&p.CodeSnippets,
		&p.ReferenceSolutions,
		&p.CreatedAt,
		&p.UpdatedAt,
	}
}

const createProblem = `-- name: CreateProblem :one
INSERT INTO problems AS p (
    title, description, difficulty, tags, user_id, examples, constraints,
    hints, editorial, testcases, code_snippets, reference_solutions
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + problemColumns

type CreateProblemParams struct {
	Title              string
	Description        string
	Difficulty         string
	Tags               []string
	UserID             uuid.UUID
	Examples           []byte
	Constraints        string
	Hints              *string
	Editorial          *string
	Testcases          []byte
	CodeSnippets       []byte
	ReferenceSolutions []byte
}

func (q *Queries) CreateProblem(ctx context.Context, arg CreateProblemParams) (Problem, error) {
	var p Problem
	err := q.db.QueryRow(ctx, createProblem,
		arg.Title,
		arg.Description,
		arg.Difficulty,
		arg.Tags,
		arg.UserID,
		arg.Examples,
		arg.Constraints,
		arg.Hints,
		arg.Editorial,
		arg.Testcases,
		arg.CodeSnippets,
		arg.ReferenceSolutions,
	).Scan(problemFields(&p)...)
	return p, err
}

const updateProblem = `-- name: UpdateProblem :one
UPDATE problems AS p SET
    title = $2,
    description = $3,
    difficulty = $4,
    tags = $5,
    examples = $6,
    constraints = $7,
    hints = $8,
    editorial = $9,
    testcases = $10,
    code_snippets = $11,
    reference_solutions = $12,
    updated_at = now()
WHERE p.id = $1
RETURNING ` + problemColumns

type UpdateProblemParams struct {
	ID                 uuid.UUID
	Title              string
	Description        string
	Difficulty         string
	Tags               []string
	Examples           []byte
	Constraints        string
	Hints              *string
	Editorial          *string
	Testcases          []byte
	CodeSnippets       []byte
	ReferenceSolutions []byte
}

func (q *Queries) UpdateProblem(ctx context.Context, arg UpdateProblemParams) (Problem, error) {
	var p Problem
	err := q.db.QueryRow(ctx, updateProblem,
		arg.ID,
		arg.Title,
		arg.Description,
		arg.Difficulty,
		arg.Tags,
		arg.Examples,
		arg.Constraints,
		arg.Hints,
		arg.Editorial,
		arg.Testcases,
		arg.CodeSnippets,
		arg.ReferenceSolutions,
	).Scan(problemFields(&p)...)
	return p, err
}

const getProblemById = `-- name: GetProblemById :one
SELECT ` + problemColumns + ` FROM problems p WHERE p.id = $1`

func (q *Queries) GetProblemById(ctx context.Context, id uuid.UUID) (Problem, error) {
	var p Problem
	err := q.db.QueryRow(ctx, getProblemById, id).Scan(problemFields(&p)...)
	return p, err
}

const deleteProblem = `-- name: DeleteProblem :one
DELETE FROM problems WHERE id = $1 RETURNING id`

func (q *Queries) DeleteProblem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteProblem, id).Scan(&deleted)
	return deleted, err
}

type ProblemWithSolved struct {
	Problem
	Solved bool
}

const listProblems = `-- name: ListProblems :many
SELECT ` + problemColumns + `,
    EXISTS (
        SELECT 1 FROM problem_solved ps
        WHERE ps.problem_id = p.id AND ps.user_id = $1
    ) AS solved
FROM problems p
ORDER BY p.created_at`

// ListProblems lists every problem, flagging the ones userID has solved.
func (q *Queries) ListProblems(ctx context.Context, userID uuid.UUID) ([]ProblemWithSolved, error) {
	rows, err := q.db.Query(ctx, listProblems, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ProblemWithSolved
	for rows.Next() {
		var i ProblemWithSolved
		if err := rows.Scan(append(problemFields(&i.Problem), &i.Solved)...); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listProblemsSolvedByUser = `-- name: ListProblemsSolvedByUser :many
SELECT ` + problemColumns + `
FROM problems p
JOIN problem_solved ps ON ps.problem_id = p.id
WHERE ps.user_id = $1
ORDER BY ps.created_at`

func (q *Queries) ListProblemsSolvedByUser(ctx context.Context, userID uuid.UUID) ([]Problem, error) {
	rows, err := q.db.Query(ctx, listProblemsSolvedByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Problem
	for rows.Next() {
		var p Problem
		if err := rows.Scan(problemFields(&p)...); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countProblemsSolvedByDifficulty = `-- name: CountProblemsSolvedByDifficulty :many
SELECT p.difficulty, COUNT(*)::int AS solved
FROM problem_solved ps
JOIN problems p ON p.id = ps.problem_id
WHERE ps.user_id = $1
GROUP BY p.difficulty`

type CountProblemsSolvedByDifficultyRow struct {
	Difficulty string
	Solved     int32
}

func (q *Queries) CountProblemsSolvedByDifficulty(ctx context.Context, userID uuid.UUID) ([]CountProblemsSolvedByDifficultyRow, error) {
	rows, err := q.db.Query(ctx, countProblemsSolvedByDifficulty, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []CountProblemsSolvedByDifficultyRow
	for rows.Next() {
		var i CountProblemsSolvedByDifficultyRow
		if err := rows.Scan(&i.Difficulty, &i.Solved); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

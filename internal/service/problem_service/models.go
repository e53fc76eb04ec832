package problem_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/judge"
	"github.com/code_drill/drill/internal/service/user_service"
)

const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

type ProblemStore interface {
	CreateProblem(ctx context.Context, arg database.CreateProblemParams) (database.Problem, error)
	UpdateProblem(ctx context.Context, arg database.UpdateProblemParams) (database.Problem, error)
	GetProblemById(ctx context.Context, id uuid.UUID) (database.Problem, error)
	DeleteProblem(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	ListProblems(ctx context.Context, userID uuid.UUID) ([]database.ProblemWithSolved, error)
	ListProblemsSolvedByUser(ctx context.Context, userID uuid.UUID) ([]database.Problem, error)
}

// Verifier checks reference solutions against test cases.
type Verifier interface {
	VerifyReferenceSolutions(ctx context.Context, solutions []judge.ReferenceSolution, cases []judge.TestCase) error
}

type RoleAuthorizer interface {
	AuthorizeUserRole(ctx context.Context, userId uuid.UUID, role user_service.UserRole, warnMessage string) error
}

type ProblemService struct {
	DB                ProblemStore
	Judge             Verifier
	UserServiceConfig RoleAuthorizer
}

// ProblemRequest is the body of create and update.
type ProblemRequest struct {
	Title              string             `json:"title" validate:"required,max=200"`
	Description        string             `json:"description" validate:"required"`
	Difficulty         string             `json:"difficulty" validate:"required,oneof=EASY MEDIUM HARD"`
	Tags               []string           `json:"tags"`
	Examples           json.RawMessage    `json:"examples" validate:"required"`
	Constraints        Constraints        `json:"constraints" validate:"required"`
	Hints              *string            `json:"hints"`
	Editorial          *string            `json:"editorial"`
	Testcases          []judge.TestCase   `json:"testcases" validate:"required,min=1"`
	CodeSnippets       map[string]string  `json:"codeSnippets" validate:"required,min=1"`
	ReferenceSolutions ReferenceSolutions `json:"referenceSolutions" validate:"required,min=1"`
}

type Problem struct {
	ID                 uuid.UUID          `json:"id"`
	Title              string             `json:"title"`
	Description        string             `json:"description"`
	Difficulty         string             `json:"difficulty"`
	Tags               []string           `json:"tags"`
	UserID             uuid.UUID          `json:"userId"`
	Examples           json.RawMessage    `json:"examples"`
	Constraints        string             `json:"constraints"`
	Hints              *string            `json:"hints"`
	Editorial          *string            `json:"editorial"`
	Testcases          []judge.TestCase   `json:"testcases"`
	CodeSnippets       map[string]string  `json:"codeSnippets"`
	ReferenceSolutions ReferenceSolutions `json:"referenceSolutions"`
	Solved             *bool              `json:"solved,omitempty"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Constraints accepts either a single string or a list of lines.
type Constraints string

func (c *Constraints) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return fmt.Errorf("constraints must be a string or a list of strings")
		}
		*c = Constraints(strings.Join(lines, "\n"))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("constraints must be a string or a list of strings")
	}
	*c = Constraints(s)
	return nil
}

// ReferenceSolutions is a language -> code object that remembers the order
// the author wrote the languages in, since verification follows it.
type ReferenceSolutions []judge.ReferenceSolution

func (rs *ReferenceSolutions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*rs = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("referenceSolutions must be an object of language to code")
	}

	solutions := ReferenceSolutions{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		language, _ := keyTok.(string)
		var code string
		if err = dec.Decode(&code); err != nil {
			return fmt.Errorf("reference solution for %s must be a string", language)
		}
		solutions = append(solutions, judge.ReferenceSolution{Language: language, Code: code})
	}
	if _, err = dec.Token(); err != nil {
		return err
	}
	*rs = solutions
	return nil
}

func (rs ReferenceSolutions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sol := range rs {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sol.Language)
		if err != nil {
			return nil, err
		}
		code, err := json.Marshal(sol.Code)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(code)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

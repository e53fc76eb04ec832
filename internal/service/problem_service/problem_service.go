package problem_service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/service"
	"github.com/code_drill/drill/internal/service/user_service"
)

var (
	errMsgs = map[string]map[string]string{
		drill_errors.CodeForeignKeyConstraint: {
			"fk_problems_user": "problem author does not exist",
		},
	}
)

// CreateProblem stores a problem only after every reference solution has
// passed every test case on the judge.
func (p *ProblemService) CreateProblem(
	ctx context.Context,
	request ProblemRequest,
) (Problem, error) {
	claims, err := p.authorizeAdmin(ctx, "create a problem")
	if err != nil {
		return Problem{}, err
	}

	if err = p.validateAndVerify(ctx, &request); err != nil {
		return Problem{}, err
	}

	encoded, err := encodeProblemData(request)
	if err != nil {
		return Problem{}, err
	}
	dbProblem, err := p.DB.CreateProblem(ctx, database.CreateProblemParams{
		Title:              request.Title,
		Description:        request.Description,
		Difficulty:         request.Difficulty,
		Tags:               request.Tags,
		UserID:             claims.UserId,
		Examples:           request.Examples,
		Constraints:        string(request.Constraints),
		Hints:              request.Hints,
		Editorial:          request.Editorial,
		Testcases:          encoded.testcases,
		CodeSnippets:       encoded.codeSnippets,
		ReferenceSolutions: encoded.referenceSolutions,
	})
	if err != nil {
		return Problem{}, drill_errors.HandleDBErrors(err, errMsgs, "cannot insert problem")
	}

	log.WithFields(log.Fields{
		"problem_id": dbProblem.ID,
		"created_by": claims.UserId,
	}).Info("problem created")
	return problemFromDB(dbProblem)
}

// UpdateProblem replaces a problem, re-verifying reference solutions
// against the new test cases first.
func (p *ProblemService) UpdateProblem(
	ctx context.Context,
	id uuid.UUID,
	request ProblemRequest,
) (Problem, error) {
	claims, err := p.authorizeAdmin(ctx, fmt.Sprintf("update problem %v", id))
	if err != nil {
		return Problem{}, err
	}

	// existence first, judging is expensive
	if _, err = p.DB.GetProblemById(ctx, id); err != nil {
		return Problem{}, drill_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch problem %v", id))
	}

	if err = p.validateAndVerify(ctx, &request); err != nil {
		return Problem{}, err
	}

	encoded, err := encodeProblemData(request)
	if err != nil {
		return Problem{}, err
	}
	dbProblem, err := p.DB.UpdateProblem(ctx, database.UpdateProblemParams{
		ID:                 id,
		Title:              request.Title,
		Description:        request.Description,
		Difficulty:         request.Difficulty,
		Tags:               request.Tags,
		Examples:           request.Examples,
		Constraints:        string(request.Constraints),
		Hints:              request.Hints,
		Editorial:          request.Editorial,
		Testcases:          encoded.testcases,
		CodeSnippets:       encoded.codeSnippets,
		ReferenceSolutions: encoded.referenceSolutions,
	})
	if err != nil {
		return Problem{}, drill_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot update problem %v", id))
	}

	log.WithFields(log.Fields{
		"problem_id": id,
		"updated_by": claims.UserId,
	}).Info("problem updated")
	return problemFromDB(dbProblem)
}

func (p *ProblemService) GetProblemById(ctx context.Context, id uuid.UUID) (Problem, error) {
	dbProblem, err := p.DB.GetProblemById(ctx, id)
	if err != nil {
		return Problem{}, drill_errors.HandleDBErrors(
			err,
			errMsgs,
			fmt.Sprintf("cannot fetch problem with id %v", id),
		)
	}
	return problemFromDB(dbProblem)
}

// ListProblems lists all problems, marking those solved by the caller.
func (p *ProblemService) ListProblems(ctx context.Context) ([]Problem, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := p.DB.ListProblems(ctx, claims.UserId)
	if err != nil {
		return nil, drill_errors.HandleDBErrors(err, errMsgs, "cannot list problems")
	}

	problems := make([]Problem, 0, len(rows))
	for _, row := range rows {
		problem, err := problemFromDB(row.Problem)
		if err != nil {
			return nil, err
		}
		solved := row.Solved
		problem.Solved = &solved
		problems = append(problems, problem)
	}
	return problems, nil
}

func (p *ProblemService) ListSolvedProblems(ctx context.Context) ([]Problem, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := p.DB.ListProblemsSolvedByUser(ctx, claims.UserId)
	if err != nil {
		return nil, drill_errors.HandleDBErrors(err, errMsgs, "cannot list solved problems")
	}

	problems := make([]Problem, 0, len(rows))
	for _, row := range rows {
		problem, err := problemFromDB(row)
		if err != nil {
			return nil, err
		}
		solved := true
		problem.Solved = &solved
		problems = append(problems, problem)
	}
	return problems, nil
}

func (p *ProblemService) DeleteProblem(ctx context.Context, id uuid.UUID) error {
	claims, err := p.authorizeAdmin(ctx, fmt.Sprintf("delete problem %v", id))
	if err != nil {
		return err
	}

	if _, err = p.DB.DeleteProblem(ctx, id); err != nil {
		return drill_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot delete problem %v", id))
	}

	log.WithFields(log.Fields{
		"problem_id": id,
		"deleted_by": claims.UserId,
	}).Info("problem deleted")
	return nil
}

func (p *ProblemService) authorizeAdmin(ctx context.Context, action string) (service.UserCredentialClaims, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return claims, err
	}
	err = p.UserServiceConfig.AuthorizeUserRole(
		ctx,
		claims.UserId,
		user_service.RoleAdmin,
		fmt.Sprintf("user %v tried for admin access to %s", claims.UserId, action),
	)
	return claims, err
}

func (p *ProblemService) validateAndVerify(ctx context.Context, request *ProblemRequest) error {
	if err := service.ValidateInput(*request); err != nil {
		return err
	}
	for i, tc := range request.Testcases {
		if tc.ExpectedOutput == "" {
			return fmt.Errorf("%w, testcase %d has no output", drill_errors.ErrInvalidRequest, i+1)
		}
	}
	request.Tags = service.NormalizeTags(request.Tags)

	return p.Judge.VerifyReferenceSolutions(ctx, request.ReferenceSolutions, request.Testcases)
}

type encodedProblemData struct {
	testcases          []byte
	codeSnippets       []byte
	referenceSolutions []byte
}

func encodeProblemData(request ProblemRequest) (encodedProblemData, error) {
	var (
		res encodedProblemData
		err error
	)
	if res.testcases, err = json.Marshal(request.Testcases); err != nil {
		return res, fmt.Errorf("%w, cannot marshal testcases, %w", drill_errors.ErrInternal, err)
	}
	if res.codeSnippets, err = json.Marshal(request.CodeSnippets); err != nil {
		return res, fmt.Errorf("%w, cannot marshal code snippets, %w", drill_errors.ErrInternal, err)
	}
	if res.referenceSolutions, err = json.Marshal(request.ReferenceSolutions); err != nil {
		return res, fmt.Errorf("%w, cannot marshal reference solutions, %w", drill_errors.ErrInternal, err)
	}
	return res, nil
}

func problemFromDB(dbProblem database.Problem) (Problem, error) {
	problem := Problem{
		ID:          dbProblem.ID,
		Title:       dbProblem.Title,
		Description: dbProblem.Description,
		Difficulty:  dbProblem.Difficulty,
		Tags:        dbProblem.Tags,
		UserID:      dbProblem.UserID,
		Examples:    dbProblem.Examples,
		Constraints: dbProblem.Constraints,
		Hints:       dbProblem.Hints,
		Editorial:   dbProblem.Editorial,
		CreatedAt:   dbProblem.CreatedAt,
		UpdatedAt:   dbProblem.UpdatedAt,
	}
	if problem.Tags == nil {
		problem.Tags = []string{}
	}

	if err := json.Unmarshal(dbProblem.Testcases, &problem.Testcases); err != nil {
		return Problem{}, corruptedColumn(dbProblem.ID, "testcases", err)
	}
	if err := json.Unmarshal(dbProblem.CodeSnippets, &problem.CodeSnippets); err != nil {
		return Problem{}, corruptedColumn(dbProblem.ID, "code_snippets", err)
	}
	if err := json.Unmarshal(dbProblem.ReferenceSolutions, &problem.ReferenceSolutions); err != nil {
		return Problem{}, corruptedColumn(dbProblem.ID, "reference_solutions", err)
	}
	return problem, nil
}

func corruptedColumn(id uuid.UUID, column string, err error) error {
	err = fmt.Errorf("%w, cannot decode %s of problem %v, %w", drill_errors.ErrInternal, column, id, err)
	log.Error(err)
	return err
}

package judge

import (
	"context"
	"errors"
	"fmt"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/drill_errors"
)

// BatchClient is the remote judge as seen by the orchestrator.
type BatchClient interface {
	SubmitBatch(ctx context.Context, requests []SubmissionRequest) ([]Token, error)
	PollBatchResults(ctx context.Context, tokens []Token) ([]JudgeResult, error)
}

// Alerter is told about judge infrastructure failures so operators can react.
type Alerter interface {
	AlertJudgeFailure(ctx context.Context, runID uuid.UUID, cause error)
}

// Judge drives judging runs: resolve -> submit -> poll -> aggregate.
// Runs are independent and share no mutable state besides the registry.
type Judge struct {
	client    BatchClient
	languages *Languages
	registry  *RunRegistry
	alerter   Alerter
	logger    *logrus.Entry
}

// NewJudge wires an orchestrator. registry and alerter may be nil.
func NewJudge(client BatchClient, languages *Languages, registry *RunRegistry, alerter Alerter) *Judge {
	if client == nil {
		panic("judge expects non-nil batch client")
	}
	if languages == nil {
		panic("judge expects non-nil language table")
	}
	if registry == nil {
		registry = NewRunRegistry()
	}
	return &Judge{
		client:    client,
		languages: languages,
		registry:  registry,
		alerter:   alerter,
		logger: logrus.WithFields(logrus.Fields{
			"from": "judge",
		}),
	}
}

func (j *Judge) Languages() *Languages {
	return j.languages
}

func (j *Judge) Registry() *RunRegistry {
	return j.registry
}

// Execute judges source written in the named language against cases.
func (j *Judge) Execute(
	ctx context.Context,
	language string,
	source string,
	cases []TestCase,
) (Verdict, error) {
	r := j.beginRun(language)
	defer r.end()

	languageID, err := j.languages.ResolveLanguageID(language)
	if err != nil {
		return Verdict{}, r.fail(ctx, err)
	}
	return r.judge(ctx, languageID, source, cases)
}

// ExecuteLanguageID is Execute for callers that already hold a judge id.
func (j *Judge) ExecuteLanguageID(
	ctx context.Context,
	languageID int,
	source string,
	cases []TestCase,
) (Verdict, error) {
	r := j.beginRun(j.languages.ResolveLanguageName(languageID))
	defer r.end()

	if !j.languages.Supports(languageID) {
		err := fmt.Errorf("%w, language id %d is not supported", drill_errors.ErrUnsupportedLanguage, languageID)
		return Verdict{}, r.fail(ctx, err)
	}
	return r.judge(ctx, languageID, source, cases)
}

// VerifyReferenceSolutions checks that every reference solution passes
// every test case. All languages are resolved before the judge is
// contacted. Solutions are then judged in order, one batch per language,
// and the first failing (language, test case) pair is returned as a
// *ReferenceFailure.
func (j *Judge) VerifyReferenceSolutions(
	ctx context.Context,
	solutions []ReferenceSolution,
	cases []TestCase,
) error {
	if len(solutions) == 0 {
		return fmt.Errorf("%w, at least one reference solution is required", drill_errors.ErrInvalidRequest)
	}

	languageIDs := make([]int, len(solutions))
	seen := mapset.NewThreadUnsafeSet[int]()
	for i, sol := range solutions {
		id, err := j.languages.ResolveLanguageID(sol.Language)
		if err != nil {
			j.logger.WithField("language", sol.Language).Warn(err)
			return err
		}
		if !seen.Add(id) {
			return fmt.Errorf(
				"%w, more than one reference solution for language %s",
				drill_errors.ErrInvalidRequest, sol.Language,
			)
		}
		languageIDs[i] = id
	}

	for i, sol := range solutions {
		verdict, err := j.verifyOne(ctx, sol, languageIDs[i], cases)
		if err != nil {
			return err
		}
		if !verdict.Passed {
			failure := &ReferenceFailure{
				Language: sol.Language,
				Index:    *verdict.FailedIndex,
				Verdict:  verdict,
			}
			j.logger.WithFields(logrus.Fields{
				"language":  sol.Language,
				"test_case": failure.Index,
				"reason":    *verdict.FailedReason,
			}).Info("reference solution rejected")
			return failure
		}
	}

	j.logger.Debugf("verified %d reference solutions against %d test cases", len(solutions), len(cases))
	return nil
}

func (j *Judge) verifyOne(ctx context.Context, sol ReferenceSolution, languageID int, cases []TestCase) (Verdict, error) {
	r := j.beginRun(sol.Language)
	defer r.end()
	return r.judge(ctx, languageID, sol.Code, cases)
}

// BuildBatch builds one request per test case, sharing source and language.
func BuildBatch(source string, languageID int, cases []TestCase) []SubmissionRequest {
	requests := make([]SubmissionRequest, len(cases))
	for i, tc := range cases {
		requests[i] = SubmissionRequest{
			SourceCode:     source,
			LanguageID:     languageID,
			Stdin:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
		}
	}
	return requests
}

type run struct {
	owner   *Judge
	info    RunInfo
	logger  *logrus.Entry
	started time.Time
}

func (j *Judge) beginRun(language string) *run {
	info := j.registry.begin(language)
	return &run{
		owner: j,
		info:  info,
		logger: j.logger.WithFields(logrus.Fields{
			"run_id":   info.ID,
			"language": language,
		}),
		started: time.Now(),
	}
}

func (r *run) judge(
	ctx context.Context,
	languageID int,
	source string,
	cases []TestCase,
) (Verdict, error) {
	if len(cases) == 0 {
		return Verdict{}, r.fail(ctx, fmt.Errorf("%w, no test cases to judge", drill_errors.ErrInvalidRequest))
	}

	r.transition(StateSubmitting)
	tokens, err := r.owner.client.SubmitBatch(ctx, BuildBatch(source, languageID, cases))
	if err != nil {
		return Verdict{}, r.fail(ctx, err)
	}

	r.transition(StatePolling)
	results, err := r.owner.client.PollBatchResults(ctx, tokens)
	if err != nil {
		return Verdict{}, r.fail(ctx, err)
	}
	if len(results) != len(cases) {
		err = fmt.Errorf(
			"%w, judged %d test cases but got %d results",
			drill_errors.ErrJudgeUnavailable, len(cases), len(results),
		)
		return Verdict{}, r.fail(ctx, err)
	}

	r.transition(StateAggregating)
	verdict := Aggregate(results)

	r.transition(StateDone)
	r.logger.WithFields(logrus.Fields{
		"passed":  verdict.Passed,
		"cases":   len(cases),
		"elapsed": time.Since(r.started).String(),
	}).Debug("judging run finished")
	return verdict, nil
}

func (r *run) transition(state State) {
	r.info.State = state
	r.owner.registry.transition(r.info.ID, state)
	r.logger.WithField("state", state).Debug("judging run transition")
}

func (r *run) fail(ctx context.Context, err error) error {
	// a cancelled caller shows up as a transport error from the client
	if ctx.Err() != nil && !errors.Is(err, drill_errors.ErrRunAbandoned) {
		err = fmt.Errorf("%w, %w", drill_errors.ErrRunAbandoned, err)
	}

	failedIn := r.info.State
	r.transition(StateFailed)
	entry := r.logger.WithField("failed_in", failedIn)

	switch {
	case errors.Is(err, drill_errors.ErrRunAbandoned):
		entry.Warn("judging run abandoned by caller, the judge may still finish the work")
	case drill_errors.IsJudgeInfraError(err):
		entry.Error(err)
		if r.owner.alerter != nil {
			r.owner.alerter.AlertJudgeFailure(context.WithoutCancel(ctx), r.info.ID, err)
		}
	default:
		entry.Info(err)
	}
	return err
}

func (r *run) end() {
	r.owner.registry.finish(r.info.ID)
}

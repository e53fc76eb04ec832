package drill_errors

import (
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"
)

const (
	CodeUniqueConstraint     = "23505"
	CodeForeignKeyConstraint = "23503"
)

var (
	ErrInternal               = errors.New("internal service error. please try again later")
	ErrInvalidRequest         = errors.New("invalid request")
	ErrInvalidUserCredentials = errors.New("invalid email or password")
	ErrUnAuthorized           = errors.New("user not allowed to perform this action")
	ErrNotFound               = errors.New("entity not found")
	ErrEntityAlreadyExist     = errors.New("entity with given key already exist")
	ErrHttpResponse           = errors.New("error occurred with http response")
	ErrEmailServiceStopped    = errors.New("email service is stopped currently")

	// judging run failures
	ErrUnsupportedLanguage     = errors.New("language is not supported")
	ErrJudgeUnavailable        = errors.New("execution service unavailable")
	ErrJudgeTimeout            = errors.New("execution service did not finish in time")
	ErrReferenceSolutionFailed = errors.New("reference solution failed")
	ErrMalformedMetric         = errors.New("malformed metric")
	ErrRunAbandoned            = errors.New("judging run abandoned")
)

// IsJudgeInfraError reports whether err is a failure of the remote judge
// rather than of the submitted code or the request.
func IsJudgeInfraError(err error) bool {
	return errors.Is(err, ErrJudgeUnavailable) || errors.Is(err, ErrJudgeTimeout)
}

func HandleDBErrors(
	err error,
	errMsgs map[string]map[string]string,
	contextMessage string,
) error {
	if errors.Is(err, pgx.ErrNoRows) {
		log.Error(fmt.Sprintf("%s, %v", contextMessage, ErrNotFound))
		return fmt.Errorf("%w, %s", ErrNotFound, contextMessage)
	}

	// assume its an internal error first
	wrapped := fmt.Errorf(
		"%w, %s, %w",
		ErrInternal,
		contextMessage,
		err,
	)

	// check if its a pg error
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		log.Error(wrapped)
		return wrapped
	}

	if errMsgs == nil {
		log.Warnf("got null errMsgs")
		log.Error(wrapped)
		return wrapped
	}

	switch pgErr.Code {
	case CodeForeignKeyConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeForeignKeyConstraint])
	case CodeUniqueConstraint:
		return handleConstraintError(pgErr, errMsgs[CodeUniqueConstraint])
	}

	// unknown error
	log.Error(wrapped)
	return wrapped
}

func handleConstraintError(pgErr *pgconn.PgError, msgs map[string]string) error {
	msg, ok := msgs[pgErr.ConstraintName]
	if !ok {
		log.Warnf(
			"unknown constraint violation %s (code %s)",
			pgErr.ConstraintName,
			pgErr.Code,
		)
		msg = pgErr.Detail
	}
	err := fmt.Errorf(
		"%w, %s",
		ErrInvalidRequest,
		msg,
	)
	log.Error(err)
	return err
}

// WrapIPCError marks a failed call to the judge as ErrJudgeUnavailable and
// spells out the network operation that failed, when there is one.
func WrapIPCError(err error) error {
	var opError *net.OpError
	if errors.As(err, &opError) {
		return fmt.Errorf(
			"%w, %q error occurred during %q operation, network: %s, dest: %s, %w",
			ErrJudgeUnavailable,
			opError.Err,
			opError.Op,
			opError.Net,
			opError.Addr,
			err,
		)
	}

	// unknown error
	return fmt.Errorf("%w, %w", ErrJudgeUnavailable, err)
}

package database

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Name         *string
	Email        string
	Image        *string
	Role         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Problem struct {
	ID                 uuid.UUID
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
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Submission struct {
	ID            uuid.UUID
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
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type TestCaseResult struct {
	ID            uuid.UUID
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
	CreatedAt     time.Time
}

type Playlist struct {
	ID          uuid.UUID
	Name        string
	Description *string
	UserID      uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

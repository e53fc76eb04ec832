package playlist_service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/code_drill/drill/internal/database"
)

type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, arg database.CreatePlaylistParams) (database.Playlist, error)
	GetPlaylistById(ctx context.Context, id uuid.UUID) (database.Playlist, error)
	ListPlaylistsByUser(ctx context.Context, userID uuid.UUID) ([]database.Playlist, error)
	DeletePlaylist(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	AddProblemsToPlaylist(ctx context.Context, arg database.PlaylistProblemsParams) (int64, error)
	RemoveProblemsFromPlaylist(ctx context.Context, arg database.PlaylistProblemsParams) (int64, error)
	ListPlaylistProblems(ctx context.Context, playlistIDs []uuid.UUID) ([]database.ListPlaylistProblemsRow, error)
}

type PlaylistService struct {
	DB PlaylistStore
}

type CreatePlaylistRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type PlaylistProblemsRequest struct {
	ProblemIDs []uuid.UUID `json:"problemIds" validate:"required,min=1"`
}

type PlaylistProblem struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Difficulty string    `json:"difficulty"`
	Tags       []string  `json:"tags"`
}

type Playlist struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Description *string           `json:"description"`
	UserID      uuid.UUID         `json:"userId"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
	Problems    []PlaylistProblem `json:"problems"`
}

package playlist_service

import (
	"context"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/code_drill/drill/internal/database"
	"github.com/code_drill/drill/internal/drill_errors"
	"github.com/code_drill/drill/internal/service"
)

var (
	errMsgs = map[string]map[string]string{
		drill_errors.CodeUniqueConstraint: {
			"uq_playlists_name_user": "a playlist with that name already exists",
		},
		drill_errors.CodeForeignKeyConstraint: {
			"fk_problems_in_playlist_problem": "one or more problems do not exist",
		},
	}
)

func (p *PlaylistService) CreatePlaylist(
	ctx context.Context,
	request CreatePlaylistRequest,
) (Playlist, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return Playlist{}, err
	}
	if err = service.ValidateInput(request); err != nil {
		return Playlist{}, err
	}

	dbPlaylist, err := p.DB.CreatePlaylist(ctx, database.CreatePlaylistParams{
		Name:        request.Name,
		Description: request.Description,
		UserID:      claims.UserId,
	})
	if err != nil {
		return Playlist{}, drill_errors.HandleDBErrors(err, errMsgs, "cannot create playlist")
	}

	log.WithFields(log.Fields{
		"playlist_id": dbPlaylist.ID,
		"user_id":     claims.UserId,
	}).Info("playlist created")
	return playlistFromDB(dbPlaylist, nil), nil
}

// ListPlaylists returns the caller's playlists with their problems.
func (p *PlaylistService) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	dbPlaylists, err := p.DB.ListPlaylistsByUser(ctx, claims.UserId)
	if err != nil {
		return nil, drill_errors.HandleDBErrors(err, errMsgs, "cannot list playlists")
	}
	return p.withProblems(ctx, dbPlaylists)
}

func (p *PlaylistService) GetPlaylist(ctx context.Context, id uuid.UUID) (Playlist, error) {
	dbPlaylist, err := p.fetchOwned(ctx, id)
	if err != nil {
		return Playlist{}, err
	}
	playlists, err := p.withProblems(ctx, []database.Playlist{dbPlaylist})
	if err != nil {
		return Playlist{}, err
	}
	return playlists[0], nil
}

// AddProblems adds problems to a playlist; problems already in it are kept
// once.
func (p *PlaylistService) AddProblems(
	ctx context.Context,
	id uuid.UUID,
	request PlaylistProblemsRequest,
) (int64, error) {
	if _, err := p.fetchOwned(ctx, id); err != nil {
		return 0, err
	}
	ids, err := distinctProblemIDs(request)
	if err != nil {
		return 0, err
	}

	added, err := p.DB.AddProblemsToPlaylist(ctx, database.PlaylistProblemsParams{
		PlaylistID: id,
		ProblemIDs: ids,
	})
	if err != nil {
		return 0, drill_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot add problems to playlist %v", id))
	}
	return added, nil
}

func (p *PlaylistService) RemoveProblems(
	ctx context.Context,
	id uuid.UUID,
	request PlaylistProblemsRequest,
) (int64, error) {
	if _, err := p.fetchOwned(ctx, id); err != nil {
		return 0, err
	}
	ids, err := distinctProblemIDs(request)
	if err != nil {
		return 0, err
	}

	removed, err := p.DB.RemoveProblemsFromPlaylist(ctx, database.PlaylistProblemsParams{
		PlaylistID: id,
		ProblemIDs: ids,
	})
	if err != nil {
		return 0, drill_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot remove problems from playlist %v", id))
	}
	return removed, nil
}

func (p *PlaylistService) DeletePlaylist(ctx context.Context, id uuid.UUID) error {
	if _, err := p.fetchOwned(ctx, id); err != nil {
		return err
	}
	if _, err := p.DB.DeletePlaylist(ctx, id); err != nil {
		return drill_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot delete playlist %v", id))
	}
	log.WithField("playlist_id", id).Info("playlist deleted")
	return nil
}

// fetchOwned hides playlists of other users behind ErrNotFound.
func (p *PlaylistService) fetchOwned(ctx context.Context, id uuid.UUID) (database.Playlist, error) {
	claims, err := service.GetClaimsFromContext(ctx)
	if err != nil {
		return database.Playlist{}, err
	}
	dbPlaylist, err := p.DB.GetPlaylistById(ctx, id)
	if err != nil {
		return database.Playlist{}, drill_errors.HandleDBErrors(err, errMsgs, fmt.Sprintf("cannot fetch playlist %v", id))
	}
	if dbPlaylist.UserID != claims.UserId {
		log.Warnf("user %v tried to access playlist %v of another user", claims.UserId, id)
		return database.Playlist{}, fmt.Errorf("%w, playlist not found", drill_errors.ErrNotFound)
	}
	return dbPlaylist, nil
}

func (p *PlaylistService) withProblems(ctx context.Context, dbPlaylists []database.Playlist) ([]Playlist, error) {
	playlists := make([]Playlist, 0, len(dbPlaylists))
	if len(dbPlaylists) == 0 {
		return playlists, nil
	}

	ids := make([]uuid.UUID, len(dbPlaylists))
	for i, pl := range dbPlaylists {
		ids[i] = pl.ID
	}
	rows, err := p.DB.ListPlaylistProblems(ctx, ids)
	if err != nil {
		return nil, drill_errors.HandleDBErrors(err, errMsgs, "cannot list playlist problems")
	}
	byPlaylist := make(map[uuid.UUID][]PlaylistProblem, len(dbPlaylists))
	for _, row := range rows {
		byPlaylist[row.PlaylistID] = append(byPlaylist[row.PlaylistID], PlaylistProblem{
			ID:         row.ProblemID,
			Title:      row.Title,
			Difficulty: row.Difficulty,
			Tags:       row.Tags,
		})
	}

	for _, pl := range dbPlaylists {
		playlists = append(playlists, playlistFromDB(pl, byPlaylist[pl.ID]))
	}
	return playlists, nil
}

func distinctProblemIDs(request PlaylistProblemsRequest) ([]uuid.UUID, error) {
	if err := service.ValidateInput(request); err != nil {
		return nil, err
	}
	seen := mapset.NewThreadUnsafeSet[uuid.UUID]()
	ids := make([]uuid.UUID, 0, len(request.ProblemIDs))
	for _, id := range request.ProblemIDs {
		if id == uuid.Nil {
			return nil, fmt.Errorf("%w, problemIds contains an empty id", drill_errors.ErrInvalidRequest)
		}
		if seen.Add(id) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func playlistFromDB(pl database.Playlist, problems []PlaylistProblem) Playlist {
	if problems == nil {
		problems = []PlaylistProblem{}
	}
	return Playlist{
		ID:          pl.ID,
		Name:        pl.Name,
		Description: pl.Description,
		UserID:      pl.UserID,
		CreatedAt:   pl.CreatedAt,
		UpdatedAt:   pl.UpdatedAt,
		Problems:    problems,
	}
}

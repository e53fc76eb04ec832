package database

import (
	"context"

	"github.com/google/uuid"
)

const playlistColumns = `id, name, description, user_id, created_at, updated_at`

func scanPlaylist(row interface{ Scan(...any) error }) (Playlist, error) {
	var p Playlist
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.UserID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

const createPlaylist = `-- name: CreatePlaylist :one
INSERT INTO playlists (name, description, user_id)
VALUES ($1, $2, $3)
RETURNING ` + playlistColumns

type CreatePlaylistParams struct {
	Name        string
	Description *string
	UserID      uuid.UUID
}

func (q *Queries) CreatePlaylist(ctx context.Context, arg CreatePlaylistParams) (Playlist, error) {
	return scanPlaylist(q.db.QueryRow(ctx, createPlaylist, arg.Name, arg.Description, arg.UserID))
}

const getPlaylistById = `-- name: GetPlaylistById :one
SELECT ` + playlistColumns + ` FROM playlists WHERE id = $1`

func (q *Queries) GetPlaylistById(ctx context.Context, id uuid.UUID) (Playlist, error) {
	return scanPlaylist(q.db.QueryRow(ctx, getPlaylistById, id))
}

const listPlaylistsByUser = `-- name: ListPlaylistsByUser :many
SELECT ` + playlistColumns + ` FROM playlists
WHERE user_id = $1
ORDER BY created_at`

func (q *Queries) ListPlaylistsByUser(ctx context.Context, userID uuid.UUID) ([]Playlist, error) {
	rows, err := q.db.Query(ctx, listPlaylistsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Playlist
	for rows.Next() {
		p, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deletePlaylist = `-- name: DeletePlaylist :one
DELETE FROM playlists WHERE id = $1 RETURNING id`

func (q *Queries) DeletePlaylist(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deletePlaylist, id).Scan(&deleted)
	return deleted, err
}

const addProblemsToPlaylist = `-- name: AddProblemsToPlaylist :execrows
INSERT INTO problems_in_playlist (playlist_id, problem_id)
SELECT $1, unnest($2::uuid[])
ON CONFLICT ON CONSTRAINT uq_problems_in_playlist DO NOTHING`

type PlaylistProblemsParams struct {
	PlaylistID uuid.UUID
	ProblemIDs []uuid.UUID
}

func (q *Queries) AddProblemsToPlaylist(ctx context.Context, arg PlaylistProblemsParams) (int64, error) {
	tag, err := q.db.Exec(ctx, addProblemsToPlaylist, arg.PlaylistID, arg.ProblemIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const removeProblemsFromPlaylist = `-- name: RemoveProblemsFromPlaylist :execrows
DELETE FROM problems_in_playlist
WHERE playlist_id = $1 AND problem_id = ANY($2::uuid[])`

func (q *Queries) RemoveProblemsFromPlaylist(ctx context.Context, arg PlaylistProblemsParams) (int64, error) {
	tag, err := q.db.Exec(ctx, removeProblemsFromPlaylist, arg.PlaylistID, arg.ProblemIDs)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listPlaylistProblems = `-- name: ListPlaylistProblems :many
SELECT pp.playlist_id, p.id, p.title, p.difficulty, p.tags
FROM problems_in_playlist pp
JOIN problems p ON p.id = pp.problem_id
WHERE pp.playlist_id = ANY($1::uuid[])
ORDER BY pp.created_at`

type ListPlaylistProblemsRow struct {
	PlaylistID uuid.UUID
	ProblemID  uuid.UUID
	Title      string
	Difficulty string
	Tags       []string
}

func (q *Queries) ListPlaylistProblems(ctx context.Context, playlistIDs []uuid.UUID) ([]ListPlaylistProblemsRow, error) {
	rows, err := q.db.Query(ctx, listPlaylistProblems, playlistIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListPlaylistProblemsRow
	for rows.Next() {
		var i ListPlaylistProblemsRow
		if err := rows.Scan(&i.PlaylistID, &i.ProblemID, &i.Title, &i.Difficulty, &i.Tags); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

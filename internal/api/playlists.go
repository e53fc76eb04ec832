package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/code_drill/drill/internal/service/playlist_service"
)

type playlistResponse struct {
	Success  bool                      `json:"success"`
	Message  string                    `json:"message"`
	Playlist playlist_service.Playlist `json:"playList"`
}

type playlistProblemsResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

func (a *Api) HandlerGetPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := a.PlaylistServiceConfig.ListPlaylists(r.Context())
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, struct {
		Success   bool                        `json:"success"`
		Message   string                      `json:"message"`
		Playlists []playlist_service.Playlist `json:"playLists"`
	}{true, "Playlist fetched successfully", playlists})
}

func (a *Api) HandlerGetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "playlistId")
	if err != nil {
		handlerError(err, w)
		return
	}
	playlist, err := a.PlaylistServiceConfig.GetPlaylist(r.Context(), id)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, playlistResponse{
		Success:  true,
		Message:  "Playlist fetched successfully",
		Playlist: playlist,
	})
}

func (a *Api) HandlerCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var request playlist_service.CreatePlaylistRequest
	if err := decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	playlist, err := a.PlaylistServiceConfig.CreatePlaylist(r.Context(), request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, playlistResponse{
		Success:  true,
		Message:  "Playlist created successfully",
		Playlist: playlist,
	})
}

func (a *Api) HandlerAddProblemsToPlaylist(w http.ResponseWriter, r *http.Request) {
	id, request, ok := playlistProblemsRequest(w, r)
	if !ok {
		return
	}
	added, err := a.PlaylistServiceConfig.AddProblems(r.Context(), id, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusCreated, playlistProblemsResponse{
		Success: true,
		Message: "Problems added to playlist successfully",
		Count:   added,
	})
}

func (a *Api) HandlerRemoveProblemsFromPlaylist(w http.ResponseWriter, r *http.Request) {
	id, request, ok := playlistProblemsRequest(w, r)
	if !ok {
		return
	}
	removed, err := a.PlaylistServiceConfig.RemoveProblems(r.Context(), id, request)
	if err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, playlistProblemsResponse{
		Success: true,
		Message: "Problems removed from playlist successfully",
		Count:   removed,
	})
}

func (a *Api) HandlerDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "playlistId")
	if err != nil {
		handlerError(err, w)
		return
	}
	if err = a.PlaylistServiceConfig.DeletePlaylist(r.Context(), id); err != nil {
		handlerError(err, w)
		return
	}
	respondWithValue(w, http.StatusOK, messageResponse{
		Success: true,
		Message: "Playlist deleted successfully",
	})
}

func playlistProblemsRequest(
	w http.ResponseWriter,
	r *http.Request,
) (id uuid.UUID, request playlist_service.PlaylistProblemsRequest, ok bool) {
	id, err := uuidParam(r, "playlistId")
	if err != nil {
		handlerError(err, w)
		return id, request, false
	}
	if err = decodeJsonBody(r.Body, &request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return id, request, false
	}
	return id, request, true
}

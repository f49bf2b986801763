package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cinewatch/internal/media"
	"cinewatch/internal/playlist"
	"cinewatch/internal/session"
)

func (h *Handler) playlist(sess *session.Session) *playlist.Store {
	return playlist.New(h.store, playlist.Key(sess.ID), h.logger)
}

func (h *Handler) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.visitor(w, r)
	if !ok {
		return
	}

	items, err := h.playlist(sess).List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list playlist")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get playlist")
		return
	}
	if items == nil {
		items = []playlist.Entry{}
	}

	writeJSON(w, http.StatusOK, PlaylistResponse{Items: items})
}

// AddToPlaylist answers 201 for a new entry and 200 with added=false when
// the title is already saved.
func (h *Handler) AddToPlaylist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.visitor(w, r)
	if !ok {
		return
	}

	var req AddPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	entry := playlist.Entry{
		ID:          req.ID,
		MediaType:   req.MediaType,
		Title:       req.Title,
		PosterPath:  req.PosterPath,
		ReleaseDate: req.ReleaseDate,
		VoteAverage: req.VoteAverage,
	}
	stored, added, err := h.playlist(sess).Add(r.Context(), entry)
	if errors.Is(err, playlist.ErrInvalidEntry) {
		writeError(w, http.StatusBadRequest, "INVALID_ENTRY", "A positive id and a movie or tv media type are required")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Int64("id", req.ID).Msg("failed to add to playlist")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save playlist")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, status, AddPlaylistResponse{Added: added, Entry: stored})
}

func (h *Handler) RemoveFromPlaylist(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.visitor(w, r)
	if !ok {
		return
	}

	t, ok := media.ParseMediaType(chi.URLParam(r, "type"))
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if !ok || err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid id or media type")
		return
	}

	if err := h.playlist(sess).Remove(r.Context(), id, t); err != nil {
		h.logger.Error().Err(err).Int64("id", id).Msg("failed to remove from playlist")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save playlist")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

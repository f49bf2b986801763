package api

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cinewatch/internal/media"
	"cinewatch/internal/poster"
)

func (h *Handler) GetPoster(w http.ResponseWriter, r *http.Request) {
	if h.posters == nil {
		writeError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Poster proxy not enabled")
		return
	}
	size, file := chi.URLParam(r, "size"), chi.URLParam(r, "file")

	data, err := h.posters.Get(r.Context(), size, file)
	switch {
	case errors.Is(err, poster.ErrInvalidPath):
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid poster path")
		return
	case errors.Is(err, poster.ErrNotFound):
		writeError(w, http.StatusNotFound, "POSTER_NOT_FOUND", "Poster not found")
		return
	case err != nil:
		h.logger.Warn().Err(err).Str("size", size).Str("file", file).Msg("failed to get poster")
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Poster not available")
		return
	}

	w.Header().Set("Content-Type", media.GetContentType(file))
	w.Header().Set("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	w.Header().Set("Accept-Ranges", "bytes")

	http.ServeContent(w, r, file, time.Time{}, bytes.NewReader(data))
}

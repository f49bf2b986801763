// Package api serves the JSON endpoints under /api/v1 that the pages'
// scripts and external clients use.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cinewatch/internal/catalog"
	"cinewatch/internal/playlist"
	"cinewatch/internal/poster"
	"cinewatch/internal/session"
	"cinewatch/internal/storage"
	"cinewatch/internal/support"
)

const Version = "0.4.0"

// Store is the persistence the API reads and writes.
type Store interface {
	playlist.KV
	GetBooking(ctx context.Context, id string) (*storage.Booking, error)
	Ping(ctx context.Context) error
}

type Handler struct {
	source   catalog.Source
	listings *catalog.Registry
	store    Store
	bot      *support.Bot
	posters  *poster.Service
	sessions *session.Registry
	logger   zerolog.Logger
}

func NewHandler(source catalog.Source, store Store, data *support.Data, sessions *session.Registry, logger zerolog.Logger) *Handler {
	return &Handler{
		source:   source,
		listings: catalog.NewRegistry(),
		store:    store,
		bot:      support.NewBot(data),
		sessions: sessions,
		logger:   logger.With().Str("component", "api").Logger(),
	}
}

// SetPosterService enables the poster proxy; without it poster requests
// answer 503.
func (h *Handler) SetPosterService(service *poster.Service) {
	h.posters = service
}

// Routes mounts the API on r. Requests must pass through
// session.Middleware first.
func (h *Handler) Routes(r chi.Router) {
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "Unknown endpoint")
	})

	r.Get("/health", h.Health)

	r.Get("/playlist", h.GetPlaylist)
	r.Post("/playlist", h.AddToPlaylist)
	r.Delete("/playlist/{type}/{id}", h.RemoveFromPlaylist)

	r.Get("/listings", h.ListListings)
	r.Get("/listings/{key}", h.GetListing)
	r.Post("/listings/{key}/more", h.LoadMore)

	r.Post("/chat", h.Chat)
	r.Get("/bookings/{id}", h.GetBooking)
	r.Get("/posters/{size}/{file}", h.GetPoster)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:   "ok",
		Version:  Version,
		Database: "ok",
	}
	if h.sessions != nil {
		resp.Sessions = h.sessions.Len()
	}
	if h.posters != nil {
		count, size := h.posters.CacheStats()
		resp.Posters = &PosterCacheStats{Count: count, Bytes: size}
	}
	if err := h.store.Ping(r.Context()); err != nil {
		h.logger.Warn().Err(err).Msg("database ping failed")
		resp.Status = "degraded"
		resp.Database = "unreachable"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.visitor(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid request body")
		return
	}

	reply := h.bot.Respond(sess.Chat(), req.Message)
	lines := reply.Lines()
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, http.StatusOK, ChatResponse{
		Reply:     lines,
		LiveAgent: reply.LiveAgent,
		Rule:      string(reply.Rule),
	})
}

// GetBooking returns a booking made by the calling visitor.
func (h *Handler) GetBooking(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.visitor(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	b, err := h.store.GetBooking(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && b.VisitorID != sess.ID) {
		writeError(w, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("id", id).Msg("failed to get booking")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get booking")
		return
	}

	writeJSON(w, http.StatusOK, BookingResponse{Booking: b})
}

func (h *Handler) visitor(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := session.FromContext(r.Context())
	if sess == nil {
		h.logger.Error().Str("path", r.URL.Path).Msg("request without session")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "No session")
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// Package web serves the HTML pages. Every handler fetches what its page
// needs, fanning independent fetches out concurrently, and renders a
// fallback in any section whose fetch failed.
package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cinewatch/internal/booking"
	"cinewatch/internal/catalog"
	"cinewatch/internal/media"
	"cinewatch/internal/omdb"
	"cinewatch/internal/playlist"
	"cinewatch/internal/render"
	"cinewatch/internal/session"
	"cinewatch/internal/support"
	"cinewatch/internal/tmdb"
)

const (
	msgUnavailable = "Content unavailable. Please try again later."
	msgNoResults   = "No results found."
)

// Store is the persistence the pages write to.
type Store interface {
	playlist.KV
	booking.BookingSaver
	booking.AdSaver
	booking.InfringementSaver
}

type Options struct {
	TMDB     *tmdb.Client
	OMDB     *omdb.Client
	Data     *support.Data
	Store    Store
	Images   render.Images
	Renderer *render.Renderer
}

type Handler struct {
	tmdb     *tmdb.Client
	omdb     *omdb.Client
	listings *catalog.Registry
	data     *support.Data
	bot      *support.Bot
	store    Store
	images   render.Images
	render   *render.Renderer
	logger   zerolog.Logger
	now      func() time.Time
}

func NewHandler(opts Options, logger zerolog.Logger) *Handler {
	return &Handler{
		tmdb:     opts.TMDB,
		omdb:     opts.OMDB,
		listings: catalog.NewRegistry(),
		data:     opts.Data,
		bot:      support.NewBot(opts.Data),
		store:    opts.Store,
		images:   opts.Images,
		render:   opts.Renderer,
		logger:   logger.With().Str("component", "web").Logger(),
		now:      time.Now,
	}
}

// Routes mounts every page on r. Requests must pass through
// session.Middleware first.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Home)

	r.Get("/browse/{slug}", h.Browse)
	r.Get("/genres/{type}/{genre}", h.Genre)
	r.Get("/networks", h.Networks)
	r.Get("/networks/{network}", h.Network)
	r.Get("/category", h.Category)
	r.Get("/listings/{key}/more", h.More)

	r.Get("/details", h.Details)
	r.Get("/reviews", h.Reviews)
	r.Get("/seasons", h.Seasons)
	r.Get("/episodes", h.Episodes)
	r.Get("/cast", h.Cast)
	r.Get("/search", h.Search)
	r.Get("/search/more", h.SearchMore)

	r.Get("/playlist", h.Playlist)
	r.Post("/playlist/add", h.PlaylistAdd)
	r.Post("/playlist/remove", h.PlaylistRemove)

	r.Get("/cinema-guide", h.CinemaGuide)
	r.Get("/buy-ticket", h.BuyTicket)
	r.Post("/buy-ticket", h.BuyTicket)

	r.Get("/support", h.Support)
	r.Get("/chat", h.Chat)
	r.Post("/chat", h.ChatSend)
	r.Get("/advertise", h.Advertise)
	r.Get("/advertise/form", h.AdvertiseForm)
	r.Post("/advertise/form", h.AdvertiseForm)
	r.Get("/developer", h.Developer)
	r.Get("/developer/{id}", h.Project)
	r.Get("/infringement", h.Infringement)
	r.Post("/infringement", h.Infringement)
	r.Get("/trailers", h.Trailers)
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request, status int, page, title string, data any) {
	h.render.Page(w, status, page, render.View{
		Title: title,
		Query: r.URL.Query().Get("q"),
		Data:  data,
	})
}

// fail renders msg in place of the page content.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.render.Page(w, status, "error", render.View{Title: "Error", Error: msg})
}

// NotFound renders the error page for unknown routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, http.StatusNotFound, "Page not found.")
}

// visitor returns the request's session, or renders a 500 when the
// session middleware is missing.
func (h *Handler) visitor(w http.ResponseWriter, r *http.Request) *session.Session {
	s := session.FromContext(r.Context())
	if s == nil {
		h.logger.Error().Str("path", r.URL.Path).Msg("request without session")
		h.fail(w, r, http.StatusInternalServerError, "Something went wrong.")
	}
	return s
}

func (h *Handler) playlist(s *session.Session) *playlist.Store {
	return playlist.New(h.store, playlist.Key(s.ID), h.logger)
}

// queryID parses a positive integer query param.
func queryID(q url.Values, key string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(q.Get(key)), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// idAndType reads ?id=&type= for movie and show pages. It renders the
// 400 page and reports false when either is missing or invalid.
func (h *Handler) idAndType(w http.ResponseWriter, r *http.Request) (int64, media.MediaType, bool) {
	q := r.URL.Query()
	id, ok := queryID(q, "id")
	if !ok {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing ID.")
		return 0, "", false
	}
	t, ok := media.ParseMediaType(q.Get("type"))
	if !ok || t == media.Person {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing media type.")
		return 0, "", false
	}
	return id, t, true
}

// localPath returns target when it is a path on this site, else fallback.
func localPath(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	return target
}

package web

import (
	"errors"
	"net/http"
	"strconv"

	"cinewatch/internal/media"
	"cinewatch/internal/playlist"
	"cinewatch/internal/render"
)

type PlaylistData struct {
	Cards       []render.Card
	Unavailable bool
}

func (h *Handler) Playlist(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}

	var data PlaylistData
	entries, err := h.playlist(sess).List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list playlist")
		data.Unavailable = true
	}
	items := make([]media.Item, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.Item())
	}
	data.Cards = render.Cards(items, h.images)

	h.page(w, r, http.StatusOK, "playlist", "My Playlist", data)
}

// PlaylistAdd handles the add form on the details page and redirects back.
func (h *Handler) PlaylistAdd(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	id, _ := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
	t, _ := media.ParseMediaType(r.PostForm.Get("type"))
	vote, _ := strconv.ParseFloat(r.PostForm.Get("vote_average"), 64)
	entry := playlist.Entry{
		ID:          id,
		MediaType:   t,
		Title:       r.PostForm.Get("title"),
		PosterPath:  r.PostForm.Get("poster_path"),
		ReleaseDate: r.PostForm.Get("release_date"),
		VoteAverage: vote,
	}

	if _, _, err := h.playlist(sess).Add(r.Context(), entry); err != nil {
		if errors.Is(err, playlist.ErrInvalidEntry) {
			h.fail(w, r, http.StatusBadRequest, "This title cannot be added to your playlist.")
			return
		}
		h.logger.Error().Err(err).Msg("failed to add to playlist")
		h.fail(w, r, http.StatusInternalServerError, "Your playlist could not be saved. Please try again later.")
		return
	}

	http.Redirect(w, r, localPath(r.PostForm.Get("return"), "/playlist"), http.StatusSeeOther)
}

func (h *Handler) PlaylistRemove(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid form.")
		return
	}

	id, _ := strconv.ParseInt(r.PostForm.Get("id"), 10, 64)
	t, _ := media.ParseMediaType(r.PostForm.Get("type"))
	if err := h.playlist(sess).Remove(r.Context(), id, t); err != nil {
		h.logger.Error().Err(err).Msg("failed to remove from playlist")
		h.fail(w, r, http.StatusInternalServerError, "Your playlist could not be saved. Please try again later.")
		return
	}

	http.Redirect(w, r, localPath(r.PostForm.Get("return"), "/playlist"), http.StatusSeeOther)
}

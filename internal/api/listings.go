package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cinewatch/internal/catalog"
	"cinewatch/internal/media"
)

func listingResponse(l catalog.Listing, b catalog.Batch) ListingResponse {
	items := b.Items
	if items == nil {
		items = []media.Item{}
	}
	return ListingResponse{
		Key:        l.Key,
		Title:      l.Title,
		Clear:      b.Clear,
		Page:       b.Page,
		TotalPages: b.TotalPages,
		HasMore:    b.HasMore,
		Results:    items,
	}
}

// ListListings returns the built-in browse listings.
func (h *Handler) ListListings(w http.ResponseWriter, r *http.Request) {
	all := h.listings.All()
	out := make([]ListingSummary, 0, len(all))
	for _, l := range all {
		out = append(out, ListingSummary{Key: l.Key, Title: l.Title, MediaType: string(l.MediaType)})
	}
	writeJSON(w, http.StatusOK, out)
}

// GetListing loads page 1 of a listing with the filters in the query
// string and keeps the controller in the session for LoadMore.
func (h *Handler) GetListing(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.visitor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	l, err := h.listings.Resolve(chi.URLParam(r, "key"), q)
	if err != nil {
		writeError(w, http.StatusNotFound, "LISTING_NOT_FOUND", "Listing not found")
		return
	}

	ctrl := catalog.NewController(h.source, l)
	batch := ctrl.Apply(r.Context(), catalog.ParseFilters(q))
	if batch.Unavailable {
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Content unavailable")
		return
	}
	sess.SetListing(l.SessionKey(), ctrl)

	writeJSON(w, http.StatusOK, listingResponse(l, batch))
}

// LoadMore appends the next page. 204 means the listing is exhausted and
// 409 that another load for the same listing is still running.
func (h *Handler) LoadMore(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.visitor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	l, err := h.listings.Resolve(chi.URLParam(r, "key"), q)
	if err != nil {
		writeError(w, http.StatusNotFound, "LISTING_NOT_FOUND", "Listing not found")
		return
	}

	ctrl, ok := sess.Listing(l.SessionKey())
	if !ok {
		ctrl = catalog.Restore(h.source, l, catalog.StateFromQuery(q))
		sess.SetListing(l.SessionKey(), ctrl)
	}

	batch, err := ctrl.LoadMore(r.Context())
	switch {
	case errors.Is(err, catalog.ErrExhausted):
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, catalog.ErrBusy), errors.Is(err, catalog.ErrSuperseded):
		writeError(w, http.StatusConflict, "LOAD_IN_PROGRESS", err.Error())
		return
	case err != nil:
		h.logger.Error().Err(err).Str("listing", l.Key).Msg("load more failed")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load more")
		return
	}
	if batch.Unavailable {
		writeError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", "Content unavailable")
		return
	}

	writeJSON(w, http.StatusOK, listingResponse(l, batch))
}

package web

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"cinewatch/internal/catalog"
	"cinewatch/internal/media"
	"cinewatch/internal/render"
	"cinewatch/internal/tmdb"
)

type Hidden struct {
	Name  string
	Value string
}

type FilterOptions struct {
	Sorts     []struct{ Value, Label string }
	Years     []int
	Genres    []tmdb.Genre
	Countries []tmdb.Country
	Languages []tmdb.Language
	Networks  []catalog.NetworkRef
}

type ListingData struct {
	Title      string
	Filterable bool
	Action     string
	Hidden     []Hidden
	Filters    catalog.Filters
	Options    FilterOptions
	Grid       render.Grid
}

func (h *Handler) Browse(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "slug")
	l, err := h.listings.Lookup(key)
	if err != nil {
		h.fail(w, r, http.StatusNotFound, "Unknown category.")
		return
	}
	h.listing(w, r, l, nil)
}

// Genre serves /genres/{type}/{id}-{name}.
func (h *Handler) Genre(w http.ResponseWriter, r *http.Request) {
	t, ok := media.ParseMediaType(chi.URLParam(r, "type"))
	if !ok || t == media.Person {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing media type.")
		return
	}
	id, rest, err := catalog.ParseIDSlug(chi.URLParam(r, "genre"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing genre.")
		return
	}
	name := catalog.Unslug(rest)
	h.listing(w, r, catalog.Genre(id, name, t), url.Values{"name": {name}})
}

// Network serves /networks/{id}-{name}.
func (h *Handler) Network(w http.ResponseWriter, r *http.Request) {
	id, rest, err := catalog.ParseIDSlug(chi.URLParam(r, "network"))
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing network.")
		return
	}
	name := catalog.Unslug(rest)
	h.listing(w, r, catalog.Network(id, name), url.Values{"name": {name}})
}

// Category serves /category?endpoint=&categoryName=&mediaType=.
func (h *Handler) Category(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	t, _ := media.ParseMediaType(q.Get("mediaType"))
	l, err := catalog.Category(q.Get("endpoint"), q.Get("categoryName"), t)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing category.")
		return
	}
	h.listing(w, r, l, url.Values{
		"endpoint":     {q.Get("endpoint")},
		"categoryName": {q.Get("categoryName")},
		"mediaType":    {q.Get("mediaType")},
	})
}

// listing renders page 1 of l with the filters from the query string and
// keeps the controller in the session for "load more".
func (h *Handler) listing(w http.ResponseWriter, r *http.Request, l catalog.Listing, extra url.Values) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	ctx := r.Context()
	filters := catalog.ParseFilters(r.URL.Query())
	ctrl := catalog.NewController(h.tmdb, l)

	var (
		batch catalog.Batch
		opts  FilterOptions
		wg    sync.WaitGroup
	)
	wg.Go(func() { batch = ctrl.Apply(ctx, filters) })
	if l.Filterable {
		wg.Go(func() { opts.Languages = h.tmdb.Languages(ctx) })
		wg.Go(func() { opts.Countries = h.tmdb.Countries(ctx) })
		if l.MediaType == media.Movie || l.MediaType == media.TV {
			wg.Go(func() { opts.Genres = h.tmdb.Genres(ctx, l.MediaType) })
		}
	}
	wg.Wait()

	if l.Filterable {
		opts.Sorts = catalog.SortOptions
		opts.Years = catalog.Years(h.now())
		if l.MediaType == media.TV {
			opts.Networks = catalog.KnownNetworks
		}
	}
	sess.SetListing(l.SessionKey(), ctrl)

	h.page(w, r, http.StatusOK, "listing", l.Title, ListingData{
		Title:      l.Title,
		Filterable: l.Filterable,
		Action:     r.URL.Path,
		Hidden:     hiddenFields(extra),
		Filters:    filters,
		Options:    opts,
		Grid:       h.listingGrid(l, extra, ctrl.State(), batch),
	})
}

func (h *Handler) listingGrid(l catalog.Listing, extra url.Values, st catalog.State, batch catalog.Batch) render.Grid {
	g := render.Grid{
		ID:       "listing",
		Cards:    render.Cards(batch.Items, h.images),
		Fallback: msgNoResults,
		HasMore:  batch.HasMore,
	}
	if batch.Unavailable {
		g.Fallback = msgUnavailable
	}
	if batch.HasMore {
		g.MoreURL = moreURL(l, extra, st)
	}
	return g
}

// More serves the next page of a listing as a card fragment. The
// response carries X-Has-More and X-Next-URL for the button; 204 means
// every page is already shown.
func (h *Handler) More(w http.ResponseWriter, r *http.Request) {
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	q := r.URL.Query()
	l, err := h.listings.Resolve(chi.URLParam(r, "key"), q)
	if err != nil {
		http.Error(w, "unknown listing", http.StatusNotFound)
		return
	}

	ctrl, ok := sess.Listing(l.SessionKey())
	if !ok {
		ctrl = catalog.Restore(h.tmdb, l, catalog.StateFromQuery(q))
		sess.SetListing(l.SessionKey(), ctrl)
	}

	batch, err := ctrl.LoadMore(r.Context())
	switch {
	case errors.Is(err, catalog.ErrExhausted):
		w.Header().Set("X-Has-More", "false")
		w.WriteHeader(http.StatusNoContent)
		return
	case errors.Is(err, catalog.ErrBusy), errors.Is(err, catalog.ErrSuperseded):
		http.Error(w, err.Error(), http.StatusConflict)
		return
	case err != nil:
		h.logger.Error().Err(err).Str("listing", l.Key).Msg("load more failed")
		http.Error(w, msgUnavailable, http.StatusInternalServerError)
		return
	}
	if batch.Unavailable {
		http.Error(w, msgUnavailable, http.StatusBadGateway)
		return
	}

	w.Header().Set("X-Has-More", strconv.FormatBool(batch.HasMore))
	if batch.HasMore {
		w.Header().Set("X-Next-URL", moreURL(l, extraParams(q), ctrl.State()))
	}
	h.render.Fragment(w, "cards", render.Cards(batch.Items, h.images))
}

func moreURL(l catalog.Listing, extra url.Values, st catalog.State) string {
	q := st.Query()
	for k, v := range extra {
		q[k] = v
	}
	return "/listings/" + l.Key + "/more?" + q.Encode()
}

// extraParams keeps the non-filter keys a listing key resolves with.
func extraParams(q url.Values) url.Values {
	extra := url.Values{}
	for _, k := range catalog.ResolveParams {
		if q.Has(k) {
			extra[k] = q[k]
		}
	}
	return extra
}

func hiddenFields(extra url.Values) []Hidden {
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]Hidden, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, Hidden{Name: k, Value: extra.Get(k)})
	}
	return fields
}

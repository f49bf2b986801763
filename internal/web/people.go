package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"cinewatch/internal/catalog"
	"cinewatch/internal/media"
	"cinewatch/internal/render"
	"cinewatch/internal/tmdb"
)

type CastData struct {
	Person     *tmdb.Person
	ProfileURL string
	Credits    render.Grid
}

// Cast serves /cast?id=, a person and everything they appeared in.
func (h *Handler) Cast(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r.URL.Query(), "id")
	if !ok {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing person ID.")
		return
	}
	ctx := r.Context()

	var (
		person  *tmdb.Person
		credits *tmdb.PersonCredits
		wg      sync.WaitGroup
	)
	wg.Go(func() { person = h.tmdb.Person(ctx, id) })
	wg.Go(func() { credits = h.tmdb.PersonCredits(ctx, id) })
	wg.Wait()

	if person == nil {
		h.fail(w, r, http.StatusBadGateway, msgUnavailable)
		return
	}

	data := CastData{
		Person:     person,
		ProfileURL: render.OrPlaceholder(h.images.Profile(person.ProfilePath)),
		Credits: render.Grid{
			Cards:    render.Cards(tmdb.CastItems(credits), h.images),
			Fallback: "No credits found.",
		},
	}
	if credits == nil {
		data.Credits.Fallback = msgUnavailable
	}

	h.page(w, r, http.StatusOK, "cast", person.Name, data)
}

type SearchData struct {
	Query string
	Grid  render.Grid
}

// search runs one page of a multi search, keeping movies, shows and
// people only.
func (h *Handler) search(r *http.Request, query string, page int) render.Grid {
	result := h.tmdb.Search(r.Context(), query, page)
	g := render.Grid{ID: "search", Fallback: msgNoResults}
	if result == nil {
		g.Fallback = msgUnavailable
		return g
	}

	items := make([]media.Item, 0, len(result.Results))
	for _, it := range result.Results {
		if it.MediaType.Valid() {
			items = append(items, it)
		}
	}
	g.Cards = render.Cards(items, h.images)

	if result.Page < result.TotalPages && result.Page < catalog.MaxPages {
		g.HasMore = true
		g.MoreURL = "/search/more?" + url.Values{
			"q":    {query},
			"page": {strconv.Itoa(result.Page + 1)},
		}.Encode()
	}
	return g
}

// Search serves /search?q=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	data := SearchData{Query: query}
	if query != "" {
		data.Grid = h.search(r, query, 1)
	}
	h.page(w, r, http.StatusOK, "search", "Search", data)
}

// SearchMore serves the next page of search results as a card fragment.
func (h *Handler) SearchMore(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	page, err := strconv.Atoi(q.Get("page"))
	if query == "" || err != nil || page < 2 {
		http.Error(w, "invalid search page", http.StatusBadRequest)
		return
	}

	g := h.search(r, query, page)
	if g.Fallback == msgUnavailable {
		http.Error(w, msgUnavailable, http.StatusBadGateway)
		return
	}
	w.Header().Set("X-Has-More", strconv.FormatBool(g.HasMore))
	if g.HasMore {
		w.Header().Set("X-Next-URL", g.MoreURL)
	}
	h.render.Fragment(w, "cards", g.Cards)
}

type NetworkView struct {
	ID      int
	Name    string
	LogoURL string
	Href    string
}

type NetworksData struct {
	Networks []NetworkView
}

// Networks serves /networks. Logos are looked up concurrently; a failed
// lookup leaves the name alone.
func (h *Handler) Networks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	views := make([]NetworkView, len(catalog.KnownNetworks))

	var wg sync.WaitGroup
	for i, n := range catalog.KnownNetworks {
		views[i] = NetworkView{ID: n.ID, Name: n.Name, Href: catalog.NetworkPath(n.ID, n.Name)}
		wg.Go(func() {
			if info := h.tmdb.Network(ctx, n.ID); info != nil {
				views[i].LogoURL = h.images.Logo(info.LogoPath)
			}
		})
	}
	wg.Wait()

	h.page(w, r, http.StatusOK, "networks", "Networks", NetworksData{Networks: views})
}

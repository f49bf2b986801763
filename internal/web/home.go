package web

import (
	"net/http"
	"sync"

	"cinewatch/internal/catalog"
	"cinewatch/internal/media"
	"cinewatch/internal/render"
	"cinewatch/internal/tmdb"
)

type Hero struct {
	Title    string
	Overview string
	ImageURL string
	Href     string
	Year     string
	Rating   string
}

type Row struct {
	Title string
	Href  string
	Grid  render.Grid
}

type HomeData struct {
	Hero *Hero
	Rows []Row
}

var homeListings = []string{
	"trending-today",
	"popular-movies",
	"popular-tv",
	"top-rated-movies",
	"top-rated-tv",
	"upcoming-movies",
}

var homeGenres = []struct {
	ID   int
	Name string
	Type media.MediaType
}{
	{28, "Action", media.Movie},
	{35, "Comedy", media.Movie},
	{16, "Animation", media.TV},
}

type carousel struct {
	listing catalog.Listing
	href    string
}

func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var carousels []carousel
	for _, key := range homeListings {
		l, err := h.listings.Lookup(key)
		if err != nil {
			continue
		}
		carousels = append(carousels, carousel{listing: l, href: "/browse/" + key})
	}
	for _, g := range homeGenres {
		carousels = append(carousels, carousel{
			listing: catalog.Genre(g.ID, g.Name, g.Type),
			href:    catalog.GenrePath(g.Type, g.ID, g.Name),
		})
	}

	items := make([][]media.Item, len(carousels))
	var wg sync.WaitGroup
	for i, c := range carousels {
		wg.Go(func() {
			endpoint, params := c.listing.Split()
			items[i] = tmdb.Items(h.tmdb.FetchPage(ctx, endpoint, params), c.listing.MediaType)
		})
	}
	wg.Wait()

	data := HomeData{Rows: make([]Row, len(carousels))}
	for i, c := range carousels {
		data.Rows[i] = Row{
			Title: c.listing.Title,
			Href:  c.href,
			Grid: render.Grid{
				Cards:    render.Cards(items[i], h.images),
				Fallback: msgUnavailable,
			},
		}
	}
	if len(items) > 0 {
		data.Hero = h.hero(items[0])
	}

	h.page(w, r, http.StatusOK, "home", "", data)
}

// hero features the first trending title, using its backdrop, else its
// poster, else the placeholder.
func (h *Handler) hero(items []media.Item) *Hero {
	for _, it := range items {
		if it.ID == 0 || it.MediaType == media.Person {
			continue
		}
		img := h.images.Backdrop(it.BackdropPath)
		if img == "" {
			img = h.images.Poster(it.PosterPath)
		}
		card := render.NewCard(it, h.images)
		return &Hero{
			Title:    card.Title,
			Overview: it.Overview,
			ImageURL: render.OrPlaceholder(img),
			Href:     card.Href,
			Year:     card.Year,
			Rating:   card.Rating,
		}
	}
	return nil
}

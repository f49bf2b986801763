package web

import (
	"fmt"
	"net/http"
	"sync"

	"cinewatch/internal/catalog"
	"cinewatch/internal/tmdb"
)

const (
	trailerLimit     = 10
	youtubeThumbnail = "https://img.youtube.com/vi/"
)

type TrailerCard struct {
	Key       string
	Name      string
	Title     string
	Thumbnail string
	Href      string
}

type TrailersData struct {
	Filters  []catalog.TrailerFilter
	Active   string
	Trailers []TrailerCard
	Fallback string
}

// Trailers shows one YouTube trailer for each of the first titles of the
// selected list. Titles without a trailer are skipped.
func (h *Handler) Trailers(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("filter")
	if filter == "" {
		filter = catalog.TrailerFilters[0].Key
	}
	l, err := catalog.Trailers(filter)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, "Unknown trailer category.")
		return
	}

	ctx := r.Context()
	data := TrailersData{Filters: catalog.TrailerFilters, Active: filter}

	endpoint, params := l.Split()
	page := h.tmdb.FetchPage(ctx, endpoint, params)
	items := tmdb.Items(page, l.MediaType)
	switch {
	case page == nil:
		data.Fallback = msgUnavailable
	case len(items) == 0:
		data.Fallback = "No content found for this category."
	}
	if len(items) > trailerLimit {
		items = items[:trailerLimit]
	}

	found := make([]*tmdb.Video, len(items))
	var wg sync.WaitGroup
	for i, it := range items {
		wg.Go(func() {
			found[i] = tmdb.Trailer(h.tmdb.Videos(ctx, l.MediaType, it.ID))
		})
	}
	wg.Wait()

	for i, v := range found {
		if v == nil || v.Key == "" {
			continue
		}
		it := items[i]
		data.Trailers = append(data.Trailers, TrailerCard{
			Key:       v.Key,
			Name:      v.Name,
			Title:     it.DisplayTitle(),
			Thumbnail: youtubeThumbnail + v.Key + "/hqdefault.jpg",
			Href:      fmt.Sprintf("/details?id=%d&type=%s", it.ID, l.MediaType),
		})
	}
	if data.Fallback == "" && len(data.Trailers) == 0 {
		data.Fallback = "No trailers found for this category."
	}

	h.page(w, r, http.StatusOK, "trailers", l.Title, data)
}

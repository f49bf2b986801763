package web

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"cinewatch/internal/media"
	"cinewatch/internal/render"
	"cinewatch/internal/tmdb"
)

type SeasonView struct {
	Number       int
	Name         string
	EpisodeCount int
	PosterURL    string
	AirDate      string
	Href         string
}

type SeasonsData struct {
	ShowID   int64
	ShowName string
	Seasons  []SeasonView
}

type EpisodeView struct {
	Number   int
	Name     string
	Overview string
	StillURL string
	AirDate  string
	Rating   string
	Runtime  int
}

type EpisodesData struct {
	ShowID     int64
	ShowName   string
	Number     int
	SeasonName string
	Overview   string
	Seasons    []SeasonView
	Episodes   []EpisodeView
}

func (h *Handler) seasonViews(showID int64, d *tmdb.Details) []SeasonView {
	if d == nil {
		return nil
	}
	views := make([]SeasonView, 0, len(d.Seasons))
	for _, s := range d.Seasons {
		views = append(views, SeasonView{
			Number:       s.SeasonNumber,
			Name:         s.Name,
			EpisodeCount: s.EpisodeCount,
			PosterURL:    render.OrPlaceholder(h.images.Poster(s.PosterPath)),
			AirDate:      s.AirDate,
			Href:         fmt.Sprintf("/episodes?id=%d&season=%d", showID, s.SeasonNumber),
		})
	}
	return views
}

// Seasons serves /seasons?id=.
func (h *Handler) Seasons(w http.ResponseWriter, r *http.Request) {
	id, ok := queryID(r.URL.Query(), "id")
	if !ok {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing show ID.")
		return
	}

	d := h.tmdb.Details(r.Context(), media.TV, id)
	if d == nil {
		h.fail(w, r, http.StatusBadGateway, msgUnavailable)
		return
	}

	h.page(w, r, http.StatusOK, "seasons", d.DisplayTitle()+": Seasons", SeasonsData{
		ShowID:   id,
		ShowName: d.DisplayTitle(),
		Seasons:  h.seasonViews(id, d),
	})
}

// Episodes serves /episodes?id=&season=.
func (h *Handler) Episodes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id, ok := queryID(q, "id")
	if !ok {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing show ID.")
		return
	}
	number, err := strconv.Atoi(q.Get("season"))
	if err != nil || number < 0 {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing season number.")
		return
	}
	ctx := r.Context()

	var (
		show   *tmdb.Details
		season *tmdb.Season
		wg     sync.WaitGroup
	)
	wg.Go(func() { show = h.tmdb.Details(ctx, media.TV, id) })
	wg.Go(func() { season = h.tmdb.Season(ctx, id, number) })
	wg.Wait()

	if season == nil {
		h.fail(w, r, http.StatusBadGateway, msgUnavailable)
		return
	}

	data := EpisodesData{
		ShowID:     id,
		ShowName:   "Show",
		Number:     number,
		SeasonName: season.Name,
		Overview:   season.Overview,
		Seasons:    h.seasonViews(id, show),
	}
	if show != nil {
		data.ShowName = show.DisplayTitle()
	}
	for _, e := range season.Episodes {
		data.Episodes = append(data.Episodes, EpisodeView{
			Number:   e.EpisodeNumber,
			Name:     e.Name,
			Overview: e.Overview,
			StillURL: render.OrPlaceholder(h.images.Still(e.StillPath)),
			AirDate:  e.AirDate,
			Rating:   render.Rating(e.VoteAverage),
			Runtime:  e.Runtime,
		})
	}

	h.page(w, r, http.StatusOK, "episodes", data.ShowName+": "+data.SeasonName, data)
}

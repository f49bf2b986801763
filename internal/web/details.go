package web

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"cinewatch/internal/media"
	"cinewatch/internal/omdb"
	"cinewatch/internal/render"
	"cinewatch/internal/support"
	"cinewatch/internal/tmdb"
)

const (
	topCast        = 12
	previewReviews = 3
)

type ReviewView struct {
	Author  string
	Content string
	Date    string
	Rating  string
	URL     string
}

func reviewView(rv tmdb.Review) ReviewView {
	v := ReviewView{
		Author:  rv.Author,
		Content: rv.Content,
		URL:     rv.URL,
	}
	if len(rv.CreatedAt) >= 10 {
		v.Date = rv.CreatedAt[:10]
	}
	if rating := rv.AuthorDetails.Rating; rating != nil {
		v.Rating = fmt.Sprintf("%.1f", *rating)
	}
	if v.Author == "" {
		v.Author = "Anonymous"
	}
	return v
}

type DetailsData struct {
	ID          int64
	Type        media.MediaType
	Self        string
	Title       string
	Tagline     string
	Overview    string
	Year        string
	Rating      string
	Runtime     int
	Status      string
	Genres      []string
	PosterURL   string
	BackdropURL string

	// fields posted by the playlist form
	PosterPath  string
	ReleaseDate string
	VoteAverage float64
	InPlaylist  bool

	IsTV            bool
	Seasons         int
	Cast            []render.Card
	Reviews         []ReviewView
	ReviewsHref     string
	Recommendations render.Grid
	Trailer         string
	Ratings         *omdb.Ratings
	Halls           []support.HallRef
}

// Details serves /details?id=&type=.
func (h *Handler) Details(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.idAndType(w, r)
	if !ok {
		return
	}
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	ctx := r.Context()

	var (
		details    *tmdb.Details
		credits    *tmdb.Credits
		reviews    *tmdb.Reviews
		recs       *media.Page
		videos     *tmdb.Videos
		inPlaylist bool
		wg         sync.WaitGroup
	)
	wg.Go(func() { details = h.tmdb.Details(ctx, t, id) })
	wg.Go(func() { credits = h.tmdb.Credits(ctx, t, id) })
	wg.Go(func() { reviews = h.tmdb.Reviews(ctx, t, id, 1) })
	wg.Go(func() { recs = h.tmdb.Recommendations(ctx, t, id) })
	wg.Go(func() { videos = h.tmdb.Videos(ctx, t, id) })
	wg.Go(func() {
		found, err := h.playlist(sess).Contains(ctx, id, t)
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to read playlist")
		}
		inPlaylist = found
	})
	wg.Wait()

	if details == nil {
		h.fail(w, r, http.StatusBadGateway, msgUnavailable)
		return
	}

	var ratings *omdb.Ratings
	if h.omdb != nil {
		ratings = h.omdb.Ratings(ctx, details.ExternalIMDbID())
	}

	data := DetailsData{
		ID:          id,
		Type:        t,
		Self:        r.URL.RequestURI(),
		Title:       details.DisplayTitle(),
		Tagline:     details.Tagline,
		Overview:    details.Overview,
		Year:        render.Year(details.Date()),
		Rating:      render.Rating(details.VoteAverage),
		Runtime:     details.RuntimeMinutes(),
		Status:      details.Status,
		PosterURL:   render.OrPlaceholder(h.images.Poster(details.PosterPath)),
		BackdropURL: h.images.Backdrop(details.BackdropPath),
		PosterPath:  details.PosterPath,
		ReleaseDate: details.Date(),
		VoteAverage: details.VoteAverage,
		InPlaylist:  inPlaylist,
		IsTV:        t == media.TV,
		Seasons:     details.NumberOfSeasons,
		ReviewsHref: fmt.Sprintf("/reviews?id=%d&type=%s", id, t),
		Recommendations: render.Grid{
			Cards:    render.Cards(tmdb.Items(recs, t), h.images),
			Fallback: "No recommendations available.",
		},
		Ratings: ratings,
	}
	if recs == nil {
		data.Recommendations.Fallback = msgUnavailable
	}
	for _, g := range details.Genres {
		data.Genres = append(data.Genres, g.Name)
	}

	for _, c := range tmdb.TopCast(credits, topCast) {
		data.Cast = append(data.Cast, render.NewCard(media.Item{
			ID:          c.ID,
			Name:        c.Name,
			ProfilePath: c.ProfilePath,
			Character:   c.Character,
			MediaType:   media.Person,
		}, h.images))
	}

	if reviews != nil {
		for i, rv := range reviews.Results {
			if i == previewReviews {
				break
			}
			data.Reviews = append(data.Reviews, reviewView(rv))
		}
	}

	if v := tmdb.Trailer(videos); v != nil {
		data.Trailer = v.Key
	}
	if t == media.Movie && h.data != nil {
		data.Halls = h.data.Halls()
	}

	h.page(w, r, http.StatusOK, "details", data.Title, data)
}

type ReviewsData struct {
	ID         int64
	Type       media.MediaType
	Title      string
	Reviews    []ReviewView
	Fallback   string
	Page       int
	TotalPages int
	PrevHref   string
	NextHref   string
}

// Reviews serves /reviews?id=&type=&page=.
func (h *Handler) Reviews(w http.ResponseWriter, r *http.Request) {
	id, t, ok := h.idAndType(w, r)
	if !ok {
		return
	}
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		page = 1
	}
	ctx := r.Context()

	var (
		details *tmdb.Details
		reviews *tmdb.Reviews
		wg      sync.WaitGroup
	)
	wg.Go(func() { details = h.tmdb.Details(ctx, t, id) })
	wg.Go(func() { reviews = h.tmdb.Reviews(ctx, t, id, page) })
	wg.Wait()

	data := ReviewsData{ID: id, Type: t, Title: "Untitled", Page: page, Fallback: "No reviews yet."}
	if details != nil {
		data.Title = details.DisplayTitle()
	}
	if reviews == nil {
		data.Fallback = msgUnavailable
	} else {
		data.TotalPages = reviews.TotalPages
		for _, rv := range reviews.Results {
			data.Reviews = append(data.Reviews, reviewView(rv))
		}
		if page > 1 {
			data.PrevHref = fmt.Sprintf("/reviews?id=%d&type=%s&page=%d", id, t, page-1)
		}
		if page < reviews.TotalPages {
			data.NextHref = fmt.Sprintf("/reviews?id=%d&type=%s&page=%d", id, t, page+1)
		}
	}

	h.page(w, r, http.StatusOK, "reviews", "Reviews: "+data.Title, data)
}

package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cinewatch/internal/booking"
	"cinewatch/internal/media"
	"cinewatch/internal/render"
	"cinewatch/internal/support"
)

type GuideData struct {
	Countries []string
	Cities    []string
	Country   string
	City      string
	Halls     []support.HallRef
}

// CinemaGuide serves /cinema-guide?country=&city=.
func (h *Handler) CinemaGuide(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := GuideData{
		Countries: h.data.Countries(),
		Country:   q.Get("country"),
		City:      q.Get("city"),
	}
	if data.Country != "" {
		data.Cities = h.data.Cities(data.Country)
	}
	data.Halls = h.data.FilterHalls(data.Country, data.City)

	h.page(w, r, http.StatusOK, "cinema_guide", "Cinema Guide", data)
}

type TransportOption struct {
	Name  string
	Price int
}

type TicketData struct {
	MovieID    int64
	MovieTitle string
	PosterURL  string
	Action     string
	SeatPrice  int

	Halls []support.HallRef

	Ticket       *booking.Ticket
	SeatMap      [][]booking.Seat
	Quote        booking.Quote
	Transport    []TransportOption
	Error        string
	Confirmation *booking.Confirmation
}

// BuyTicket serves /buy-ticket?movie_id=&cinema_id=. Without a cinema it
// lists the halls; with one it walks the visitor through the booking
// steps, one POST per step.
func (h *Handler) BuyTicket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	movieID, ok := queryID(q, "movie_id")
	if !ok {
		h.fail(w, r, http.StatusBadRequest, "Invalid or missing movie ID.")
		return
	}
	sess := h.visitor(w, r)
	if sess == nil {
		return
	}
	ctx := r.Context()

	movie := h.tmdb.Details(ctx, media.Movie, movieID)
	if movie == nil {
		h.fail(w, r, http.StatusBadGateway, msgUnavailable)
		return
	}

	data := TicketData{
		MovieID:    movieID,
		MovieTitle: movie.DisplayTitle(),
		PosterURL:  render.OrPlaceholder(h.images.Poster(movie.PosterPath)),
		SeatPrice:  booking.SeatPrice,
	}

	cinemaID := q.Get("cinema_id")
	if cinemaID == "" {
		data.Halls = h.data.Halls()
		h.page(w, r, http.StatusOK, "buy_ticket", "Buy Tickets: "+data.MovieTitle, data)
		return
	}
	hall, ok := h.data.FindHall(cinemaID)
	if !ok {
		h.fail(w, r, http.StatusNotFound, "Unknown cinema.")
		return
	}

	key := fmt.Sprintf("%d:%s", movieID, hall.ID)
	ticket, ok := sess.Ticket(key)
	if !ok {
		ticket = booking.NewTicket(movieID, data.MovieTitle, hall)
		sess.SetTicket(key, ticket)
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			h.fail(w, r, http.StatusBadRequest, "Invalid form.")
			return
		}
		conf, err := h.advanceTicket(ctx, ticket, r.PostForm, sess.ID)
		var stepErr *booking.StepError
		switch {
		case errors.As(err, &stepErr):
			data.Error = stepErr.Message
			status = http.StatusUnprocessableEntity
		case err != nil:
			h.logger.Error().Err(err).Str("cinema", hall.ID).Msg("failed to confirm booking")
			data.Error = "We could not save your booking. Please try again."
			status = http.StatusInternalServerError
		case conf != nil:
			h.logger.Info().
				Str("booking", conf.Booking.ID).
				Str("cinema", hall.ID).
				Int("total", conf.Booking.Total).
				Msg("booking confirmed")
			data.Confirmation = conf
			sess.SetTicket(key, nil)
		}
	}

	data.Ticket = ticket
	data.SeatMap = ticket.SeatMap()
	data.Quote = ticket.Quote()
	data.Action = "/buy-ticket?" + url.Values{
		"movie_id":  {strconv.FormatInt(movieID, 10)},
		"cinema_id": {hall.ID},
	}.Encode()
	for _, name := range hall.TransportServices {
		data.Transport = append(data.Transport, TransportOption{Name: name, Price: booking.TransportPrices[name]})
	}

	h.page(w, r, status, "buy_ticket", "Buy Tickets: "+data.MovieTitle, data)
}

// advanceTicket applies the posted fields of the current step, then
// moves back, forward, or confirms.
func (h *Handler) advanceTicket(ctx context.Context, t *booking.Ticket, form url.Values, visitorID string) (*booking.Confirmation, error) {
	if form.Get("action") == "back" {
		t.Back()
		return nil, nil
	}

	switch t.Step {
	case 1:
		if st := form.Get("showtime"); st != "" && st != t.Showtime {
			// a new showtime has a different seat map; show it first
			return nil, t.SelectShowtime(st)
		}
		if err := t.SetSeats(form["seats"]); err != nil {
			return nil, err
		}
	case 2:
		for _, s := range t.Hall.Snacks {
			qty, _ := strconv.Atoi(form.Get("snack:" + s.Name))
			if err := t.SetSnack(s.Name, qty); err != nil {
				return nil, err
			}
		}
		if err := t.SetTransport(form.Get("transport")); err != nil {
			return nil, err
		}
	case 3:
		t.SetPayment(form.Get("payment"))
	}

	if form.Get("action") == "confirm" {
		return t.Confirm(ctx, h.store, visitorID)
	}
	return nil, t.Next()
}

// Package booking implements the multi-step ticket and advertising forms.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"cinewatch/internal/storage"
	"cinewatch/internal/support"
)

const (
	SeatRows  = 8
	SeatCols  = 12
	SeatPrice = 800 // KES per seat
	LastStep  = 3

	// MaxSnackQty bounds each snack line of one booking.
	MaxSnackQty = 20
)

const rowLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TransportPrices are flat fares in KES.
var TransportPrices = map[string]int{
	"Uber":    450,
	"Bolt":    400,
	"Bus":     100,
	"Tuk-tuk": 250,
}

var ErrStep = errors.New("step incomplete")

// StepError carries the message shown to the user for a failed step.
type StepError struct {
	Step    int
	Message string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %s", e.Step, e.Message)
}

func (e *StepError) Unwrap() error {
	return ErrStep
}

func stepErr(step int, format string, args ...any) error {
	return &StepError{Step: step, Message: fmt.Sprintf(format, args...)}
}

type BookingSaver interface {
	SaveBooking(ctx context.Context, b *storage.Booking) error
}

// Seat is one cell of the seat map.
type Seat struct {
	ID       string
	Number   int
	Occupied bool
	Selected bool
}

type Ticket struct {
	MovieID    int64
	MovieTitle string
	Hall       *support.Hall

	Step      int
	Showtime  string
	Seats     []string
	Snacks    map[string]int
	Transport string
	Payment   string
}

// NewTicket starts a booking on step 1 with the hall's first showtime
// selected.
func NewTicket(movieID int64, title string, hall *support.Hall) *Ticket {
	t := &Ticket{
		MovieID:    movieID,
		MovieTitle: title,
		Hall:       hall,
		Step:       1,
		Snacks:     make(map[string]int),
	}
	if len(hall.Showtimes) > 0 {
		t.Showtime = hall.Showtimes[0].Time
	}
	return t
}

// ValidSeat reports whether id names a seat in the grid in its canonical
// spelling, e.g. "C7". "C07" and "C+7" are rejected.
func ValidSeat(id string) bool {
	if len(id) < 2 {
		return false
	}
	row := strings.IndexByte(rowLetters[:SeatRows], id[0])
	col, err := strconv.Atoi(id[1:])
	if row < 0 || err != nil || col < 1 || col > SeatCols {
		return false
	}
	return id[1:] == strconv.Itoa(col)
}

// SeatMap returns the grid for the selected showtime.
func (t *Ticket) SeatMap() [][]Seat {
	show, _ := t.Hall.Showtime(t.Showtime)
	selected := make(map[string]bool, len(t.Seats))
	for _, s := range t.Seats {
		selected[s] = true
	}

	grid := make([][]Seat, SeatRows)
	for r := 0; r < SeatRows; r++ {
		grid[r] = make([]Seat, SeatCols)
		for c := 0; c < SeatCols; c++ {
			id := fmt.Sprintf("%c%d", rowLetters[r], c+1)
			grid[r][c] = Seat{ID: id, Number: c + 1, Occupied: show.IsOccupied(id), Selected: selected[id]}
		}
	}
	return grid
}

// SelectShowtime switches showtime and drops the seat selection.
func (t *Ticket) SelectShowtime(time string) error {
	if _, ok := t.Hall.Showtime(time); !ok {
		return stepErr(1, "Please choose a showtime.")
	}
	if time != t.Showtime {
		t.Seats = nil
	}
	t.Showtime = time
	return nil
}

// SetSeats replaces the seat selection. Unknown or occupied seats are
// rejected.
func (t *Ticket) SetSeats(ids []string) error {
	show, ok := t.Hall.Showtime(t.Showtime)
	if !ok {
		return stepErr(1, "Please choose a showtime.")
	}
	seen := make(map[string]bool, len(ids))
	seats := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.ToUpper(strings.TrimSpace(id))
		if id == "" || seen[id] {
			continue
		}
		if !ValidSeat(id) {
			return stepErr(1, "Seat %s does not exist.", id)
		}
		if show.IsOccupied(id) {
			return stepErr(1, "Seat %s is already taken.", id)
		}
		seen[id] = true
		seats = append(seats, id)
	}
	sort.Strings(seats)
	t.Seats = seats
	return nil
}

// SetSnack sets the quantity of a snack; zero removes it.
func (t *Ticket) SetSnack(name string, qty int) error {
	snack, ok := t.Hall.Snack(name)
	if !ok {
		return stepErr(2, "%s is not sold at %s.", name, t.Hall.Name)
	}
	if qty < 0 {
		return stepErr(2, "Quantity cannot be negative.")
	}
	if qty > MaxSnackQty {
		return stepErr(2, "You can order at most %d of %s.", MaxSnackQty, snack.Name)
	}
	if qty == 0 {
		delete(t.Snacks, snack.Name)
		return nil
	}
	t.Snacks[snack.Name] = qty
	return nil
}

// SetTransport selects a transport service; an empty name clears it.
func (t *Ticket) SetTransport(service string) error {
	if service == "" {
		t.Transport = ""
		return nil
	}
	if !t.Hall.OffersTransport(service) {
		return stepErr(2, "%s is not available for %s.", service, t.Hall.Name)
	}
	t.Transport = service
	return nil
}

func (t *Ticket) SetPayment(method string) {
	t.Payment = method
}

// Validate checks the fields owned by step.
func (t *Ticket) Validate(step int) error {
	switch step {
	case 1:
		if _, ok := t.Hall.Showtime(t.Showtime); !ok {
			return stepErr(1, "Please choose a showtime.")
		}
		if len(t.Seats) == 0 {
			return stepErr(1, "Please select at least one seat.")
		}
	case 2:
		for name, qty := range t.Snacks {
			if _, ok := t.Hall.Snack(name); !ok {
				return stepErr(2, "%s is not sold at %s.", name, t.Hall.Name)
			}
			if qty < 0 || qty > MaxSnackQty {
				return stepErr(2, "You can order at most %d of %s.", MaxSnackQty, name)
			}
		}
		if t.Transport != "" && !t.Hall.OffersTransport(t.Transport) {
			return stepErr(2, "%s is not available for %s.", t.Transport, t.Hall.Name)
		}
	case 3:
		if t.Payment == "" {
			return stepErr(3, "Please choose a payment method.")
		}
		if !t.Hall.AcceptsPayment(t.Payment) {
			return stepErr(3, "%s does not accept %s.", t.Hall.Name, t.Payment)
		}
	default:
		return stepErr(step, "Unknown step.")
	}
	return nil
}

// Next validates the current step and advances.
func (t *Ticket) Next() error {
	if err := t.Validate(t.Step); err != nil {
		return err
	}
	if t.Step < LastStep {
		t.Step++
	}
	return nil
}

func (t *Ticket) Back() {
	if t.Step > 1 {
		t.Step--
	}
}

type Line struct {
	Label    string
	Quantity int
	Amount   int
}

type Quote struct {
	Lines []Line
	Total int
}

// Quote prices the current selection.
func (t *Ticket) Quote() Quote {
	var q Quote
	if n := len(t.Seats); n > 0 {
		q.Lines = append(q.Lines, Line{
			Label:    "Tickets (" + strings.Join(t.Seats, ", ") + ")",
			Quantity: n,
			Amount:   n * SeatPrice,
		})
	}

	for _, name := range sortedKeys(t.Snacks) {
		snack, _ := t.Hall.Snack(name)
		qty := t.Snacks[name]
		q.Lines = append(q.Lines, Line{Label: snack.Name, Quantity: qty, Amount: qty * snack.Price})
	}

	if t.Transport != "" {
		q.Lines = append(q.Lines, Line{Label: "Transport: " + t.Transport, Quantity: 1, Amount: TransportPrices[t.Transport]})
	}

	for _, l := range q.Lines {
		q.Total += l.Amount
	}
	return q
}

type Confirmation struct {
	Booking        *storage.Booking
	WelcomeMessage string
	Contact        string
}

// Confirm validates every step, persists the booking and returns the
// hall's confirmation details.
func (t *Ticket) Confirm(ctx context.Context, saver BookingSaver, visitorID string) (*Confirmation, error) {
	for step := 1; step <= LastStep; step++ {
		if err := t.Validate(step); err != nil {
			t.Step = step
			return nil, err
		}
	}

	quote := t.Quote()
	b := &storage.Booking{
		ID:         uuid.NewString(),
		VisitorID:  visitorID,
		MovieID:    t.MovieID,
		MovieTitle: t.MovieTitle,
		CinemaID:   t.Hall.ID,
		CinemaName: t.Hall.Name,
		Showtime:   t.Showtime,
		Seats:      append([]string(nil), t.Seats...),
		Transport:  t.Transport,
		Payment:    t.Payment,
		Total:      quote.Total,
	}
	for _, name := range sortedKeys(t.Snacks) {
		snack, _ := t.Hall.Snack(name)
		b.Snacks = append(b.Snacks, storage.SnackLine{Name: snack.Name, Quantity: t.Snacks[name], Price: snack.Price})
	}

	if saver != nil {
		if err := saver.SaveBooking(ctx, b); err != nil {
			return nil, fmt.Errorf("saving booking: %w", err)
		}
	}

	return &Confirmation{
		Booking:        b,
		WelcomeMessage: t.Hall.WelcomeMessage,
		Contact:        t.Hall.Contact,
	}, nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package booking

import (
	"context"
	"errors"
	"net/url"
	"testing"

	"cinewatch/internal/storage"
	"cinewatch/internal/support"
)

func testHall() *support.Hall {
	return &support.Hall{
		ID:                "imax-nairobi",
		Name:              "IMAX Nairobi",
		PaymentMethods:    []string{"M-Pesa", "Visa"},
		TransportServices: []string{"Uber", "Bolt"},
		Snacks:            []support.Snack{{Name: "Popcorn", Price: 350}, {Name: "Soda", Price: 150}},
		Showtimes: []support.Showtime{
			{Time: "1:00 PM", OccupiedSeats: []string{"A1"}},
			{Time: "7:00 PM"},
		},
		WelcomeMessage: "Welcome!",
		Contact:        "+254 700 000 001",
	}
}

type memSaver struct {
	bookings []*storage.Booking
	ads      []*storage.AdRequest
	reports  []*storage.InfringementReport
	err      error
}

func (m *memSaver) SaveInfringementReport(_ context.Context, r *storage.InfringementReport) error {
	if m.err != nil {
		return m.err
	}
	m.reports = append(m.reports, r)
	return nil
}

func (m *memSaver) SaveBooking(_ context.Context, b *storage.Booking) error {
	if m.err != nil {
		return m.err
	}
	m.bookings = append(m.bookings, b)
	return nil
}

func (m *memSaver) SaveAdRequest(_ context.Context, a *storage.AdRequest) error {
	if m.err != nil {
		return m.err
	}
	m.ads = append(m.ads, a)
	return nil
}

func userMessage(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}

func TestTicketStepOneRequiresSeat(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	if tk.Showtime != "1:00 PM" {
		t.Errorf("default showtime = %q", tk.Showtime)
	}

	err := tk.Next()
	if !errors.Is(err, ErrStep) || userMessage(err) != "Please select at least one seat." {
		t.Fatalf("Next without seats = %v", err)
	}
	if tk.Step != 1 {
		t.Errorf("step = %d, want 1", tk.Step)
	}

	if err := tk.SetSeats([]string{"b2", "B2", "A3"}); err != nil {
		t.Fatal(err)
	}
	if len(tk.Seats) != 2 || tk.Seats[0] != "A3" {
		t.Errorf("seats = %v", tk.Seats)
	}
	if err := tk.Next(); err != nil || tk.Step != 2 {
		t.Errorf("Next = %v, step %d", err, tk.Step)
	}
}

func TestTicketRejectsBadSeats(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	for _, seat := range []string{"A1", "I1", "A13", "Z"} {
		if err := tk.SetSeats([]string{seat}); !errors.Is(err, ErrStep) {
			t.Errorf("SetSeats(%q) = %v, want ErrStep", seat, err)
		}
	}
}

func TestTicketRejectsNonCanonicalSeats(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	for _, seat := range []string{"A01", "A+1", "B02", "B 2", "C-3"} {
		if err := tk.SetSeats([]string{seat}); !errors.Is(err, ErrStep) {
			t.Errorf("SetSeats(%q) = %v, want ErrStep", seat, err)
		}
		if len(tk.Seats) != 0 {
			t.Errorf("SetSeats(%q) kept seats %v", seat, tk.Seats)
		}
	}
	if q := tk.Quote(); q.Total != 0 {
		t.Errorf("total = %d, want 0", q.Total)
	}
}

func TestSnackQuantityCapped(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	tk.SetSeats([]string{"B1"})

	if err := tk.SetSnack("Popcorn", MaxSnackQty); err != nil {
		t.Fatalf("SetSnack(max) = %v", err)
	}
	for _, qty := range []int{MaxSnackQty + 1, 1 << 62} {
		if err := tk.SetSnack("Popcorn", qty); !errors.Is(err, ErrStep) {
			t.Errorf("SetSnack(%d) = %v, want ErrStep", qty, err)
		}
	}
	if got := tk.Snacks["Popcorn"]; got != MaxSnackQty {
		t.Errorf("popcorn = %d, want %d", got, MaxSnackQty)
	}
	if q := tk.Quote(); q.Total != SeatPrice+MaxSnackQty*350 {
		t.Errorf("total = %d", q.Total)
	}

	tk.Snacks["Popcorn"] = 1 << 62
	if err := tk.Validate(2); !errors.Is(err, ErrStep) {
		t.Errorf("Validate(2) with huge quantity = %v, want ErrStep", err)
	}
}

func TestShowtimeChangeClearsSeats(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	tk.SetSeats([]string{"C3"})
	if err := tk.SelectShowtime("7:00 PM"); err != nil {
		t.Fatal(err)
	}
	if len(tk.Seats) != 0 {
		t.Errorf("seats after showtime change = %v", tk.Seats)
	}
	if err := tk.SelectShowtime("3:00 AM"); err == nil {
		t.Error("unknown showtime should fail")
	}
}

func TestSeatMap(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	tk.SetSeats([]string{"H12"})
	grid := tk.SeatMap()
	if len(grid) != SeatRows || len(grid[0]) != SeatCols {
		t.Fatalf("grid = %dx%d", len(grid), len(grid[0]))
	}
	if !grid[0][0].Occupied || grid[0][0].ID != "A1" {
		t.Errorf("A1 = %+v", grid[0][0])
	}
	if !grid[7][11].Selected || grid[7][11].ID != "H12" {
		t.Errorf("H12 = %+v", grid[7][11])
	}
}

func TestQuote(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	tk.SetSeats([]string{"B1", "B2"})
	if err := tk.SetSnack("popcorn", 2); err != nil {
		t.Fatal(err)
	}
	tk.SetSnack("Soda", 1)
	tk.SetSnack("Soda", 0)
	if err := tk.SetTransport("Bolt"); err != nil {
		t.Fatal(err)
	}

	q := tk.Quote()
	// 2 seats * 800 + 2 popcorn * 350 + bolt 400
	if q.Total != 1600+700+400 {
		t.Errorf("total = %d, want 2700", q.Total)
	}
	if len(q.Lines) != 3 {
		t.Errorf("lines = %+v", q.Lines)
	}

	if err := tk.SetTransport("Bus"); !errors.Is(err, ErrStep) {
		t.Errorf("transport not offered by hall = %v", err)
	}
	if err := tk.SetSnack("Caviar", 1); !errors.Is(err, ErrStep) {
		t.Errorf("unknown snack = %v", err)
	}
}

func TestConfirm(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	tk.SetSeats([]string{"D4"})
	tk.SetSnack("Popcorn", 1)
	saver := &memSaver{}

	if _, err := tk.Confirm(context.Background(), saver, "v1"); userMessage(err) != "Please choose a payment method." {
		t.Fatalf("Confirm without payment = %v", err)
	}
	if tk.Step != 3 {
		t.Errorf("step = %d, want 3", tk.Step)
	}

	tk.SetPayment("Cash")
	if _, err := tk.Confirm(context.Background(), saver, "v1"); !errors.Is(err, ErrStep) {
		t.Errorf("unaccepted payment = %v", err)
	}

	tk.SetPayment("M-Pesa")
	conf, err := tk.Confirm(context.Background(), saver, "v1")
	if err != nil {
		t.Fatal(err)
	}
	if conf.Booking.ID == "" || conf.WelcomeMessage != "Welcome!" || conf.Contact == "" {
		t.Errorf("confirmation = %+v", conf)
	}
	if conf.Booking.Total != SeatPrice+350 {
		t.Errorf("total = %d", conf.Booking.Total)
	}
	if len(saver.bookings) != 1 || len(saver.bookings[0].Snacks) != 1 {
		t.Errorf("saved = %+v", saver.bookings)
	}
}

func TestConfirmSaveError(t *testing.T) {
	tk := NewTicket(550, "Fight Club", testHall())
	tk.SetSeats([]string{"D4"})
	tk.SetPayment("Visa")
	if _, err := tk.Confirm(context.Background(), &memSaver{err: errors.New("disk full")}, "v"); err == nil {
		t.Error("expected save error")
	}
}

func fill(f *AdForm, values url.Values) {
	f.Fill(values.Get, values.Has)
}

func TestAdFormSteps(t *testing.T) {
	pkgs := []support.AdPackage{{Name: "Starter"}, {Name: "Premiere"}}
	f := NewAdForm(pkgs, "Premiere")

	if err := f.Next(); userMessage(err) != "Please enter your name." {
		t.Errorf("empty step 1 = %v", err)
	}

	fill(f, url.Values{"name": {"Ann"}, "email": {"not-an-email"}, "company": {"Acme"}})
	if err := f.Next(); userMessage(err) != "Please enter a valid email address." {
		t.Errorf("bad email = %v", err)
	}

	fill(f, url.Values{"email": {"ann@example.com"}})
	if err := f.Next(); err != nil || f.Step != 2 {
		t.Fatalf("step 1 = %v, step %d", err, f.Step)
	}

	fill(f, url.Values{"start_date": {"2025-13-40"}, "budget": {"5000"}})
	if err := f.Next(); !errors.Is(err, ErrStep) {
		t.Errorf("bad date = %v", err)
	}
	fill(f, url.Values{"start_date": {"2025-03-01"}})
	if err := f.Next(); err != nil || f.Step != 3 {
		t.Fatalf("step 2 = %v, step %d", err, f.Step)
	}

	f.Back()
	if f.Step != 2 {
		t.Errorf("Back step = %d", f.Step)
	}
	f.Next()

	saver := &memSaver{}
	if _, err := f.Submit(context.Background(), saver); userMessage(err) != "Please accept the terms to continue." {
		t.Errorf("submit without terms = %v", err)
	}

	fill(f, url.Values{"terms": {"on"}})
	req, err := f.Submit(context.Background(), saver)
	if err != nil {
		t.Fatal(err)
	}
	if req.Package != "Premiere" || req.Email != "ann@example.com" || len(saver.ads) != 1 {
		t.Errorf("request = %+v", req)
	}
	if _, err := f.Submit(context.Background(), saver); err == nil {
		t.Error("second submit should fail")
	}
}

func TestAdFormUnknownPackage(t *testing.T) {
	f := NewAdForm([]support.AdPackage{{Name: "Starter"}}, "Gold")
	f.Name, f.Email, f.Company = "Ann", "ann@example.com", "Acme"
	f.StartDate, f.Budget = "2025-01-01", "100"
	f.Next()
	if err := f.Validate(2); userMessage(err) != "Please choose an advertising package." {
		t.Errorf("unknown package = %v", err)
	}
}

func TestInfringementFormSteps(t *testing.T) {
	f := NewInfringementForm()
	step := func(vals url.Values) error {
		f.Fill(vals.Get, vals.Has)
		return f.Next()
	}

	if err := step(url.Values{"name": {"Ann Owner"}, "email": {"not-an-email"}}); userMessage(err) != "Please enter a valid email address." {
		t.Errorf("bad email = %v", err)
	}
	if err := step(url.Values{"email": {"ann@example.com"}}); err != nil || f.Step != 2 {
		t.Fatalf("step 1 = %v, step %d", err, f.Step)
	}

	tests := []struct {
		vals url.Values
		want string
	}{
		{url.Values{"work_title": {""}}, "Please name the copyrighted work."},
		{url.Values{"work_title": {"My Film"}}, "Please describe the infringement."},
		{url.Values{"description": {"A full copy"}, "infringing_url": {"example.com/copy"}}, "Please enter the full URL of the infringing material."},
		{url.Values{"infringing_url": {"javascript:alert(1)"}}, "Please enter the full URL of the infringing material."},
	}
	for _, tt := range tests {
		if err := step(tt.vals); userMessage(err) != tt.want {
			t.Errorf("step 2 with %v = %v, want %q", tt.vals, err, tt.want)
		}
		if f.Step != 2 {
			t.Fatalf("step advanced to %d on error", f.Step)
		}
	}
	if err := step(url.Values{"infringing_url": {"https://example.com/copy"}}); err != nil || f.Step != 3 {
		t.Fatalf("step 2 = %v, step %d", err, f.Step)
	}

	f.Back()
	if f.Step != 2 || f.WorkTitle != "My Film" {
		t.Errorf("Back lost state: %+v", f)
	}
	f.Next()

	saver := &memSaver{}
	f.Fill(url.Values{"good_faith": {"1"}, "signature": {"Ann Owner"}}.Get, url.Values{"signature": {"Ann Owner"}}.Has)
	if _, err := f.Submit(context.Background(), saver); userMessage(err) != "Please confirm both statements." {
		t.Errorf("submit without both statements = %v", err)
	}

	vals := url.Values{"good_faith": {"1"}, "accurate": {"1"}, "signature": {"Someone Else"}}
	f.Fill(vals.Get, vals.Has)
	if _, err := f.Submit(context.Background(), saver); userMessage(err) != "Please sign with your full name." {
		t.Errorf("submit with wrong signature = %v", err)
	}

	vals.Set("signature", "ann owner")
	f.Fill(vals.Get, vals.Has)
	report, err := f.Submit(context.Background(), saver)
	if err != nil {
		t.Fatal(err)
	}
	if report.ID == "" || len(saver.reports) != 1 || saver.reports[0].InfringingURL != "https://example.com/copy" {
		t.Errorf("report = %+v, saved %d", report, len(saver.reports))
	}
	if _, err := f.Submit(context.Background(), saver); !errors.Is(err, ErrStep) {
		t.Errorf("second submit = %v, want ErrStep", err)
	}
}

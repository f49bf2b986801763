package storage

import "time"

// SnackLine is one snack row of a booking.
type SnackLine struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    int    `json:"price"`
}

type Booking struct {
	ID         string      `json:"id"`
	VisitorID  string      `json:"-"`
	MovieID    int64       `json:"movie_id"`
	MovieTitle string      `json:"movie_title"`
	CinemaID   string      `json:"cinema_id"`
	CinemaName string      `json:"cinema_name"`
	Showtime   string      `json:"showtime"`
	Seats      []string    `json:"seats"`
	Snacks     []SnackLine `json:"snacks,omitempty"`
	Transport  string      `json:"transport,omitempty"`
	Payment    string      `json:"payment"`
	Total      int         `json:"total"` // KES
	CreatedAt  time.Time   `json:"created_at"`
}

type AdRequest struct {
	ID        string    `json:"id"`
	Package   string    `json:"package"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Phone     string    `json:"phone,omitempty"`
	StartDate string    `json:"start_date"`
	Budget    string    `json:"budget"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type InfringementReport struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Organization  string    `json:"organization,omitempty"`
	WorkTitle     string    `json:"work_title"`
	Description   string    `json:"description"`
	InfringingURL string    `json:"infringing_url"`
	Signature     string    `json:"signature"`
	CreatedAt     time.Time `json:"created_at"`
}

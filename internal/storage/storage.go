// Package storage persists playlists, bookings and ad requests in sqlite
// or postgres.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("not found")

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Storage struct {
	db     *sql.DB
	driver string
}

// Open connects to the database and runs migrations. For sqlite, dsn is a
// file path whose directory is created when missing.
func Open(driver, dsn string) (*Storage, error) {
	var (
		db  *sql.DB
		err error
	)

	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("creating database dir: %w", err)
			}
		}
		db, err = sql.Open("sqlite", dsn+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	case DriverPostgres:
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(10)
		db.SetConnMaxIdleTime(5 * time.Minute)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	s := &Storage{db: db, driver: driver}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating: %w", err)
	}

	return s, nil
}

func (s *Storage) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			name TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			visitor_id TEXT NOT NULL,
			movie_id BIGINT NOT NULL,
			movie_title TEXT NOT NULL,
			cinema_id TEXT NOT NULL,
			cinema_name TEXT NOT NULL,
			showtime TEXT NOT NULL,
			seats TEXT NOT NULL,
			snacks TEXT NOT NULL,
			transport TEXT NOT NULL,
			payment TEXT NOT NULL,
			total INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_visitor ON bookings(visitor_id)`,
		`CREATE TABLE IF NOT EXISTS ad_requests (
			id TEXT PRIMARY KEY,
			package TEXT NOT NULL,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			company TEXT NOT NULL,
			phone TEXT NOT NULL,
			start_date TEXT NOT NULL,
			budget TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ad_requests_created ON ad_requests(created_at)`,
		`CREATE TABLE IF NOT EXISTS infringement_reports (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT NOT NULL,
			organization TEXT NOT NULL,
			work_title TEXT NOT NULL,
			description TEXT NOT NULL,
			infringing_url TEXT NOT NULL,
			signature TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) Driver() string {
	return s.driver
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *Storage) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// KV

func (s *Storage) Get(ctx context.Context, key string) (string, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT data FROM kv WHERE name = ?`), key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return data, true, nil
}

func (s *Storage) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO kv (name, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`), key, value, time.Now().UTC())
	return err
}

// Bookings

func (s *Storage) SaveBooking(ctx context.Context, b *Booking) error {
	snacks, err := json.Marshal(b.Snacks)
	if err != nil {
		return fmt.Errorf("encoding snacks: %w", err)
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO bookings (id, visitor_id, movie_id, movie_title, cinema_id, cinema_name,
			showtime, seats, snacks, transport, payment, total, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), b.ID, b.VisitorID, b.MovieID, b.MovieTitle, b.CinemaID, b.CinemaName,
		b.Showtime, strings.Join(b.Seats, ","), string(snacks), b.Transport, b.Payment, b.Total, b.CreatedAt)
	return err
}

func (s *Storage) GetBooking(ctx context.Context, id string) (*Booking, error) {
	var (
		b      Booking
		seats  string
		snacks string
	)
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, visitor_id, movie_id, movie_title, cinema_id, cinema_name,
			showtime, seats, snacks, transport, payment, total, created_at
		FROM bookings WHERE id = ?
	`), id).Scan(&b.ID, &b.VisitorID, &b.MovieID, &b.MovieTitle, &b.CinemaID, &b.CinemaName,
		&b.Showtime, &seats, &snacks, &b.Transport, &b.Payment, &b.Total, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if seats != "" {
		b.Seats = strings.Split(seats, ",")
	}
	if err := json.Unmarshal([]byte(snacks), &b.Snacks); err != nil {
		return nil, fmt.Errorf("decoding snacks: %w", err)
	}
	return &b, nil
}

// Ad requests

func (s *Storage) SaveAdRequest(ctx context.Context, a *AdRequest) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO ad_requests (id, package, name, email, company, phone, start_date, budget, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), a.ID, a.Package, a.Name, a.Email, a.Company, a.Phone, a.StartDate, a.Budget, a.Message, a.CreatedAt)
	return err
}

// ListAdRequests returns the newest requests first.
func (s *Storage) ListAdRequests(ctx context.Context, limit int) ([]AdRequest, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, package, name, email, company, phone, start_date, budget, message, created_at
		FROM ad_requests ORDER BY created_at DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdRequest
	for rows.Next() {
		var a AdRequest
		if err := rows.Scan(&a.ID, &a.Package, &a.Name, &a.Email, &a.Company, &a.Phone,
			&a.StartDate, &a.Budget, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Infringement reports

func (s *Storage) SaveInfringementReport(ctx context.Context, r *InfringementReport) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO infringement_reports (id, name, email, organization, work_title, description, infringing_url, signature, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`), r.ID, r.Name, r.Email, r.Organization, r.WorkTitle, r.Description, r.InfringingURL, r.Signature, r.CreatedAt)
	return err
}

// ListInfringementReports returns the newest reports first.
func (s *Storage) ListInfringementReports(ctx context.Context, limit int) ([]InfringementReport, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, name, email, organization, work_title, description, infringing_url, signature, created_at
		FROM infringement_reports ORDER BY created_at DESC LIMIT ?
	`), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []InfringementReport
	for rows.Next() {
		var r InfringementReport
		if err := rows.Scan(&r.ID, &r.Name, &r.Email, &r.Organization, &r.WorkTitle,
			&r.Description, &r.InfringingURL, &r.Signature, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Package session tracks anonymous visitors by cookie and keeps their
// per-visitor state in an expiring LRU.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"cinewatch/internal/booking"
	"cinewatch/internal/catalog"
	"cinewatch/internal/support"
)

const (
	CookieName   = "cw_visitor"
	cookieMaxAge = 365 * 24 * time.Hour

	// maxListings bounds the listing controllers kept per visitor.
	maxListings = 32
)

// Session is the server-side state of one visitor.
type Session struct {
	ID string

	mu       sync.Mutex
	listings map[string]*catalog.Controller
	order    []string
	chat     *support.Conversation
	tickets  map[string]*booking.Ticket
	adForm   *booking.AdForm
	report   *booking.InfringementForm
}

func newSession(id string) *Session {
	return &Session{
		ID:       id,
		listings: make(map[string]*catalog.Controller),
		tickets:  make(map[string]*booking.Ticket),
	}
}

func (s *Session) Listing(key string) (*catalog.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.listings[key]
	return c, ok
}

// SetListing stores c under key, dropping the oldest controller once the
// per-visitor limit is reached.
func (s *Session) SetListing(key string, c *catalog.Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.listings[key]; !ok {
		s.order = append(s.order, key)
	}
	s.listings[key] = c

	for len(s.order) > maxListings {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.listings, oldest)
	}
}

// Chat returns the visitor's conversation, starting one when needed.
func (s *Session) Chat() *support.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.chat == nil {
		s.chat = support.NewConversation()
	}
	return s.chat
}

func (s *Session) Ticket(key string) (*booking.Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[key]
	return t, ok
}

func (s *Session) SetTicket(key string, t *booking.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t == nil {
		delete(s.tickets, key)
		return
	}
	s.tickets[key] = t
}

func (s *Session) AdForm() *booking.AdForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.adForm
}

func (s *Session) SetAdForm(f *booking.AdForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adForm = f
}

func (s *Session) InfringementForm() *booking.InfringementForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.report
}

func (s *Session) SetInfringementForm(f *booking.InfringementForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.report = f
}

// Registry holds sessions, evicting on capacity or idle TTL.
type Registry struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, *Session]
}

func NewRegistry(capacity int, ttl time.Duration) *Registry {
	return &Registry{
		cache: expirable.NewLRU[string, *Session](capacity, nil, ttl),
	}
}

// Get returns the session for id, creating it when absent or expired.
func (r *Registry) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.cache.Get(id); ok {
		// re-add to refresh the TTL
		r.cache.Add(id, s)
		return s
	}
	s := newSession(id)
	r.cache.Add(id, s)
	return s
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

type ctxKey struct{}

// Middleware ensures every request carries a visitor cookie and attaches
// the visitor's session to the request context.
func Middleware(reg *Registry, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(CookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    id,
					Path:     "/",
					MaxAge:   int(cookieMaxAge.Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
				logger.Debug().Str("visitor", id).Msg("new visitor")
			}

			ctx := context.WithValue(r.Context(), ctxKey{}, reg.Get(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// FromContext returns the session attached by Middleware, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}


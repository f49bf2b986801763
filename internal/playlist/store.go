// Package playlist keeps a visitor's saved titles as one JSON document in
// a key-value backend.
package playlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cinewatch/internal/media"
)

// KeyPrefix prefixes the visitor id in the storage key.
const KeyPrefix = "cineWatchPlaylist"

var ErrInvalidEntry = errors.New("invalid playlist entry")

// KV is the persistence the store needs. storage.Storage satisfies it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
}

// Entry is one saved title. Identity is (ID, MediaType).
type Entry struct {
	ID          int64           `json:"id"`
	MediaType   media.MediaType `json:"media_type"`
	Title       string          `json:"title"`
	PosterPath  string          `json:"poster_path,omitempty"`
	ReleaseDate string          `json:"release_date,omitempty"`
	VoteAverage float64         `json:"vote_average,omitempty"`
	AddedAt     time.Time       `json:"added_at"`
}

// EntryFromItem copies the fields a playlist card needs.
func EntryFromItem(it media.Item) Entry {
	return Entry{
		ID:          it.ID,
		MediaType:   it.MediaType,
		Title:       it.DisplayTitle(),
		PosterPath:  it.PosterPath,
		ReleaseDate: it.Date(),
		VoteAverage: it.VoteAverage,
	}
}

// Item converts e back into a media item for the card renderer.
func (e Entry) Item() media.Item {
	it := media.Item{
		ID:          e.ID,
		MediaType:   e.MediaType,
		PosterPath:  e.PosterPath,
		VoteAverage: e.VoteAverage,
	}
	if e.MediaType == media.TV {
		it.Name = e.Title
		it.FirstAirDate = e.ReleaseDate
	} else {
		it.Title = e.Title
		it.ReleaseDate = e.ReleaseDate
	}
	return it
}

func Key(visitorID string) string {
	return KeyPrefix + ":" + visitorID
}

const lockStripes = 64

// keyLocks serializes read-modify-write per storage key across Store
// values. Keys share a fixed set of stripes.
var keyLocks [lockStripes]sync.Mutex

func lockFor(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &keyLocks[h.Sum32()%lockStripes]
}

type Store struct {
	kv     KV
	key    string
	logger zerolog.Logger
	now    func() time.Time
}

func New(kv KV, key string, logger zerolog.Logger) *Store {
	return &Store{
		kv:     kv,
		key:    key,
		logger: logger.With().Str("component", "playlist").Str("key", key).Logger(),
		now:    time.Now,
	}
}

// List returns the saved entries in insertion order. A document that fails
// to parse reads as empty.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	mu := lockFor(s.key)
	mu.Lock()
	defer mu.Unlock()
	return s.load(ctx)
}

// Add appends e unless an entry with the same identity exists. It returns
// the stored entry, which is the existing one on a duplicate, and reports
// whether e was inserted.
func (s *Store) Add(ctx context.Context, e Entry) (Entry, bool, error) {
	if e.ID <= 0 || !e.MediaType.Valid() || e.MediaType == media.Person {
		return Entry{}, false, fmt.Errorf("%w: id=%d type=%q", ErrInvalidEntry, e.ID, e.MediaType)
	}

	mu := lockFor(s.key)
	mu.Lock()
	defer mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return Entry{}, false, err
	}
	if i := indexOf(entries, e.ID, e.MediaType); i >= 0 {
		return entries[i], false, nil
	}

	if e.AddedAt.IsZero() {
		e.AddedAt = s.now().UTC()
	}
	entries = append(entries, e)
	if err := s.save(ctx, entries); err != nil {
		return Entry{}, false, err
	}

	s.logger.Debug().Int64("id", e.ID).Str("type", e.MediaType.String()).Msg("added to playlist")
	return e, true, nil
}

// Remove deletes the entry with the given identity. Removing an absent
// entry is not an error.
func (s *Store) Remove(ctx context.Context, id int64, t media.MediaType) error {
	mu := lockFor(s.key)
	mu.Lock()
	defer mu.Unlock()

	entries, err := s.load(ctx)
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID == id && e.MediaType == t {
			continue
		}
		kept = append(kept, e)
	}
	return s.save(ctx, kept)
}

func (s *Store) Contains(ctx context.Context, id int64, t media.MediaType) (bool, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(entries, id, t) >= 0, nil
}

func (s *Store) load(ctx context.Context) ([]Entry, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !ok || raw == "" {
		return []Entry{}, nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		s.logger.Warn().Err(err).Msg("failed to parse playlist, treating as empty")
		return []Entry{}, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

func (s *Store) save(ctx context.Context, entries []Entry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encoding playlist: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("writing playlist: %w", err)
	}
	return nil
}

func indexOf(entries []Entry, id int64, t media.MediaType) int {
	for i, e := range entries {
		if e.ID == id && e.MediaType == t {
			return i
		}
	}
	return -1
}

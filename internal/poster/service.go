// Package poster proxies artwork from the image CDN through a memory LRU
// and an on-disk copy.
package poster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"cinewatch/internal/cache"
	"cinewatch/internal/media"
)

var (
	ErrInvalidPath = errors.New("invalid poster path")
	ErrNotFound    = errors.New("poster not found")
	ErrTooLarge    = errors.New("poster too large")
)

const maxPosterSize = 8 * 1024 * 1024

var fileName = regexp.MustCompile(`^[A-Za-z0-9_-]+\.[A-Za-z0-9]+$`)

type call struct {
	done chan struct{}
	data []byte
	err  error
}

// Service manages poster fetching and caching
type Service struct {
	baseURL string
	dir     string
	http    *http.Client
	cache   *cache.LRUCache
	maxSize int64
	logger  zerolog.Logger

	mu       sync.Mutex
	inflight map[string]*call
}

func NewService(
	baseURL string,
	dir string,
	cacheCapacity int,
	cacheMaxSize int64,
	timeout time.Duration,
	logger zerolog.Logger,
) *Service {
	return &Service{
		baseURL:  strings.TrimRight(baseURL, "/"),
		dir:      dir,
		http:     &http.Client{Timeout: timeout},
		cache:    cache.NewLRUCache(cacheCapacity, cacheMaxSize, 0),
		maxSize:  maxPosterSize,
		logger:   logger.With().Str("component", "poster").Logger(),
		inflight: make(map[string]*call),
	}
}

// Clean validates size and file and returns the cache key "size/file".
func Clean(size, file string) (string, error) {
	file = strings.TrimPrefix(file, "/")
	if !media.IsPosterSize(size) {
		return "", fmt.Errorf("%w: size %q", ErrInvalidPath, size)
	}
	if !fileName.MatchString(file) || !media.IsSupportedImage(file) {
		return "", fmt.Errorf("%w: file %q", ErrInvalidPath, file)
	}
	return size + "/" + file, nil
}

// Get returns poster bytes from the cache, the disk or the CDN, in that
// order. Concurrent requests for the same poster share one download.
func (s *Service) Get(ctx context.Context, size, file string) ([]byte, error) {
	key, err := Clean(size, file)
	if err != nil {
		return nil, err
	}

	if data, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("key", key).Msg("poster from cache")
		return data, nil
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if data, err := os.ReadFile(path); err == nil {
		s.logger.Debug().Str("key", key).Str("path", path).Msg("poster from disk")
		s.cache.Set(key, data)
		return data, nil
	}

	s.mu.Lock()
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.data, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	// detached from the first caller so a disconnect does not fail the
	// others waiting on this download
	c.data, c.err = s.download(context.WithoutCancel(ctx), key, path)
	close(c.done)

	s.mu.Lock()
	delete(s.inflight, key)
	s.mu.Unlock()

	return c.data, c.err
}

func (s *Service) download(ctx context.Context, key, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/"+key, http.NoBody)
	if err != nil {
		return nil, err
	}

	resp, err := s.http.Do(req)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to download poster")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error().Str("key", key).Int("status", resp.StatusCode).Msg("image CDN error")
		return nil, fmt.Errorf("image CDN returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxSize {
		s.logger.Warn().Str("key", key).Int64("limit", s.maxSize).Msg("poster exceeds size limit")
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, key)
	}

	if err := writeFile(path, data); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to write poster")
	}

	s.cache.Set(key, data)
	s.logger.Info().Str("key", key).Int("size", len(data)).Msg("poster downloaded and cached")
	return data, nil
}

// writeFile stores data at path through a temp file and a rename, so
// readers never see a partial poster.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating poster dir: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "poster-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing poster: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting poster mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming poster file: %w", err)
	}
	return nil
}

// Has reports whether a poster is in memory or on disk.
func (s *Service) Has(size, file string) bool {
	key, err := Clean(size, file)
	if err != nil {
		return false
	}
	if _, ok := s.cache.Get(key); ok {
		return true
	}
	_, err = os.Stat(filepath.Join(s.dir, filepath.FromSlash(key)))
	return err == nil
}

// StartWarmup downloads the posters returned by list in the background,
// pausing delay between downloads.
func (s *Service) StartWarmup(ctx context.Context, size string, list func(context.Context) []string, delay time.Duration) {
	go func() {
		files := list(ctx)
		s.logger.Info().Int("posters", len(files)).Msg("starting poster warmup")

		warmed := 0
		for _, f := range files {
			select {
			case <-ctx.Done():
				s.logger.Info().Int("warmed", warmed).Msg("poster warmup cancelled")
				return
			default:
			}
			if s.Has(size, f) {
				continue
			}
			if _, err := s.Get(ctx, size, f); err != nil {
				s.logger.Debug().Err(err).Str("file", f).Msg("warmup fetch failed")
				continue
			}
			warmed++
			time.Sleep(delay)
		}

		s.logger.Info().Int("warmed", warmed).Msg("poster warmup completed")
	}()
}

// CacheStats returns cache statistics
func (s *Service) CacheStats() (count int, size int64) {
	return s.cache.Len(), s.cache.Size()
}

// Package omdb fetches ratings keyed by IMDb id.
package omdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

type Rating struct {
	Source string `json:"Source"`
	Value  string `json:"Value"`
}

type Ratings struct {
	Title      string   `json:"Title"`
	Rated      string   `json:"Rated"`
	Awards     string   `json:"Awards"`
	Metascore  string   `json:"Metascore"`
	IMDbRating string   `json:"imdbRating"`
	IMDbVotes  string   `json:"imdbVotes"`
	BoxOffice  string   `json:"BoxOffice"`
	Ratings    []Rating `json:"Ratings"`
	Response   string   `json:"Response"`
	Error      string   `json:"Error"`
}

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(baseURL, apiKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "omdb").Logger(),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

// Ratings returns the ratings for imdbID, or nil when the id is empty, no
// key is configured, the request fails or the API reports no match.
func (c *Client) Ratings(ctx context.Context, imdbID string) *Ratings {
	if imdbID == "" || !c.Enabled() {
		return nil
	}

	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("i", imdbID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), http.NoBody)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to build request")
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("imdb_id", imdbID).Msg("network or API error")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().Str("imdb_id", imdbID).Int("status", resp.StatusCode).Msg("error fetching ratings")
		return nil
	}

	var r Ratings
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&r); err != nil {
		c.logger.Error().Err(err).Str("imdb_id", imdbID).Msg("failed to decode ratings")
		return nil
	}
	if r.Response == "False" {
		c.logger.Warn().Str("imdb_id", imdbID).Str("error", r.Error).Msg("no ratings")
		return nil
	}

	return &r
}

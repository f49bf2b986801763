// Package tmdb is the metadata API client. Every fetch resolves to nil on
// failure instead of returning an error; callers render a fallback.
package tmdb

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"moul.io/http2curl"

	"cinewatch/internal/cache"
	"cinewatch/internal/media"
)

// maxBodySize caps a single response body.
const maxBodySize = 10 * 1024 * 1024

type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
	cache    *cache.LRUCache
	logger   zerolog.Logger
}

type Options struct {
	BaseURL  string
	APIKey   string
	Language string
	Timeout  time.Duration
	// Cache is optional; nil disables response caching.
	Cache *cache.LRUCache
}

func NewClient(opts Options, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(opts.BaseURL, "/"),
		apiKey:   opts.APIKey,
		language: opts.Language,
		http: &http.Client{
			Timeout: opts.Timeout,
		},
		cache:  opts.Cache,
		logger: logger.With().Str("component", "tmdb").Logger(),
	}
}

// BuildURL returns the request URL for endpoint with the API key, the
// configured language and every non-empty param appended.
func (c *Client) BuildURL(endpoint string, params url.Values) string {
	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	for key, values := range params {
		for _, v := range values {
			if v == "" {
				continue
			}
			if key == "language" {
				q.Set(key, v)
				continue
			}
			q.Add(key, v)
		}
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/") + "?" + q.Encode()
}

// cacheKey is the request URL without the API key.
func (c *Client) cacheKey(endpoint string, params url.Values) string {
	u := c.BuildURL(endpoint, params)
	if c.apiKey == "" {
		return u
	}
	return strings.Replace(u, "api_key="+url.QueryEscape(c.apiKey), "api_key=", 1)
}

// Fetch performs a GET against endpoint and returns the raw JSON body, or
// nil on a network failure, a non-2xx status or a body that is not JSON.
func (c *Client) Fetch(ctx context.Context, endpoint string, params url.Values) json.RawMessage {
	key := c.cacheKey(endpoint, params)
	if c.cache != nil {
		if data, ok := c.cache.Get(key); ok {
			c.logger.Debug().Str("endpoint", endpoint).Msg("served from cache")
			return data
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildURL(endpoint, params), http.NoBody)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to build request")
		return nil
	}
	req.Header.Set("Accept", "application/json")

	if c.logger.GetLevel() <= zerolog.DebugLevel {
		if command, err := http2curl.GetCurlCommand(req); err == nil {
			c.logger.Debug().Str("curl", c.redact(command.String())).Msg("tmdb request")
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("network or API error")
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("error fetching data")
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to read response")
		return nil
	}

	if !json.Valid(body) {
		c.logger.Error().Str("endpoint", endpoint).Msg("response is not valid JSON")
		return nil
	}

	if c.cache != nil {
		c.cache.Set(key, body)
	}

	return body
}

// FetchInto decodes the response for endpoint into v. It reports false
// when the fetch failed or the body does not match v.
func (c *Client) FetchInto(ctx context.Context, endpoint string, params url.Values, v any) bool {
	data := c.Fetch(ctx, endpoint, params)
	if data == nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Error().Err(err).Str("endpoint", endpoint).Msg("failed to decode response")
		return false
	}
	return true
}

// FetchPage fetches one page of a paginated list endpoint.
func (c *Client) FetchPage(ctx context.Context, endpoint string, params url.Values) *media.Page {
	var page media.Page
	if !c.FetchInto(ctx, endpoint, params, &page) {
		return nil
	}
	return &page
}

func (c *Client) redact(s string) string {
	if c.apiKey == "" {
		return s
	}
	return strings.ReplaceAll(s, url.QueryEscape(c.apiKey), "REDACTED")
}

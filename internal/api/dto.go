package api

import (
	"cinewatch/internal/media"
	"cinewatch/internal/playlist"
	"cinewatch/internal/storage"
)

type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Database string            `json:"database"`
	Sessions int               `json:"sessions"`
	Posters  *PosterCacheStats `json:"posters,omitempty"`
}

type PosterCacheStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

type ListingSummary struct {
	Key       string `json:"key"`
	Title     string `json:"title"`
	MediaType string `json:"media_type,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Playlist DTOs

type PlaylistResponse struct {
	Items []playlist.Entry `json:"items"`
}

type AddPlaylistRequest struct {
	ID          int64           `json:"id"`
	MediaType   media.MediaType `json:"media_type"`
	Title       string          `json:"title"`
	PosterPath  string          `json:"poster_path"`
	ReleaseDate string          `json:"release_date"`
	VoteAverage float64         `json:"vote_average"`
}

type AddPlaylistResponse struct {
	Added bool           `json:"added"`
	Entry playlist.Entry `json:"entry"`
}

// Listing DTOs

type ListingResponse struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	Clear      bool         `json:"clear"`
	Page       int          `json:"page"`
	TotalPages int          `json:"total_pages"`
	HasMore    bool         `json:"has_more"`
	Results    []media.Item `json:"results"`
}

// Chat DTOs

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply     []string `json:"reply"`
	LiveAgent bool     `json:"live_agent"`
	Rule      string   `json:"rule"`
}

type BookingResponse struct {
	Booking *storage.Booking `json:"booking"`
}

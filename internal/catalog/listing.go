// Package catalog defines the browsable listings and the controller that
// pages through them.
package catalog

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gosimple/slug"

	"cinewatch/internal/media"
)

var ErrUnknownListing = errors.New("unknown listing")

// Listing is the configuration value one Controller pages through.
type Listing struct {
	Key        string
	Title      string
	Endpoint   string // path, optionally with a fixed query
	MediaType  media.MediaType
	Filterable bool
}

// Split returns the endpoint path and its fixed query params.
func (l Listing) Split() (string, url.Values) {
	path, rawQuery, _ := strings.Cut(l.Endpoint, "?")
	params, err := url.ParseQuery(rawQuery)
	if err != nil {
		params = url.Values{}
	}
	return path, params
}

// SessionKey identifies the listing among a visitor's controllers. Every
// category listing shares one Key, so the endpoint is part of it.
func (l Listing) SessionKey() string {
	return l.Key + "|" + l.Endpoint
}

// ResolveParams are the query keys Resolve reads besides the filters.
var ResolveParams = []string{"name", "endpoint", "categoryName", "mediaType"}

var builtins = []Listing{
	{Key: "popular-movies", Title: "Popular Movies", Endpoint: "/movie/popular", MediaType: media.Movie},
	{Key: "top-rated-movies", Title: "Top Rated Movies", Endpoint: "/movie/top_rated", MediaType: media.Movie},
	{Key: "upcoming-movies", Title: "Upcoming Movies", Endpoint: "/movie/upcoming", MediaType: media.Movie},
	{Key: "now-playing-movies", Title: "Now Playing", Endpoint: "/movie/now_playing", MediaType: media.Movie},
	{Key: "discover-movies", Title: "Discover Movies", Endpoint: "/discover/movie", MediaType: media.Movie, Filterable: true},
	{Key: "popular-tv", Title: "Popular TV Shows", Endpoint: "/tv/popular", MediaType: media.TV},
	{Key: "top-rated-tv", Title: "Top Rated TV Shows", Endpoint: "/tv/top_rated", MediaType: media.TV},
	{Key: "on-the-air-tv", Title: "On The Air", Endpoint: "/tv/on_the_air", MediaType: media.TV},
	{Key: "airing-today-tv", Title: "Airing Today", Endpoint: "/tv/airing_today", MediaType: media.TV},
	{Key: "discover-tv", Title: "Discover TV Shows", Endpoint: "/discover/tv", MediaType: media.TV, Filterable: true},
	{Key: "trending-today", Title: "Trending Today", Endpoint: "/trending/all/day"},
	{Key: "trending-movies", Title: "Trending Movies", Endpoint: "/trending/movie/week", MediaType: media.Movie},
	{Key: "trending-tv", Title: "Trending TV Shows", Endpoint: "/trending/tv/week", MediaType: media.TV},
}

type Registry struct {
	bySlug map[string]Listing
}

func NewRegistry() *Registry {
	r := &Registry{bySlug: make(map[string]Listing, len(builtins))}
	for _, l := range builtins {
		r.bySlug[l.Key] = l
	}
	return r
}

func (r *Registry) Lookup(slug string) (Listing, error) {
	l, ok := r.bySlug[slug]
	if !ok {
		return Listing{}, fmt.Errorf("%w: %q", ErrUnknownListing, slug)
	}
	return l, nil
}

// All returns the built-in listings in declaration order.
func (r *Registry) All() []Listing {
	out := make([]Listing, len(builtins))
	copy(out, builtins)
	return out
}

// Resolve maps a listing key back onto a Listing. Built-in slugs, genre
// keys and network keys resolve from the key alone; category listings
// carry their endpoint in q.
func (r *Registry) Resolve(key string, q url.Values) (Listing, error) {
	if l, err := r.Lookup(key); err == nil {
		return l, nil
	}

	parts := strings.Split(key, "-")
	switch {
	case len(parts) == 3 && parts[0] == "genre":
		t, ok := media.ParseMediaType(parts[1])
		id, err := strconv.Atoi(parts[2])
		if !ok || t == media.Person || err != nil {
			break
		}
		return Genre(id, q.Get("name"), t), nil
	case len(parts) == 2 && parts[0] == "network":
		id, err := strconv.Atoi(parts[1])
		if err != nil {
			break
		}
		return Network(id, q.Get("name")), nil
	case key == "category":
		t, _ := media.ParseMediaType(q.Get("mediaType"))
		return Category(q.Get("endpoint"), q.Get("categoryName"), t)
	}

	return Listing{}, fmt.Errorf("%w: %q", ErrUnknownListing, key)
}

// Genre is the discover listing for one genre.
func Genre(id int, name string, t media.MediaType) Listing {
	title := name
	if title == "" {
		title = "Genre"
	}
	if t == media.TV {
		title += " TV Shows"
	} else {
		title += " Movies"
	}
	return Listing{
		Key:        fmt.Sprintf("genre-%s-%d", t, id),
		Title:      title,
		Endpoint:   fmt.Sprintf("/discover/%s?with_genres=%d", t, id),
		MediaType:  t,
		Filterable: true,
	}
}

// Network is the discover listing for shows on one network.
func Network(id int, name string) Listing {
	if name == "" {
		name = "Network"
	}
	return Listing{
		Key:        fmt.Sprintf("network-%d", id),
		Title:      name,
		Endpoint:   fmt.Sprintf("/discover/tv?with_networks=%d", id),
		MediaType:  media.TV,
		Filterable: true,
	}
}

// Category builds a listing from the endpoint and title carried in a
// /category URL. The endpoint must be an absolute API path.
func Category(endpoint, title string, t media.MediaType) (Listing, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" || !strings.HasPrefix(endpoint, "/") || strings.Contains(endpoint, "://") {
		return Listing{}, fmt.Errorf("%w: invalid endpoint %q", ErrUnknownListing, endpoint)
	}
	if title == "" {
		title = "Category"
	}
	return Listing{
		Key:        "category",
		Title:      title,
		Endpoint:   endpoint,
		MediaType:  t,
		Filterable: strings.HasPrefix(endpoint, "/discover/"),
	}, nil
}

// TrailerFilter is one tab of the trailers page.
type TrailerFilter struct {
	Key   string
	Title string
}

// TrailerFilters are the trailer tabs in display order. on_the_air is a TV
// list, the rest are movie lists.
var TrailerFilters = []TrailerFilter{
	{"popular", "Popular"},
	{"upcoming", "Upcoming"},
	{"now_playing", "Now Playing"},
	{"on_the_air", "On The Air"},
}

// Trailers returns the listing behind a trailers tab.
func Trailers(filter string) (Listing, error) {
	for _, f := range TrailerFilters {
		if f.Key != filter {
			continue
		}
		l := Listing{
			Key:       "trailers-" + f.Key,
			Title:     f.Title + " Trailers",
			Endpoint:  "/movie/" + f.Key,
			MediaType: media.Movie,
		}
		if f.Key == "on_the_air" {
			l.Endpoint = "/tv/" + f.Key
			l.MediaType = media.TV
		}
		return l, nil
	}
	return Listing{}, fmt.Errorf("%w: trailer filter %q", ErrUnknownListing, filter)
}

// GenrePath returns the page URL for a genre, e.g. /genres/movie/28-action.
func GenrePath(t media.MediaType, id int, name string) string {
	return fmt.Sprintf("/genres/%s/%d-%s", t, id, slug.Make(name))
}

// NetworkPath returns the page URL for a network, e.g. /networks/213-netflix.
func NetworkPath(id int, name string) string {
	return fmt.Sprintf("/networks/%d-%s", id, slug.Make(name))
}

// ParseIDSlug splits "28-action" into 28 and "action". The slug part is
// optional.
func ParseIDSlug(s string) (int, string, error) {
	idPart, rest, _ := strings.Cut(s, "-")
	id, err := strconv.Atoi(idPart)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("invalid id %q", idPart)
	}
	return id, rest, nil
}

// Unslug turns "science-fiction" back into a display name.
func Unslug(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// NetworkRef names a network offered on the networks page.
type NetworkRef struct {
	ID   int
	Name string
}

// KnownNetworks are the networks listed on the networks page.
var KnownNetworks = []NetworkRef{
	{213, "Netflix"},
	{49, "HBO"},
	{2739, "Disney+"},
	{1024, "Prime Video"},
	{2552, "Apple TV+"},
	{453, "Hulu"},
	{4, "BBC One"},
	{174, "AMC"},
	{67, "Showtime"},
	{6, "NBC"},
}

package catalog

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"cinewatch/internal/media"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	l, err := r.Lookup("top-rated-tv")
	if err != nil {
		t.Fatal(err)
	}
	if l.Endpoint != "/tv/top_rated" || l.MediaType != media.TV {
		t.Errorf("listing = %+v", l)
	}
	if _, err := r.Lookup("nope"); !errors.Is(err, ErrUnknownListing) {
		t.Errorf("err = %v, want ErrUnknownListing", err)
	}
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()
	tests := []struct {
		key      string
		q        url.Values
		endpoint string
		wantErr  bool
	}{
		{"popular-movies", nil, "/movie/popular", false},
		{"genre-tv-16", url.Values{"name": {"Animation"}}, "/discover/tv?with_genres=16", false},
		{"network-213", nil, "/discover/tv?with_networks=213", false},
		{"category", url.Values{"endpoint": {"/movie/upcoming"}, "mediaType": {"movie"}}, "/movie/upcoming", false},
		{"category", url.Values{"endpoint": {"https://evil.example/x"}}, "", true},
		{"genre-person-1", nil, "", true},
		{"network-x", nil, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			l, err := r.Resolve(tt.key, tt.q)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && l.Endpoint != tt.endpoint {
				t.Errorf("endpoint = %q, want %q", l.Endpoint, tt.endpoint)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	if got := GenrePath(media.Movie, 878, "Science Fiction"); got != "/genres/movie/878-science-fiction" {
		t.Errorf("GenrePath = %q", got)
	}
	if got := NetworkPath(213, "Netflix"); got != "/networks/213-netflix" {
		t.Errorf("NetworkPath = %q", got)
	}

	id, rest, err := ParseIDSlug("878-science-fiction")
	if err != nil || id != 878 || rest != "science-fiction" {
		t.Errorf("ParseIDSlug = %d, %q, %v", id, rest, err)
	}
	if Unslug(rest) != "Science Fiction" {
		t.Errorf("Unslug = %q", Unslug(rest))
	}
	if _, _, err := ParseIDSlug("abc"); err == nil {
		t.Error("expected error for non-numeric id")
	}
}

func TestFiltersParams(t *testing.T) {
	f := ParseFilters(url.Values{
		"sort":     {"vote_average.desc"},
		"year":     {"1999"},
		"language": {"en"},
		"country":  {""},
		"network":  {"213"},
	})

	movie := f.Params(media.Movie)
	if movie.Get("primary_release_year") != "1999" || movie.Has("first_air_date_year") {
		t.Errorf("movie params = %v", movie)
	}
	if movie.Has("with_origin_country") || movie.Has("with_networks") {
		t.Errorf("empty or tv-only params leaked: %v", movie)
	}

	tv := f.Params(media.TV)
	if tv.Get("first_air_date_year") != "1999" || tv.Get("with_networks") != "213" {
		t.Errorf("tv params = %v", tv)
	}

	if ParseFilters(url.Values{"year": {"abc"}}).Year != "" {
		t.Error("non-numeric year should be dropped")
	}
	if !ParseFilters(url.Values{}).IsZero() {
		t.Error("empty query should give zero filters")
	}
	if got := f.Query().Get("year"); got != "1999" {
		t.Errorf("Query year = %q", got)
	}
}

func TestYears(t *testing.T) {
	years := Years(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	if years[0] != 2025 || years[len(years)-1] != OldestYear {
		t.Errorf("years span %d..%d", years[0], years[len(years)-1])
	}
}

func TestTrailers(t *testing.T) {
	tests := []struct {
		filter       string
		wantEndpoint string
		wantType     media.MediaType
	}{
		{"popular", "/movie/popular", media.Movie},
		{"upcoming", "/movie/upcoming", media.Movie},
		{"now_playing", "/movie/now_playing", media.Movie},
		{"on_the_air", "/tv/on_the_air", media.TV},
	}
	for _, tt := range tests {
		l, err := Trailers(tt.filter)
		if err != nil {
			t.Errorf("Trailers(%q): %v", tt.filter, err)
			continue
		}
		if l.Endpoint != tt.wantEndpoint || l.MediaType != tt.wantType || l.Filterable {
			t.Errorf("Trailers(%q) = %+v", tt.filter, l)
		}
	}

	for _, bad := range []string{"", "top_rated", "../person/1"} {
		if _, err := Trailers(bad); !errors.Is(err, ErrUnknownListing) {
			t.Errorf("Trailers(%q) err = %v, want ErrUnknownListing", bad, err)
		}
	}
}

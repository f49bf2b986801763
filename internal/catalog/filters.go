package catalog

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"cinewatch/internal/media"
)

// OldestYear is the earliest year offered by the year filter.
const OldestYear = 1950

// SortOptions are the sort_by values offered by the filter menu.
var SortOptions = []struct{ Value, Label string }{
	{"popularity.desc", "Most Popular"},
	{"vote_average.desc", "Highest Rated"},
	{"primary_release_date.desc", "Newest"},
	{"revenue.desc", "Highest Grossing"},
}

// Filters is the user's filter selection for a filterable listing.
type Filters struct {
	Sort     string `json:"sort,omitempty"`
	Year     string `json:"year,omitempty"`
	Country  string `json:"country,omitempty"`
	Language string `json:"language,omitempty"`
	Network  string `json:"network,omitempty"`
	Genre    string `json:"genre,omitempty"`
}

// ParseFilters reads a filter selection from query values. Only presence
// is checked; a year that is not a number is dropped.
func ParseFilters(q url.Values) Filters {
	f := Filters{
		Sort:     strings.TrimSpace(q.Get("sort")),
		Year:     strings.TrimSpace(q.Get("year")),
		Country:  strings.TrimSpace(q.Get("country")),
		Language: strings.TrimSpace(q.Get("language")),
		Network:  strings.TrimSpace(q.Get("network")),
		Genre:    strings.TrimSpace(q.Get("genre")),
	}
	if _, err := strconv.Atoi(f.Year); err != nil {
		f.Year = ""
	}
	return f
}

func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Query encodes f back into page query values.
func (f Filters) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("sort", f.Sort)
	set("year", f.Year)
	set("country", f.Country)
	set("language", f.Language)
	set("network", f.Network)
	set("genre", f.Genre)
	return q
}

// Params maps f onto discover query params for t. Empty values are omitted.
func (f Filters) Params(t media.MediaType) url.Values {
	p := url.Values{}
	set := func(k, v string) {
		if v != "" {
			p.Set(k, v)
		}
	}
	set("sort_by", f.Sort)
	if t == media.TV {
		set("first_air_date_year", f.Year)
	} else {
		set("primary_release_year", f.Year)
	}
	set("with_origin_country", f.Country)
	set("with_original_language", f.Language)
	if t == media.TV {
		set("with_networks", f.Network)
	}
	set("with_genres", f.Genre)
	return p
}

// Years lists the year filter options, newest first.
func Years(now time.Time) []int {
	years := make([]int, 0, now.Year()-OldestYear+1)
	for y := now.Year(); y >= OldestYear; y-- {
		years = append(years, y)
	}
	return years
}

package media

import (
	"strings"
)

// MediaType is the kind of record a remote result describes.
type MediaType string

const (
	Movie  MediaType = "movie"
	TV     MediaType = "tv"
	Person MediaType = "person"
)

func (m MediaType) String() string {
	return string(m)
}

// Valid reports whether m is one of the known media types.
func (m MediaType) Valid() bool {
	switch m {
	case Movie, TV, Person:
		return true
	default:
		return false
	}
}

// ParseMediaType accepts the spellings used in page URLs ("movie", "tv",
// "show", "series", "person").
func ParseMediaType(s string) (MediaType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies":
		return Movie, true
	case "tv", "show", "shows", "series":
		return TV, true
	case "person", "people":
		return Person, true
	default:
		return "", false
	}
}

// Item is a movie, show or person record as returned by the metadata API.
// Only MediaType is ever written locally (see TagType).
type Item struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	ProfilePath  string    `json:"profile_path,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	Popularity   float64   `json:"popularity,omitempty"`
	Overview     string    `json:"overview,omitempty"`
	MediaType    MediaType `json:"media_type,omitempty"`
	Character    string    `json:"character,omitempty"`
	Job          string    `json:"job,omitempty"`
}

// DisplayTitle returns title for movies and name for shows and people.
func (i Item) DisplayTitle() string {
	if i.Title != "" {
		return i.Title
	}
	return i.Name
}

// Date returns the release date or the first air date, whichever is set.
func (i Item) Date() string {
	if i.ReleaseDate != "" {
		return i.ReleaseDate
	}
	return i.FirstAirDate
}

// Year returns the four digit year of Date, or "" when unknown.
func (i Item) Year() string {
	d := i.Date()
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

// Image returns the poster path, falling back to the profile path for people.
func (i Item) Image() string {
	if i.PosterPath != "" {
		return i.PosterPath
	}
	return i.ProfilePath
}

// Page is one page of a paginated list endpoint.
type Page struct {
	Page         int    `json:"page"`
	TotalPages   int    `json:"total_pages"`
	TotalResults int    `json:"total_results"`
	Results      []Item `json:"results"`
}

// TagType sets t on every item that has no media type yet. List endpoints
// such as /movie/popular omit media_type while /trending includes it.
func TagType(items []Item, t MediaType) []Item {
	for i := range items {
		if items[i].MediaType == "" {
			items[i].MediaType = t
		}
	}
	return items
}

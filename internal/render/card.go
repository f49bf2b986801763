package render

import (
	"fmt"
	"strings"

	"cinewatch/internal/media"
)

// Placeholder is shown when an item has no artwork.
const Placeholder = "/static/img/placeholder.svg"

// Images builds artwork URLs, either through the local poster proxy or
// straight from the image CDN.
type Images struct {
	base  string
	proxy bool
}

func NewImages(cdnBase string, proxy bool) Images {
	return Images{base: strings.TrimRight(cdnBase, "/"), proxy: proxy}
}

// URL returns the URL for path at size, or "" when path is empty.
func (im Images) URL(size, path string) string {
	if path == "" {
		return ""
	}
	path = strings.TrimPrefix(path, "/")
	if im.proxy {
		return "/api/v1/posters/" + size + "/" + path
	}
	return im.base + "/" + size + "/" + path
}

func (im Images) Poster(path string) string   { return im.URL("w500", path) }
func (im Images) Backdrop(path string) string { return im.URL("original", path) }
func (im Images) Profile(path string) string  { return im.URL("w185", path) }
func (im Images) Still(path string) string    { return im.URL("w342", path) }
func (im Images) Logo(path string) string     { return im.URL("w154", path) }

// OrPlaceholder returns url, or the placeholder image when url is empty.
func OrPlaceholder(url string) string {
	if url == "" {
		return Placeholder
	}
	return url
}

// Card is the view model of one grid tile.
type Card struct {
	ID        int64
	MediaType media.MediaType
	Href      string
	PosterURL string
	Title     string
	Year      string
	Rating    string
	Subtitle  string
}

// NewCard maps one result onto a tile.
func NewCard(it media.Item, images Images) Card {
	c := Card{
		ID:        it.ID,
		MediaType: it.MediaType,
		Title:     it.DisplayTitle(),
		PosterURL: OrPlaceholder(images.Poster(it.Image())),
		Year:      Year(it.Date()),
		Rating:    Rating(it.VoteAverage),
		Subtitle:  it.Character,
	}
	if c.Title == "" {
		c.Title = "Untitled"
	}
	if it.MediaType == media.Person {
		c.Href = fmt.Sprintf("/cast?id=%d", it.ID)
		c.Year = ""
		c.Rating = ""
	} else {
		t := it.MediaType
		if t == "" {
			t = media.Movie
		}
		c.Href = fmt.Sprintf("/details?id=%d&type=%s", it.ID, t)
	}
	return c
}

// Cards maps results onto tiles, skipping records without an id.
func Cards(items []media.Item, images Images) []Card {
	cards := make([]Card, 0, len(items))
	for _, it := range items {
		if it.ID == 0 {
			continue
		}
		cards = append(cards, NewCard(it, images))
	}
	return cards
}

// Year returns the first four characters of date, or "N/A".
func Year(date string) string {
	if len(date) < 4 {
		return "N/A"
	}
	return date[:4]
}

// Rating formats a vote average to one decimal, or "N/A" when unrated.
func Rating(v float64) string {
	if v <= 0 {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", v)
}

// Grid is a block of cards. Fallback replaces the cards when the fetch
// failed or came back empty. MoreURL feeds the "load more" button, which
// is only drawn while HasMore holds.
type Grid struct {
	ID       string
	Cards    []Card
	Fallback string
	MoreURL  string
	HasMore  bool
}

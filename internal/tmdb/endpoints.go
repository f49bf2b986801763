package tmdb

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"cinewatch/internal/media"
)

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type SeasonSummary struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	PosterPath   string `json:"poster_path"`
	AirDate      string `json:"air_date"`
	Overview     string `json:"overview"`
}

type Company struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	LogoPath string `json:"logo_path"`
}

// Details is the detail record for a movie or a show.
type Details struct {
	media.Item
	Tagline             string          `json:"tagline"`
	Status              string          `json:"status"`
	VoteCount           int             `json:"vote_count"`
	Runtime             int             `json:"runtime"`
	EpisodeRunTime      []int           `json:"episode_run_time"`
	Genres              []Genre         `json:"genres"`
	IMDbID              string          `json:"imdb_id"`
	NumberOfSeasons     int             `json:"number_of_seasons"`
	NumberOfEpisodes    int             `json:"number_of_episodes"`
	Seasons             []SeasonSummary `json:"seasons"`
	Networks            []Company       `json:"networks"`
	ProductionCompanies []Company       `json:"production_companies"`
	ExternalIDs         struct {
		IMDbID string `json:"imdb_id"`
	} `json:"external_ids"`
}

// ExternalIMDbID returns the IMDb id for movies and shows alike; shows only
// carry it under external_ids.
func (d *Details) ExternalIMDbID() string {
	if d.IMDbID != "" {
		return d.IMDbID
	}
	return d.ExternalIDs.IMDbID
}

// RuntimeMinutes returns the movie runtime or the first episode runtime.
func (d *Details) RuntimeMinutes() int {
	if d.Runtime > 0 {
		return d.Runtime
	}
	if len(d.EpisodeRunTime) > 0 {
		return d.EpisodeRunTime[0]
	}
	return 0
}

type CastMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Character   string `json:"character"`
	ProfilePath string `json:"profile_path"`
	Order       int    `json:"order"`
}

type CrewMember struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Job         string `json:"job"`
	Department  string `json:"department"`
	ProfilePath string `json:"profile_path"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type Review struct {
	ID            string `json:"id"`
	Author        string `json:"author"`
	Content       string `json:"content"`
	CreatedAt     string `json:"created_at"`
	URL           string `json:"url"`
	AuthorDetails struct {
		Username   string   `json:"username"`
		AvatarPath string   `json:"avatar_path"`
		Rating     *float64 `json:"rating"`
	} `json:"author_details"`
}

type Reviews struct {
	Page         int      `json:"page"`
	TotalPages   int      `json:"total_pages"`
	TotalResults int      `json:"total_results"`
	Results      []Review `json:"results"`
}

type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type Videos struct {
	Results []Video `json:"results"`
}

type Episode struct {
	EpisodeNumber int     `json:"episode_number"`
	Name          string  `json:"name"`
	Overview      string  `json:"overview"`
	StillPath     string  `json:"still_path"`
	AirDate       string  `json:"air_date"`
	VoteAverage   float64 `json:"vote_average"`
	Runtime       int     `json:"runtime"`
}

type Season struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Overview     string    `json:"overview"`
	SeasonNumber int       `json:"season_number"`
	AirDate      string    `json:"air_date"`
	PosterPath   string    `json:"poster_path"`
	Episodes     []Episode `json:"episodes"`
}

type Person struct {
	ID                 int64   `json:"id"`
	Name               string  `json:"name"`
	Biography          string  `json:"biography"`
	Birthday           string  `json:"birthday"`
	Deathday           string  `json:"deathday"`
	PlaceOfBirth       string  `json:"place_of_birth"`
	ProfilePath        string  `json:"profile_path"`
	KnownForDepartment string  `json:"known_for_department"`
	Popularity         float64 `json:"popularity"`
}

type PersonCredits struct {
	Cast []media.Item `json:"cast"`
	Crew []media.Item `json:"crew"`
}

type Network struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	LogoPath      string `json:"logo_path"`
	Headquarters  string `json:"headquarters"`
	Homepage      string `json:"homepage"`
	OriginCountry string `json:"origin_country"`
}

type Language struct {
	Code        string `json:"iso_639_1"`
	EnglishName string `json:"english_name"`
	Name        string `json:"name"`
}

type Country struct {
	Code        string `json:"iso_3166_1"`
	EnglishName string `json:"english_name"`
}

func (c *Client) Details(ctx context.Context, t media.MediaType, id int64) *Details {
	var d Details
	params := url.Values{"append_to_response": {"external_ids"}}
	if !c.FetchInto(ctx, fmt.Sprintf("/%s/%d", t, id), params, &d) {
		return nil
	}
	if d.MediaType == "" {
		d.MediaType = t
	}
	return &d
}

func (c *Client) Credits(ctx context.Context, t media.MediaType, id int64) *Credits {
	var cr Credits
	if !c.FetchInto(ctx, fmt.Sprintf("/%s/%d/credits", t, id), nil, &cr) {
		return nil
	}
	return &cr
}

func (c *Client) Reviews(ctx context.Context, t media.MediaType, id int64, page int) *Reviews {
	var r Reviews
	if !c.FetchInto(ctx, fmt.Sprintf("/%s/%d/reviews", t, id), pageParams(page), &r) {
		return nil
	}
	return &r
}

func (c *Client) Recommendations(ctx context.Context, t media.MediaType, id int64) *media.Page {
	p := c.FetchPage(ctx, fmt.Sprintf("/%s/%d/recommendations", t, id), nil)
	if p != nil {
		media.TagType(p.Results, t)
	}
	return p
}

func (c *Client) Videos(ctx context.Context, t media.MediaType, id int64) *Videos {
	var v Videos
	if !c.FetchInto(ctx, fmt.Sprintf("/%s/%d/videos", t, id), nil, &v) {
		return nil
	}
	return &v
}

func (c *Client) Season(ctx context.Context, showID int64, number int) *Season {
	var s Season
	if !c.FetchInto(ctx, fmt.Sprintf("/tv/%d/season/%d", showID, number), nil, &s) {
		return nil
	}
	return &s
}

func (c *Client) Person(ctx context.Context, id int64) *Person {
	var p Person
	if !c.FetchInto(ctx, fmt.Sprintf("/person/%d", id), nil, &p) {
		return nil
	}
	return &p
}

func (c *Client) PersonCredits(ctx context.Context, id int64) *PersonCredits {
	var pc PersonCredits
	if !c.FetchInto(ctx, fmt.Sprintf("/person/%d/combined_credits", id), nil, &pc) {
		return nil
	}
	return &pc
}

func (c *Client) Network(ctx context.Context, id int) *Network {
	var n Network
	if !c.FetchInto(ctx, fmt.Sprintf("/network/%d", id), nil, &n) {
		return nil
	}
	return &n
}

// Genres returns the genre list for movies or shows, nil on failure.
func (c *Client) Genres(ctx context.Context, t media.MediaType) []Genre {
	var resp struct {
		Genres []Genre `json:"genres"`
	}
	if !c.FetchInto(ctx, fmt.Sprintf("/genre/%s/list", t), nil, &resp) {
		return nil
	}
	return resp.Genres
}

// Languages returns the configured languages sorted by English name.
func (c *Client) Languages(ctx context.Context) []Language {
	var langs []Language
	if !c.FetchInto(ctx, "/configuration/languages", nil, &langs) {
		return nil
	}
	SortLanguages(langs)
	return langs
}

// Countries returns the configured countries sorted by English name.
func (c *Client) Countries(ctx context.Context) []Country {
	var countries []Country
	if !c.FetchInto(ctx, "/configuration/countries", nil, &countries) {
		return nil
	}
	SortCountries(countries)
	return countries
}

// Trending fetches /trending/{type}/{window}; t may be "all".
func (c *Client) Trending(ctx context.Context, t string, window string) *media.Page {
	return c.FetchPage(ctx, fmt.Sprintf("/trending/%s/%s", t, window), nil)
}

// Search runs a multi search across movies, shows and people.
func (c *Client) Search(ctx context.Context, query string, page int) *media.Page {
	params := pageParams(page)
	params.Set("query", query)
	params.Set("include_adult", "false")
	return c.FetchPage(ctx, "/search/multi", params)
}

func pageParams(page int) url.Values {
	params := url.Values{}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	return params
}

package web

import (
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"cinewatch/internal/catalog"
	"cinewatch/internal/omdb"
	"cinewatch/internal/render"
	"cinewatch/internal/session"
	"cinewatch/internal/storage"
	"cinewatch/internal/support"
	"cinewatch/internal/tmdb"
)

const discoverPages = 3

var stubs = map[string]string{
	"/trending/all/day": `{"page":1,"total_pages":1,"results":[
		{"id":550,"title":"Fight Club","media_type":"movie","backdrop_path":"/fc-backdrop.jpg","poster_path":"/fc.jpg","release_date":"1999-10-15","vote_average":8.4,"overview":"An insomniac office worker."},
		{"id":1396,"name":"Breaking Bad","media_type":"tv","first_air_date":"2008-01-20","vote_average":8.9}]}`,
	"/movie/popular": `{"page":1,"total_pages":2,"results":[{"id":550,"title":"Fight Club"},{"id":680,"title":"Pulp Fiction"}]}`,
	"/movie/550": `{"id":550,"title":"Fight Club","tagline":"Mischief. Mayhem. Soap.","overview":"An insomniac office worker.",
		"poster_path":"/fc.jpg","backdrop_path":"/fc-backdrop.jpg","release_date":"1999-10-15","vote_average":8.433,"runtime":139,
		"status":"Released","imdb_id":"tt0137523","genres":[{"id":18,"name":"Drama"}]}`,
	"/movie/550/credits": `{"cast":[
		{"id":819,"name":"Edward Norton","character":"The Narrator","order":0},
		{"id":287,"name":"Brad Pitt","character":"Tyler Durden","order":1}]}`,
	"/movie/550/reviews": `{"page":1,"total_pages":1,"results":[
		{"author":"a","content":"one","created_at":"2020-01-01T00:00:00Z"},
		{"author":"b","content":"two","created_at":"2020-01-02T00:00:00Z"},
		{"author":"c","content":"three","created_at":"2020-01-03T00:00:00Z"},
		{"author":"d","content":"four","created_at":"2020-01-04T00:00:00Z"}]}`,
	"/movie/550/recommendations": `{"page":1,"total_pages":1,"results":[{"id":680,"title":"Pulp Fiction"}]}`,
	"/movie/550/videos": `{"results":[{"key":"qtRKdVHc-cE","site":"YouTube","type":"Trailer"}]}`,
	"/movie/now_playing": `{"page":1,"total_pages":1,"results":[{"id":77,"title":"Memento"}]}`,
	"/person/287": `{"id":287,"name":"Brad Pitt","biography":"An actor.","known_for_department":"Acting"}`,
	"/person/287/combined_credits": `{"cast":[
		{"id":550,"title":"Fight Club","media_type":"movie","popularity":10},
		{"id":1399,"name":"Game of Thrones","media_type":"tv","popularity":90},
		{"id":550,"title":"Fight Club","media_type":"movie","popularity":10}]}`,
	"/configuration/languages": `[{"iso_639_1":"fr","english_name":"French"},{"iso_639_1":"en","english_name":"English"}]`,
	"/configuration/countries": `[{"iso_3166_1":"US","english_name":"United States of America"},{"iso_3166_1":"KE","english_name":"Kenya"}]`,
	"/genre/movie/list":        `{"genres":[{"id":28,"name":"Action"},{"id":18,"name":"Drama"}]}`,
	"/search/multi": `{"page":1,"total_pages":1,"results":[
		{"id":550,"title":"Fight Club","media_type":"movie"},
		{"id":287,"name":"Brad Pitt","media_type":"person"},
		{"id":9,"name":"Some Collection","media_type":"collection"}]}`,
}

// fakeTMDB serves the stubs plus a three page /discover/movie listing,
// recording every request.
type fakeTMDB struct {
	mu       sync.Mutex
	requests []*url.URL
}

func (f *fakeTMDB) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests = append(f.requests, r.URL)
	f.mu.Unlock()

	if r.URL.Path == "/discover/movie" {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if page == 0 {
			page = 1
		}
		fmt.Fprintf(w, `{"page":%d,"total_pages":%d,"results":[{"id":%d,"title":"A"},{"id":%d,"title":"B"}]}`,
			page, discoverPages, page*10+1, page*10+2)
		return
	}
	body, ok := stubs[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Write([]byte(body))
}

func (f *fakeTMDB) find(path string) []*url.URL {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*url.URL
	for _, u := range f.requests {
		if u.Path == path {
			out = append(out, u)
		}
	}
	return out
}

type env struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
	store  *storage.Storage
	tmdb   *fakeTMDB
}

func newEnv(t *testing.T) *env {
	t.Helper()
	nop := zerolog.Nop()

	fake := &fakeTMDB{}
	api := httptest.NewServer(fake)
	t.Cleanup(api.Close)

	ratings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("i") != "tt0137523" {
			w.Write([]byte(`{"Response":"False","Error":"Incorrect IMDb ID."}`))
			return
		}
		w.Write([]byte(`{"Title":"Fight Club","Rated":"R","Response":"True",
			"Ratings":[{"Source":"Internet Movie Database","Value":"8.8/10"},{"Source":"Metacritic","Value":"67/100"}]}`))
	}))
	t.Cleanup(ratings.Close)

	store, err := storage.Open(storage.DriverSQLite, filepath.Join(t.TempDir(), "web.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	data, err := support.Load("")
	if err != nil {
		t.Fatal(err)
	}
	renderer, err := render.New(nop)
	if err != nil {
		t.Fatal(err)
	}

	h := NewHandler(Options{
		TMDB:     tmdb.NewClient(tmdb.Options{BaseURL: api.URL, APIKey: "k", Timeout: 5 * time.Second}, nop),
		OMDB:     omdb.NewClient(ratings.URL, "k", 5*time.Second, nop),
		Data:     data,
		Store:    store,
		Images:   render.NewImages("https://image.test/t/p", false),
		Renderer: renderer,
	}, nop)
	h.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

	r := chi.NewRouter()
	r.Use(session.Middleware(session.NewRegistry(100, time.Hour), nop))
	h.Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, _ := cookiejar.New(nil)
	return &env{t: t, srv: srv, client: &http.Client{Jar: jar}, store: store, tmdb: fake}
}

func (e *env) do(req *http.Request) (*http.Response, *goquery.Document) {
	e.t.Helper()
	resp, err := e.client.Do(req)
	if err != nil {
		e.t.Fatal(err)
	}
	defer resp.Body.Close()
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		e.t.Fatal(err)
	}
	return resp, doc
}

func (e *env) get(path string) (*http.Response, *goquery.Document) {
	e.t.Helper()
	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+path, nil)
	return e.do(req)
}

func (e *env) post(path string, form url.Values) (*http.Response, *goquery.Document) {
	e.t.Helper()
	req, _ := http.NewRequest(http.MethodPost, e.srv.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(req)
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}

func TestHomeRendersHeroAndFallbacks(t *testing.T) {
	e := newEnv(t)
	resp, doc := e.get("/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if got := text(doc.Find("[data-hero] h1")); got != "Fight Club" {
		t.Errorf("hero title = %q", got)
	}
	style, _ := doc.Find("[data-hero]").Attr("style")
	if !strings.Contains(style, "original/fc-backdrop.jpg") {
		t.Errorf("hero style = %q, want backdrop", style)
	}

	carousels := doc.Find("[data-carousel]")
	if carousels.Length() != len(homeListings)+len(homeGenres) {
		t.Errorf("carousels = %d", carousels.Length())
	}
	// popular movies is stubbed, popular tv is not
	if n := carousels.Eq(1).Find("[data-card]").Length(); n != 2 {
		t.Errorf("popular movies cards = %d, want 2", n)
	}
	if got := text(carousels.Eq(2).Find("[data-fallback]")); got != msgUnavailable {
		t.Errorf("popular tv fallback = %q", got)
	}
}

func TestDetailsInvalidParams(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		path string
		want string
	}{
		{"/details?type=movie", "Invalid or missing ID."},
		{"/details?id=abc&type=movie", "Invalid or missing ID."},
		{"/details?id=550", "Invalid or missing media type."},
		{"/details?id=550&type=person", "Invalid or missing media type."},
	}
	for _, tt := range tests {
		resp, doc := e.get(tt.path)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tt.path, resp.StatusCode)
		}
		if got := text(doc.Find("[data-error]")); got != tt.want {
			t.Errorf("%s: error = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestDetailsUnavailable(t *testing.T) {
	e := newEnv(t)
	resp, doc := e.get("/details?id=404&type=movie")
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
	if got := text(doc.Find("[data-error]")); got != msgUnavailable {
		t.Errorf("error = %q", got)
	}
}

func TestDetails(t *testing.T) {
	e := newEnv(t)
	resp, doc := e.get("/details?id=550&type=movie")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if got := text(doc.Find(".details-info h1")); !strings.HasPrefix(got, "Fight Club") {
		t.Errorf("title = %q", got)
	}
	if n := doc.Find("[data-cast] [data-card]").Length(); n != 2 {
		t.Errorf("cast cards = %d, want 2", n)
	}
	if href, _ := doc.Find("[data-cast] [data-card] a").First().Attr("href"); href != "/cast?id=819" {
		t.Errorf("cast href = %q", href)
	}
	if n := doc.Find("[data-reviews] [data-review]").Length(); n != previewReviews {
		t.Errorf("reviews = %d, want %d", n, previewReviews)
	}
	if key, _ := doc.Find("[data-trailer]").Attr("data-trailer"); key != "qtRKdVHc-cE" {
		t.Errorf("trailer = %q", key)
	}
	if !strings.Contains(text(doc.Find("[data-ratings]")), "8.8/10") {
		t.Errorf("ratings = %q", text(doc.Find("[data-ratings]")))
	}
	if got := text(doc.Find("[data-playlist-toggle]")); got != "Add to Playlist" {
		t.Errorf("playlist toggle = %q", got)
	}
	if doc.Find("[data-tickets] a").Length() == 0 {
		t.Error("no ticket links for a movie")
	}
	if got := e.tmdb.find("/movie/550"); len(got) == 0 || got[0].Query().Get("append_to_response") != "external_ids" {
		t.Errorf("details request = %v", got)
	}
}

func TestPlaylistFlow(t *testing.T) {
	e := newEnv(t)
	add := url.Values{
		"id":     {"550"},
		"type":   {"movie"},
		"title":  {"Fight Club"},
		"return": {"/details?id=550&type=movie"},
	}

	resp, doc := e.post("/playlist/add", add)
	if resp.Request.URL.Path != "/details" {
		t.Errorf("redirected to %s, want /details", resp.Request.URL.Path)
	}
	if got := text(doc.Find("[data-playlist-toggle]")); got != "Remove from Playlist" {
		t.Errorf("playlist toggle after add = %q", got)
	}

	e.post("/playlist/add", add)
	_, doc = e.get("/playlist")
	if n := doc.Find("[data-playlist-item]").Length(); n != 1 {
		t.Fatalf("playlist items = %d, want 1", n)
	}
	if got := text(doc.Find("[data-playlist-item] .card-title")); got != "Fight Club" {
		t.Errorf("playlist title = %q", got)
	}

	_, doc = e.post("/playlist/remove", url.Values{"id": {"550"}, "type": {"movie"}})
	if n := doc.Find("[data-playlist-item]").Length(); n != 0 {
		t.Errorf("playlist items after remove = %d, want 0", n)
	}
	if doc.Find("[data-fallback]").Length() != 1 {
		t.Error("empty playlist message missing")
	}
}

func TestPlaylistRejectsInvalidEntry(t *testing.T) {
	e := newEnv(t)
	resp, _ := e.post("/playlist/add", url.Values{"id": {"0"}, "type": {"movie"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestPlaylistRedirectStaysLocal(t *testing.T) {
	if got := localPath("https://evil.example/", "/playlist"); got != "/playlist" {
		t.Errorf("localPath(absolute) = %q", got)
	}
	if got := localPath("//evil.example/", "/playlist"); got != "/playlist" {
		t.Errorf("localPath(scheme-relative) = %q", got)
	}
	if got := localPath("/details?id=1&type=tv", "/playlist"); got != "/details?id=1&type=tv" {
		t.Errorf("localPath(local) = %q", got)
	}
}

func TestListingFiltersAndLoadMore(t *testing.T) {
	e := newEnv(t)
	resp, doc := e.get("/browse/discover-movies?year=2020&sort=vote_average.desc")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	if n := doc.Find("#listing [data-card]").Length(); n != 2 {
		t.Errorf("cards = %d, want 2", n)
	}
	if v, _ := doc.Find(`select[name=year] option[selected]`).Attr("value"); v != "2020" {
		t.Errorf("selected year = %q", v)
	}
	if n := doc.Find(`select[name=language] option`).Length(); n != 3 {
		t.Errorf("language options = %d, want 3", n)
	}
	if first := text(doc.Find(`select[name=language] option`).Eq(1)); first != "English" {
		t.Errorf("languages not sorted, first = %q", first)
	}
	if n := doc.Find(`select[name=genre] option`).Length(); n != 3 {
		t.Errorf("genre options = %d, want 3", n)
	}

	reqs := e.tmdb.find("/discover/movie")
	if len(reqs) != 1 {
		t.Fatalf("discover requests = %d", len(reqs))
	}
	if q := reqs[0].Query(); q.Get("primary_release_year") != "2020" || q.Get("sort_by") != "vote_average.desc" || q.Has("page") {
		t.Errorf("discover query = %v", q)
	}

	more, ok := doc.Find("[data-load-more]").Attr("data-more-url")
	if !ok {
		t.Fatal("load more button missing")
	}

	for page := 2; page <= discoverPages; page++ {
		req, _ := http.NewRequest(http.MethodGet, e.srv.URL+more, nil)
		resp, frag := e.do(req)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("page %d: status = %d", page, resp.StatusCode)
		}
		if n := frag.Find("[data-card]").Length(); n != 2 {
			t.Errorf("page %d: cards = %d", page, n)
		}
		wantMore := strconv.FormatBool(page < discoverPages)
		if got := resp.Header.Get("X-Has-More"); got != wantMore {
			t.Errorf("page %d: X-Has-More = %q, want %q", page, got, wantMore)
		}
		if page < discoverPages {
			more = resp.Header.Get("X-Next-URL")
		}
	}

	req, _ := http.NewRequest(http.MethodGet, e.srv.URL+more, nil)
	resp, _ = e.do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("after last page: status = %d, want 204", resp.StatusCode)
	}

	reqs = e.tmdb.find("/discover/movie")
	if len(reqs) != discoverPages {
		t.Errorf("discover requests = %d, want %d", len(reqs), discoverPages)
	}
	if last := reqs[len(reqs)-1].Query(); last.Get("page") != "3" || last.Get("primary_release_year") != "2020" {
		t.Errorf("last discover query = %v", last)
	}
}

func TestMoreRestoresWithoutSession(t *testing.T) {
	e := newEnv(t)
	resp, doc := e.get("/listings/discover-movies/more?page=1&total=3&year=1999")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := doc.Find("[data-card]").Length(); n != 2 {
		t.Errorf("cards = %d", n)
	}
	reqs := e.tmdb.find("/discover/movie")
	if len(reqs) != 1 || reqs[0].Query().Get("page") != "2" || reqs[0].Query().Get("primary_release_year") != "1999" {
		t.Errorf("discover requests = %v", reqs)
	}

	resp, _ = e.get("/listings/nope/more?page=1&total=3")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown listing status = %d", resp.StatusCode)
	}
}

func TestGenrePage(t *testing.T) {
	e := newEnv(t)
	resp, doc := e.get("/genres/movie/28-action")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := text(doc.Find("h1.page-title")); got != "Action Movies" {
		t.Errorf("title = %q", got)
	}
	reqs := e.tmdb.find("/discover/movie")
	if len(reqs) != 1 || reqs[0].Query().Get("with_genres") != "28" {
		t.Errorf("discover requests = %v", reqs)
	}

	resp, _ = e.get("/genres/person/28-action")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("person genre status = %d", resp.StatusCode)
	}
}

func TestCategoryPage(t *testing.T) {
	e := newEnv(t)
	resp, doc := e.get("/category?endpoint=/movie/popular&categoryName=Popular&mediaType=movie")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := doc.Find("#listing [data-card]").Length(); n != 2 {
		t.Errorf("cards = %d", n)
	}
	more, _ := doc.Find("[data-load-more]").Attr("data-more-url")
	if !strings.Contains(more, "endpoint=%2Fmovie%2Fpopular") {
		t.Errorf("more url = %q, want endpoint carried", more)
	}

	resp, _ = e.get("/category?endpoint=https://evil.example/x")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad endpoint status = %d", resp.StatusCode)
	}
}

func TestCastPage(t *testing.T) {
	e := newEnv(t)
	_, doc := e.get("/cast?id=287")
	if got := text(doc.Find("[data-person] h1")); got != "Brad Pitt" {
		t.Errorf("name = %q", got)
	}
	cards := doc.Find("[data-card]")
	if cards.Length() != 2 {
		t.Fatalf("credits = %d, want 2", cards.Length())
	}
	if got := text(cards.First().Find(".card-title")); got != "Game of Thrones" {
		t.Errorf("first credit = %q, want most popular", got)
	}
}

func TestSearch(t *testing.T) {
	e := newEnv(t)
	_, doc := e.get("/search?q=fight")
	if n := doc.Find("#search [data-card]").Length(); n != 2 {
		t.Errorf("results = %d, want 2", n)
	}
	if v, _ := doc.Find("header input[name=q]").Attr("value"); v != "fight" {
		t.Errorf("search box value = %q", v)
	}

	_, doc = e.get("/search")
	if doc.Find("[data-fallback]").Length() != 1 {
		t.Error("empty search prompt missing")
	}
}

func TestCinemaGuideFilters(t *testing.T) {
	e := newEnv(t)
	_, doc := e.get("/cinema-guide?country=Kenya&city=Nairobi")
	halls := doc.Find("[data-hall]")
	if halls.Length() != 2 {
		t.Errorf("halls = %d, want 2", halls.Length())
	}
	if id, _ := halls.First().Attr("data-hall"); id != "imax-nairobi" {
		t.Errorf("first hall = %q", id)
	}
	if doc.Find(`select[name=city]`).Length() != 1 {
		t.Error("city select missing")
	}
}

func TestBuyTicketFlow(t *testing.T) {
	e := newEnv(t)
	path := "/buy-ticket?movie_id=550&cinema_id=imax-nairobi"

	_, doc := e.get(path)
	if doc.Find("[data-seat-map] input[disabled]").Length() != 4 {
		t.Errorf("occupied seats = %d, want 4", doc.Find("[data-seat-map] input[disabled]").Length())
	}

	resp, doc := e.post(path, url.Values{"action": {"next"}, "showtime": {"10:00 AM"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("no seats: status = %d", resp.StatusCode)
	}
	if got := text(doc.Find("[data-error]")); got != "Please select at least one seat." {
		t.Errorf("no seats: error = %q", got)
	}

	resp, doc = e.post(path, url.Values{"action": {"next"}, "showtime": {"10:00 AM"}, "seats": {"B1", "B2"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("seats: status = %d", resp.StatusCode)
	}
	if got := text(doc.Find("[data-total]")); got != "KES 1600" {
		t.Errorf("total after seats = %q", got)
	}

	e.post(path, url.Values{"action": {"next"}, "snack:Popcorn": {"2"}, "transport": {"Bolt"}})

	resp, doc = e.post(path, url.Values{"action": {"confirm"}, "payment": {"M-Pesa"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm: status = %d", resp.StatusCode)
	}
	id := text(doc.Find("[data-booking-id]"))
	if id == "" {
		t.Fatal("no booking id")
	}
	if !strings.Contains(text(doc.Find("[data-confirmation]")), "IMAX Nairobi") {
		t.Error("confirmation does not name the hall")
	}

	b, err := e.store.GetBooking(t.Context(), id)
	if err != nil {
		t.Fatal(err)
	}
	if b.Total != 1600+700+400 {
		t.Errorf("stored total = %d, want 2700", b.Total)
	}
}

func TestBuyTicketBadParams(t *testing.T) {
	e := newEnv(t)
	if resp, _ := e.get("/buy-ticket"); resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing movie: status = %d", resp.StatusCode)
	}
	if resp, _ := e.get("/buy-ticket?movie_id=550&cinema_id=nowhere"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown cinema: status = %d", resp.StatusCode)
	}
	_, doc := e.get("/buy-ticket?movie_id=550")
	if doc.Find("[data-halls] a").Length() == 0 {
		t.Error("hall chooser empty")
	}
}

func TestChatLiveAgent(t *testing.T) {
	e := newEnv(t)
	_, doc := e.get("/chat")
	if doc.Find(`[data-message="bot"]`).Length() != 1 {
		t.Errorf("greeting missing")
	}

	_, doc = e.post("/chat", url.Values{"message": {"I want a live agent please"}})
	if doc.Find("[data-live-agent]").Length() != 1 {
		t.Error("live agent banner missing")
	}
	if n := doc.Find(`[data-message="user"]`).Length(); n != 1 {
		t.Errorf("user messages = %d", n)
	}
}

func TestSupportTroubleWord(t *testing.T) {
	e := newEnv(t)
	_, doc := e.get("/support?q=refund")
	if !strings.Contains(text(doc.Find("[data-alert]")), "Refunds are handled") {
		t.Errorf("alert = %q", text(doc.Find("[data-alert]")))
	}

	_, doc = e.get("/support?q=playlist")
	if doc.Find("[data-faq-item]").Length() == 0 {
		t.Error("no FAQ matched playlist")
	}
}

func TestAdvertiseForm(t *testing.T) {
	e := newEnv(t)
	_, doc := e.get("/advertise")
	if doc.Find("[data-package]").Length() != 3 {
		t.Errorf("packages = %d", doc.Find("[data-package]").Length())
	}

	e.get("/advertise/form?package=Premiere")
	resp, doc := e.post("/advertise/form", url.Values{"action": {"next"}, "name": {"Ann"}, "email": {"not-an-email"}, "company": {"Acme"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad email: status = %d", resp.StatusCode)
	}
	if got := text(doc.Find("[data-error]")); got != "Please enter a valid email address." {
		t.Errorf("bad email: error = %q", got)
	}

	e.post("/advertise/form", url.Values{"action": {"next"}, "email": {"ann@example.com"}})
	e.post("/advertise/form", url.Values{"action": {"next"}, "package": {"Premiere"}, "start_date": {"2024-07-01"}, "budget": {"100000"}})
	resp, doc = e.post("/advertise/form", url.Values{"action": {"submit"}, "terms": {"1"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("submit: status = %d", resp.StatusCode)
	}
	if doc.Find("[data-confirmation]").Length() != 1 {
		t.Fatal("confirmation missing")
	}

	reqs, err := e.store.ListAdRequests(t.Context(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 1 || reqs[0].Package != "Premiere" || reqs[0].Company != "Acme" {
		t.Errorf("stored requests = %+v", reqs)
	}
}

func TestSecondaryPages(t *testing.T) {
	e := newEnv(t)
	tests := []struct {
		path string
		want int
	}{
		{"/developer", http.StatusOK},
		{"/developer/nope", http.StatusNotFound},
		{"/trailers?filter=top_rated", http.StatusBadRequest},
		{"/reviews?id=550&type=movie", http.StatusOK},
		{"/seasons?id=1396", http.StatusBadGateway}, // show not stubbed
		{"/seasons", http.StatusBadRequest},
		{"/cast?id=0", http.StatusBadRequest},
		{"/browse/nope", http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp, _ := e.get(tt.path); resp.StatusCode != tt.want {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}

	_, doc := e.get("/networks")
	if n := doc.Find("[data-network]").Length(); n != len(catalog.KnownNetworks) {
		t.Errorf("networks = %d", n)
	}
	if href, _ := doc.Find("[data-network]").First().Attr("href"); href != "/networks/213-netflix" {
		t.Errorf("first network href = %q", href)
	}
}

func TestTrailersPage(t *testing.T) {
	e := newEnv(t)

	resp, doc := e.get("/trailers")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n := doc.Find("[data-trailer-tabs] a").Length(); n != len(catalog.TrailerFilters) {
		t.Errorf("tabs = %d", n)
	}
	if active, _ := doc.Find("[data-trailer-tabs] a.active").Attr("data-filter"); active != "popular" {
		t.Errorf("active tab = %q, want popular", active)
	}

	// only Fight Club of the two popular titles has a trailer
	cards := doc.Find("[data-trailers] [data-trailer]")
	if cards.Length() != 1 {
		t.Fatalf("trailer cards = %d, want 1", cards.Length())
	}
	if key, _ := cards.Attr("data-trailer"); key != "qtRKdVHc-cE" {
		t.Errorf("trailer key = %q", key)
	}
	if src, _ := cards.Find("img").Attr("src"); src != "https://img.youtube.com/vi/qtRKdVHc-cE/hqdefault.jpg" {
		t.Errorf("thumbnail = %q", src)
	}
	if got := text(cards.Find("h4")); got != "Fight Club" {
		t.Errorf("title = %q", got)
	}
	if doc.Find("[data-trailer-modal]").Length() != 1 {
		t.Error("player modal missing")
	}
	if len(e.tmdb.find("/movie/680/videos")) != 1 {
		t.Error("videos of every listed title should be fetched")
	}

	_, doc = e.get("/trailers?filter=now_playing")
	if got := text(doc.Find("[data-fallback]")); got != "No trailers found for this category." {
		t.Errorf("no trailers fallback = %q", got)
	}

	_, doc = e.get("/trailers?filter=on_the_air")
	if got := text(doc.Find("[data-fallback]")); got != msgUnavailable {
		t.Errorf("unavailable fallback = %q", got)
	}
	if len(e.tmdb.find("/tv/on_the_air")) != 1 {
		t.Error("on_the_air should read the TV list")
	}
}

func TestProjectDetail(t *testing.T) {
	e := newEnv(t)

	_, doc := e.get("/developer")
	if href, _ := doc.Find("[data-project] h2 a").First().Attr("href"); href != "/developer/cinewatch" {
		t.Errorf("project link = %q", href)
	}

	resp, doc := e.get("/developer/cinewatch")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if got := text(doc.Find("[data-project-title]")); got != "CineWatch" {
		t.Errorf("title = %q", got)
	}
	if doc.Find("[data-features] li").Length() == 0 || doc.Find("[data-skills] li").Length() == 0 {
		t.Error("features or skills missing")
	}

	resp, doc = e.get("/developer/missing")
	if resp.StatusCode != http.StatusNotFound || !strings.Contains(doc.Text(), "Project not found.") {
		t.Errorf("missing project = %d", resp.StatusCode)
	}
}

func TestInfringementForm(t *testing.T) {
	e := newEnv(t)

	resp, doc := e.get("/infringement")
	if resp.StatusCode != http.StatusOK || doc.Find("[data-infringement-form] input[name=name]").Length() != 1 {
		t.Fatalf("step 1 not rendered: %d", resp.StatusCode)
	}

	resp, doc = e.post("/infringement", url.Values{"action": {"next"}, "name": {"Ann Owner"}, "email": {"ann@example.com"}})
	if resp.StatusCode != http.StatusOK || doc.Find("input[name=work_title]").Length() != 1 {
		t.Fatalf("step 2 not reached: %d", resp.StatusCode)
	}

	resp, doc = e.post("/infringement", url.Values{"action": {"next"}, "work_title": {"My Film"},
		"description": {"A full copy"}, "infringing_url": {"not a url"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("bad url: status = %d", resp.StatusCode)
	}
	if got := text(doc.Find("[data-error]")); got != "Please enter the full URL of the infringing material." {
		t.Errorf("bad url: error = %q", got)
	}

	e.post("/infringement", url.Values{"action": {"next"}, "infringing_url": {"https://pirate.example/my-film"}})
	resp, doc = e.post("/infringement", url.Values{"action": {"submit"}, "good_faith": {"1"}, "accurate": {"1"}, "signature": {"Ann Owner"}})
	if resp.StatusCode != http.StatusOK || doc.Find("[data-confirmation]").Length() != 1 {
		t.Fatalf("submit: status = %d", resp.StatusCode)
	}

	reports, err := e.store.ListInfringementReports(t.Context(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 || reports[0].WorkTitle != "My Film" || reports[0].InfringingURL != "https://pirate.example/my-film" {
		t.Errorf("stored reports = %+v", reports)
	}

	_, doc = e.get("/infringement")
	if doc.Find("input[name=name]").Length() != 1 {
		t.Error("a new report should start after submitting")
	}
}

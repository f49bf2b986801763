// Package render turns view models into HTML using the embedded templates.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

//go:embed templates static
var assets embed.FS

// Pages lists every page template under templates/pages.
var Pages = []string{
	"home", "listing", "details", "seasons", "episodes", "cast", "reviews",
	"networks", "search", "playlist", "cinema_guide", "buy_ticket", "support",
	"chat", "advertise", "advertise_form", "developer", "project",
	"infringement", "trailers", "error",
}

// View is what the base layout renders. Data is the page's own model.
type View struct {
	Title string
	Page  string
	Query string
	Error string
	Data  any
}

type Renderer struct {
	pages    map[string]*template.Template
	partials *template.Template
	logger   zerolog.Logger
}

func New(logger zerolog.Logger) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(Pages)),
		logger: logger.With().Str("component", "render").Logger(),
	}

	partials, err := template.New("partials").Funcs(funcs).ParseFS(assets, "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing partials: %w", err)
	}
	r.partials = partials

	for _, page := range Pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(assets,
			"templates/base.html",
			"templates/partials/*.html",
			"templates/pages/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		r.pages[page] = t
	}

	return r, nil
}

// Page renders a full page inside the base layout.
func (r *Renderer) Page(w http.ResponseWriter, status int, page string, v View) {
	t, ok := r.pages[page]
	if !ok {
		r.logger.Error().Str("page", page).Msg("unknown page template")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	v.Page = page
	r.write(w, status, t, "base", v)
}

// Fragment renders one partial on its own, e.g. the cards appended by
// "load more".
func (r *Renderer) Fragment(w http.ResponseWriter, name string, data any) {
	r.write(w, http.StatusOK, r.partials, name, data)
}

func (r *Renderer) write(w http.ResponseWriter, status int, t *template.Template, name string, data any) {
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		r.logger.Error().Err(err).Str("template", name).Msg("failed to render")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Static serves the embedded stylesheet, script and images.
func Static() http.Handler {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

var funcs = template.FuncMap{
	"add":  func(a, b int) int { return a + b },
	"join": strings.Join,
	"year": func() int { return time.Now().Year() },
	"truncate": func(s string, n int) string {
		r := []rune(s)
		if len(r) <= n {
			return s
		}
		return strings.TrimSpace(string(r[:n])) + "…"
	},
	"runtime": func(minutes int) string {
		if minutes <= 0 {
			return "N/A"
		}
		if minutes < 60 {
			return fmt.Sprintf("%dm", minutes)
		}
		return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
	},
	"kes": func(amount int) string {
		return fmt.Sprintf("KES %d", amount)
	},
	"selected": func(a, b string) bool { return a == b },
	"itoa":     func(i int) string { return fmt.Sprint(i) },
}

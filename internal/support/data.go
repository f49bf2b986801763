// Package support holds the static datasets (FAQ, cinema guide, ad
// packages, portfolio) and the support chatbot built on them.
package support

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed data/*.json
var embedded embed.FS

const (
	supportFile  = "support.json"
	guideFile    = "cinemaguide.json"
	advertFile   = "advertise.json"
	projectsFile = "projects.json"
)

type FAQ struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Keywords []string `json:"keywords"`
}

type Snack struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
	Image string `json:"image"`
}

type Showtime struct {
	Time          string   `json:"time"`
	OccupiedSeats []string `json:"occupiedSeats"`
}

// IsOccupied reports whether seat is already taken for this showtime.
func (s Showtime) IsOccupied(seat string) bool {
	for _, o := range s.OccupiedSeats {
		if o == seat {
			return true
		}
	}
	return false
}

type Hall struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	Address           string     `json:"address"`
	PaymentMethods    []string   `json:"paymentMethods"`
	TransportServices []string   `json:"transportServices"`
	Snacks            []Snack    `json:"snacks"`
	Showtimes         []Showtime `json:"showtimes"`
	MapURL            string     `json:"mapUrl"`
	WelcomeMessage    string     `json:"welcomeMessage"`
	Contact           string     `json:"contact"`
}

// Showtime returns the showtime starting at t.
func (h *Hall) Showtime(t string) (Showtime, bool) {
	for _, s := range h.Showtimes {
		if s.Time == t {
			return s, true
		}
	}
	return Showtime{}, false
}

func (h *Hall) Snack(name string) (Snack, bool) {
	for _, s := range h.Snacks {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Snack{}, false
}

func (h *Hall) AcceptsPayment(method string) bool {
	return containsFold(h.PaymentMethods, method)
}

func (h *Hall) OffersTransport(service string) bool {
	return containsFold(h.TransportServices, service)
}

type City struct {
	Name        string `json:"name"`
	CinemaHalls []Hall `json:"cinemaHalls"`
}

type Country struct {
	Country string `json:"country"`
	Cities  []City `json:"cities"`
}

// HallRef is a hall together with where it is.
type HallRef struct {
	Country string
	City    string
	Hall    *Hall
}

type AdPackage struct {
	Name        string   `json:"name"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
}

type Project struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	FullDescription string   `json:"full_description"`
	Image           string   `json:"image"`
	GithubLink      string   `json:"github_link"`
	Skills          []string `json:"skills"`
	Features        []string `json:"features"`
}

// Summary is the long description, else the short one.
func (p Project) Summary() string {
	if p.FullDescription != "" {
		return p.FullDescription
	}
	return p.Description
}

// Data is every static dataset the site serves.
type Data struct {
	FAQs         []FAQ
	TroubleWords map[string]string
	Guide        []Country
	Packages     []AdPackage
	Projects     []Project
}

// Load reads the datasets. Files found in dir override the embedded
// copies; an empty dir uses the embedded copies only.
func Load(dir string) (*Data, error) {
	var d Data

	var sup struct {
		FAQs         []FAQ             `json:"faqs"`
		TroubleWords map[string]string `json:"troubleWords"`
	}
	if err := readJSON(dir, supportFile, &sup); err != nil {
		return nil, err
	}
	d.FAQs = sup.FAQs
	d.TroubleWords = make(map[string]string, len(sup.TroubleWords))
	for k, v := range sup.TroubleWords {
		d.TroubleWords[strings.ToLower(strings.TrimSpace(k))] = v
	}

	if err := readJSON(dir, guideFile, &d.Guide); err != nil {
		return nil, err
	}

	var ads struct {
		Packages []AdPackage `json:"ads_packages"`
	}
	if err := readJSON(dir, advertFile, &ads); err != nil {
		return nil, err
	}
	d.Packages = ads.Packages

	if err := readJSON(dir, projectsFile, &d.Projects); err != nil {
		return nil, err
	}

	return &d, nil
}

func readJSON(dir, name string, v any) error {
	var (
		data []byte
		err  error
	)
	if dir != "" {
		data, err = os.ReadFile(filepath.Join(dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("reading %s: %w", name, err)
		}
	}
	if data == nil {
		data, err = embedded.ReadFile("data/" + name)
		if err != nil {
			return fmt.Errorf("reading embedded %s: %w", name, err)
		}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", name, err)
	}
	return nil
}

// Halls returns every hall in dataset order.
func (d *Data) Halls() []HallRef {
	var out []HallRef
	for ci := range d.Guide {
		country := &d.Guide[ci]
		for ti := range country.Cities {
			city := &country.Cities[ti]
			for hi := range city.CinemaHalls {
				out = append(out, HallRef{Country: country.Country, City: city.Name, Hall: &city.CinemaHalls[hi]})
			}
		}
	}
	return out
}

func (d *Data) FindHall(id string) (*Hall, bool) {
	for _, ref := range d.Halls() {
		if ref.Hall.ID == id {
			return ref.Hall, true
		}
	}
	return nil, false
}

func (d *Data) Countries() []string {
	out := make([]string, 0, len(d.Guide))
	for _, c := range d.Guide {
		out = append(out, c.Country)
	}
	sort.Strings(out)
	return out
}

// Cities lists the cities of country, or of every country when country is
// empty.
func (d *Data) Cities(country string) []string {
	var out []string
	for _, c := range d.Guide {
		if country != "" && c.Country != country {
			continue
		}
		for _, city := range c.Cities {
			out = append(out, city.Name)
		}
	}
	sort.Strings(out)
	return out
}

// FilterHalls narrows the guide by country and city; empty values match
// everything.
func (d *Data) FilterHalls(country, city string) []HallRef {
	var out []HallRef
	for _, ref := range d.Halls() {
		if country != "" && ref.Country != country {
			continue
		}
		if city != "" && ref.City != city {
			continue
		}
		out = append(out, ref)
	}
	return out
}

func (d *Data) Project(id string) (Project, bool) {
	for _, p := range d.Projects {
		if p.ID == id {
			return p, true
		}
	}
	return Project{}, false
}

// FAQResult is the outcome of an FAQ page search. Alert is set when the
// query was a trouble word; FAQs then lists everything.
type FAQResult struct {
	Alert string
	FAQs  []FAQ
}

// SearchFAQ filters the FAQ by question, answer or keyword substring.
func (d *Data) SearchFAQ(query string) FAQResult {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return FAQResult{FAQs: d.FAQs}
	}
	if msg, ok := d.TroubleWords[q]; ok {
		return FAQResult{Alert: msg, FAQs: d.FAQs}
	}

	var out []FAQ
	for _, f := range d.FAQs {
		if strings.Contains(strings.ToLower(f.Question), q) || strings.Contains(strings.ToLower(f.Answer), q) {
			out = append(out, f)
			continue
		}
		for _, k := range f.Keywords {
			if strings.Contains(strings.ToLower(k), q) {
				out = append(out, f)
				break
			}
		}
	}
	return FAQResult{FAQs: out}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

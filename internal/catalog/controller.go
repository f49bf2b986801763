package catalog

import (
	"context"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"cinewatch/internal/media"
)

var (
	// ErrExhausted means every page has been loaded; no fetch was made.
	ErrExhausted = errors.New("no more pages")
	// ErrBusy means another load for the same controller is in flight.
	ErrBusy = errors.New("load already in progress")
	// ErrSuperseded means a filter change replaced the listing while the
	// load was in flight; its results were dropped.
	ErrSuperseded = errors.New("load superseded by filter change")
)

// MaxPages is the deepest page the discover endpoints serve.
const MaxPages = 500

// Source fetches one page of a list endpoint, nil on failure.
type Source interface {
	FetchPage(ctx context.Context, endpoint string, params url.Values) *media.Page
}

// State is the pagination state of one listing.
type State struct {
	Page       int     `json:"page"`
	TotalPages int     `json:"total_pages"`
	Endpoint   string  `json:"endpoint"`
	Filters    Filters `json:"filters"`
}

// Batch is the result of one load. Clear asks the view to empty the grid
// before appending Items.
type Batch struct {
	Clear       bool
	Items       []media.Item
	Page        int
	TotalPages  int
	HasMore     bool
	Unavailable bool
}

type Controller struct {
	source  Source
	listing Listing

	mu      sync.Mutex
	state   State
	loading bool
	gen     uint64
}

// StateFromQuery reads the state carried in a "load more" URL: page,
// total and the filter keys.
func StateFromQuery(q url.Values) State {
	page, _ := strconv.Atoi(q.Get("page"))
	total, _ := strconv.Atoi(q.Get("total"))
	return State{Page: page, TotalPages: total, Filters: ParseFilters(q)}
}

// Query encodes st for a "load more" URL, the inverse of StateFromQuery.
func (st State) Query() url.Values {
	q := st.Filters.Query()
	q.Set("page", strconv.Itoa(st.Page))
	q.Set("total", strconv.Itoa(st.TotalPages))
	return q
}

func NewController(source Source, listing Listing) *Controller {
	return &Controller{
		source:  source,
		listing: listing,
		state:   State{Page: 1, Endpoint: listing.Endpoint},
	}
}

// Restore rebuilds a controller at a previously reached state.
func Restore(source Source, listing Listing, st State) *Controller {
	c := NewController(source, listing)
	if st.Page < 1 {
		st.Page = 1
	}
	if st.TotalPages > MaxPages {
		st.TotalPages = MaxPages
	}
	if st.Page > st.TotalPages && st.TotalPages > 0 {
		st.Page = st.TotalPages
	}
	st.Endpoint = listing.Endpoint
	c.state = st
	return c
}

func (c *Controller) Listing() Listing {
	return c.listing
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Apply replaces the filters and loads page 1. It always clears the grid,
// and it wins over a load that is still in flight.
func (c *Controller) Apply(ctx context.Context, f Filters) Batch {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	c.state.Filters = f
	c.state.Page = 1
	c.state.TotalPages = 0
	c.loading = true
	c.mu.Unlock()

	page := c.fetch(ctx, 1, f)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return Batch{Clear: true, Page: 1, Unavailable: page == nil}
	}
	c.loading = false
	if page == nil {
		return Batch{Clear: true, Page: 1, Unavailable: true}
	}
	c.state.TotalPages = clampTotal(page.TotalPages)
	return c.batch(page, true)
}

// LoadMore fetches the next page and appends it. It never fetches past
// TotalPages, and a failed fetch leaves the page counter where it was.
func (c *Controller) LoadMore(ctx context.Context) (Batch, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return Batch{}, ErrBusy
	}
	if c.state.Page >= c.state.TotalPages {
		c.mu.Unlock()
		return Batch{}, ErrExhausted
	}
	c.loading = true
	gen := c.gen
	next := c.state.Page + 1
	filters := c.state.Filters
	c.mu.Unlock()

	page := c.fetch(ctx, next, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return Batch{}, ErrSuperseded
	}
	c.loading = false
	if page == nil {
		return Batch{
			Page:        c.state.Page,
			TotalPages:  c.state.TotalPages,
			HasMore:     c.state.Page < c.state.TotalPages,
			Unavailable: true,
		}, nil
	}
	total := clampTotal(page.TotalPages)
	if total < next {
		// the listing is shorter than the restored state claimed
		c.state.TotalPages = max(total, c.state.Page)
		return Batch{Page: c.state.Page, TotalPages: c.state.TotalPages}, nil
	}
	c.state.Page = next
	if total < c.state.TotalPages {
		c.state.TotalPages = total
	}
	return c.batch(page, false), nil
}

func (c *Controller) fetch(ctx context.Context, page int, f Filters) *media.Page {
	endpoint, params := c.listing.Split()
	if c.listing.Filterable {
		for k, v := range f.Params(c.listing.MediaType) {
			params[k] = v
		}
	}
	if page > 1 {
		params.Set("page", strconv.Itoa(page))
	}
	return c.source.FetchPage(ctx, endpoint, params)
}

// batch must be called with mu held.
func (c *Controller) batch(page *media.Page, clear bool) Batch {
	items := page.Results
	if c.listing.MediaType != "" {
		items = media.TagType(items, c.listing.MediaType)
	}
	return Batch{
		Clear:      clear,
		Items:      items,
		Page:       c.state.Page,
		TotalPages: c.state.TotalPages,
		HasMore:    c.state.Page < c.state.TotalPages,
	}
}

func clampTotal(n int) int {
	if n > MaxPages {
		return MaxPages
	}
	if n < 0 {
		return 0
	}
	return n
}

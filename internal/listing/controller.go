// ABOUTME: Listing controller holding filter state and the request epoch
// ABOUTME: Issues headline fetches and applies only the latest one's outcome

package listing

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sawant8123/news-api-portal/internal/client"
	"github.com/sawant8123/news-api-portal/internal/session"
)

// DebounceDelay is the quiet period after the last query keystroke
const DebounceDelay = 500 * time.Millisecond

// User-visible listing messages
const (
	MsgNoSearchResults = "No articles found for your search. Try a different keyword."
	MsgNoHeadlines     = "No recent headlines available. Try selecting a different category or country."
	MsgTimedOut        = "Request timed out. Please try again."
	MsgLoadFailed      = "Failed to load news"
	MsgEmptySearch     = "Please enter a search term"
)

// Filters is the user-controlled filter state
type Filters struct {
	Query    string
	Country  string
	Category string
	ViewMode ViewMode
}

// Effect reports what Complete did with an outcome
type Effect struct {
	// Stale means the outcome was superseded and discarded
	Stale bool
	// AuthLost means the session was cleared and the user must sign in again
	AuthLost bool
}

// Controller owns the listing state. It is not safe for concurrent use:
// every method must be called from the same goroutine (the UI update loop).
type Controller struct {
	fetcher Fetcher
	store   session.Store
	timeout time.Duration

	filters     Filters
	hasSearched bool
	initialized bool

	epoch       uint64
	debounceGen uint64

	loading  bool
	articles []client.Article
	message  string
}

// Option configures the Controller
type Option func(*Controller)

// WithFetchTimeout overrides DefaultFetchTimeout
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// NewController creates a controller with default filters.
// store is cleared when a fetch fails with an authorization error.
func NewController(fetcher Fetcher, store session.Store, opts ...Option) *Controller {
	c := &Controller{
		fetcher: fetcher,
		store:   store,
		timeout: DefaultFetchTimeout,
		filters: Filters{
			Country:  DefaultCountry,
			Category: DefaultCategory,
			ViewMode: ViewGrid,
		},
		// Nothing is shown until the initial load completes
		loading: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Filters returns the current filter state
func (c *Controller) Filters() Filters { return c.filters }

// Loading reports whether the latest fetch is still in flight
func (c *Controller) Loading() bool { return c.loading }

// Articles returns the visible articles
func (c *Controller) Articles() []client.Article { return c.articles }

// Message returns the inline error or empty-state message
func (c *Controller) Message() string { return c.message }

// HasSearched reports whether the visible results come from a search
func (c *Controller) HasSearched() bool { return c.hasSearched }

// Epoch returns the identity of the most recently issued fetch
func (c *Controller) Epoch() uint64 { return c.epoch }

// Init issues the initial load. Only the first call fetches.
func (c *Controller) Init() *Fetch {
	if c.initialized {
		return nil
	}
	c.initialized = true
	return c.issue()
}

// SetQuery records a query edit and returns the debounce generation to pass
// to DebounceElapsed once DebounceDelay has passed.
func (c *Controller) SetQuery(q string) uint64 {
	c.filters.Query = q
	c.debounceGen++
	return c.debounceGen
}

// DebounceElapsed fetches if gen is still the latest query edit and the
// query is not blank.
func (c *Controller) DebounceElapsed(gen uint64) *Fetch {
	if gen != c.debounceGen {
		return nil
	}
	if strings.TrimSpace(c.filters.Query) == "" {
		return nil
	}
	c.hasSearched = true
	return c.issue()
}

// Search fetches the current query now
func (c *Controller) Search() *Fetch {
	c.debounceGen++
	if strings.TrimSpace(c.filters.Query) == "" {
		c.message = MsgEmptySearch
		return nil
	}
	c.hasSearched = true
	return c.issue()
}

// SetCountry switches country and reloads headlines
func (c *Controller) SetCountry(code string) *Fetch {
	c.filters.Country = code
	c.resetSearch()
	return c.issue()
}

// SetCategory switches category and reloads headlines
func (c *Controller) SetCategory(id string) *Fetch {
	c.filters.Category = id
	c.resetSearch()
	return c.issue()
}

// Refresh drops the search and reloads headlines
func (c *Controller) Refresh() *Fetch {
	c.resetSearch()
	return c.issue()
}

// SetViewMode changes the layout without fetching
func (c *Controller) SetViewMode(m ViewMode) {
	c.filters.ViewMode = m
}

func (c *Controller) resetSearch() {
	c.filters.Query = ""
	c.hasSearched = false
	// A pending debounce must not fire a search for the discarded query
	c.debounceGen++
}

func (c *Controller) params() client.HeadlinesParams {
	return client.HeadlinesParams{
		Query:    strings.TrimSpace(c.filters.Query),
		Country:  c.filters.Country,
		Category: c.filters.Category,
	}
}

// issue advances the epoch and hands out a fetch carrying the new value
func (c *Controller) issue() *Fetch {
	c.epoch++
	c.loading = true
	c.message = ""

	f := &Fetch{
		Epoch:   c.epoch,
		Params:  c.params(),
		fetcher: c.fetcher,
		timeout: c.timeout,
	}
	slog.Debug("Headlines fetch issued",
		"epoch", f.Epoch,
		"country", f.Params.Country,
		"category", f.Params.Category,
		"query", f.Params.Query,
	)
	return f
}

// Complete applies an outcome if it belongs to the latest fetch.
// Superseded outcomes change nothing.
func (c *Controller) Complete(o Outcome) Effect {
	if o.Epoch != c.epoch {
		slog.Debug("Discarding stale headlines", "epoch", o.Epoch, "current", c.epoch)
		return Effect{Stale: true}
	}
	c.loading = false

	if o.Err != nil {
		c.message = failureMessage(o.Err)
		if client.IsUnauthorized(o.Err) {
			if err := c.store.Clear(); err != nil {
				slog.Error("Failed to clear session", "error", err)
			}
			return Effect{AuthLost: true}
		}
		return Effect{}
	}

	if len(o.Articles) == 0 {
		c.articles = nil
		if o.Params.Query != "" {
			c.message = MsgNoSearchResults
		} else {
			c.message = MsgNoHeadlines
		}
		return Effect{}
	}

	c.articles = o.Articles
	c.message = ""
	return Effect{}
}

func failureMessage(err error) string {
	if client.IsTimeout(err) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return MsgTimedOut
	}
	if detail := client.Detail(err); detail != "" {
		return detail
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return MsgLoadFailed
}

// Package recency remembers which postings were delivered to which users so the
// same posting is not sent again within a short window.
package recency

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/vijay-prabhu/jobmatch/internal/job"
)

// DateLayout is the calendar-day format used for FirstSeen and LastSeen
const DateLayout = "2006-01-02"

// DefaultRetentionDays bounds how long an entry survives Cleanup
const DefaultRetentionDays = 30

// Entry records the delivery history of one posting URL
type Entry struct {
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	FirstSeen    string   `json:"first_seen"`
	LastSeen     string   `json:"last_seen"`
	ShownToUsers []string `json:"shown_to_users"`
}

func (e *Entry) shownToUser(user string) bool {
	return slices.Contains(e.ShownToUsers, user)
}

func (e *Entry) clone() Entry {
	c := *e
	c.ShownToUsers = slices.Clone(e.ShownToUsers)
	if c.ShownToUsers == nil {
		c.ShownToUsers = []string{}
	}
	return c
}

// Options configures a Cache
type Options struct {
	Now           func() time.Time // defaults to time.Now
	RetentionDays int              // defaults to DefaultRetentionDays
	Logger        *slog.Logger     // defaults to slog.Default()
}

// Cache is the in-memory recency state for one run.
// Reads may run concurrently; mutations are serialized by a single writer.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*Entry

	store     Store
	now       func() time.Time
	retention int
	logger    *slog.Logger
}

// New returns an empty cache with no backing store
func New(opts Options) *Cache {
	c := &Cache{
		entries:   make(map[string]*Entry),
		now:       opts.Now,
		retention: opts.RetentionDays,
		logger:    opts.Logger,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.retention <= 0 {
		c.retention = DefaultRetentionDays
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Load reads the persisted entries from store. It never fails: a read or decode
// error is logged and the cache starts empty.
func Load(ctx context.Context, store Store, opts Options) *Cache {
	c := New(opts)
	c.store = store
	if store == nil {
		return c
	}

	entries, err := store.Load(ctx)
	if err != nil {
		c.logger.Warn("recency: failed to load cache, starting empty", slog.Any("error", err))
		return c
	}

	for i := range entries {
		e := entries[i]
		if e.URL == "" {
			continue
		}
		if e.ShownToUsers == nil {
			e.ShownToUsers = []string{}
		}
		c.entries[e.URL] = &e
	}
	c.logger.Debug("recency: cache loaded", slog.Int("entries", len(c.entries)))
	return c
}

// Save writes the current entries to the backing store
func (c *Cache) Save(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Save(ctx, c.Entries())
}

// MarkAsShown records that p was delivered to user today
func (c *Cache) MarkAsShown(p job.Posting, user string) {
	today := c.today()

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[p.URL]
	if !ok {
		e = &Entry{
			URL:          p.URL,
			Title:        p.Title,
			Company:      p.Company,
			FirstSeen:    today,
			ShownToUsers: []string{},
		}
		c.entries[p.URL] = e
	}
	e.LastSeen = today
	if !e.shownToUser(user) {
		e.ShownToUsers = append(e.ShownToUsers, user)
	}
}

// WasShownRecently reports whether p was delivered to user fewer than windowDays days ago
func (c *Cache) WasShownRecently(p job.Posting, user string, windowDays int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.wasShownRecently(p.URL, user, windowDays)
}

func (c *Cache) wasShownRecently(url, user string, windowDays int) bool {
	e, ok := c.entries[url]
	if !ok || !e.shownToUser(user) {
		return false
	}
	return c.DaysSince(e.LastSeen) < windowDays
}

// FilterRecentlyShown drops the postings user saw within windowDays, keeping order
func (c *Cache) FilterRecentlyShown(postings []job.Posting, user string, windowDays int) []job.Posting {
	c.mu.RLock()
	defer c.mu.RUnlock()

	kept := make([]job.Posting, 0, len(postings))
	for _, p := range postings {
		if !c.wasShownRecently(p.URL, user, windowDays) {
			kept = append(kept, p)
		}
	}
	return kept
}

// Cleanup removes entries last seen more than the retention horizon ago and
// returns how many were removed
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for url, e := range c.entries {
		if c.DaysSince(e.LastSeen) > c.retention {
			delete(c.entries, url)
			removed++
		}
	}
	return removed
}

// Forget removes the entry for url
func (c *Cache) Forget(url string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[url]; !ok {
		return false
	}
	delete(c.entries, url)
	return true
}

// Get returns a copy of the entry for url
func (c *Cache) Get(url string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[url]
	if !ok {
		return Entry{}, false
	}
	return e.clone(), true
}

// Entries returns copies of all entries sorted by URL
func (c *Cache) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e.clone())
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].URL < entries[j].URL
	})
	return entries
}

// Len returns the number of entries
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats summarizes the cache contents
type Stats struct {
	Entries int    `json:"entries"`
	Users   int    `json:"users"`
	Oldest  string `json:"oldest_last_seen,omitempty"`
	Newest  string `json:"newest_last_seen,omitempty"`
}

// Stats returns a summary of the cache contents
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := Stats{Entries: len(c.entries)}
	users := make(map[string]struct{})
	for _, e := range c.entries {
		for _, u := range e.ShownToUsers {
			users[u] = struct{}{}
		}
		if stats.Oldest == "" || e.LastSeen < stats.Oldest {
			stats.Oldest = e.LastSeen
		}
		if e.LastSeen > stats.Newest {
			stats.Newest = e.LastSeen
		}
	}
	stats.Users = len(users)
	return stats
}

// DaysSince returns the whole days elapsed since local midnight of date, rounded up.
// A date seen earlier today therefore counts as one day. Unparseable dates count
// as infinitely old.
func (c *Cache) DaysSince(date string) int {
	now := c.now()
	seen, err := time.ParseInLocation(DateLayout, date, now.Location())
	if err != nil {
		return math.MaxInt
	}

	elapsed := now.Sub(seen)
	if elapsed <= 0 {
		return 0
	}
	return int(math.Ceil(elapsed.Hours() / 24))
}

func (c *Cache) today() string {
	return c.now().Format(DateLayout)
}

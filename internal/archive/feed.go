// Package archive implements incremental loading of the public project
// archive: pages are appended as the reader nears the end, duplicates are
// skipped, and a filter change discards everything in flight.
package archive

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"folio/internal/models"
	"folio/internal/store"
)

var (
	// ErrBusy is returned by LoadMore while another load is outstanding.
	ErrBusy = errors.New("archive: load already in progress")
	// ErrStale is returned by LoadMore when the filter changed while the
	// page was being fetched; the page is discarded.
	ErrStale = errors.New("archive: filter changed during load")
)

// Fetcher returns one archive page.
type Fetcher interface {
	Archive(ctx context.Context, q store.ArchiveQuery) (*store.ArchivePage, error)
}

// Filter narrows the feed.
type Filter struct {
	Category string
	Search   string
}

// Feed accumulates archive pages for one reader.
type Feed struct {
	fetch Fetcher
	limit int

	mu      sync.Mutex
	filter  Filter
	items   []models.Project
	seen    map[int64]struct{}
	next    int
	hasMore bool
	loading bool
	gen     uint64
}

// NewFeed returns an empty feed that loads limit projects per page.
func NewFeed(f Fetcher, limit int) *Feed {
	if limit <= 0 {
		limit = store.DefaultArchiveLimit
	}
	feed := &Feed{fetch: f, limit: limit}
	feed.Reset(Filter{})
	return feed
}

// Reset empties the feed and applies a new filter. A load in flight when
// Reset is called completes with ErrStale.
func (f *Feed) Reset(filter Filter) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filter = filter
	f.items = nil
	f.seen = make(map[int64]struct{})
	f.next = 1
	f.hasMore = true
	f.loading = false
	f.gen++
}

// LoadMore fetches the next page and appends projects not already loaded.
// It returns how many were added.
func (f *Feed) LoadMore(ctx context.Context) (int, error) {
	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		return 0, ErrBusy
	}
	if !f.hasMore {
		f.mu.Unlock()
		return 0, nil
	}
	f.loading = true
	gen := f.gen
	q := store.ArchiveQuery{
		Page:     f.next,
		Limit:    f.limit,
		Category: f.filter.Category,
		Search:   f.filter.Search,
	}
	f.mu.Unlock()

	page, err := f.fetch.Archive(ctx, q)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen {
		return 0, ErrStale
	}
	f.loading = false
	if err != nil {
		return 0, fmt.Errorf("load archive page %d: %w", q.Page, err)
	}

	added := 0
	for _, p := range page.Projects {
		if _, dup := f.seen[p.ID]; dup {
			continue
		}
		f.seen[p.ID] = struct{}{}
		f.items = append(f.items, p)
		added++
	}
	f.next++
	f.hasMore = page.HasMore
	return added, nil
}

// NearEnd reports whether index is within margin items of the end of the
// loaded list, the point at which a reader should trigger LoadMore.
func (f *Feed) NearEnd(index, margin int) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return index >= len(f.items)-margin
}

// Items returns a copy of the loaded projects in display order.
func (f *Feed) Items() []models.Project {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.items)
}

// HasMore reports whether another page may exist.
func (f *Feed) HasMore() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hasMore
}

// Loading reports whether a load is outstanding.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Filter returns the active filter.
func (f *Feed) Filter() Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

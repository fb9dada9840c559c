package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"folio/internal/middleware"
	"folio/internal/models"
	"folio/internal/session"
	"folio/internal/store"
)

// memCategories is an in-memory CategoryStore and CategoryFinder.
type memCategories struct {
	mu     sync.Mutex
	items  []models.Category
	nextID int64
	inUse  map[int64]bool
	err    error
}

func newMemCategories(names ...string) *memCategories {
	m := &memCategories{inUse: map[int64]bool{}}
	for _, n := range names {
		m.Create(context.Background(), n)
	}
	return m
}

func (m *memCategories) List(context.Context) ([]models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := slices.Clone(m.items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memCategories) Create(_ context.Context, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	maxRank := 0
	for _, c := range m.items {
		if c.Name == name {
			return nil, store.ErrDuplicateName
		}
		maxRank = max(maxRank, c.SortOrder)
	}
	m.nextID++
	c := models.Category{ID: m.nextID, Name: name, SortOrder: maxRank + 1, CreatedAt: time.Now()}
	m.items = append(m.items, c)
	return &c, nil
}

func (m *memCategories) Rename(_ context.Context, id int64, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.Name == name && c.ID != id {
			return nil, store.ErrDuplicateName
		}
	}
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Name = name
			c := m.items[i]
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *memCategories) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inUse[id] {
		return store.ErrCategoryInUse
	}
	for i, c := range m.items {
		if c.ID == id {
			m.items = slices.Delete(m.items, i, i+1)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memCategories) Reorder(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[int64]bool{}
	for _, id := range ids {
		if seen[id] {
			return store.ErrDuplicateID
		}
		seen[id] = true
	}
	next := slices.Clone(m.items)
	for rank, id := range ids {
		i := slices.IndexFunc(next, func(c models.Category) bool { return c.ID == id })
		if i < 0 {
			return store.ErrNotFound
		}
		next[i].SortOrder = rank
	}
	m.items = next
	return nil
}

func (m *memCategories) FindByName(_ context.Context, name string) (*models.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.Name == name {
			return &c, nil
		}
	}
	return nil, nil
}

// memProjects is an in-memory ProjectStore and AdminProjectStore.
type memProjects struct {
	mu     sync.Mutex
	items  []models.Project
	nextID int64
	cats   *memCategories

	// writeErr fails Create and Update when set.
	writeErr error
}

func (m *memProjects) sorted() []models.Project {
	out := slices.Clone(m.items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (m *memProjects) add(title string, categoryID *int64) models.Project {
	p, _ := m.Create(context.Background(), &models.Project{Title: title, CategoryID: categoryID})
	return *p
}

func (m *memProjects) Archive(_ context.Context, q store.ArchiveQuery) (*store.ArchivePage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q = q.Normalize()
	var matched []models.Project
	for _, p := range m.sorted() {
		if q.Category != "" && p.CategoryLabel("") != q.Category {
			continue
		}
		if q.Search != "" &&
			!strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.Search)) &&
			!strings.Contains(strings.ToLower(p.Description), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, p)
	}
	start := min((q.Page-1)*q.Limit, len(matched))
	end := min(start+q.Limit, len(matched))
	return &store.ArchivePage{
		Projects: append([]models.Project{}, matched[start:end]...),
		Page:     q.Page,
		Limit:    q.Limit,
		HasMore:  end < len(matched),
	}, nil
}

func (m *memProjects) FindByID(_ context.Context, id int64) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.items {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *memProjects) Create(_ context.Context, p *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	minRank := 0
	for _, q := range m.items {
		minRank = min(minRank, q.SortOrder)
	}
	m.nextID++
	created := *p
	created.ID = m.nextID
	created.SortOrder = minRank - 1
	created.CreatedAt = time.Now()
	created.CategoryName = m.categoryName(p.CategoryID)
	m.items = append(m.items, created)
	return &created, nil
}

func (m *memProjects) categoryName(id *int64) *string {
	if id == nil || m.cats == nil {
		return nil
	}
	for _, c := range m.cats.items {
		if c.ID == *id {
			name := c.Name
			return &name
		}
	}
	return nil
}

func (m *memProjects) Update(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	for i := range m.items {
		if m.items[i].ID == p.ID {
			m.items[i].Title = p.Title
			m.items[i].Description = p.Description
			m.items[i].Thumbnail = p.Thumbnail
			m.items[i].CategoryID = p.CategoryID
			m.items[i].CategoryName = m.categoryName(p.CategoryID)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memProjects) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.items {
		if p.ID == id {
			m.items = slices.Delete(m.items, i, i+1)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memProjects) Reorder(_ context.Context, ids []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for rank, id := range ids {
		i := slices.IndexFunc(m.items, func(p models.Project) bool { return p.ID == id })
		if i < 0 {
			return store.ErrNotFound
		}
		m.items[i].SortOrder = rank
	}
	return nil
}

func (m *memProjects) Related(_ context.Context, p *models.Project, n int) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, q := range m.items {
		if q.ID != p.ID && len(out) < n {
			out = append(out, q)
		}
	}
	return out, nil
}

func (m *memProjects) Neighbors(_ context.Context, id int64) (newer, older *models.Project, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.sorted()
	i := slices.IndexFunc(list, func(p models.Project) bool { return p.ID == id })
	if i > 0 {
		newer = &list[i-1]
	}
	if i >= 0 && i+1 < len(list) {
		older = &list[i+1]
	}
	return newer, older, nil
}

func (m *memProjects) AdminList(_ context.Context, q store.AdminQuery) (*store.AdminPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.Project
	for _, p := range m.items {
		if q.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *q.CategoryID) {
			continue
		}
		if q.Title != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.Title)) {
			continue
		}
		matched = append(matched, p)
	}
	return &store.AdminPage{
		Projects:   matched,
		Page:       max(q.Page, 1),
		Total:      len(matched),
		TotalPages: (len(matched) + store.AdminPageSize - 1) / store.AdminPageSize,
		Summary:    store.AdminSummary{AbsoluteTotal: len(m.items)},
	}, nil
}

func (m *memProjects) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

func (m *memProjects) Recent(_ context.Context, n int) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := slices.Clone(m.items)
	slices.Reverse(out)
	return out[:min(n, len(out))], nil
}

// memComments is an in-memory CommentStore.
type memComments struct {
	mu     sync.Mutex
	items  []models.Comment
	nextID int64
}

func (m *memComments) ListByProject(_ context.Context, projectID int64) ([]models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Comment
	for _, c := range m.items {
		if c.ProjectID == projectID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memComments) FindByID(_ context.Context, projectID, id int64) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.items {
		if c.ID == id && c.ProjectID == projectID {
			return &c, nil
		}
	}
	return nil, nil
}

func (m *memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ParentID != nil {
		i := slices.IndexFunc(m.items, func(p models.Comment) bool {
			return p.ID == *c.ParentID && p.ProjectID == c.ProjectID && p.ParentID == nil
		})
		if i < 0 {
			return nil, store.ErrInvalidParent
		}
	}
	m.nextID++
	created := *c
	created.ID = m.nextID
	created.CreatedAt = time.Now()
	m.items = append(m.items, created)
	return &created, nil
}

func (m *memComments) Delete(_ context.Context, projectID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, c := range m.items {
		if c.ID == id && c.ProjectID == projectID {
			m.items = slices.Delete(m.items, i, i+1)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *memComments) Count(context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items), nil
}

// memCache is an in-memory ResponseCache.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.entries[key]
	return b, ok
}

func (c *memCache) Set(_ context.Context, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = map[string][]byte{}
	}
	c.entries[key] = body
}

func (c *memCache) Invalidate(_ context.Context, keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
}

// fakeThumbs rewrites data URLs to a fixed host and records releases.
type fakeThumbs struct {
	released []string
	err      error
}

func (f *fakeThumbs) OffloadThumbnail(_ context.Context, thumb string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if strings.HasPrefix(thumb, "data:") {
		return "https://cdn.test/thumbnails/1.png", nil
	}
	return thumb, nil
}

func (f *fakeThumbs) ReleaseThumbnail(_ context.Context, thumbURL string) {
	if thumbURL != "" {
		f.released = append(f.released, thumbURL)
	}
}

type fixedVisitors int

func (v fixedVisitors) CountToday(context.Context) (int, error) { return int(v), nil }

// do routes one request through a chi mux so URL parameters resolve.
func do(t *testing.T, method, pattern, path string, h http.HandlerFunc, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()

	mux := chi.NewRouter()
	mux.Method(method, pattern, h)

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req = req.WithContext(middleware.WithAdmin(req.Context(), &session.Data{
			Email:     "admin@folio.local",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
	}

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"folio/internal/archive"
	"folio/internal/models"
	"folio/internal/store"
)

func TestSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "migrate", "seed", "stats", "reorder", "browse", "totp"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestReorderArgs(t *testing.T) {
	assert.NoError(t, reorderCmd.Args(reorderCmd, []string{"projects"}))
	assert.Error(t, reorderCmd.Args(reorderCmd, []string{"comments"}))
	assert.Error(t, reorderCmd.Args(reorderCmd, nil))
}

func TestTOTPCommand(t *testing.T) {
	png := filepath.Join(t.TempDir(), "qr.png")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"totp", "--account", "me@example.com", "--png", png})
	t.Cleanup(func() { rootCmd.SetArgs(nil); rootCmd.SetOut(nil) })

	require.NoError(t, rootCmd.Execute())

	var secret string
	for _, line := range strings.Split(out.String(), "\n") {
		if v, ok := strings.CutPrefix(line, "ADMIN_TOTP_SECRET="); ok {
			secret = v
		}
	}
	require.NotEmpty(t, secret)
	assert.Contains(t, out.String(), "otpauth://totp/")

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)
	assert.True(t, totp.Validate(code, secret))

	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// archiveServer serves n projects, newest id first, in pages.
func archiveServer(t *testing.T, n int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		start := (page - 1) * limit
		var items []models.Project
		for i := start; i < min(start+limit, n); i++ {
			items = append(items, models.Project{ID: int64(n - i), Title: "Project " + strconv.Itoa(n-i)})
		}
		json.NewEncoder(w).Encode(store.ArchivePage{Projects: items, Page: page, Limit: limit, HasMore: start+limit < n})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestBrowseReadsEveryPage(t *testing.T) {
	srv := archiveServer(t, 5)
	var out bytes.Buffer

	feed := archive.NewFeed(archive.NewClient(srv.URL), 2)
	require.NoError(t, browse(context.Background(), &out, feed, 0))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "Project 5")
	assert.Contains(t, lines[4], "Project 1")
}

func TestBrowseStopsAtPageLimit(t *testing.T) {
	srv := archiveServer(t, 5)
	var out bytes.Buffer

	feed := archive.NewFeed(archive.NewClient(srv.URL), 2)
	require.NoError(t, browse(context.Background(), &out, feed, 1))

	assert.Len(t, strings.Split(strings.TrimSpace(out.String()), "\n"), 2)
}

func TestBrowseEmpty(t *testing.T) {
	srv := archiveServer(t, 0)
	var out bytes.Buffer

	require.NoError(t, browse(context.Background(), &out, archive.NewFeed(archive.NewClient(srv.URL), 2), 0))
	assert.Equal(t, "no projects\n", out.String())
}

type fakeCounts struct{}

func (fakeCounts) Count(context.Context) (int, error) { return 4, nil }

func (fakeCounts) CountToday(context.Context) (int, error) { return 9, nil }

func (fakeCounts) Recent(context.Context, int) ([]models.Project, error) {
	return []models.Project{{ID: 4, Title: "Poster", CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}}, nil
}

func (fakeCounts) Stats(context.Context) ([]models.CategoryStat, error) {
	return []models.CategoryStat{{ID: 1, Name: "Print", ProjectCount: 2}}, nil
}

func TestStatsReport(t *testing.T) {
	r, err := collectStats(context.Background(), fakeCounts{}, fakeCounts{}, fakeCounts{}, fakeCounts{})
	require.NoError(t, err)
	assert.Equal(t, 4, r.TotalProjects)
	assert.Equal(t, 9, r.TodayVisitors)

	var out bytes.Buffer
	renderStats(&out, r)
	for _, want := range []string{"Dashboard", "Visitors today", "9", "2026-03-01", "Poster", "Print"} {
		assert.Contains(t, out.String(), want)
	}
}

type stubPersister struct{ err error }

func (p stubPersister) Reorder(context.Context, []int64) error { return p.err }

type keyLog struct{ keys []string }

func (k *keyLog) Invalidate(_ context.Context, keys ...string) { k.keys = append(k.keys, keys...) }

func TestInvalidatingPersister(t *testing.T) {
	rec := &keyLog{}
	p := invalidatingPersister{Persister: stubPersister{}, cache: rec, keys: []string{"categories"}}
	require.NoError(t, p.Reorder(context.Background(), []int64{2, 1}))
	assert.Equal(t, []string{"categories"}, rec.keys)

	rec.keys = nil
	p.Persister = stubPersister{err: errors.New("deadlock detected")}
	assert.Error(t, p.Reorder(context.Background(), []int64{1, 2}))
	assert.Empty(t, rec.keys, "a failed save leaves the cache alone")
}

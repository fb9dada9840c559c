package main

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"folio/internal/cache"
	"folio/internal/config"
	"folio/internal/reorder"
	"folio/internal/store"
	"folio/internal/tui"
)

var reorderCmd = &cobra.Command{
	Use:       "reorder categories|projects",
	Short:     "Reorder categories or projects in a terminal editor",
	Long:      `Opens an editor over the current ordering. Each move is saved at once; a failed save puts the list back.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"categories", "projects"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		var (
			title   string
			persist reorder.Persister
			load    tui.Loader
		)
		switch args[0] {
		case "categories":
			s := store.NewCategoryStore(db)
			responses, closeCache := responseCache(cfg)
			defer closeCache()
			persist = invalidatingPersister{Persister: s, cache: responses, keys: []string{cache.CategoriesKey}}
			title, load = "Categories", categoryItems(s)
		case "projects":
			s := store.NewProjectStore(db)
			title, persist, load = "Projects", s, projectItems(s)
		}

		ctx := cmd.Context()
		items, err := load(ctx)
		if err != nil {
			return err
		}

		m := tui.NewReorderModel(ctx, title, persist, items, load)
		final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx)).Run()
		if err != nil {
			return fmt.Errorf("reorder editor: %w", err)
		}
		if fm, ok := final.(tui.ReorderModel); ok && fm.Err() != nil {
			return fmt.Errorf("last save failed: %w", fm.Err())
		}
		return nil
	},
}

// responseCache connects to the server's category list cache so saves from
// the editor do not leave it stale. Without Valkey it returns a nil cache,
// which ignores invalidations.
func responseCache(cfg *config.Config) (*cache.Responses, func()) {
	if cfg.SessionBackend == config.SessionBackendJWT {
		return nil, func() {}
	}
	client, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Warn("valkey unavailable, category cache not invalidated", "error", err)
		return nil, func() {}
	}
	return cache.NewResponses(client, cache.DefaultResponseTTL), func() { client.Close() }
}

// invalidator drops cached responses.
type invalidator interface {
	Invalidate(ctx context.Context, keys ...string)
}

// invalidatingPersister drops keys from the response cache after every
// successful save.
type invalidatingPersister struct {
	reorder.Persister
	cache invalidator
	keys  []string
}

func (p invalidatingPersister) Reorder(ctx context.Context, ids []int64) error {
	if err := p.Persister.Reorder(ctx, ids); err != nil {
		return err
	}
	p.cache.Invalidate(ctx, p.keys...)
	return nil
}

func categoryItems(s *store.CategoryStore) tui.Loader {
	return func(ctx context.Context) ([]tui.Item, error) {
		cats, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]tui.Item, len(cats))
		for i, c := range cats {
			items[i] = tui.Item{ID: c.ID, Label: c.Name}
		}
		return items, nil
	}
}

func projectItems(s *store.ProjectStore) tui.Loader {
	return func(ctx context.Context) ([]tui.Item, error) {
		projects, err := s.All(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]tui.Item, len(projects))
		for i, p := range projects {
			items[i] = tui.Item{ID: p.ID, Label: fmt.Sprintf("%s  (%s)", p.Title, p.CategoryLabel("uncategorized"))}
		}
		return items, nil
	}
}

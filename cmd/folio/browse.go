package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"folio/internal/archive"
)

var (
	browseURL      string
	browseCategory string
	browseSearch   string
	browseLimit    int
	browsePages    int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through a running server's public archive",
	Long: `Loads archive pages from a folio server the way the site's infinite scroll
does, printing each project once, until the archive ends or --pages pages
were read.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		feed := archive.NewFeed(archive.NewClient(browseURL), browseLimit)
		feed.Reset(archive.Filter{Category: browseCategory, Search: browseSearch})
		return browse(cmd.Context(), cmd.OutOrStdout(), feed, browsePages)
	},
}

func init() {
	browseCmd.Flags().StringVar(&browseURL, "url", "http://localhost:8080", "Server base URL")
	browseCmd.Flags().StringVar(&browseCategory, "category", "", "Category name filter")
	browseCmd.Flags().StringVar(&browseSearch, "search", "", "Title or description search")
	browseCmd.Flags().IntVar(&browseLimit, "limit", 6, "Projects per page")
	browseCmd.Flags().IntVar(&browsePages, "pages", 0, "Stop after this many pages (0 reads everything)")
}

// browse loads pages into feed and prints the new projects after each one.
func browse(ctx context.Context, w io.Writer, feed *archive.Feed, maxPages int) error {
	printed := 0
	for page := 1; feed.HasMore() && (maxPages <= 0 || page <= maxPages); page++ {
		if _, err := feed.LoadMore(ctx); err != nil {
			return err
		}
		items := feed.Items()
		for _, p := range items[printed:] {
			fmt.Fprintf(w, "%4d  %-40s  %s\n", p.ID, p.Title, p.CategoryLabel("-"))
		}
		printed = len(items)
	}
	if printed == 0 {
		fmt.Fprintln(w, "no projects")
	}
	return nil
}

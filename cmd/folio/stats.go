package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"folio/internal/models"
	"folio/internal/store"
)

var statsJSON bool

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle   = lipgloss.NewStyle().Width(18).Foreground(lipgloss.Color("#626262"))
	valueStyle   = lipgloss.NewStyle().Bold(true)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the admin dashboard counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		report, err := collectStats(cmd.Context(),
			store.NewProjectStore(db), store.NewCategoryStore(db),
			store.NewCommentStore(db), store.NewVisitorStore(db))
		if err != nil {
			return err
		}
		if statsJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		renderStats(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "Output in JSON format")
}

type statsReport struct {
	TotalProjects int                   `json:"totalProjects"`
	TotalComments int                   `json:"totalMessages"`
	TodayVisitors int                   `json:"todayVisitors"`
	Recent        []models.Project      `json:"recentProjects"`
	Categories    []models.CategoryStat `json:"categories"`
}

type (
	projectCounter interface {
		Count(ctx context.Context) (int, error)
		Recent(ctx context.Context, n int) ([]models.Project, error)
	}
	categoryStats interface {
		Stats(ctx context.Context) ([]models.CategoryStat, error)
	}
	commentCounter interface {
		Count(ctx context.Context) (int, error)
	}
	visitorCounter interface {
		CountToday(ctx context.Context) (int, error)
	}
)

func collectStats(ctx context.Context, p projectCounter, c categoryStats, cm commentCounter, v visitorCounter) (*statsReport, error) {
	var (
		r   statsReport
		err error
	)
	if r.TotalProjects, err = p.Count(ctx); err != nil {
		return nil, err
	}
	if r.Recent, err = p.Recent(ctx, 3); err != nil {
		return nil, err
	}
	if r.TotalComments, err = cm.Count(ctx); err != nil {
		return nil, err
	}
	if r.TodayVisitors, err = v.CountToday(ctx); err != nil {
		return nil, err
	}
	if r.Categories, err = c.Stats(ctx); err != nil {
		return nil, err
	}
	return &r, nil
}

func renderStats(w io.Writer, r *statsReport) {
	row := func(label string, value any) string {
		return labelStyle.Render(label) + valueStyle.Render(fmt.Sprint(value))
	}

	var b strings.Builder
	b.WriteString(headingStyle.Render("Dashboard") + "\n")
	b.WriteString(row("Projects", r.TotalProjects) + "\n")
	b.WriteString(row("Comments", r.TotalComments) + "\n")
	b.WriteString(row("Visitors today", r.TodayVisitors))

	if len(r.Recent) > 0 {
		b.WriteString("\n\n" + headingStyle.Render("Recent projects"))
		for _, p := range r.Recent {
			b.WriteString("\n" + row(p.CreatedAt.Format("2006-01-02"), p.Title))
		}
	}
	if len(r.Categories) > 0 {
		b.WriteString("\n\n" + headingStyle.Render("Categories"))
		for _, c := range r.Categories {
			b.WriteString("\n" + row(c.Name, c.ProjectCount))
		}
	}

	fmt.Fprintln(w, boxStyle.Render(b.String()))
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"bugdash/internal/domain/models"
	"bugdash/internal/output"
)

var showCmd = &cobra.Command{
	Use:   "show <bug-id>",
	Short: "Show one bug report in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

// dashboardRun handles `bugctl` with no subcommand: status breakdown plus
// the most recently updated reports, the same at-a-glance view the web
// dashboard opens with.
func dashboardRun() error {
	ctx := context.Background()

	summaries, err := gateway.ListSummaries(ctx)
	if err != nil {
		ui.Error("Failed to fetch bugs: %v", err)
		return err
	}

	if len(summaries) == 0 {
		ui.Info("No bugs reported. Quiet day.")
		return nil
	}

	counts := make(map[models.BugStatus]int)
	for _, s := range summaries {
		counts[s.Status]++
	}

	parts := make([]string, 0, 4)
	for _, status := range []models.BugStatus{
		models.StatusOpen,
		models.StatusInProgress,
		models.StatusNeedReview,
		models.StatusResolved,
	} {
		if counts[status] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[status], output.StatusColor(string(status))))
		}
	}

	ui.Info("%d bugs: %s", len(summaries), strings.Join(parts, ", "))
	fmt.Fprintln(ui.Out)

	limit := 10
	if len(summaries) < limit {
		limit = len(summaries)
	}

	table := ui.Table([]string{"ID", "Title", "Category", "Status", "Imgs", "Updated"})
	for _, s := range summaries[:limit] {
		_ = table.Append([]string{
			shortID(s.ID.String()),
			s.Title,
			output.CategoryColor(string(s.Category)),
			output.StatusColor(string(s.Status)),
			fmt.Sprintf("%d", s.ImageCount),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func showRun(ref string) error {
	ctx := context.Background()

	bug, err := findBug(ctx, ref)
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "%s  %s\n", output.Cyan(shortID(bug.ID.String())), bug.Title)
	fmt.Fprintf(ui.Out, "  Author:     %s\n", bug.Author)
	fmt.Fprintf(ui.Out, "  URL:        %s\n", bug.URL)
	fmt.Fprintf(ui.Out, "  Category:   %s\n", output.CategoryColor(string(bug.Category)))
	fmt.Fprintf(ui.Out, "  Status:     %s\n", output.StatusColor(string(bug.Status)))
	fmt.Fprintf(ui.Out, "  Desc:       %s\n", bug.Description)
	if len(bug.Images) > 0 {
		fmt.Fprintf(ui.Out, "  Images:     %s\n", strings.Join(bug.Images, ", "))
	}
	if bug.DevNote != "" {
		fmt.Fprintf(ui.Out, "  Note:       %s\n", bug.DevNote)
	}
	fmt.Fprintf(ui.Out, "  Created:    %s\n", bug.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(ui.Out, "  Updated:    %s\n", bug.UpdatedAt.Format("2006-01-02 15:04"))
	if bug.ResolvedAt != nil {
		fmt.Fprintf(ui.Out, "  Resolved:   %s\n", formatResolved(bug.ResolvedAt))
	}
	fmt.Fprintf(ui.Out, "  Full ID:    %s\n", bug.ID)

	return nil
}

package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bugdash/internal/domain/models"
	"bugdash/internal/output"
	"bugdash/internal/transport/http/dto"
)

var (
	bugTitle    string
	bugAuthor   string
	bugURL      string
	bugDesc     string
	bugCategory string
	bugStatus   string
	bugImages   []string
	bugDevNote  string
	bugPage     int
	bugLimit    int
	bugSummary  bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bug reports",
	Long:    "List bug reports, newest updates first. Use --summary to skip image payloads.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun()
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new bug report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return submitRun()
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <bug-id>",
	Short: "Edit an existing bug report",
	Long:  "Edit a bug report. Only the flags you pass are changed; everything else keeps its stored value.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editRun(args[0])
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <bug-id> <new-status>",
	Short: "Move a bug to a new status",
	Long:  "Move a bug to open, in-progress, need-review or resolved. Disallowed moves are rejected by the server.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return statusRun(args[0], args[1])
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <bug-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a bug report",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteRun(args[0])
	},
}

var imagesCmd = &cobra.Command{
	Use:   "images <bug-id>",
	Short: "Show the screenshots attached to a bug",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return imagesRun(args[0])
	},
}

func init() {
	listCmd.Flags().IntVar(&bugPage, "page", 1, "Page number")
	listCmd.Flags().IntVar(&bugLimit, "limit", 0, "Page size (default from config)")
	listCmd.Flags().StringVar(&bugStatus, "status", "", "Filter by status: open, in-progress, need-review, resolved")
	listCmd.Flags().StringVar(&bugCategory, "category", "", "Filter by category: frontend, backend")
	listCmd.Flags().BoolVar(&bugSummary, "summary", false, "Lightweight list without image payloads")

	submitCmd.Flags().StringVar(&bugTitle, "title", "", "Bug title (required)")
	submitCmd.Flags().StringVar(&bugAuthor, "author", "", "Reporter name (default from config)")
	submitCmd.Flags().StringVar(&bugURL, "url", "", "Page URL where the bug occurs (required)")
	submitCmd.Flags().StringVar(&bugDesc, "desc", "", "Bug description (required)")
	submitCmd.Flags().StringVar(&bugCategory, "category", "frontend", "Category: frontend, backend")
	submitCmd.Flags().StringSliceVar(&bugImages, "image", nil, "Screenshot reference (repeatable)")
	_ = submitCmd.MarkFlagRequired("title")
	_ = submitCmd.MarkFlagRequired("url")
	_ = submitCmd.MarkFlagRequired("desc")

	editCmd.Flags().StringVar(&bugTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&bugAuthor, "author", "", "New reporter name")
	editCmd.Flags().StringVar(&bugURL, "url", "", "New page URL")
	editCmd.Flags().StringVar(&bugDesc, "desc", "", "New description")
	editCmd.Flags().StringVar(&bugCategory, "category", "", "New category")
	editCmd.Flags().StringVar(&bugDevNote, "note", "", "Developer note")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(imagesCmd)
}

func pageSize() int {
	if bugLimit > 0 {
		return bugLimit
	}
	return viper.GetInt("page_size")
}

// shortID keeps tables readable; full ids still work everywhere a short
// one does.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// findBug resolves a full or prefix id against the first hundred records.
func findBug(ctx context.Context, ref string) (*models.Bug, error) {
	bugs, err := gateway.ListBugs(ctx, 1, 100)
	if err != nil {
		return nil, err
	}

	ref = strings.ToLower(ref)
	for i := range bugs {
		if strings.HasPrefix(bugs[i].ID.String(), ref) {
			return &bugs[i], nil
		}
	}

	return nil, fmt.Errorf("no bug found matching %q", ref)
}

func listRun() error {
	ctx := context.Background()

	if bugSummary {
		return summaryListRun(ctx)
	}

	if err := bugStore.FetchBugs(ctx, bugPage, pageSize()); err != nil {
		return err
	}

	bugs := bugStore.Bugs()
	if len(bugs) == 0 {
		ui.Info("No bugs found.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Author", "Category", "Status", "Imgs", "Updated"})
	for _, bug := range bugs {
		if bugStatus != "" && string(bug.Status) != bugStatus {
			continue
		}
		if bugCategory != "" && string(bug.Category) != bugCategory {
			continue
		}

		_ = table.Append([]string{
			shortID(bug.ID.String()),
			bug.Title,
			bug.Author,
			output.CategoryColor(string(bug.Category)),
			output.StatusColor(string(bug.Status)),
			fmt.Sprintf("%d", len(bug.Images)),
			bug.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func summaryListRun(ctx context.Context) error {
	summaries, err := gateway.ListSummaries(ctx)
	if err != nil {
		ui.Error("Failed to fetch summaries: %v", err)
		return err
	}

	if len(summaries) == 0 {
		ui.Info("No bugs found.")
		return nil
	}

	table := ui.Table([]string{"ID", "Title", "Author", "Category", "Status", "Imgs", "Updated"})
	for _, s := range summaries {
		if bugStatus != "" && string(s.Status) != bugStatus {
			continue
		}
		if bugCategory != "" && string(s.Category) != bugCategory {
			continue
		}

		_ = table.Append([]string{
			shortID(s.ID.String()),
			s.Title,
			s.Author,
			output.CategoryColor(string(s.Category)),
			output.StatusColor(string(s.Status)),
			fmt.Sprintf("%d", s.ImageCount),
			s.UpdatedAt.Format("2006-01-02 15:04"),
		})
	}
	_ = table.Render()
	return nil
}

func submitRun() error {
	ctx := context.Background()

	author := bugAuthor
	if author == "" {
		author = viper.GetString("author")
	}
	if author == "" {
		return fmt.Errorf("--author is required (or set author in config)")
	}

	form := dto.CreateBugRequest{
		Title:       bugTitle,
		Author:      author,
		URL:         bugURL,
		Description: bugDesc,
		Images:      bugImages,
		Category:    bugCategory,
		Status:      string(models.StatusOpen),
	}

	return bugStore.SubmitBug(ctx, form)
}

func editRun(ref string) error {
	ctx := context.Background()

	bug, err := findBug(ctx, ref)
	if err != nil {
		return err
	}

	form := dto.CreateBugRequest{
		Title:       bug.Title,
		Author:      bug.Author,
		URL:         bug.URL,
		Description: bug.Description,
		Images:      bug.Images,
		Category:    string(bug.Category),
		Status:      string(bug.Status),
	}

	if bugTitle != "" {
		form.Title = bugTitle
	}
	if bugAuthor != "" {
		form.Author = bugAuthor
	}
	if bugURL != "" {
		form.URL = bugURL
	}
	if bugDesc != "" {
		form.Description = bugDesc
	}
	if bugCategory != "" {
		form.Category = bugCategory
	}

	if bugDevNote != "" {
		note := bugDevNote
		if err := gateway.UpdateBug(ctx, dto.UpdateBugRequest{ID: bug.ID, DevNote: &note}); err != nil {
			ui.Error("Failed to set note: %v", err)
			return err
		}
	}

	bugStore.StartEditing(*bug)
	return bugStore.SubmitBug(ctx, form)
}

func statusRun(ref, next string) error {
	ctx := context.Background()

	bug, err := findBug(ctx, ref)
	if err != nil {
		return err
	}

	status := models.BugStatus(next)
	if !status.Valid() {
		return fmt.Errorf("unknown status %q", next)
	}

	// Seed the store cache so the resolution timestamp carries over on
	// reopen.
	if err := bugStore.FetchBugs(ctx, 1, 100); err != nil {
		return err
	}

	return bugStore.ChangeStatus(ctx, bug.ID, status)
}

func deleteRun(ref string) error {
	ctx := context.Background()

	bug, err := findBug(ctx, ref)
	if err != nil {
		return err
	}

	if !bugStore.DeleteBug(ctx, bug.ID) {
		return fmt.Errorf("delete failed")
	}
	return nil
}

func imagesRun(ref string) error {
	ctx := context.Background()

	bug, err := findBug(ctx, ref)
	if err != nil {
		return err
	}

	images, err := bugStore.FetchImages(ctx, bug.ID)
	if err != nil {
		return err
	}

	if len(images) == 0 {
		ui.Info("No images attached to %s.", shortID(bug.ID.String()))
		return nil
	}

	for _, img := range images {
		fmt.Fprintf(ui.Out, "%s\n", img)
	}
	return nil
}

func formatResolved(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

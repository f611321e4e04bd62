package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/diogo/sanai/internal/history"
	"github.com/diogo/sanai/internal/models"
)

var (
	historyFormatFlag string
	historyOutputFlag string
	historyImagesFlag bool
	historyLimitFlag  int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the saved conversation",
	Long:  `View, search and export the conversation saved by 'sanai chat'.`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved conversation",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversation as markdown or JSON",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

var historySearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find messages containing a phrase",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHistorySearch,
}

var historyPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the conversation file location",
	Args:  cobra.NoArgs,
	RunE:  runHistoryPath,
}

func init() {
	historyShowCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 0, "Show only the last n messages")

	historyExportCmd.Flags().StringVarP(&historyFormatFlag, "format", "F", "markdown", "Export format: markdown or json")
	historyExportCmd.Flags().StringVarP(&historyOutputFlag, "output", "o", "", "Write to file instead of stdout")
	historyExportCmd.Flags().BoolVar(&historyImagesFlag, "include-images", false, "Keep attached photos as data URIs")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyPathCmd)
}

func loadHistory() (*history.Store, []models.Message, error) {
	store, err := history.DefaultStore()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}

	// Read leaves a corrupt file in place; only chat moves it aside.
	messages, err := store.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}
	return store, messages, nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	_, messages, err := loadHistory()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(messages) == 0 {
		fmt.Fprintln(out, "No messages saved yet.")
		return nil
	}

	start := 0
	if historyLimitFlag > 0 && historyLimitFlag < len(messages) {
		start = len(messages) - historyLimitFlag
	}

	fmt.Fprintf(out, "Title: %s\n", history.Title(messages))
	fmt.Fprintf(out, "Messages: %d\n\n", len(messages))

	dim := lipgloss.NewStyle().Foreground(colorTextDim)
	for i := start; i < len(messages); i++ {
		msg := messages[i]
		fmt.Fprintf(out, "[%d] %s %s\n", i+1, speakerName(msg), dim.Render("("+history.FormatRelativeTime(msg.Time())+")"))

		if msg.HasImage() {
			fmt.Fprintf(out, "  %s\n", describeImage(msg.ImageURL))
		}

		text := msg.Text
		if runes := []rune(text); len(runes) > 500 {
			text = string(runes[:500]) + "..."
		}
		if text != "" {
			fmt.Fprintf(out, "  %s\n", strings.ReplaceAll(text, "\n", "\n  "))
		}
		fmt.Fprintln(out)
	}

	return nil
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, err := history.ParseExportFormat(historyFormatFlag)
	if err != nil {
		return err
	}

	_, messages, err := loadHistory()
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		return fmt.Errorf("nothing to export: the conversation is empty")
	}

	data, err := history.Export(messages, history.ExportOptions{
		Format:             format,
		IncludeAttachments: historyImagesFlag,
	})
	if err != nil {
		return err
	}

	if historyOutputFlag == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(historyOutputFlag, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), successMessage(fmt.Sprintf("Exported %d messages to %s", len(messages), historyOutputFlag)))
	return nil
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	_, messages, err := loadHistory()
	if err != nil {
		return err
	}

	queryText := strings.Join(args, " ")
	results := history.Search(messages, queryText)

	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No messages match %q.\n", queryText)
		return nil
	}

	for _, r := range results {
		fmt.Fprintf(out, "[%d] %s: %s\n", r.Index+1, speakerName(r.Message), r.Snippet)
	}
	return nil
}

func runHistoryPath(cmd *cobra.Command, args []string) error {
	store, err := history.DefaultStore()
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), store.Path())
	return nil
}

func speakerName(msg models.Message) string {
	if msg.IsUser() {
		return "Kamu"
	}
	return models.AssistantName
}

func describeImage(url string) string {
	if strings.HasPrefix(url, "data:") {
		return "[gambar terlampir]"
	}
	return "🖼 " + url
}

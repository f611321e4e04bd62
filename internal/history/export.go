package history

import (
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/diogo/sanai/internal/models"
)

// ExportFormat represents the format for exporting conversations
type ExportFormat string

const (
	ExportFormatMarkdown ExportFormat = "markdown"
	ExportFormatJSON     ExportFormat = "json"
)

// ParseExportFormat accepts "markdown", "md" or "json"
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return ExportFormatMarkdown, nil
	case "json":
		return ExportFormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s (want markdown or json)", s)
	}
}

// ExportOptions configures how conversations are exported
type ExportOptions struct {
	Format ExportFormat
	// IncludeAttachments keeps inline image data; otherwise data URIs are replaced by a marker.
	IncludeAttachments bool
}

// DefaultExportOptions returns sensible defaults for export
func DefaultExportOptions() ExportOptions {
	return ExportOptions{Format: ExportFormatMarkdown}
}

const attachmentMarker = "[gambar terlampir]"

// Title derives a conversation title from the first user message
func Title(messages []models.Message) string {
	for _, msg := range messages {
		if msg.IsUser() && strings.TrimSpace(msg.Text) != "" {
			title := strings.Join(strings.Fields(msg.Text), " ")
			if runes := []rune(title); len(runes) > 50 {
				title = string(runes[:50]) + "..."
			}
			return title
		}
	}
	return "Percakapan " + models.AssistantName
}

// Export renders messages in the requested format
func Export(messages []models.Message, opts ExportOptions) ([]byte, error) {
	switch opts.Format {
	case ExportFormatJSON:
		return exportJSON(messages, opts)
	case ExportFormatMarkdown, "":
		return []byte(exportMarkdown(messages, opts)), nil
	default:
		return nil, fmt.Errorf("unsupported export format: %s", opts.Format)
	}
}

func roleLabel(role models.Role) string {
	if role == models.RoleModel {
		return models.AssistantName
	}
	return "Kamu"
}

func exportMarkdown(messages []models.Message, opts ExportOptions) string {
	var sb strings.Builder

	sb.WriteString("# ")
	sb.WriteString(Title(messages))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "**Pesan:** %d\n", len(messages))
	fmt.Fprintf(&sb, "**Diekspor:** %s\n", time.Now().Format("2006-01-02 15:04:05"))
	sb.WriteString("\n---\n\n")

	for i, msg := range messages {
		sb.WriteString("## ")
		sb.WriteString(roleLabel(msg.Role))
		if msg.Timestamp != 0 {
			sb.WriteString(" (")
			sb.WriteString(msg.Time().Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		switch {
		case msg.HasInlineImage() && !opts.IncludeAttachments:
			sb.WriteString("_" + attachmentMarker + "_\n\n")
		case msg.HasImage():
			fmt.Fprintf(&sb, "![gambar](%s)\n\n", msg.ImageURL)
		}

		if msg.Text != "" {
			sb.WriteString(msg.Text)
			sb.WriteString("\n")
		}

		if i < len(messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

type exportMessage struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type exportConversation struct {
	Title      string          `json:"title"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   []exportMessage `json:"messages"`
}

func exportJSON(messages []models.Message, opts ExportOptions) ([]byte, error) {
	export := exportConversation{
		Title:      Title(messages),
		ExportedAt: time.Now(),
		Messages:   make([]exportMessage, len(messages)),
	}

	for i, msg := range messages {
		image := msg.ImageURL
		if msg.HasInlineImage() && !opts.IncludeAttachments {
			image = attachmentMarker
		}
		export.Messages[i] = exportMessage{
			Role:      string(msg.Role),
			Text:      msg.Text,
			ImageURL:  image,
			Timestamp: msg.Time(),
		}
	}

	return sonic.ConfigStd.MarshalIndent(export, "", "  ")
}

// SearchResult is a message matching a search query
type SearchResult struct {
	Index   int
	Message models.Message
	Snippet string
}

// Search returns the messages whose text contains query, case-insensitively
func Search(messages []models.Message, query string) []SearchResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	var results []SearchResult
	for i, msg := range messages {
		if strings.Contains(strings.ToLower(msg.Text), strings.ToLower(query)) {
			results = append(results, SearchResult{
				Index:   i,
				Message: msg,
				Snippet: extractSnippet(msg.Text, query, 80),
			})
		}
	}
	return results
}

// extractSnippet cuts about maxLen runes of content around the first match of query
func extractSnippet(content, query string, maxLen int) string {
	runes := []rune(strings.Join(strings.Fields(content), " "))
	lower := []rune(strings.ToLower(string(runes)))

	idx := strings.Index(string(lower), strings.ToLower(query))
	if idx == -1 {
		if len(runes) > maxLen {
			return string(runes[:maxLen]) + "..."
		}
		return string(runes)
	}
	pos := len([]rune(string(lower)[:idx]))

	half := maxLen / 2
	start := pos - half
	end := pos + len([]rune(query)) + half

	if start < 0 {
		start = 0
		end = maxLen
	}
	if end > len(runes) {
		end = len(runes)
		start = end - maxLen
		if start < 0 {
			start = 0
		}
	}

	if start > end {
		start = end
	}

	snippet := string(runes[start:end])
	if start > 0 {
		snippet = "..." + snippet
	}
	if end < len(runes) {
		snippet += "..."
	}
	return snippet
}

// FormatRelativeTime formats t relative to now, e.g. "5 menit lalu" or "kemarin"
func FormatRelativeTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "baru saja"
	case diff < time.Hour:
		return fmt.Sprintf("%d menit lalu", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%d jam lalu", int(diff.Hours()))
	case diff < 48*time.Hour:
		return "kemarin"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d hari lalu", int(diff.Hours()/24))
	default:
		return t.Format("02/01/2006")
	}
}

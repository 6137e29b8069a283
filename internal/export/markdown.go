package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iksnae/anybot/internal"
)

// MarkdownExporter exports conversations in Markdown format
type MarkdownExporter struct{}

// Export exports conversations to Markdown format
func (e *MarkdownExporter) Export(convs []internal.Conversation, w io.Writer) error {
	for i, conv := range convs {
		if i > 0 {
			_, _ = fmt.Fprintf(w, "\n")
		}
		title := conv.BotName
		if title == "" {
			title = "Query service"
		}
		_, _ = fmt.Fprintf(w, "# %s\n\n", title)

		if conv.BotID != "" {
			_, _ = fmt.Fprintf(w, "**Bot:** %s  \n", conv.BotID)
		}
		_, _ = fmt.Fprintf(w, "**Backend:** %s  \n", conv.Backend)
		if !conv.ExportedAt.IsZero() {
			_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", conv.ExportedAt.Format(time.RFC3339))
		}
		_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(conv.Messages))

		_, _ = fmt.Fprintf(w, "---\n\n")

		for j, msg := range conv.Messages {
			timestamp := ""
			if !msg.Timestamp.IsZero() {
				timestamp = fmt.Sprintf(" (%s)", msg.Timestamp.Format(time.RFC3339))
			}
			marker := ""
			if msg.IsError {
				marker = " _error_"
			}

			_, _ = fmt.Fprintf(w, "**%s:**%s%s\n\n%s\n\n", msg.Role, timestamp, marker, escapeMarkdown(msg.Text))

			if len(msg.Sources) > 0 {
				_, _ = fmt.Fprintf(w, "<details><summary>Sources</summary>\n\n")
				for k, src := range msg.Sources {
					_, _ = fmt.Fprintf(w, "%d. %s\n", k+1, oneLine(src))
				}
				_, _ = fmt.Fprintf(w, "\n</details>\n\n")
			}

			// Horizontal rule between messages
			if j < len(conv.Messages)-1 {
				_, _ = fmt.Fprintf(w, "---\n\n")
			}
		}
	}

	return nil
}

// escapeMarkdown escapes bold/underline markers outside code blocks
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

func oneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

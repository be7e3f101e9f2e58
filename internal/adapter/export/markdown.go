package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"textgen/internal/domain"
)

// MarkdownExporter exports a human-readable transcript.
type MarkdownExporter struct{}

// Export implements Exporter.
func (e *MarkdownExporter) Export(t *Transcript, w io.Writer) error {
	title := t.Title
	if title == "" {
		title = "Transcript"
	}
	_, _ = fmt.Fprintf(w, "# %s\n\n", title)
	if !t.ExportedAt.IsZero() {
		_, _ = fmt.Fprintf(w, "**Exported:** %s  \n", t.ExportedAt.Format(time.RFC3339))
	}
	_, _ = fmt.Fprintf(w, "**Messages:** %d\n\n", len(t.Messages))
	_, _ = fmt.Fprintf(w, "---\n\n")

	for i, msg := range t.Messages {
		stamp := ""
		if !msg.CreatedAt.IsZero() {
			stamp = fmt.Sprintf(" (%s)", msg.CreatedAt.Format("15:04:05"))
		}

		if _, err := fmt.Fprintf(w, "**%s:**%s\n\n%s\n\n", label(t, msg.Role), stamp, escapeMarkdown(msg.Content)); err != nil {
			return fmt.Errorf("write message: %w", err)
		}

		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	return nil
}

func label(t *Transcript, role domain.Role) string {
	if role == domain.RoleUser {
		return "User"
	}
	if t.Assistant != "" {
		return t.Assistant
	}
	return "Assistant"
}

// escapeMarkdown escapes emphasis markers so generated text renders literally.
func escapeMarkdown(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		line = strings.ReplaceAll(line, "**", "\\*\\*")
		line = strings.ReplaceAll(line, "__", "\\_\\_")
		if strings.HasPrefix(line, "#") {
			line = "\\" + line
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

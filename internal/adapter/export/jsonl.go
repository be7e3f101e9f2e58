package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// JSONLExporter exports one message per line.
type JSONLExporter struct{}

// Export implements Exporter.
func (e *JSONLExporter) Export(t *Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, msg := range t.Messages {
		obj := map[string]interface{}{
			"id":      msg.ID,
			"role":    msg.Role,
			"content": msg.Content,
		}
		if !msg.CreatedAt.IsZero() {
			obj["created_at"] = msg.CreatedAt.Format(time.RFC3339)
		}

		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

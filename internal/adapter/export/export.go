package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"textgen/internal/domain"
)

// Transcript is the exported view of a conversation.
type Transcript struct {
	Title      string           `json:"title" yaml:"title"`
	Assistant  string           `json:"assistant,omitempty" yaml:"assistant,omitempty"`
	ExportedAt time.Time        `json:"exported_at" yaml:"exported_at"`
	Messages   []domain.Message `json:"messages" yaml:"messages"`
}

// Exporter writes a transcript in one format.
type Exporter interface {
	Export(t *Transcript, w io.Writer) error
	Extension() string
}

// Formats lists the accepted format names.
var Formats = []string{"json", "jsonl", "md", "yaml"}

// NewExporter creates a new exporter based on format.
func NewExporter(format string) (Exporter, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return &JSONLExporter{}, nil
	case "md", "markdown":
		return &MarkdownExporter{}, nil
	case "yaml", "yml":
		return &YAMLExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	default:
		return nil, domain.NewDomainError("export.NewExporter", domain.ErrInvalidInput,
			fmt.Sprintf("unsupported format %q (supported: %s)", format, strings.Join(Formats, ", ")))
	}
}

// WriteFile exports t to path using format. An empty path becomes
// "transcript-<timestamp>.<ext>" inside dir.
func WriteFile(t *Transcript, format, dir, path string) (string, error) {
	exp, err := NewExporter(format)
	if err != nil {
		return "", err
	}
	if path == "" {
		name := fmt.Sprintf("transcript-%s.%s", t.ExportedAt.Format("20060102-150405"), exp.Extension())
		path = filepath.Join(dir, name)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return "", domain.NewDomainError("export.WriteFile", domain.ErrExport, err.Error())
	}
	if err := exp.Export(t, f); err != nil {
		f.Close()
		return "", domain.NewDomainError("export.WriteFile", domain.ErrExport, err.Error())
	}
	if err := f.Close(); err != nil {
		return "", domain.NewDomainError("export.WriteFile", domain.ErrExport, err.Error())
	}
	return path, nil
}

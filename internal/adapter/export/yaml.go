package export

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the transcript as YAML.
type YAMLExporter struct{}

// Export implements Exporter.
func (e *YAMLExporter) Export(t *Transcript, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	defer func() { _ = enc.Close() }()

	return enc.Encode(t)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

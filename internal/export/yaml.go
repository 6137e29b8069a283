package export

import (
	"io"

	"github.com/iksnae/anybot/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports conversations in YAML format
type YAMLExporter struct{}

// Export exports conversations to YAML format
func (e *YAMLExporter) Export(convs []internal.Conversation, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	if convs == nil {
		convs = []internal.Conversation{}
	}
	return enc.Encode(convs)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

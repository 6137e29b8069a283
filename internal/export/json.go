package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/anybot/internal"
)

// JSONExporter exports conversations as one pretty-printed JSON array
type JSONExporter struct{}

// Export exports conversations to JSON format
func (e *JSONExporter) Export(convs []internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if convs == nil {
		convs = []internal.Conversation{}
	}
	return enc.Encode(convs)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/iksnae/anybot/internal"
)

// JSONLExporter exports conversations in JSONL format (one message per line)
type JSONLExporter struct{}

// Export exports conversations to JSONL format
func (e *JSONLExporter) Export(convs []internal.Conversation, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, conv := range convs {
		for _, msg := range conv.Messages {
			obj := map[string]interface{}{
				"role": msg.Role,
				"text": msg.Text,
			}
			if conv.BotID != "" {
				obj["bot_id"] = conv.BotID
			}
			if !msg.Timestamp.IsZero() {
				obj["timestamp"] = msg.Timestamp.Format(time.RFC3339)
			}
			if len(msg.Sources) > 0 {
				obj["sources"] = msg.Sources
			}
			if msg.IsError {
				obj["is_error"] = true
			}

			// Encode to single line
			if err := enc.Encode(obj); err != nil {
				return fmt.Errorf("failed to encode message: %w", err)
			}
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

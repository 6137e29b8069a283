package cmd

import (
	"time"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/export"
)

// exportTranscript writes convs to path and returns how many were written.
// The file extension picks the format; format is used when there is none.
func exportTranscript(convs []internal.Conversation, path, format string) (int, error) {
	if len(convs) == 0 {
		internal.LogWarn("No conversations to export, writing an empty transcript")
	}
	now := time.Now()
	for i := range convs {
		if convs[i].ExportedAt.IsZero() {
			convs[i].ExportedAt = now
		}
	}
	if err := export.WriteFile(path, format, convs); err != nil {
		return 0, err
	}
	internal.LogInfo("Exported %d conversation(s) to %s", len(convs), path)
	return len(convs), nil
}

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/iksnae/anybot/internal"
)

// Exporter defines the interface for all transcript export formats
type Exporter interface {
	Export(convs []internal.Conversation, w io.Writer) error
	Extension() string
}

// NewExporter creates a new exporter based on format
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
		return nil, fmt.Errorf("unsupported format: %s (supported: jsonl, md, yaml, json)", format)
	}
}

// ForPath picks the exporter from the file extension of path, falling back
// to format when the extension is missing
func ForPath(path, format string) (Exporter, error) {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return NewExporter(ext)
	}
	return NewExporter(format)
}

// WriteFile exports convs to path, creating parent directories as needed
func WriteFile(path, format string, convs []internal.Conversation) error {
	exp, err := ForPath(path, format)
	if err != nil {
		return &internal.ExportError{Format: format, Path: path, Err: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &internal.ExportError{Format: exp.Extension(), Path: path, Err: err}
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exp.Extension(), Path: path, Err: err}
	}
	defer f.Close()

	if err := exp.Export(convs, f); err != nil {
		return &internal.ExportError{Format: exp.Extension(), Path: path, Err: err}
	}
	internal.LogInfo("Exported %d conversation(s) to %s", len(convs), path)
	return nil
}

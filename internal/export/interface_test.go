package export

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/anybot/internal"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		wantType string
		wantExt  string
		wantErr  bool
	}{
		{
			name:     "jsonl format",
			format:   "jsonl",
			wantType: "JSONLExporter",
			wantExt:  "jsonl",
			wantErr:  false,
		},
		{
			name:     "markdown format",
			format:   "md",
			wantType: "MarkdownExporter",
			wantExt:  "md",
			wantErr:  false,
		},
		{
			name:     "markdown format long",
			format:   "markdown",
			wantType: "MarkdownExporter",
			wantExt:  "md",
			wantErr:  false,
		},
		{
			name:     "yaml format",
			format:   "yaml",
			wantType: "YAMLExporter",
			wantExt:  "yaml",
			wantErr:  false,
		},
		{
			name:     "yml alias",
			format:   "yml",
			wantType: "YAMLExporter",
			wantExt:  "yaml",
			wantErr:  false,
		},
		{
			name:     "uppercase format",
			format:   "JSON",
			wantType: "JSONExporter",
			wantExt:  "json",
			wantErr:  false,
		},
		{
			name:     "json format",
			format:   "json",
			wantType: "JSONExporter",
			wantExt:  "json",
			wantErr:  false,
		},
		{
			name:     "unsupported format",
			format:   "xml",
			wantType: "",
			wantExt:  "",
			wantErr:  true,
		},
		{
			name:     "empty format",
			format:   "",
			wantType: "",
			wantExt:  "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewExporter() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if exporter == nil {
					t.Error("NewExporter() returned nil exporter")
					return
				}

				// Verify extension
				if got := exporter.Extension(); got != tt.wantExt {
					t.Errorf("Exporter.Extension() = %v, want %v", got, tt.wantExt)
				}

				// Verify type (rough check)
				switch tt.wantType {
				case "JSONLExporter":
					if _, ok := exporter.(*JSONLExporter); !ok {
						t.Errorf("Expected JSONLExporter, got %T", exporter)
					}
				case "MarkdownExporter":
					if _, ok := exporter.(*MarkdownExporter); !ok {
						t.Errorf("Expected MarkdownExporter, got %T", exporter)
					}
				case "YAMLExporter":
					if _, ok := exporter.(*YAMLExporter); !ok {
						t.Errorf("Expected YAMLExporter, got %T", exporter)
					}
				case "JSONExporter":
					if _, ok := exporter.(*JSONExporter); !ok {
						t.Errorf("Expected JSONExporter, got %T", exporter)
					}
				}
			} else {
				if exporter != nil {
					t.Errorf("NewExporter() returned exporter %T, want nil", exporter)
				}
			}
		})
	}
}

func TestForPath(t *testing.T) {
	tests := []struct {
		path    string
		format  string
		wantExt string
		wantErr bool
	}{
		{"chat.json", "md", "json", false},
		{"out/chat.yml", "md", "yaml", false},
		{"transcript", "jsonl", "jsonl", false},
		{"transcript", "md", "md", false},
		{"chat.csv", "md", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path+"/"+tt.format, func(t *testing.T) {
			exp, err := ForPath(tt.path, tt.format)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ForPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && exp.Extension() != tt.wantExt {
				t.Errorf("ForPath() extension = %v, want %v", exp.Extension(), tt.wantExt)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "chat.md")
	convs := []internal.Conversation{*internal.CreateTestConversation("bot-1")}

	if err := WriteFile(path, "json", convs); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	if !strings.Contains(string(data), "# Test Bot") {
		t.Errorf("extension should select markdown, got:\n%s", data)
	}

	err = WriteFile(filepath.Join(dir, "chat.xml"), "md", convs)
	var exportErr *internal.ExportError
	if !errors.As(err, &exportErr) {
		t.Errorf("WriteFile() error = %v, want *ExportError", err)
	}
}

package internal

import (
	"encoding/json"
	"testing"
)

func TestParseView(t *testing.T) {
	tests := []struct {
		in      string
		want    View
		wantErr bool
	}{
		{"create", ViewCreate, false},
		{" Edit ", ViewEdit, false},
		{"CHAT", ViewChat, false},
		{"settings", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseView(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseView(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseView(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestViewLabels(t *testing.T) {
	want := []string{"Create Assistant", "Update Assistant", "Chat Interface"}
	for i, v := range Views {
		if got := v.Label(); got != want[i] {
			t.Errorf("%s.Label() = %q, want %q", v, got, want[i])
		}
	}
}

func TestDocument_UnmarshalJSON(t *testing.T) {
	var bot BotDescriptor
	data := `{"id":"b1","name":"Docs","documents":["a.md",{"name":"b.md"},{"filename":"c.md"}],"urls":[]}`
	if err := json.Unmarshal([]byte(data), &bot); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	if len(bot.Documents) != 3 {
		t.Fatalf("got %d documents, want 3", len(bot.Documents))
	}
	for i, want := range []string{"a.md", "b.md", "c.md"} {
		if bot.Documents[i].Name != want {
			t.Errorf("document %d = %q, want %q", i, bot.Documents[i].Name, want)
		}
		if bot.Documents[i].HasContent() {
			t.Errorf("document %d should carry no content", i)
		}
	}

	var doc Document
	if err := json.Unmarshal([]byte(`42`), &doc); err == nil {
		t.Error("a number is not a document")
	}
}

func TestBotDescriptor_Clone(t *testing.T) {
	orig := BotDescriptor{
		ID:        "b1",
		Name:      "Docs",
		Documents: []Document{{Name: "a.md", Content: []byte("abc")}},
		URLs:      []string{"https://docs.example.com"},
	}
	c := orig.Clone()
	c.Documents[0].Content[0] = 'x'
	c.URLs[0] = "changed"

	if string(orig.Documents[0].Content) != "abc" {
		t.Error("Clone should copy document content")
	}
	if orig.URLs[0] != "https://docs.example.com" {
		t.Error("Clone should copy URLs")
	}
}

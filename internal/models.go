package internal

import (
	"encoding/json"
	"fmt"
	"strings"
)

// View selects one of the three screens
type View string

const (
	ViewCreate View = "create"
	ViewEdit   View = "edit"
	ViewChat   View = "chat"
)

// Views lists the screens in sidebar order
var Views = []View{ViewCreate, ViewEdit, ViewChat}

// Valid reports whether v names a known screen
func (v View) Valid() bool {
	switch v {
	case ViewCreate, ViewEdit, ViewChat:
		return true
	}
	return false
}

// Label returns the sidebar label for a view
func (v View) Label() string {
	switch v {
	case ViewCreate:
		return "Create Assistant"
	case ViewEdit:
		return "Update Assistant"
	case ViewChat:
		return "Chat Interface"
	}
	return string(v)
}

// ParseView parses a view name
func ParseView(s string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown view: %q (supported: create, edit, chat)", s)
	}
	return v, nil
}

// Document is a source document attached to a bot.
// Content is only present for files attached locally; documents echoed
// back by the server carry just a name.
type Document struct {
	Name    string `json:"name" yaml:"name"`
	Content []byte `json:"-" yaml:"-"`
}

// HasContent reports whether the document carries file bytes
func (d Document) HasContent() bool {
	return d.Content != nil
}

// UnmarshalJSON accepts either a bare file name or an object with a name field
func (d *Document) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		d.Name = name
		return nil
	}

	var obj struct {
		Name     string `json:"name"`
		Filename string `json:"filename"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("document must be a string or an object: %w", err)
	}
	d.Name = obj.Name
	if d.Name == "" {
		d.Name = obj.Filename
	}
	return nil
}

// BotDescriptor is the server-side record of one configured assistant
type BotDescriptor struct {
	ID        string     `json:"id" yaml:"id" validate:"required"`
	Name      string     `json:"name" yaml:"name" validate:"required"`
	Documents []Document `json:"documents" yaml:"documents"`
	URLs      []string   `json:"urls" yaml:"urls"`
}

// Clone returns a deep copy of the descriptor
func (b BotDescriptor) Clone() BotDescriptor {
	out := BotDescriptor{ID: b.ID, Name: b.Name}
	if b.Documents != nil {
		out.Documents = make([]Document, len(b.Documents))
		for i, doc := range b.Documents {
			out.Documents[i] = Document{Name: doc.Name}
			if doc.Content != nil {
				out.Documents[i].Content = append([]byte(nil), doc.Content...)
			}
		}
	}
	if b.URLs != nil {
		out.URLs = append([]string(nil), b.URLs...)
	}
	return out
}

package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestNewCreateForm(t *testing.T) {
	f := NewCreateForm()
	if f.Mode() != FormCreate {
		t.Errorf("Mode() = %v, want FormCreate", f.Mode())
	}
	if !reflect.DeepEqual(f.URLs(), []string{""}) {
		t.Errorf("URLs() = %q, want one blank entry", f.URLs())
	}
	if len(f.Documents()) != 0 || f.Name() != "" || f.Busy() || f.Error() != "" {
		t.Error("new form should be empty and idle")
	}
}

func TestBotForm_DocumentsAndURLs(t *testing.T) {
	f := NewCreateForm()
	f.AddDocuments(Document{Name: "a.md"}, Document{Name: "b.md"}, Document{Name: "c.md"})
	f.RemoveDocument(1)
	f.RemoveDocument(7)
	f.RemoveDocument(-1)

	names := []string{}
	for _, d := range f.Documents() {
		names = append(names, d.Name)
	}
	if !reflect.DeepEqual(names, []string{"a.md", "c.md"}) {
		t.Errorf("documents = %v, want [a.md c.md]", names)
	}

	f.SetURL(0, "https://one.example.com")
	i := f.AddURL()
	f.SetURL(i, "https://two.example.com")
	f.AddURL()
	f.SetURL(9, "ignored")
	f.RemoveURL(0)

	want := []string{"https://two.example.com", ""}
	if !reflect.DeepEqual(f.URLs(), want) {
		t.Errorf("URLs() = %q, want %q", f.URLs(), want)
	}
}

func TestBotForm_BeginValidation(t *testing.T) {
	tests := []struct {
		name    string
		form    func() *BotForm
		wantMsg string
	}{
		{
			name:    "create without name",
			form:    NewCreateForm,
			wantMsg: MsgNameRequired,
		},
		{
			name: "create with blank name",
			form: func() *BotForm {
				f := NewCreateForm()
				f.SetName("   ")
				return f
			},
			wantMsg: MsgNameRequired,
		},
		{
			name: "edit without selection",
			form: func() *BotForm {
				f := NewEditForm()
				f.SetName("Docs")
				return f
			},
			wantMsg: MsgSelectBot,
		},
		{
			name: "edit with selection but cleared name",
			form: func() *BotForm {
				f := NewEditForm()
				f.Select(CreateTestBot("a", "Alpha"))
				f.SetName("")
				return f
			},
			wantMsg: MsgNameRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.form()
			sub, err := f.Begin(context.Background())
			if sub != nil {
				t.Error("invalid form should not start a submission")
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Begin() error = %v, want *ValidationError", err)
			}
			if f.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", f.Error(), tt.wantMsg)
			}
			if f.Busy() {
				t.Error("form should not be busy after a validation failure")
			}
		})
	}
}

func TestBotForm_CreateSuccessResets(t *testing.T) {
	f := NewCreateForm()
	f.SetName("Docs")
	f.AddDocuments(Document{Name: "guide.md", Content: []byte("# Guide")})
	f.SetURL(0, " https://docs.example.com ")
	f.AddURL()

	sub, err := f.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if !f.Busy() {
		t.Error("form should be busy while submitting")
	}
	if _, err := f.Begin(context.Background()); !errors.Is(err, ErrBusy) {
		t.Errorf("second Begin() error = %v, want ErrBusy", err)
	}
	if got := sub.Request.SubmittedURLs(); !reflect.DeepEqual(got, []string{"https://docs.example.com"}) {
		t.Errorf("SubmittedURLs() = %q", got)
	}

	created := CreateTestBot("new-id", "Docs")
	bot, ok := f.Finish(sub, &created, nil)
	if !ok {
		t.Fatal("Finish() = false, want true")
	}
	if !reflect.DeepEqual(bot, created) {
		t.Errorf("Finish() bot = %+v, want %+v", bot, created)
	}
	if f.Name() != "" || len(f.Documents()) != 0 || !reflect.DeepEqual(f.URLs(), []string{""}) {
		t.Error("form should be reset after success")
	}
	if f.Busy() {
		t.Error("form should be idle after Finish")
	}
	if sub.Context().Err() == nil {
		t.Error("submission context should be released after Finish")
	}
}

func TestBotForm_FailureMessages(t *testing.T) {
	tests := []struct {
		name string
		mode FormMode
		err  error
		want string
	}{
		{"create server message", FormCreate, &APIError{Op: "create-bot", Status: 400, Message: "Bot name taken"}, "Bot name taken"},
		{"create no message", FormCreate, &APIError{Op: "create-bot", Status: 500}, CreateFailedMessage},
		{"create transport", FormCreate, &TransportError{Op: "create-bot", Err: errors.New("refused")}, CreateFailedMessage},
		{"update server message", FormEdit, &APIError{Op: "update-bot", Status: 404, Message: "Bot not found"}, "Bot not found"},
		{"update malformed", FormEdit, &MalformedResponseError{Op: "update-bot", Err: errors.New("bad json")}, UpdateFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewCreateForm()
			if tt.mode == FormEdit {
				f = NewEditForm()
				f.Select(CreateTestBot("a", "Alpha"))
			} else {
				f.SetName("Docs")
			}

			sub, err := f.Begin(context.Background())
			if err != nil {
				t.Fatalf("Begin() error = %v", err)
			}
			if _, ok := f.Finish(sub, nil, tt.err); ok {
				t.Error("Finish() with error should report false")
			}
			if f.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", f.Error(), tt.want)
			}
			if f.Name() == "" {
				t.Error("fields should be kept after a failure")
			}
		})
	}
}

func TestBotForm_EditSelect(t *testing.T) {
	f := NewEditForm()
	bot := CreateTestBot("a", "Alpha")
	f.Select(bot)

	if f.Name() != "Alpha" {
		t.Errorf("Name() = %q, want Alpha", f.Name())
	}
	if !reflect.DeepEqual(f.URLs(), bot.URLs) {
		t.Errorf("URLs() = %q, want %q", f.URLs(), bot.URLs)
	}

	f.SetName("Alpha v2")
	sub, err := f.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if sub.BotID != "a" {
		t.Errorf("submission BotID = %q, want a", sub.BotID)
	}
	if sub.Request.Name != "Alpha v2" {
		t.Errorf("submission name = %q, want Alpha v2", sub.Request.Name)
	}

	updated := bot
	updated.Name = "Alpha v2"
	if _, ok := f.Finish(sub, &updated, nil); !ok {
		t.Fatal("Finish() = false, want true")
	}
	if _, selected := f.Selected(); selected {
		t.Error("edit form should drop its selection after success")
	}
}

func TestBotForm_CancelDropsResult(t *testing.T) {
	f := NewCreateForm()
	f.SetName("Docs")
	sub, err := f.Begin(context.Background())
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}

	f.Cancel()
	if sub.Context().Err() == nil {
		t.Error("Cancel should cancel the submission context")
	}
	bot := CreateTestBot("x", "Docs")
	if _, ok := f.Finish(sub, &bot, nil); ok {
		t.Error("Finish() after Cancel should be dropped")
	}
	if f.Name() != "Docs" {
		t.Error("dropped result should not reset the form")
	}
	if f.Busy() {
		t.Error("form should be idle after Cancel")
	}
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument() error = %v", err)
	}
	if doc.Name != "notes.txt" || string(doc.Content) != "hello" {
		t.Errorf("LoadDocument() = %+v", doc)
	}

	if _, err := LoadDocument(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("LoadDocument() should fail for a missing file")
	}
}

package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Inline messages shown by the bot forms
const (
	MsgNameRequired     = "Bot name is required"
	MsgSelectBot        = "Please select a bot to update"
	CreateFailedMessage = "Failed to create bot"
	UpdateFailedMessage = "Failed to update bot"
)

// BotRequest is the payload of a create or update call
type BotRequest struct {
	Name      string
	Documents []Document
	URLs      []string
}

// Validate checks the fields required by both create and update
func (r BotRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return &ValidationError{Field: "name", Message: MsgNameRequired}
	}
	return nil
}

// ValidateUpdate checks an update request before anything is sent
func ValidateUpdate(botID string, r BotRequest) error {
	if strings.TrimSpace(botID) == "" {
		return &ValidationError{Field: "botId", Message: MsgSelectBot}
	}
	return r.Validate()
}

// SubmittedURLs returns the URLs that will be sent, dropping blank entries
func (r BotRequest) SubmittedURLs() []string {
	urls := make([]string, 0, len(r.URLs))
	for _, u := range r.URLs {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// LoadDocument reads a file from disk as an attachable document
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read document %s: %w", path, err)
	}
	if data == nil {
		data = []byte{}
	}
	return Document{Name: filepath.Base(path), Content: data}, nil
}

// FormMode distinguishes the create form from the edit form
type FormMode int

const (
	FormCreate FormMode = iota
	FormEdit
)

// FormSubmission is the cancellation handle for one outstanding form submit
type FormSubmission struct {
	id      uint64
	BotID   string
	Request BotRequest
	ctx     context.Context
	cancel  context.CancelFunc
}

// Context returns the context the submission runs under
func (s *FormSubmission) Context() context.Context {
	return s.ctx
}

// BotForm is the ephemeral state behind the create and edit screens
type BotForm struct {
	mode      FormMode
	selected  *BotDescriptor
	name      string
	documents []Document
	urls      []string
	errText   string
	pending   *FormSubmission
	seq       uint64
}

// NewCreateForm returns an empty create form
func NewCreateForm() *BotForm {
	f := &BotForm{mode: FormCreate}
	f.Reset()
	return f
}

// NewEditForm returns an edit form with no bot selected
func NewEditForm() *BotForm {
	f := &BotForm{mode: FormEdit}
	f.Reset()
	return f
}

// Reset clears all fields, the inline error and the selection
func (f *BotForm) Reset() {
	f.selected = nil
	f.name = ""
	f.documents = nil
	f.urls = []string{""}
	f.errText = ""
}

func (f *BotForm) Mode() FormMode { return f.mode }
func (f *BotForm) Name() string   { return f.name }
func (f *BotForm) Busy() bool     { return f.pending != nil }
func (f *BotForm) Error() string  { return f.errText }

// SetName sets the bot name field
func (f *BotForm) SetName(name string) {
	f.name = name
}

// Documents returns the attached documents
func (f *BotForm) Documents() []Document {
	return append([]Document(nil), f.documents...)
}

// AddDocuments appends documents to the attachment list
func (f *BotForm) AddDocuments(docs ...Document) {
	f.documents = append(f.documents, docs...)
}

// RemoveDocument removes the document at index i
func (f *BotForm) RemoveDocument(i int) {
	if i < 0 || i >= len(f.documents) {
		return
	}
	f.documents = append(f.documents[:i:i], f.documents[i+1:]...)
}

// URLs returns the URL entries, including blank ones
func (f *BotForm) URLs() []string {
	return append([]string(nil), f.urls...)
}

// AddURL appends a blank URL entry and returns its index
func (f *BotForm) AddURL() int {
	f.urls = append(f.urls, "")
	return len(f.urls) - 1
}

// SetURL sets the URL entry at index i
func (f *BotForm) SetURL(i int, value string) {
	if i < 0 || i >= len(f.urls) {
		return
	}
	f.urls[i] = value
}

// RemoveURL removes the URL entry at index i
func (f *BotForm) RemoveURL(i int) {
	if i < 0 || i >= len(f.urls) {
		return
	}
	f.urls = append(f.urls[:i:i], f.urls[i+1:]...)
}

// Select loads a bot into the edit form
func (f *BotForm) Select(bot BotDescriptor) {
	b := bot.Clone()
	f.selected = &b
	f.name = b.Name
	f.documents = b.Documents
	f.urls = b.URLs
	if len(f.urls) == 0 {
		f.urls = []string{""}
	}
	f.errText = ""
}

// Selected returns the bot being edited
func (f *BotForm) Selected() (BotDescriptor, bool) {
	if f.selected == nil {
		return BotDescriptor{}, false
	}
	return f.selected.Clone(), true
}

// Request builds the payload from the current fields
func (f *BotForm) Request() BotRequest {
	return BotRequest{
		Name:      f.name,
		Documents: f.Documents(),
		URLs:      f.URLs(),
	}
}

// Validate checks the form without submitting it
func (f *BotForm) Validate() error {
	if f.mode == FormEdit {
		id := ""
		if f.selected != nil {
			id = f.selected.ID
		}
		return ValidateUpdate(id, f.Request())
	}
	return f.Request().Validate()
}

func (f *BotForm) fallback() string {
	if f.mode == FormEdit {
		return UpdateFailedMessage
	}
	return CreateFailedMessage
}

// Begin validates the form and starts a submission.
// Validation failures set the inline error and nothing is sent.
func (f *BotForm) Begin(ctx context.Context) (*FormSubmission, error) {
	if f.pending != nil {
		return nil, ErrBusy
	}
	if err := f.Validate(); err != nil {
		f.errText = UserFacingMessage(err, f.fallback())
		return nil, err
	}

	f.errText = ""
	f.seq++
	subCtx, cancel := context.WithCancel(ctx)
	sub := &FormSubmission{
		id:      f.seq,
		Request: f.Request(),
		ctx:     subCtx,
		cancel:  cancel,
	}
	if f.selected != nil {
		sub.BotID = f.selected.ID
	}
	f.pending = sub
	return sub, nil
}

// Finish applies the outcome of a submission. On success the form is
// reset and the descriptor is returned for the Store to own. Outcomes of
// cancelled or superseded submissions are ignored.
func (f *BotForm) Finish(sub *FormSubmission, bot *BotDescriptor, err error) (BotDescriptor, bool) {
	if sub == nil || sub != f.pending {
		LogDebug("Dropping stale form result")
		return BotDescriptor{}, false
	}
	f.pending = nil
	sub.cancel()

	if err == nil && bot == nil {
		err = &MalformedResponseError{Op: "bot", Err: fmt.Errorf("empty response")}
	}
	if err != nil {
		LogError("Bot submission %d failed: %v", sub.id, err)
		f.errText = UserFacingMessage(err, f.fallback())
		return BotDescriptor{}, false
	}

	result := bot.Clone()
	f.Reset()
	return result, true
}

// Cancel abandons the outstanding submission, if any
func (f *BotForm) Cancel() {
	if f.pending == nil {
		return
	}
	f.pending.cancel()
	f.pending = nil
}

// SetError shows a message inline without submitting
func (f *BotForm) SetError(text string) {
	f.errText = text
}

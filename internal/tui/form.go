package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/iksnae/anybot/internal"
)

// MsgBotGone is shown when an update succeeds for a bot missing from the session
const MsgBotGone = "Bot no longer exists"

// formResultMsg carries a finished create or update call back to the UI loop
type formResultMsg struct {
	mode internal.FormMode
	sub  *internal.FormSubmission
	bot  *internal.BotDescriptor
	err  error
}

type field int

const (
	fieldBot field = iota
	fieldName
	fieldDocPath
	fieldDocs
	fieldURLs
	fieldSubmit
)

// formScreen renders a BotForm and maps keys onto it
type formScreen struct {
	form     *internal.BotForm
	fields   []field
	focus    int
	botIndex int
	docIndex int
	urlIndex int
	name     textinput.Model
	docPath  textinput.Model
	url      textinput.Model
}

func newInput(placeholder, prompt string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = prompt
	in.CharLimit = 0
	in.Width = 48
	return in
}

func newFormScreen(mode internal.FormMode) *formScreen {
	s := &formScreen{
		name:    newInput("Bot name", "Name: "),
		docPath: newInput("path/to/document.md", "Add file: "),
		url:     newInput("https://docs.example.com", "URL: "),
	}
	if mode == internal.FormEdit {
		s.form = internal.NewEditForm()
		s.fields = []field{fieldBot, fieldName, fieldDocPath, fieldDocs, fieldURLs, fieldSubmit}
	} else {
		s.form = internal.NewCreateForm()
		s.fields = []field{fieldName, fieldDocPath, fieldDocs, fieldURLs, fieldSubmit}
	}
	return s
}

func (s *formScreen) current() field {
	return s.fields[s.focus]
}

func (s *formScreen) focusField() tea.Cmd {
	s.name.Blur()
	s.docPath.Blur()
	s.url.Blur()
	switch s.current() {
	case fieldName:
		return s.name.Focus()
	case fieldDocPath:
		return s.docPath.Focus()
	case fieldURLs:
		return s.url.Focus()
	}
	return nil
}

func (s *formScreen) move(delta int) tea.Cmd {
	n := len(s.fields)
	s.focus = ((s.focus+delta)%n + n) % n
	return s.focusField()
}

// syncFromForm copies form state into the inputs after the form changed
// underneath them
func (s *formScreen) syncFromForm() {
	s.name.SetValue(s.form.Name())
	if docs := len(s.form.Documents()); s.docIndex >= docs {
		s.docIndex = max(docs-1, 0)
	}
	urls := s.form.URLs()
	if s.urlIndex >= len(urls) {
		s.urlIndex = max(len(urls)-1, 0)
	}
	if s.urlIndex < len(urls) {
		s.url.SetValue(urls[s.urlIndex])
	} else {
		s.url.SetValue("")
	}
}

// handleKey applies a key to the focused field. It reports true when the
// key asks for the form to be submitted.
func (s *formScreen) handleKey(msg tea.KeyMsg, bots []internal.BotDescriptor) (tea.Cmd, bool) {
	if s.form.Busy() {
		return nil, false
	}

	key := msg.String()
	switch key {
	case "tab":
		return s.move(1), false
	case "shift+tab":
		return s.move(-1), false
	case "ctrl+s":
		return nil, true
	}

	var cmd tea.Cmd
	switch s.current() {
	case fieldBot:
		switch key {
		case "up":
			if s.botIndex > 0 {
				s.botIndex--
			}
		case "down":
			if s.botIndex < len(bots)-1 {
				s.botIndex++
			}
		case "enter":
			if s.botIndex < len(bots) {
				s.form.Select(bots[s.botIndex])
				s.docIndex, s.urlIndex = 0, 0
				s.syncFromForm()
				return s.move(1), false
			}
		}

	case fieldName:
		if key == "enter" {
			return s.move(1), false
		}
		s.name, cmd = s.name.Update(msg)
		s.form.SetName(s.name.Value())

	case fieldDocPath:
		if key == "enter" {
			s.attach(strings.TrimSpace(s.docPath.Value()))
			return nil, false
		}
		s.docPath, cmd = s.docPath.Update(msg)

	case fieldDocs:
		switch key {
		case "up":
			if s.docIndex > 0 {
				s.docIndex--
			}
		case "down":
			if s.docIndex < len(s.form.Documents())-1 {
				s.docIndex++
			}
		case "ctrl+x":
			s.form.RemoveDocument(s.docIndex)
			s.syncFromForm()
		}

	case fieldURLs:
		urls := s.form.URLs()
		switch key {
		case "up":
			if s.urlIndex > 0 {
				s.urlIndex--
				s.url.SetValue(urls[s.urlIndex])
			}
		case "down":
			if s.urlIndex < len(urls)-1 {
				s.urlIndex++
				s.url.SetValue(urls[s.urlIndex])
			}
		case "enter":
			s.urlIndex = s.form.AddURL()
			s.url.SetValue("")
		case "ctrl+x":
			s.form.RemoveURL(s.urlIndex)
			s.syncFromForm()
		default:
			if len(urls) == 0 {
				s.urlIndex = s.form.AddURL()
			}
			s.url, cmd = s.url.Update(msg)
			s.form.SetURL(s.urlIndex, s.url.Value())
		}

	case fieldSubmit:
		if key == "enter" {
			return nil, true
		}
	}
	return cmd, false
}

// forward passes non-key messages such as cursor blinks to the focused input
func (s *formScreen) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch s.current() {
	case fieldName:
		s.name, cmd = s.name.Update(msg)
	case fieldDocPath:
		s.docPath, cmd = s.docPath.Update(msg)
	case fieldURLs:
		s.url, cmd = s.url.Update(msg)
	}
	return cmd
}

func (s *formScreen) attach(path string) {
	if path == "" {
		return
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	doc, err := internal.LoadDocument(path)
	if err != nil {
		internal.LogWarn("Could not attach document: %v", err)
		s.form.SetError(fmt.Sprintf("Cannot read %s", path))
		return
	}
	s.form.AddDocuments(doc)
	s.form.SetError("")
	s.docPath.SetValue("")
	s.docIndex = len(s.form.Documents()) - 1
}

func (s *formScreen) label(f field, text string) string {
	if s.current() == f {
		return focusedStyle.Render("▸ " + text)
	}
	return "  " + text
}

func (s *formScreen) view(bots []internal.BotDescriptor, spinView string) string {
	var b strings.Builder
	edit := s.form.Mode() == internal.FormEdit

	title := internal.ViewCreate.Label()
	if edit {
		title = internal.ViewEdit.Label()
	}
	b.WriteString(titleStyle.Render(title) + "\n\n")

	if edit {
		b.WriteString(s.label(fieldBot, "Select a bot") + "\n")
		if len(bots) == 0 {
			b.WriteString(mutedStyle.Render("    No bots yet. Create one first.") + "\n")
		}
		selected, hasSelected := s.form.Selected()
		for i, bot := range bots {
			cursor := "   "
			if s.current() == fieldBot && i == s.botIndex {
				cursor = " > "
			}
			line := cursor + " " + bot.Name
			if hasSelected && bot.ID == selected.ID {
				line += mutedStyle.Render(" (editing)")
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(s.label(fieldName, "Bot name") + "\n")
	b.WriteString("    " + s.name.View() + "\n\n")

	b.WriteString(s.label(fieldDocPath, "Documents") + "\n")
	b.WriteString("    " + s.docPath.View() + "\n")
	docs := s.form.Documents()
	if len(docs) == 0 {
		b.WriteString(mutedStyle.Render("    (none attached)") + "\n")
	}
	for i, doc := range docs {
		cursor := "    • "
		if s.current() == fieldDocs && i == s.docIndex {
			cursor = focusedStyle.Render("    > ")
		}
		b.WriteString(cursor + doc.Name + "\n")
	}
	if s.current() == fieldDocs {
		b.WriteString(helpStyle.Render("    up/down select · ctrl+x remove") + "\n")
	}
	b.WriteString("\n")

	b.WriteString(s.label(fieldURLs, "Documentation URLs") + "\n")
	for i, u := range s.form.URLs() {
		switch {
		case s.current() == fieldURLs && i == s.urlIndex:
			b.WriteString("    " + s.url.View() + "\n")
		case u == "":
			b.WriteString(mutedStyle.Render("    • (empty)") + "\n")
		default:
			b.WriteString("    • " + u + "\n")
		}
	}
	if s.current() == fieldURLs {
		b.WriteString(helpStyle.Render("    enter add URL · up/down select · ctrl+x remove") + "\n")
	}
	b.WriteString("\n")

	action := "Create Bot"
	busy := "Creating..."
	if edit {
		action, busy = "Update Bot", "Updating..."
	}
	switch {
	case s.form.Busy():
		b.WriteString("  " + spinView + " " + busy + "\n")
	case s.current() == fieldSubmit:
		b.WriteString("  " + focusedButtonStyle.Render(action) + "\n")
	default:
		b.WriteString("  " + buttonStyle.Render(action) + "\n")
	}

	if msg := s.form.Error(); msg != "" {
		b.WriteString("\n  " + errorStyle.Render(msg) + "\n")
	}

	b.WriteString("\n" + helpStyle.Render("tab/shift+tab move · ctrl+s submit · f1/f2/f3 switch screen · ctrl+c quit"))
	return b.String()
}

// teardown abandons the outstanding submission, if any
func (s *formScreen) teardown() {
	s.form.Cancel()
}

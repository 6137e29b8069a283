package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iksnae/anybot/internal"
)

// EmptyChatPrompt is shown on the chat screen when no bot is active
const EmptyChatPrompt = "Please select a bot to start chatting"

// chatReplyMsg carries a finished question back to the UI loop
type chatReplyMsg struct {
	reply internal.Reply
}

// chatScreen is the chat view for one bot. It is rebuilt whenever the
// active bot changes; the transcript itself lives in the Store.
type chatScreen struct {
	botID    string
	botName  string
	ctrl     *internal.ChatController
	errText  string
	input    textinput.Model
	viewport viewport.Model
}

func newChatScreen(bot internal.BotDescriptor, transcript *internal.Transcript, asker internal.Asker, welcome string, width, height int) *chatScreen {
	in := textinput.New()
	in.Placeholder = "Ask a question"
	in.Prompt = "You> "
	in.CharLimit = 0

	s := &chatScreen{
		botID:    bot.ID,
		botName:  bot.Name,
		input:    in,
		viewport: viewport.New(width, height),
	}
	if asker != nil {
		s.ctrl = internal.NewChatController(transcript, asker)
		s.ctrl.Greet(welcome)
	}
	s.resize(width, height)
	return s
}

func (s *chatScreen) focus() tea.Cmd {
	return s.input.Focus()
}

func (s *chatScreen) resize(width, height int) {
	s.viewport.Width = width
	s.viewport.Height = max(height-3, 3)
	s.input.Width = max(width-len(s.input.Prompt)-2, 10)
}

// refresh re-renders the transcript and scrolls to the latest message
func (s *chatScreen) refresh(spinView string) {
	s.viewport.SetContent(s.renderTranscript(spinView))
	s.viewport.GotoBottom()
}

func (s *chatScreen) renderTranscript(spinView string) string {
	if s.ctrl == nil {
		return ""
	}
	wrap := lipgloss.NewStyle().Width(max(s.viewport.Width-2, 10))

	var b strings.Builder
	for _, msg := range s.ctrl.Transcript().Messages() {
		if msg.Role == internal.RoleUser {
			b.WriteString(userLabelStyle.Render("You") + "\n")
		} else {
			b.WriteString(botLabelStyle.Render(s.botName) + "\n")
		}

		text := wrap.Render(msg.Text)
		if msg.IsError {
			text = errorStyle.Render(text)
		}
		b.WriteString(text + "\n")

		if len(msg.Sources) > 0 {
			b.WriteString(mutedStyle.Render("Sources:") + "\n")
			b.WriteString(internal.FormatSources(msg.Sources, max(s.viewport.Width-6, 10)))
		}
		b.WriteString("\n")
	}

	if s.ctrl.Thinking() {
		b.WriteString(botLabelStyle.Render(s.botName) + "\n")
		b.WriteString(spinView + " Thinking...\n")
	}
	return b.String()
}

func (s *chatScreen) view() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(internal.ViewChat.Label()) + " " + mutedStyle.Render("· "+s.botName) + "\n\n")

	if s.ctrl == nil {
		b.WriteString(errorStyle.Render(s.errText) + "\n")
		return b.String()
	}

	b.WriteString(s.viewport.View() + "\n")
	b.WriteString(s.input.View() + "\n")
	if s.ctrl.Thinking() {
		b.WriteString(helpStyle.Render("esc cancel · pgup/pgdown scroll"))
	} else {
		b.WriteString(helpStyle.Render("enter send · pgup/pgdown scroll"))
	}
	return b.String()
}

// teardown abandons the outstanding question, if any
func (s *chatScreen) teardown() {
	if s.ctrl != nil {
		s.ctrl.Cancel()
	}
}

func renderEmptyChat() string {
	return titleStyle.Render(internal.ViewChat.Label()) + "\n\n" + mutedStyle.Render(EmptyChatPrompt) + "\n"
}

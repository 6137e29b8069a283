package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iksnae/anybot/internal"
)

// BotService creates and updates bots on the remote service
type BotService interface {
	CreateBot(ctx context.Context, req internal.BotRequest) (*internal.BotDescriptor, error)
	UpdateBot(ctx context.Context, botID string, req internal.BotRequest) (*internal.BotDescriptor, error)
}

// AskerFactory returns the Asker used to chat with a bot
type AskerFactory func(botID string) (internal.Asker, error)

// Options configures the TUI model
type Options struct {
	Bots    BotService
	Askers  AskerFactory
	Welcome string
	Context context.Context
}

// Model routes between the create, edit and chat screens. The active
// screen is whatever the Store says it is.
type Model struct {
	ctx     context.Context
	store   *internal.Store
	bots    BotService
	askers  AskerFactory
	welcome string
	spin    spinner.Model
	create  *formScreen
	edit    *formScreen
	chat    *chatScreen
	width   int
	height  int
}

// New creates the root model over store
func New(store *internal.Store, opts Options) *Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	m := &Model{
		ctx:     ctx,
		store:   store,
		bots:    opts.Bots,
		askers:  opts.Askers,
		welcome: opts.Welcome,
		spin:    s,
		width:   100,
		height:  30,
	}
	m.enter(store.ActiveView())
	return m
}

// Store returns the session state the model renders
func (m *Model) Store() *internal.Store {
	return m.store
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.chat != nil {
			m.chat.resize(m.mainWidth()-2, m.chatHeight())
			m.chat.refresh(m.spin.View())
		}
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case chatReplyMsg:
		if m.chat != nil && m.chat.ctrl != nil && m.chat.ctrl.Resolve(msg.reply) {
			m.chat.refresh(m.spin.View())
		}
		return m, nil

	case formResultMsg:
		return m, m.handleFormResult(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.chat != nil && m.chat.ctrl != nil && m.chat.ctrl.Thinking() {
			m.chat.refresh(m.spin.View())
		}
		return m, cmd
	}

	return m, m.forward(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		m.teardown()
		return tea.Quit
	case "f1":
		return m.switchView(internal.ViewCreate)
	case "f2":
		return m.switchView(internal.ViewEdit)
	case "f3":
		return m.switchView(internal.ViewChat)
	case "ctrl+n":
		return m.cycleBot(1)
	case "ctrl+p":
		return m.cycleBot(-1)
	}

	switch m.store.ActiveView() {
	case internal.ViewCreate:
		return m.handleFormKey(m.create, msg)
	case internal.ViewEdit:
		return m.handleFormKey(m.edit, msg)
	case internal.ViewChat:
		return m.handleChatKey(msg)
	}
	return nil
}

func (m *Model) handleFormKey(s *formScreen, msg tea.KeyMsg) tea.Cmd {
	if s == nil {
		return nil
	}
	cmd, submit := s.handleKey(msg, m.store.Bots())
	if !submit {
		return cmd
	}
	return tea.Batch(cmd, m.submit(s))
}

// submit starts the create or update call for s off the UI loop
func (m *Model) submit(s *formScreen) tea.Cmd {
	sub, err := s.form.Begin(m.ctx)
	if err != nil {
		internal.LogDebug("Form not submitted: %v", err)
		return nil
	}

	mode := s.form.Mode()
	svc := m.bots
	return func() tea.Msg {
		if svc == nil {
			return formResultMsg{mode: mode, sub: sub, err: errors.New("no bot service configured")}
		}
		var bot *internal.BotDescriptor
		var err error
		if mode == internal.FormEdit {
			bot, err = svc.UpdateBot(sub.Context(), sub.BotID, sub.Request)
		} else {
			bot, err = svc.CreateBot(sub.Context(), sub.Request)
		}
		return formResultMsg{mode: mode, sub: sub, bot: bot, err: err}
	}
}

func (m *Model) handleFormResult(msg formResultMsg) tea.Cmd {
	s := m.create
	if msg.mode == internal.FormEdit {
		s = m.edit
	}
	if s == nil {
		return nil
	}

	bot, ok := s.form.Finish(msg.sub, msg.bot, msg.err)
	s.syncFromForm()
	if !ok {
		return nil
	}

	if msg.mode == internal.FormEdit {
		if !m.store.UpdateBot(bot) {
			s.form.SetError(MsgBotGone)
			return nil
		}
		internal.LogInfo("Bot %s updated", bot.ID)
	} else {
		m.store.AddBot(bot)
		internal.LogInfo("Bot %s created", bot.ID)
	}

	m.teardown()
	return m.enter(m.store.ActiveView())
}

func (m *Model) handleChatKey(msg tea.KeyMsg) tea.Cmd {
	c := m.chat
	if c == nil || c.ctrl == nil {
		return nil
	}

	switch msg.String() {
	case "enter":
		req, err := c.ctrl.Submit(m.ctx, c.input.Value())
		if err != nil {
			return nil
		}
		c.input.SetValue("")
		c.refresh(m.spin.View())
		ctrl := c.ctrl
		return func() tea.Msg {
			return chatReplyMsg{reply: ctrl.Execute(req)}
		}
	case "esc":
		if c.ctrl.Thinking() {
			c.ctrl.Cancel()
			c.refresh(m.spin.View())
		}
		return nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		c.viewport, cmd = c.viewport.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return cmd
}

// switchView tears down the current screen and builds the requested one
func (m *Model) switchView(v internal.View) tea.Cmd {
	if v == m.store.ActiveView() {
		return nil
	}
	m.teardown()
	m.store.SetActiveView(v)
	return m.enter(m.store.ActiveView())
}

// cycleBot activates the next or previous bot and opens its chat
func (m *Model) cycleBot(delta int) tea.Cmd {
	bots := m.store.Bots()
	if len(bots) == 0 {
		return nil
	}
	idx := -1
	if active, ok := m.store.ActiveBot(); ok {
		for i, bot := range bots {
			if bot.ID == active.ID {
				idx = i
				break
			}
		}
	}
	n := len(bots)
	next := ((idx+delta)%n + n) % n
	if idx < 0 && delta < 0 {
		next = n - 1
	}

	m.teardown()
	m.store.SetActiveBot(bots[next].ID)
	m.store.SetActiveView(internal.ViewChat)
	return m.enter(internal.ViewChat)
}

func (m *Model) enter(v internal.View) tea.Cmd {
	switch v {
	case internal.ViewCreate:
		m.create = newFormScreen(internal.FormCreate)
		return m.create.focusField()
	case internal.ViewEdit:
		m.edit = newFormScreen(internal.FormEdit)
		if active, ok := m.store.ActiveBot(); ok {
			for i, bot := range m.store.Bots() {
				if bot.ID == active.ID {
					m.edit.botIndex = i
				}
			}
		}
		return m.edit.focusField()
	case internal.ViewChat:
		return m.openChat()
	}
	return nil
}

func (m *Model) openChat() tea.Cmd {
	bot, ok := m.store.ActiveBot()
	if !ok {
		m.chat = nil
		return nil
	}

	var asker internal.Asker
	var askerErr error
	if m.askers == nil {
		askerErr = errors.New("no chat backend configured")
	} else {
		asker, askerErr = m.askers(bot.ID)
	}

	m.chat = newChatScreen(bot, m.store.Transcript(bot.ID), asker, m.welcome, m.mainWidth()-2, m.chatHeight())
	if askerErr != nil {
		internal.LogError("Chat unavailable for bot %s: %v", bot.ID, askerErr)
		m.chat.errText = fmt.Sprintf("Chat unavailable: %v", askerErr)
		return nil
	}
	m.chat.refresh(m.spin.View())
	return m.chat.focus()
}

// teardown cancels whatever the live screens have in flight
func (m *Model) teardown() {
	if m.create != nil {
		m.create.teardown()
		m.create = nil
	}
	if m.edit != nil {
		m.edit.teardown()
		m.edit = nil
	}
	if m.chat != nil {
		m.chat.teardown()
		m.chat = nil
	}
}

func (m *Model) forward(msg tea.Msg) tea.Cmd {
	switch m.store.ActiveView() {
	case internal.ViewCreate:
		if m.create != nil {
			return m.create.forward(msg)
		}
	case internal.ViewEdit:
		if m.edit != nil {
			return m.edit.forward(msg)
		}
	case internal.ViewChat:
		if m.chat != nil {
			var cmd tea.Cmd
			m.chat.input, cmd = m.chat.input.Update(msg)
			return cmd
		}
	}
	return nil
}

func (m *Model) mainWidth() int {
	return max(m.width-sidebarWidth-4, 20)
}

func (m *Model) chatHeight() int {
	return max(m.height-4, 5)
}

func (m *Model) View() string {
	var main string
	switch m.store.ActiveView() {
	case internal.ViewCreate:
		if m.create != nil {
			main = m.create.view(nil, m.spin.View())
		}
	case internal.ViewEdit:
		if m.edit != nil {
			main = m.edit.view(m.store.Bots(), m.spin.View())
		}
	case internal.ViewChat:
		if m.chat == nil {
			main = renderEmptyChat()
		} else {
			main = m.chat.view()
		}
	}

	body := lipgloss.NewStyle().Width(m.mainWidth()).Padding(0, 1).Render(main)
	return lipgloss.JoinHorizontal(lipgloss.Top, renderSidebar(m.store, m.height-1), body)
}

// Run starts the TUI on the terminal and blocks until the user quits
func Run(m *Model, opts ...tea.ProgramOption) error {
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	m.teardown()
	return err
}

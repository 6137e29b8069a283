package internal

// Store holds the session state of one running client: the active
// screen, the bots created or updated during this session, the active
// bot and one transcript per chat session.
//
// A Store is owned by the UI loop and is not safe for concurrent use.
// Views receive it by reference; nothing reaches it through a global.
type Store struct {
	activeView  View
	bots        []BotDescriptor
	activeBotID string
	transcripts map[string]*Transcript
}

// NewStore creates a store showing the create screen with no bots
func NewStore() *Store {
	return &Store{
		activeView:  ViewCreate,
		transcripts: make(map[string]*Transcript),
	}
}

// ActiveView returns the selected screen
func (s *Store) ActiveView() View {
	return s.activeView
}

// SetActiveView switches screens; unknown views are ignored
func (s *Store) SetActiveView(view View) {
	if !view.Valid() {
		LogWarn("Ignoring unknown view %q", view)
		return
	}
	s.activeView = view
}

// Bots returns a copy of the known bots in insertion order
func (s *Store) Bots() []BotDescriptor {
	out := make([]BotDescriptor, len(s.bots))
	for i, bot := range s.bots {
		out[i] = bot.Clone()
	}
	return out
}

// Bot looks up a bot by id
func (s *Store) Bot(id string) (BotDescriptor, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.bots[i].Clone(), true
	}
	return BotDescriptor{}, false
}

// ActiveBot returns the active bot, if any
func (s *Store) ActiveBot() (BotDescriptor, bool) {
	if s.activeBotID == "" {
		return BotDescriptor{}, false
	}
	return s.Bot(s.activeBotID)
}

// AddBot records a newly created bot, makes it active and switches to chat.
// A descriptor with an id already present replaces that entry in place.
func (s *Store) AddBot(bot BotDescriptor) {
	bot = bot.Clone()
	if i := s.indexOf(bot.ID); i >= 0 {
		s.bots[i] = bot
	} else {
		s.bots = append(s.bots, bot)
	}
	s.activeBotID = bot.ID
	s.activeView = ViewChat
	LogDebug("Bot %s (%s) added, %d bot(s) in session", bot.ID, bot.Name, len(s.bots))
}

// UpdateBot replaces the bot with the same id, makes it active and
// switches to chat. It reports false and changes nothing when no bot
// with that id exists.
func (s *Store) UpdateBot(bot BotDescriptor) bool {
	i := s.indexOf(bot.ID)
	if i < 0 {
		LogWarn("Update for unknown bot %s ignored", bot.ID)
		return false
	}
	s.bots[i] = bot.Clone()
	s.activeBotID = bot.ID
	s.activeView = ViewChat
	return true
}

// SetActiveBot selects a bot by id. Ids not in the session are refused.
func (s *Store) SetActiveBot(id string) bool {
	if s.indexOf(id) < 0 {
		return false
	}
	s.activeBotID = id
	return true
}

// ClearActiveBot deselects the active bot
func (s *Store) ClearActiveBot() {
	s.activeBotID = ""
}

// Transcript returns the transcript for a chat session, creating it on first use
func (s *Store) Transcript(sessionKey string) *Transcript {
	t, ok := s.transcripts[sessionKey]
	if !ok {
		t = NewTranscript()
		s.transcripts[sessionKey] = t
	}
	return t
}

// HasTranscript reports whether a chat session has been started
func (s *Store) HasTranscript(sessionKey string) bool {
	_, ok := s.transcripts[sessionKey]
	return ok
}

// Conversations returns an export snapshot of every non-empty transcript,
// in bot order
func (s *Store) Conversations(backend string) []Conversation {
	var out []Conversation
	for _, bot := range s.bots {
		t, ok := s.transcripts[bot.ID]
		if !ok || t.Len() == 0 {
			continue
		}
		out = append(out, Conversation{
			BotID:    bot.ID,
			BotName:  bot.Name,
			Backend:  backend,
			Messages: t.Messages(),
		})
	}
	return out
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, bot := range s.bots {
		if bot.ID == id {
			return i
		}
	}
	return -1
}

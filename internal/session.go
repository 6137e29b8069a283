package internal

import "time"

// Role identifies who authored a transcript message
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message represents one entry of a chat transcript
type Message struct {
	Role      Role                   `json:"role" yaml:"role"`
	Text      string                 `json:"text" yaml:"text"`
	Timestamp time.Time              `json:"timestamp" yaml:"timestamp"`
	Sources   []string               `json:"sources,omitempty" yaml:"sources,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	IsError   bool                   `json:"is_error,omitempty" yaml:"is_error,omitempty"`
}

// Conversation is the exportable form of one chat session
type Conversation struct {
	BotID      string    `json:"bot_id,omitempty" yaml:"bot_id,omitempty"`
	BotName    string    `json:"bot_name,omitempty" yaml:"bot_name,omitempty"`
	Backend    string    `json:"backend" yaml:"backend"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Messages   []Message `json:"messages" yaml:"messages"`
}

// Transcript is an append-only, ordered list of messages
type Transcript struct {
	messages []Message
}

// NewTranscript creates an empty transcript
func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append adds a message to the end of the transcript
func (t *Transcript) Append(msg Message) {
	t.messages = append(t.messages, msg)
}

// Messages returns a copy of the transcript contents
func (t *Transcript) Messages() []Message {
	out := make([]Message, len(t.messages))
	copy(out, t.messages)
	return out
}

// Len returns the number of messages
func (t *Transcript) Len() int {
	return len(t.messages)
}

// Last returns the most recent message
func (t *Transcript) Last() (Message, bool) {
	if len(t.messages) == 0 {
		return Message{}, false
	}
	return t.messages[len(t.messages)-1], true
}

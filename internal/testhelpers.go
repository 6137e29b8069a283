package internal

import (
	"context"
	"sync"
	"time"
)

// CreateTestBot creates a bot descriptor with sample data
func CreateTestBot(id, name string) BotDescriptor {
	return BotDescriptor{
		ID:        id,
		Name:      name,
		Documents: []Document{{Name: name + ".md"}},
		URLs:      []string{"https://docs.example.com/" + id},
	}
}

// CreateTestConversation creates a conversation with a question and an answer
func CreateTestConversation(botID string) *Conversation {
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &Conversation{
		BotID:      botID,
		BotName:    "Test Bot",
		Backend:    "bot",
		ExportedAt: ts,
		Messages: []Message{
			{Role: RoleUser, Text: "How do I authenticate?", Timestamp: ts},
			{
				Role:      RoleBot,
				Text:      "Send the token in the Authorization header.",
				Timestamp: ts.Add(time.Second),
				Sources:   []string{"Auth section", "Headers section"},
			},
		},
	}
}

// FakeAsker is an Asker whose answers are scripted by tests
type FakeAsker struct {
	mu      sync.Mutex
	Reply   Answer
	Err     error
	Block   chan struct{} // when set, Ask waits for it to close or ctx to end
	Queries []string
}

// Ask records the query and returns the scripted answer
func (f *FakeAsker) Ask(ctx context.Context, query string) (Answer, error) {
	f.mu.Lock()
	f.Queries = append(f.Queries, query)
	block := f.Block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return Answer{}, ctx.Err()
		}
	}
	return f.Reply, f.Err
}

// Calls returns how many queries were sent
func (f *FakeAsker) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Queries)
}

// FixedClock returns a clock that always reports t
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

package api

import (
	"context"
	"fmt"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/config"
)

// QueryAsker answers questions through the query service
type QueryAsker struct {
	Client *Client
	TopN   int
}

// Ask implements internal.Asker
func (a *QueryAsker) Ask(ctx context.Context, query string) (internal.Answer, error) {
	res, err := a.Client.AskQuestion(ctx, query, a.TopN)
	if err != nil {
		return internal.Answer{}, err
	}
	return internal.Answer{
		Text:     res.LLMResponse,
		Sources:  res.Results,
		Metadata: res.Metadata,
	}, nil
}

// BotAsker answers questions through one bot of the bot service
type BotAsker struct {
	Client *Client
	BotID  string
}

// Ask implements internal.Asker
func (a *BotAsker) Ask(ctx context.Context, query string) (internal.Answer, error) {
	text, err := a.Client.Chat(ctx, a.BotID, query)
	if err != nil {
		return internal.Answer{}, err
	}
	return internal.Answer{Text: text}, nil
}

// NewAsker returns the Asker for the configured chat backend
func NewAsker(c *Client, chat config.ChatConfig, botID string) (internal.Asker, error) {
	switch chat.Backend {
	case config.BackendQuery:
		return &QueryAsker{Client: c, TopN: chat.TopN}, nil
	case config.BackendBot:
		return &BotAsker{Client: c, BotID: botID}, nil
	}
	return nil, &internal.ConfigError{Key: "chat.backend", Err: fmt.Errorf("unsupported backend %q", chat.Backend)}
}

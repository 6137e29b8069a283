package internal

import (
	"context"
	"strings"
	"time"
)

// ChatErrorMessage replaces the answer whenever a chat request fails
const ChatErrorMessage = "Sorry, I encountered an error while processing your request. Please try again."

// Answer is what an Asker returns for a question
type Answer struct {
	Text     string
	Sources  []string
	Metadata map[string]interface{}
}

// Asker sends one question to a remote assistant
type Asker interface {
	Ask(ctx context.Context, query string) (Answer, error)
}

// PendingRequest is the cancellation handle for one outstanding question
type PendingRequest struct {
	id     uint64
	Query  string
	ctx    context.Context
	cancel context.CancelFunc
}

// Context returns the context the request runs under
func (r *PendingRequest) Context() context.Context {
	return r.ctx
}

// Reply carries the outcome of a PendingRequest back to the UI loop
type Reply struct {
	Request *PendingRequest
	Answer  Answer
	Err     error
}

// ChatOption configures a ChatController
type ChatOption func(*ChatController)

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) ChatOption {
	return func(c *ChatController) {
		c.now = now
	}
}

// ChatController appends user questions and bot answers to a transcript,
// allowing at most one question in flight.
//
// Submit and Resolve must be called from the goroutine that owns the
// transcript. Execute only talks to the Asker and may run anywhere.
type ChatController struct {
	transcript *Transcript
	asker      Asker
	now        func() time.Time
	pending    *PendingRequest
	seq        uint64
}

// NewChatController creates a controller writing to transcript
func NewChatController(transcript *Transcript, asker Asker, opts ...ChatOption) *ChatController {
	c := &ChatController{
		transcript: transcript,
		asker:      asker,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Transcript returns the transcript the controller writes to
func (c *ChatController) Transcript() *Transcript {
	return c.transcript
}

// Thinking reports whether a question is outstanding
func (c *ChatController) Thinking() bool {
	return c.pending != nil
}

// Greet seeds an empty transcript with a welcome message
func (c *ChatController) Greet(text string) {
	if text == "" || c.transcript.Len() > 0 {
		return
	}
	c.transcript.Append(Message{Role: RoleBot, Text: text, Timestamp: c.now()})
}

// Submit appends the user message and returns a handle for the request
func (c *ChatController) Submit(ctx context.Context, text string) (*PendingRequest, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyQuery
	}
	if c.pending != nil {
		return nil, ErrBusy
	}

	c.transcript.Append(Message{Role: RoleUser, Text: text, Timestamp: c.now()})

	c.seq++
	reqCtx, cancel := context.WithCancel(ctx)
	c.pending = &PendingRequest{
		id:     c.seq,
		Query:  text,
		ctx:    reqCtx,
		cancel: cancel,
	}
	LogDebug("Chat request %d submitted", c.seq)
	return c.pending, nil
}

// Execute performs the remote call for req. It does not touch the transcript.
func (c *ChatController) Execute(req *PendingRequest) Reply {
	answer, err := c.asker.Ask(req.ctx, req.Query)
	return Reply{Request: req, Answer: answer, Err: err}
}

// Resolve appends exactly one bot message for the current request.
// Replies for cancelled or superseded requests are dropped and Resolve
// reports false.
func (c *ChatController) Resolve(reply Reply) bool {
	req := reply.Request
	if req == nil || req != c.pending {
		LogDebug("Dropping stale chat reply")
		return false
	}
	c.pending = nil
	req.cancel()

	msg := Message{Role: RoleBot, Timestamp: c.now()}
	if reply.Err != nil {
		LogError("Chat request %d failed: %v", req.id, reply.Err)
		msg.Text = ChatErrorMessage
		msg.IsError = true
	} else {
		msg.Text = reply.Answer.Text
		if len(reply.Answer.Sources) > 0 {
			msg.Sources = append([]string(nil), reply.Answer.Sources...)
		}
		msg.Metadata = reply.Answer.Metadata
	}
	c.transcript.Append(msg)
	return true
}

// Cancel abandons the outstanding request, if any
func (c *ChatController) Cancel() {
	if c.pending == nil {
		return
	}
	LogDebug("Chat request %d cancelled", c.pending.id)
	c.pending.cancel()
	c.pending = nil
}

// Ask submits text and waits for the answer. It returns the bot message
// that was appended.
func (c *ChatController) Ask(ctx context.Context, text string) (Message, error) {
	req, err := c.Submit(ctx, text)
	if err != nil {
		return Message{}, err
	}
	c.Resolve(c.Execute(req))
	last, _ := c.transcript.Last()
	return last, nil
}

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iksnae/anybot/internal"
	"github.com/iksnae/anybot/internal/config"
)

// Operation names carried by errors
const (
	OpQuery     = "query"
	OpCreateBot = "create-bot"
	OpUpdateBot = "update-bot"
	OpChat      = "chat"
	OpHealth    = "health"
)

// Client talks to the query service and the bot service.
// Calls fail fast: there is no retry and no caching.
type Client struct {
	queryURL   string
	botURL     string
	httpClient *http.Client
	validate   *validator.Validate
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// NewClient creates a client for the configured base URLs
func NewClient(cfg config.APIConfig, opts ...Option) *Client {
	c := &Client{
		queryURL:   strings.TrimRight(cfg.QueryURL, "/"),
		botURL:     strings.TrimRight(cfg.BotURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		validate:   validator.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// QueryURL returns the base URL of the query service
func (c *Client) QueryURL() string { return c.queryURL }

// BotURL returns the base URL of the bot service
func (c *Client) BotURL() string { return c.botURL }

// QueryResult is the answer of the query service
type QueryResult struct {
	LLMResponse string
	Results     []string
	Metadata    map[string]interface{}
}

type queryRequest struct {
	Query string `json:"query"`
	TopN  int    `json:"top_n"`
}

type queryResponse struct {
	LLMResponse *string                `json:"llm_response" validate:"required"`
	Results     []string               `json:"results"`
	Metadata    map[string]interface{} `json:"metadata"`
}

type chatRequest struct {
	BotID string `json:"botId"`
	Query string `json:"query"`
}

type chatResponse struct {
	Response *string `json:"response" validate:"required"`
}

// HealthStatus is the body of the query service health endpoint
type HealthStatus struct {
	Status string                 `json:"status" validate:"required"`
	Detail map[string]interface{} `json:"-"`
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// AskQuestion sends a question to the query service
func (c *Client) AskQuestion(ctx context.Context, query string, topN int) (*QueryResult, error) {
	payload, err := json.Marshal(queryRequest{Query: query, TopN: topN})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	var resp queryResponse
	url := c.queryURL + "/query"
	if err := c.do(ctx, OpQuery, http.MethodPost, url, bytes.NewReader(payload), "application/json", &resp); err != nil {
		return nil, err
	}
	return &QueryResult{
		LLMResponse: *resp.LLMResponse,
		Results:     resp.Results,
		Metadata:    resp.Metadata,
	}, nil
}

// CreateBot registers a new bot. A blank name fails locally without a request.
func (c *Client) CreateBot(ctx context.Context, req internal.BotRequest) (*internal.BotDescriptor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.sendBot(ctx, OpCreateBot, http.MethodPost, c.botURL+"/api/create-bot", "", req)
}

// UpdateBot replaces the configuration of an existing bot. A missing id or
// blank name fails locally without a request.
func (c *Client) UpdateBot(ctx context.Context, botID string, req internal.BotRequest) (*internal.BotDescriptor, error) {
	if err := internal.ValidateUpdate(botID, req); err != nil {
		return nil, err
	}
	return c.sendBot(ctx, OpUpdateBot, http.MethodPut, c.botURL+"/api/update-bot", botID, req)
}

// Chat sends a question to one bot
func (c *Client) Chat(ctx context.Context, botID, query string) (string, error) {
	if botID == "" {
		return "", internal.ErrNoActiveBot
	}
	payload, err := json.Marshal(chatRequest{BotID: botID, Query: query})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	var resp chatResponse
	url := c.botURL + "/api/chat"
	if err := c.do(ctx, OpChat, http.MethodPost, url, bytes.NewReader(payload), "application/json", &resp); err != nil {
		return "", err
	}
	return *resp.Response, nil
}

// Health reads the query service health endpoint
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var detail map[string]interface{}
	if err := c.do(ctx, OpHealth, http.MethodGet, c.queryURL+"/health", nil, "", &detail); err != nil {
		return nil, err
	}
	status := &HealthStatus{Detail: detail}
	if s, ok := detail["status"].(string); ok {
		status.Status = s
	}
	if err := c.validate.Struct(status); err != nil {
		return nil, &internal.MalformedResponseError{Op: OpHealth, Err: err}
	}
	return status, nil
}

// Ping reports the HTTP status of baseURL. Any response counts as reachable.
func (c *Client) Ping(ctx context.Context, baseURL string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return 0, &internal.TransportError{Op: OpHealth, URL: baseURL, Err: err}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &internal.TransportError{Op: OpHealth, URL: baseURL, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func (c *Client) sendBot(ctx context.Context, op, method, url, botID string, req internal.BotRequest) (*internal.BotDescriptor, error) {
	body, contentType, err := encodeBotForm(botID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bot form: %w", err)
	}

	var bot internal.BotDescriptor
	if err := c.do(ctx, op, method, url, body, contentType, &bot); err != nil {
		return nil, err
	}
	internal.LogDebug("Bot %s (%s) returned by %s", bot.ID, bot.Name, op)
	return &bot, nil
}

// encodeBotForm writes the multipart body of a create or update call.
// Documents with content become file parts; documents the server already
// knows are sent by name.
func encodeBotForm(botID string, req internal.BotRequest) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	if err := w.WriteField("name", req.Name); err != nil {
		return nil, "", err
	}
	if botID != "" {
		if err := w.WriteField("botId", botID); err != nil {
			return nil, "", err
		}
	}
	for _, doc := range req.Documents {
		if !doc.HasContent() {
			if err := w.WriteField("documents", doc.Name); err != nil {
				return nil, "", err
			}
			continue
		}
		part, err := w.CreateFormFile("documents", doc.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(doc.Content); err != nil {
			return nil, "", err
		}
	}
	for _, u := range req.SubmittedURLs() {
		if err := w.WriteField("urls", u); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func (c *Client) do(ctx context.Context, op, method, url string, body io.Reader, contentType string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return &internal.TransportError{Op: op, URL: url, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	internal.LogDebug("%s %s", method, url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &internal.TransportError{Op: op, URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &internal.TransportError{Op: op, URL: url, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &internal.APIError{Op: op, Status: resp.StatusCode, Message: serverMessage(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return &internal.MalformedResponseError{Op: op, Err: err}
	}
	if _, isMap := out.(*map[string]interface{}); isMap {
		return nil
	}
	if err := c.validate.Struct(out); err != nil {
		return &internal.MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

// serverMessage extracts the message field of an error body, falling back
// to its error field
func serverMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

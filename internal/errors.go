package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when a submission is already outstanding
	ErrBusy = errors.New("a request is already in progress")
	// ErrEmptyQuery is returned when a blank chat message is submitted
	ErrEmptyQuery = errors.New("query is empty")
	// ErrNoActiveBot is returned when a bot-scoped call has no bot selected
	ErrNoActiveBot = errors.New("no bot selected")
)

// ValidationError represents a local validation failure; the request is never sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [%s]: %s", e.Field, e.Message)
}

// TransportError represents a failure to reach the remote service
type TransportError struct {
	Op  string // "query", "create-bot", "update-bot", "chat"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error [%s] %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError represents a non-2xx response from the remote service
type APIError struct {
	Op      string
	Status  int
	Message string // server-provided message field, if any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error [%s] status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("api error [%s] status %d", e.Op, e.Status)
}

// UserMessage returns the server message when present, otherwise fallback
func (e *APIError) UserMessage(fallback string) string {
	if e.Message != "" {
		return e.Message
	}
	return fallback
}

// MalformedResponseError represents a 2xx response whose body has the wrong shape
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response [%s]: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [%s]: %v", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// UserFacingMessage maps an error from a bot create/update call to the
// text shown inline in the form
func UserFacingMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var validation *ValidationError
	if errors.As(err, &validation) {
		return validation.Message
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage(fallback)
	}
	return fallback
}

// Package llm adapts hosted text-completion APIs to a single Completer interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
)

// Request is one system+user exchange with fixed sampling settings.
type Request struct {
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// Completer sends a single completion request and returns the text of the first choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrMissingAPIKey is returned by constructors when no credential is configured.
var ErrMissingAPIKey = errors.New("llm api key is required")

// APIError is a failed call to a completion API together with the HTTP status it reported.
// Status is 0 when the failure never reached the API (network errors, bad configuration).
type APIError struct {
	Provider string
	Status   int
	Err      error
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s api call failed: %s", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s api call failed with status %d (%s): %s", e.Provider, e.Status, http.StatusText(e.Status), e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// StatusCode makes APIError usable by retry.Do.
func (e *APIError) StatusCode() int {
	return e.Status
}

var statusInMessage = regexp.MustCompile(`status code:? (\d{3})`)

// statusFromMessage recovers a status code from SDK errors that only report it as text.
func statusFromMessage(err error) int {
	match := statusInMessage.FindStringSubmatch(err.Error())
	if match == nil {
		return 0
	}
	status, convErr := strconv.Atoi(match[1])
	if convErr != nil {
		return 0
	}

	return status
}

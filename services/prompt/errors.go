package prompt

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("invalid prompt request")
	ErrGeneration = errors.New("prompt generation failed")
	ErrRateLimit  = errors.New("completion api rate limit exceeded")
	ErrServer     = errors.New("completion api server error")
	ErrUnknown    = errors.New("unexpected error while generating prompt")
)

// ErrEmptyResult is the cause of a GenerationError raised for a blank completion.
var ErrEmptyResult = errors.New("completion api returned an empty prompt")

type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// GenerationError covers blank completions and non-retryable API failures.
// Status is 0 for blank completions.
type GenerationError struct {
	Status int
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", ErrGeneration, e.Err)
	}
	return fmt.Sprintf("%s with status %d: %s", ErrGeneration, e.Status, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGeneration
}

// RateLimitError is returned once retries are exhausted on 429 responses.
type RateLimitError struct {
	Status int
	Err    error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", ErrRateLimit, e.Status, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

func (e *RateLimitError) Is(target error) bool {
	return target == ErrRateLimit
}

// ServerError is returned once retries are exhausted on 5xx responses.
type ServerError struct {
	Status int
	Err    error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", ErrServer, e.Status, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

func (e *ServerError) Is(target error) bool {
	return target == ErrServer
}

type UnknownError struct {
	Err error
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknown, e.Err)
}

func (e *UnknownError) Unwrap() error {
	return e.Err
}

func (e *UnknownError) Is(target error) bool {
	return target == ErrUnknown
}

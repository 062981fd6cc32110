package image

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMissingKey = errors.New("API key is missing")
	ErrNoImage    = errors.New("no image URL in response")
)

type Params struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size,omitempty"`
}

// Generator asks a provider for N images and returns their URLs.
type Generator interface {
	Generate(context.Context, Params) ([]string, error)
}

// Checker is implemented by generators that can tell whether they are usable
// before any request is made.
type Checker interface {
	Check() error
}

// APIError is a non-2xx response from the provider.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("provider returned status %d", e.StatusCode)
	}
	return e.Message
}

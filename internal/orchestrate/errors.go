package orchestrate

import (
	"context"
	"errors"

	"github.com/dmorgan81/imagine/internal/image"
	"github.com/samber/lo"
)

var (
	ErrPromptRequired = errors.New("prompt is required")
	ErrNotConfigured  = errors.New("provider is not configured")
	ErrTimeout        = errors.New("image generation timed out")
)

// FailedError is returned when every provider call failed.
type FailedError struct {
	Errors []error
}

// Error reports the most specific cause: a provider rejection, then any
// non-context failure, then whatever is left.
func (e *FailedError) Error() string {
	if len(e.Errors) == 0 {
		return "failed to generate images"
	}
	if err, ok := lo.Find(e.Errors, func(err error) bool {
		var apiErr *image.APIError
		return errors.As(err, &apiErr)
	}); ok {
		return err.Error()
	}
	if err, ok := lo.Find(e.Errors, func(err error) bool {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}); ok {
		return err.Error()
	}
	return e.Errors[0].Error()
}

func (e *FailedError) Unwrap() []error {
	return e.Errors
}

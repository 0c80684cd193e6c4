package domain

import (
	"errors"
	"fmt"
)

var (
	ErrArtifactNotFound = errors.New("artifact not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrDuplicate        = errors.New("duplicate artifact")
	ErrTemporary        = errors.New("temporary failure")

	// ErrRateLimited marks an exhausted retry/rotation round against the
	// generative service. Callers surface a "try again in a minute" message
	// instead of the raw provider error.
	ErrRateLimited = errors.New("rate limit exhausted")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrTemporary    = errors.New("temporary failure")

	ErrCatalogUnavailable    = errors.New("catalog unavailable")
	ErrAIInvocation          = errors.New("ai invocation failure")
	ErrAIResponseMalformed   = errors.New("ai response malformed")
	ErrRecommendationInvalid = errors.New("recommendation invalid")
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

package models

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate //nolint:gochecknoglobals
	validateOnce sync.Once           //nolint:gochecknoglobals
)

// Validate checks a decoded record against its struct tags.
func Validate(v any) error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return nil
}

// ValidateAll validates every element and returns the ones that pass along
// with the first error seen. Invalid records are dropped rather than failing
// the whole collection.
func ValidateAll[T any](items []T) ([]T, error) {
	var (
		out      = make([]T, 0, len(items))
		firstErr error
	)

	for i := range items {
		if err := Validate(&items[i]); err != nil {
			if firstErr == nil {
				firstErr = err
			}

			continue
		}

		out = append(out, items[i])
	}

	return out, firstErr
}

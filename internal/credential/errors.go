package credential

import "errors"

var (
	// ErrEmptyKey is returned when a store operation is called with an empty key.
	ErrEmptyKey = errors.New("credential store key cannot be empty")

	// ErrBackendNil is returned when a store is created without a backend.
	ErrBackendNil = errors.New("credential store backend is nil")

	// ErrUnknownDriver is returned when the configured store driver is not supported.
	ErrUnknownDriver = errors.New("unknown credential store driver")

	// ErrSealedValueTooShort is returned when an encrypted value is shorter than its nonce.
	ErrSealedValueTooShort = errors.New("sealed value too short")

	// ErrEmptyEncryptionKey is returned when a sealer is created without a secret.
	ErrEmptyEncryptionKey = errors.New("encryption key cannot be empty")
)

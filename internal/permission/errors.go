package permission

import "errors"

var (
	// ErrCatalogNil is returned when the repository is created without a backend.
	ErrCatalogNil = errors.New("permission catalog is nil")

	// ErrEmptyUserID is returned when an operation needs a user id and got none.
	ErrEmptyUserID = errors.New("user id can not be empty")

	// ErrStale is returned when a load finished after the repository was reset.
	ErrStale = errors.New("result discarded, repository was reset")
)

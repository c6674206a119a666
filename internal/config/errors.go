package config

import (
	"errors"
)

var (
	// ErrEmptyBackendURL error if config backend.url is empty.
	ErrEmptyBackendURL = errors.New("config backend.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("config webserver.port listening port can not be 0")

	// ErrUnknownStoreDriver error if config store.driver is not supported.
	ErrUnknownStoreDriver = errors.New("config store.driver is not supported")

	// ErrNegativeDuration error if a configured duration is negative.
	ErrNegativeDuration = errors.New("config durations can not be negative")
)

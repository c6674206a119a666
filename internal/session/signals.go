package session

import (
	"github.com/rs/zerolog"
)

// Severity of a user notice.
type Severity string

// Severities.
const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Navigator receives the navigation signals of the session.
type Navigator interface {
	Navigate(route string)
}

// Notifier shows user visible notices (toasts).
type Notifier interface {
	Notify(severity Severity, message string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

// Navigate implements Navigator.
func (f NavigatorFunc) Navigate(route string) { f(route) }

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(severity Severity, message string)

// Notify implements Notifier.
func (f NotifierFunc) Notify(severity Severity, message string) { f(severity, message) }

type logNavigator struct {
	log zerolog.Logger
}

func (n logNavigator) Navigate(route string) {
	n.log.Info().Str("route", route).Msg("navigate")
}

type logNotifier struct {
	log zerolog.Logger
}

func (n logNotifier) Notify(severity Severity, message string) {
	if severity == SeverityError {
		n.log.Error().Msg(message)
		return
	}

	n.log.Info().Msg(message)
}

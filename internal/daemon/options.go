package daemon

import "github.com/PropDesk/PropDesk-Console/internal/session"

// Option configures a Daemon.
type Option func(*options)

type options struct {
	navigator session.Navigator
	notifier  session.Notifier
}

// WithNavigator receives the navigation signals of the session.
func WithNavigator(n session.Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// WithNotifier receives the user notices of the session.
func WithNotifier(n session.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

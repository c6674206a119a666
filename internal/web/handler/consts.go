package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// APIPrefix is the path prefix of the JSON endpoints.
	APIPrefix = "/api"

	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"

	// MetricsPath exposes the prometheus registry.
	MetricsPath = "/metrics"

	// ErrNilACSFatalLogMsg is used if app, cfg or session is nil.
	ErrNilACSFatalLogMsg = "app, cfg or session is nil"
)

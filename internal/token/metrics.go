package token

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "propdesk"

// Outcomes recorded by the counters.
const (
	outcomeSuccess     = "success"
	outcomeSkipped     = "skipped"
	outcomeNetwork     = "network_error"
	outcomeRejected    = "rejected"
	outcomeValid       = "valid"
	outcomeInvalid     = "invalid"
	outcomeNoToken     = "no_token"
	outcomeCheckFailed = "error"
)

// refreshTotal counts refresh token exchanges by outcome.
var refreshTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access token refreshes, labelled by outcome.",
	},
	[]string{"outcome"},
)

// checkTotal counts periodic validity checks by outcome.
var checkTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_check_total",
		Help:      "Total number of access token validity checks, labelled by outcome.",
	},
	[]string{"outcome"},
)

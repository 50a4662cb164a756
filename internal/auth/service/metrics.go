package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Refresh validation outcomes, used as the "result" label.
const (
	resultValid   = "valid"
	resultExpired = "expired"
	resultUnknown = "unknown"
)

// Metrics are the session counters exported at /metrics.
type Metrics struct {
	RefreshIssued      prometheus.Counter
	RefreshReused      prometheus.Counter
	SessionsRevoked    prometheus.Counter
	RefreshValidations *prometheus.CounterVec
	InvariantRepairs   prometheus.Counter
	ConflictRetries    prometheus.Counter
	HousekeepingPurged *prometheus.CounterVec
}

// NewMetrics registers the session counters with reg. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RefreshIssued: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stanza",
			Subsystem: "auth",
			Name:      "refresh_tokens_issued_total",
			Help:      "Refresh tokens minted and stored.",
		}),
		RefreshReused: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stanza",
			Subsystem: "auth",
			Name:      "refresh_tokens_reused_total",
			Help:      "Logins answered with the user's existing active refresh token.",
		}),
		SessionsRevoked: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stanza",
			Subsystem: "auth",
			Name:      "sessions_revoked_total",
			Help:      "Sessions ended by sign-out.",
		}),
		RefreshValidations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stanza",
			Subsystem: "auth",
			Name:      "refresh_validations_total",
			Help:      "Refresh token validations by result.",
		}, []string{"result"}),
		InvariantRepairs: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stanza",
			Subsystem: "auth",
			Name:      "active_token_repairs_total",
			Help:      "Times more than one active refresh token was found for a user and pruned.",
		}),
		ConflictRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stanza",
			Subsystem: "auth",
			Name:      "refresh_token_conflict_retries_total",
			Help:      "Refresh token inserts that lost a race to another writer and were retried.",
		}),
		HousekeepingPurged: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stanza",
			Subsystem: "auth",
			Name:      "housekeeping_purged_total",
			Help:      "Rows removed by housekeeping, by table.",
		}, []string{"table"}),
	}
}

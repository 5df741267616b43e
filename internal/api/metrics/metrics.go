// Package metrics defines and registers all custom Prometheus metrics for
// the Natours API. It is the single source of truth for metric names,
// labels, and help strings. HTTP-level metrics come from echoprometheus;
// this package covers domain events only.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "natours"

// SignupsTotal counts completed signups.
var SignupsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of user accounts created.",
	},
)

// LoginFailuresTotal counts rejected login attempts.
var LoginFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_failures_total",
		Help:      "Total number of login attempts rejected for bad credentials.",
	},
)

// RateLimitedTotal counts requests rejected by the rate limiter.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected with 429.",
	},
)

// BookingsCreatedTotal counts bookings created after checkout redirects.
var BookingsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bookings_created_total",
		Help:      "Total number of bookings created.",
	},
)

// EmailsSentTotal counts delivered transactional emails.
// Label:
//   - template: "welcome" or "password_reset"
var EmailsSentTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emails_sent_total",
		Help:      "Total number of transactional emails delivered, by template.",
	},
	[]string{"template"},
)

// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "streamshelf"

var (
	// LoginAttempts counts login attempts by result (success, rejected, error).
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "login_attempts_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})

	// SessionValidations counts token checks by outcome (valid, anonymous, error).
	SessionValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "session_validations_total",
		Help:      "Session token validations by outcome.",
	}, []string{"outcome"})

	SessionsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "sessions_issued_total",
		Help:      "Sessions issued.",
	})

	SessionsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "sessions_purged_total",
		Help:      "Expired sessions removed by the reaper.",
	})

	// HistoryWrites counts watch-history mutations by operation.
	HistoryWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "history",
		Name:      "writes_total",
		Help:      "Watch history writes by operation.",
	}, []string{"op"})
)

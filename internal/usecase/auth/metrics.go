package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// loginsTotal counts login attempts by result.
	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Total login attempts by result",
		},
		[]string{"result"}, // result: success | failure
	)

	// sessionChecksTotal counts session checks by outcome.
	sessionChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_session_checks_total",
			Help: "Total session checks by outcome",
		},
		[]string{"outcome"}, // outcome: valid | expired | missing
	)
)

func recordLogin(success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	loginsTotal.WithLabelValues(result).Inc()
}

func recordCheck(outcome string) {
	sessionChecksTotal.WithLabelValues(outcome).Inc()
}

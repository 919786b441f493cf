package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registration outcomes recorded by the registration service
const (
	OutcomeSuccess           = "success"
	OutcomeNotFound          = "not_found"
	OutcomeAlreadyRegistered = "already_registered"
	OutcomeFull              = "full"
	OutcomeNotRegistered     = "not_registered"
	OutcomeLockTimeout       = "lock_timeout"
	OutcomeError             = "error"
)

var (
	signupCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "registration",
		Name:      "signups_total",
		Help:      "Signup attempts partitioned by outcome.",
	}, []string{"outcome"})
	unregisterCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mergington",
		Subsystem: "registration",
		Name:      "unregisters_total",
		Help:      "Unregister attempts partitioned by outcome.",
	}, []string{"outcome"})
	lockWaitHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mergington",
		Subsystem: "registration",
		Name:      "lock_wait_seconds",
		Help:      "Time spent waiting for the per-activity signup lock.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	})
	seededGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mergington",
		Subsystem: "store",
		Name:      "seeded",
		Help:      "1 when the last bootstrap inserted the seed activities, 0 otherwise.",
	})
)

func init() {
	prometheus.MustRegister(signupCounter, unregisterCounter, lockWaitHistogram, seededGauge)
}

// RecordSignup increments the signup counter for outcome.
func RecordSignup(outcome string) {
	signupCounter.WithLabelValues(outcome).Inc()
}

// RecordUnregister increments the unregister counter for outcome.
func RecordUnregister(outcome string) {
	unregisterCounter.WithLabelValues(outcome).Inc()
}

// ObserveLockWait records how long a caller waited for the signup lock.
func ObserveLockWait(seconds float64) {
	lockWaitHistogram.Observe(seconds)
}

// RecordBootstrap sets the seeded gauge.
func RecordBootstrap(seeded bool) {
	if seeded {
		seededGauge.Set(1)
		return
	}
	seededGauge.Set(0)
}

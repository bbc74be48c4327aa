package resilience

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsMu   sync.RWMutex
	stateGauge  *prometheus.GaugeVec
	transitions *prometheus.CounterVec
)

// MustRegisterMetrics registers breaker collectors under namespace. Calling it
// again reuses the collectors already registered.
func MustRegisterMetrics(namespace string, reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "breaker_state",
		Help:      "Current breaker state: 0=closed,1=open,2=half-open",
	}, []string{"target"})
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "breaker_transition_total",
		Help:      "Count of breaker state transitions",
	}, []string{"target", "from", "to"})

	metricsMu.Lock()
	defer metricsMu.Unlock()
	stateGauge = register(reg, gauge)
	transitions = register(reg, counter)
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func observeState(target string, s State) {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	if stateGauge != nil {
		stateGauge.WithLabelValues(target).Set(float64(s))
	}
}

func observeTransition(target string, from, to State) {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	if transitions != nil {
		transitions.WithLabelValues(target, from.String(), to.String()).Inc()
	}
}

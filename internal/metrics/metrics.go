// Package metrics instruments store activity with Prometheus collectors.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"sealkv/internal/domain"
)

// Outcome labels.
const (
	OutcomeOK             = "ok"
	OutcomeInvalid        = "invalid"
	OutcomeIntegrity      = "integrity"
	OutcomeIO             = "io"
	OutcomeKeyUnavailable = "key_unavailable"
	OutcomeClosed         = "closed"
	OutcomeError          = "error"
)

// Store implements domain.Observer on a set of collectors.
type Store struct {
	Ops        *prometheus.CounterVec
	OpLatency  *prometheus.HistogramVec
	LiveStores *prometheus.GaugeVec
}

// NewStore builds the store collectors. Nothing is registered.
func NewStore() *Store {
	return &Store{
		Ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sealkv",
			Name:      "store_operations_total",
			Help:      "Store operations by scope, operation and outcome",
		}, []string{"scope", "op", "outcome"}),
		OpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sealkv",
			Name:      "store_operation_seconds",
			Help:      "Store operation latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"scope", "op"}),
		LiveStores: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "sealkv",
			Name:      "live_stores",
			Help:      "Open store instances by scope",
		}, []string{"scope"}),
	}
}

// Init registers the store collectors plus the Go and process collectors on a
// fresh registry.
func Init(s *Store, logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		s.Ops, s.OpLatency, s.LiveStores,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		if err := reg.Register(c); err != nil {
			logger.Warn().Err(err).Msg("metric registration failed")
		}
	}
	logger.Debug().Msg("prometheus metrics initialized")
	return reg
}

// ObserveOp counts one operation.
func (s *Store) ObserveOp(scope domain.Scope, op string, err error, took time.Duration) {
	s.Ops.WithLabelValues(scope.String(), op, Outcome(err)).Inc()
	s.OpLatency.WithLabelValues(scope.String(), op).Observe(took.Seconds())
}

// StoreOpened bumps the live store gauge.
func (s *Store) StoreOpened(scope domain.Scope) { s.LiveStores.WithLabelValues(scope.String()).Inc() }

// StoreClosed lowers the live store gauge.
func (s *Store) StoreClosed(scope domain.Scope) { s.LiveStores.WithLabelValues(scope.String()).Dec() }

// Outcome classifies err into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, domain.ErrInvalidName), errors.Is(err, domain.ErrInvalidKey), errors.Is(err, domain.ErrValueTooLarge):
		return OutcomeInvalid
	case errors.Is(err, domain.ErrIntegrity):
		return OutcomeIntegrity
	case errors.Is(err, domain.ErrIO):
		return OutcomeIO
	case errors.Is(err, domain.ErrKeyUnavailable):
		return OutcomeKeyUnavailable
	case errors.Is(err, domain.ErrClosed):
		return OutcomeClosed
	default:
		return OutcomeError
	}
}

var _ domain.Observer = (*Store)(nil)

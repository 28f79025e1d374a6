// Package metrics exposes Prometheus metrics for the dApp operations.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/dmint/internal/dapp"
)

const namespace = "dmint"

// Metrics holds the collectors fed by the sequencer and balance reader.
type Metrics struct {
	registry *prometheus.Registry

	Submitted   *prometheus.CounterVec
	Finished    *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	Reads       *prometheus.CounterVec
	ReadLatency prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Submitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "tx",
			Name:      "submitted_total",
			Help:      "Transactions handed to the wallet, by operation and step",
		}, []string{"op", "step"}),
		Finished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "operation",
			Name:      "finished_total",
			Help:      "Finished operations by outcome; failures carry the error kind",
		}, []string{"op", "outcome"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "operation",
			Name:      "duration_seconds",
			Help:      "Wall time of an operation including confirmations and the refresh",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120, 300},
		}, []string{"op"}),
		Reads: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "balances",
			Name:      "reads_total",
			Help:      "Balance snapshot reads by outcome",
		}, []string{"outcome"}),
		ReadLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "balances",
			Name:      "read_seconds",
			Help:      "Latency of the joint balance read",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// TxSubmitted implements dapp.Observer.
func (m *Metrics) TxSubmitted(op dapp.Op, step dapp.Step) {
	m.Submitted.WithLabelValues(string(op), string(step)).Inc()
}

// OperationFinished implements dapp.Observer.
func (m *Metrics) OperationFinished(op dapp.Op, err error, took time.Duration) {
	m.Finished.WithLabelValues(string(op), outcome(err)).Inc()
	m.Duration.WithLabelValues(string(op)).Observe(took.Seconds())
}

// BalancesRead implements dapp.Observer.
func (m *Metrics) BalancesRead(err error, took time.Duration) {
	m.Reads.WithLabelValues(outcome(err)).Inc()
	m.ReadLatency.Observe(took.Seconds())
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	if k := dapp.KindOf(err); k != 0 {
		return k.String()
	}
	return "error"
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	log.Info("metrics listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "metrics server")
	}
	return nil
}

var _ dapp.Observer = (*Metrics)(nil)

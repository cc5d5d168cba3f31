// Package metrics exposes run counters to Prometheus.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the counters of one run. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry       *prometheus.Registry
	Ticks          prometheus.Counter
	Signals        *prometheus.CounterVec
	OrdersAdmitted *prometheus.CounterVec
	OrdersRejected *prometheus.CounterVec
	Rebalances     *prometheus.CounterVec
}

// New registers the counters on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "replay", Name: "ticks_total", Help: "Feed advances processed",
		}),
		Signals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replay", Name: "signals_total", Help: "Signals emitted",
		}, []string{"source", "direction"}),
		OrdersAdmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replay", Name: "orders_admitted_total", Help: "Orders that passed the cash check",
		}, []string{"side", "order_type"}),
		OrdersRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replay", Name: "orders_rejected_total", Help: "Orders dropped by the cash check",
		}, []string{"side"}),
		Rebalances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "replay", Name: "rebalances_total", Help: "Rebalance triggers fired",
		}, []string{"policy"}),
	}

	m.registry.MustRegister(m.Ticks, m.Signals, m.OrdersAdmitted, m.OrdersRejected, m.Rebalances)

	return m
}

// Registry returns the registry the counters live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Tick() {
	if m == nil {
		return
	}

	m.Ticks.Inc()
}

func (m *Metrics) Signal(source, direction string) {
	if m == nil {
		return
	}

	m.Signals.WithLabelValues(source, direction).Inc()
}

func (m *Metrics) Admitted(side, orderType string) {
	if m == nil {
		return
	}

	m.OrdersAdmitted.WithLabelValues(side, orderType).Inc()
}

func (m *Metrics) Rejected(side string) {
	if m == nil {
		return
	}

	m.OrdersRejected.WithLabelValues(side).Inc()
}

func (m *Metrics) Rebalance(policy string) {
	if m == nil {
		return
	}

	m.Rebalances.WithLabelValues(policy).Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() { _ = srv.ListenAndServe() }()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	return srv
}

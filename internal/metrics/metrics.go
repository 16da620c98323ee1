package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg *prometheus.Registry

	SyncScheduled   prometheus.Counter
	SyncSucceeded   prometheus.Counter
	SyncFailed      prometheus.Counter
	ReplayApplied   prometheus.Counter
	ReplayRequeued  prometheus.Counter
	PendingOps      prometheus.Gauge
	ActiveCarts     prometheus.Gauge
	CartsExpired    prometheus.Counter
	EventsPublished prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	syncScheduled := prometheus.NewCounter(prometheus.CounterOpts{Name: "cart_sync_scheduled_total"})
	syncSucceeded := prometheus.NewCounter(prometheus.CounterOpts{Name: "cart_sync_succeeded_total"})
	syncFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "cart_sync_failed_total"})
	replayApplied := prometheus.NewCounter(prometheus.CounterOpts{Name: "queue_replay_applied_total"})
	replayRequeued := prometheus.NewCounter(prometheus.CounterOpts{Name: "queue_replay_requeued_total"})
	pendingOps := prometheus.NewGauge(prometheus.GaugeOpts{Name: "queue_pending_operations"})
	activeCarts := prometheus.NewGauge(prometheus.GaugeOpts{Name: "cart_active_sessions"})
	cartsExpired := prometheus.NewCounter(prometheus.CounterOpts{Name: "cart_expired_swept_total"})
	eventsPublished := prometheus.NewCounter(prometheus.CounterOpts{Name: "cart_events_published_total"})

	r.MustRegister(syncScheduled, syncSucceeded, syncFailed, replayApplied,
		replayRequeued, pendingOps, activeCarts, cartsExpired, eventsPublished)

	return &Registry{
		reg:             r,
		SyncScheduled:   syncScheduled,
		SyncSucceeded:   syncSucceeded,
		SyncFailed:      syncFailed,
		ReplayApplied:   replayApplied,
		ReplayRequeued:  replayRequeued,
		PendingOps:      pendingOps,
		ActiveCarts:     activeCarts,
		CartsExpired:    cartsExpired,
		EventsPublished: eventsPublished,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

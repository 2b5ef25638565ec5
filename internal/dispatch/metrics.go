package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_notifications_total",
		Help: "Notification attempts by channel kind and outcome state.",
	}, []string{"kind", "state"})
	mTransportDur = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dispatch_transport_duration_seconds",
		Help:    "Time spent inside a transport call.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	mDeliveryErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dispatch_delivery_errors_total",
		Help: "Finished notifications that carry an error text.",
	}, []string{"kind"})
	mUnknownKind = promauto.NewCounter(prometheus.CounterOpts{
		Name: "dispatch_unknown_kind_total",
		Help: "Channels with a kind no transport is registered for.",
	})
)

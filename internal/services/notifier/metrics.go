package notifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mConsumed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_status_changes_consumed_total",
		Help: "StatusChanged events consumed",
	})
	mFanout = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_channel_deliveries_total",
		Help: "Channel deliveries started",
	})
	mErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "notifier_errors_total",
		Help: "Errors",
	})
)

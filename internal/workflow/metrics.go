package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_orders_created_total",
		Help: "Created orders by type.",
	}, []string{"type"})

	ordersCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_completed_total",
		Help: "Orders confirmed by an admin.",
	})

	ordersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_cancelled_total",
		Help: "Orders cancelled by an admin.",
	})

	ordersExpired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_orders_expired_total",
		Help: "Unpaid orders cancelled by the sweeper.",
	})

	deliveryFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "store_credentials_delivery_failures_total",
		Help: "Completed orders whose credentials message failed to send.",
	})
)

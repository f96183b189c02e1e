package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersListed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_orders_listed_total",
			Help: "Total number of orders created.",
		},
	)
	BidsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_bids_accepted_total",
			Help: "Total number of accepted auction bids.",
		},
	)
	OrdersSettled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_orders_settled_total",
			Help: "Total number of settled orders by settlement kind.",
		},
		[]string{"kind"},
	)
	OrdersCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_orders_cancelled_total",
			Help: "Total number of cancelled orders.",
		},
	)
	EmergencyRecoveries = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "market_emergency_recoveries_total",
			Help: "Total number of emergency recoveries of stuck auctions.",
		},
	)
	FailedOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_failed_operations_total",
			Help: "Total number of rejected or failed operations.",
		},
		[]string{"operation"},
	)
)

func Register(registry *prometheus.Registry) {
	registry.MustRegister(
		OrdersListed,
		BidsAccepted,
		OrdersSettled,
		OrdersCancelled,
		EmergencyRecoveries,
		FailedOperations,
	)
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

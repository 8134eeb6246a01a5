// Package metrics has prometheus collectors of the ledger
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"net/http"
)

var (
	TradesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrade_trades_total",
		Help: "Buy and sell attempts by side and outcome",
	}, []string{"side", "outcome"})
	OracleRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrade_oracle_requests_total",
		Help: "Price oracle lookups by outcome",
	}, []string{"outcome"})
	OracleLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "papertrade_oracle_latency_seconds",
		Help:    "Price oracle lookup latency",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	PriceCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "papertrade_price_cache_total",
		Help: "Price cache lookups by result",
	}, []string{"result"})
)

// Init registers the collectors on a fresh registry
func Init() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		TradesTotal, OracleRequestsTotal, OracleLatency, PriceCacheTotal,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		if err := reg.Register(c); err != nil {
			log.Error(err)
		}
	}
	log.Info("prometheus metrics initialized")
	return reg
}

// Handler serves the registry
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

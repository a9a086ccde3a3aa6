package rpc

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_calls_total",
			Help: "Remote procedure calls by procedure, transport and outcome",
		},
		[]string{"procedure", "transport", "outcome"},
	)
	CallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_call_duration_seconds",
			Help:    "Time spent inside procedure handlers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)
)

func init() {
	prometheus.MustRegister(CallsTotal)
	prometheus.MustRegister(CallDuration)
}

package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var labelsCreatedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "labeld_labels_created_total",
	Help: "Total number of label rows created via emitEvent",
}, []string{"neg"})

var eventsSentCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "labeld_events_sent_total",
	Help: "Total number of stream frames written to subscribers",
}, []string{"remote_addr", "user_agent"})

var queriesHandledCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "labeld_queries_handled_total",
	Help: "Total number of queryLabels requests handled",
})

var writesRateLimitedCounter = promauto.NewCounter(prometheus.CounterOpts{
	Name: "labeld_writes_rate_limited_total",
	Help: "Total number of emitEvent requests rejected by rate limiting",
})

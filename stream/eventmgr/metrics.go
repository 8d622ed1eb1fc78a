package eventmgr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var eventsPublished = promauto.NewCounter(prometheus.CounterOpts{
	Name: "labeld_events_published_total",
	Help: "Total number of label events published to the stream",
})

var eventsReplayed = promauto.NewCounter(prometheus.CounterOpts{
	Name: "labeld_events_replayed_total",
	Help: "Total number of persisted events replayed to catching-up subscribers",
})

var subscribersConnected = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "labeld_stream_subscribers",
	Help: "Number of currently connected stream subscribers",
})

var subscribersKilled = promauto.NewCounter(prometheus.CounterOpts{
	Name: "labeld_stream_subscribers_killed_total",
	Help: "Total number of subscribers terminated for falling too far behind",
})

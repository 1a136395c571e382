package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lxr/gitkv/object"
)

type metrics struct {
	requests       *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	objects        *prometheus.CounterVec
	unpackFailures prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gitkv",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gitkv",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		objects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gitkv",
			Name:      "objects_unpacked_total",
			Help:      "Objects decoded from pushed packfiles by type.",
		}, []string{"type"}),
		unpackFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gitkv",
			Name:      "receive_pack_failures_total",
			Help:      "Push requests that could not be decoded.",
		}),
	}
	for _, c := range []prometheus.Collector{m.requests, m.duration, m.objects, m.unpackFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) observe(route, method string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *metrics) countObjects(objs map[object.ID]*object.Object) {
	for _, obj := range objs {
		m.objects.WithLabelValues(obj.Type.String()).Inc()
	}
}

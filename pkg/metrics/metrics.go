// Package metrics holds the Prometheus collectors shared by the intake
// service, the worker and the Kafka transport.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "deca"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

var latencyBuckets = []float64{
	0.0005, 0.001, 0.002, 0.005,
	0.01, 0.02, 0.05, 0.1,
	0.2, 0.5, 1, 2, 5,
}

type collectors struct {
	submissionsTotal   *prometheus.CounterVec
	submissionDuration *prometheus.HistogramVec

	storeTotal    *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec

	kafkaPublishTotal   *prometheus.CounterVec
	kafkaPublishLatency *prometheus.HistogramVec
	kafkaConsumeTotal   *prometheus.CounterVec
	kafkaConsumeLatency *prometheus.HistogramVec
	kafkaDeadLettered   *prometheus.CounterVec

	httpRequestsTotal *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

var get = sync.OnceValue(func() *collectors {
	return &collectors{
		submissionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Total number of processed submissions by decision action.",
		}, []string{"action"}),
		submissionDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "submission_processing_seconds",
			Help:      "Latency of submission processing including persistence and publishing.",
			Buckets:   latencyBuckets,
		}, []string{"action"}),
		storeTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Total number of submission store operations.",
		}, []string{"operation", "result"}),
		storeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_seconds",
			Help:      "Latency distribution for submission store operations.",
			Buckets:   latencyBuckets,
		}, []string{"operation", "result"}),
		kafkaPublishTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "publish_total",
			Help:      "Total number of Kafka publish operations.",
		}, []string{"topic", "result"}),
		kafkaPublishLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "publish_seconds",
			Help:      "Latency distribution for Kafka publish operations.",
			Buckets:   latencyBuckets,
		}, []string{"topic", "result"}),
		kafkaConsumeTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "consume_total",
			Help:      "Total number of consumed Kafka messages.",
		}, []string{"topic", "result"}),
		kafkaConsumeLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "consume_seconds",
			Help:      "Latency distribution for Kafka message handling.",
			Buckets:   latencyBuckets,
		}, []string{"topic", "result"}),
		kafkaDeadLettered: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kafka",
			Name:      "dead_lettered_total",
			Help:      "Total number of messages written to the dead letter topic.",
		}, []string{"topic"}),
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_seconds",
			Help:      "Latency distribution for HTTP requests.",
			Buckets:   latencyBuckets,
		}, []string{"method", "route"}),
	}
})

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}

// RecordDecision counts one processed submission under its decision action.
func RecordDecision(action string, latency time.Duration) {
	c := get()
	c.submissionsTotal.WithLabelValues(action).Inc()
	c.submissionDuration.WithLabelValues(action).Observe(latency.Seconds())
}

func RecordStore(operation string, err error, latency time.Duration) {
	c := get()
	labels := prometheus.Labels{"operation": operation, "result": result(err)}
	c.storeTotal.With(labels).Inc()
	c.storeDuration.With(labels).Observe(latency.Seconds())
}

func RecordPublish(topic string, err error, latency time.Duration) {
	c := get()
	labels := prometheus.Labels{"topic": topic, "result": result(err)}
	c.kafkaPublishTotal.With(labels).Inc()
	c.kafkaPublishLatency.With(labels).Observe(latency.Seconds())
}

func RecordConsume(topic string, err error, latency time.Duration) {
	c := get()
	labels := prometheus.Labels{"topic": topic, "result": result(err)}
	c.kafkaConsumeTotal.With(labels).Inc()
	c.kafkaConsumeLatency.With(labels).Observe(latency.Seconds())
}

func RecordDeadLetter(topic string) {
	get().kafkaDeadLettered.WithLabelValues(topic).Inc()
}

func RecordHTTPRequest(method, route string, status int, latency time.Duration) {
	c := get()
	c.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpLatency.WithLabelValues(method, route).Observe(latency.Seconds())
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

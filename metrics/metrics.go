package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label values for the operation label
const (
	OperationListDevices  = "list_devices"
	OperationRemoveDevice = "remove_device"
)

// Label values for the reason label of the failure counter
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonTransport       = "transport"
	ReasonStatus          = "status"
	ReasonDecode          = "decode"
	ReasonInvalidRequest  = "invalid_request"
)

// prometheus metrics setup
var (
	PrometheusRequestDurations = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "device_portal_client",
		Subsystem: "device_api",
		Name:      "request_durations_seconds",
		Help:      "The duration of each device API request",
		Buckets:   prometheus.LinearBuckets(0.01, 0.05, 10),
	}, []string{"operation"})

	PrometheusRequestFailureCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "device_portal_client",
		Subsystem: "device_api",
		Name:      "request_failure_counter",
		Help:      "The number of accumulative failed device API calls",
	}, []string{"operation", "reason"})

	PrometheusResponseStatusCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "device_portal_client",
		Subsystem: "device_api",
		Name:      "response_status_counter",
		Help:      "The number of device API responses by HTTP status code",
	}, []string{"operation", "code"})
)

func init() {
	prometheus.MustRegister(PrometheusRequestDurations, PrometheusRequestFailureCounter, PrometheusResponseStatusCounter)
}

package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"device-portal-client/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRemoveDeviceMetrics(t *testing.T) {
	backend := &fakeBackend{removeStatus: http.StatusNotFound}
	srv := httptest.NewServer(backend.router())
	defer srv.Close()

	client := newTestClient(t, srv, signedIn(), zap.NewNop())

	failures := metrics.PrometheusRequestFailureCounter.WithLabelValues(metrics.OperationRemoveDevice, metrics.ReasonStatus)
	notFound := metrics.PrometheusResponseStatusCounter.WithLabelValues(metrics.OperationRemoveDevice, "404")
	unauthenticated := metrics.PrometheusRequestFailureCounter.WithLabelValues(metrics.OperationRemoveDevice, metrics.ReasonUnauthenticated)

	failuresBefore := testutil.ToFloat64(failures)
	notFoundBefore := testutil.ToFloat64(notFound)
	unauthenticatedBefore := testutil.ToFloat64(unauthenticated)

	client.RemoveDevice(context.Background(), "abc123")

	assert.Equal(t, failuresBefore+1, testutil.ToFloat64(failures))
	assert.Equal(t, notFoundBefore+1, testutil.ToFloat64(notFound))

	client.Session = &fakeSession{}
	client.RemoveDevice(context.Background(), "abc123")

	assert.Equal(t, unauthenticatedBefore+1, testutil.ToFloat64(unauthenticated))
}

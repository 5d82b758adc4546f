package tracing

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportRecordsSpan(t *testing.T) {
	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	var sawTraceHeader bool

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawTraceHeader = r.Header.Get("Mockpfx-Ids-Traceid") != ""
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := InstrumentClient(http.DefaultClient)
	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.True(t, sawTraceHeader)

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "HTTP GET", spans[0].OperationName)
	assert.Equal(t, uint16(http.StatusServiceUnavailable), spans[0].Tag("http.status_code"))
	assert.Equal(t, true, spans[0].Tag("error"))
}

func TestTransportTransportError(t *testing.T) {
	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := InstrumentClient(&http.Client{})
	_, err := client.Get(url)
	require.Error(t, err)

	spans := tracer.FinishedSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, true, spans[0].Tag("error"))
}

package tracing

import (
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	trace_log "github.com/opentracing/opentracing-go/log"
)

// Transport starts a client span for every round trip and propagates it in the request headers
type Transport struct {
	Base http.RoundTripper
}

// InstrumentClient returns a copy of client whose requests are traced
func InstrumentClient(client *http.Client) *http.Client {
	instrumented := *client
	instrumented.Transport = &Transport{Base: client.Transport}

	return &instrumented
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base

	if base == nil {
		base = http.DefaultTransport
	}

	span, ctx := opentracing.StartSpanFromContext(req.Context(), "HTTP "+req.Method)
	defer span.Finish()

	ext.SpanKindRPCClient.Set(span)
	ext.HTTPMethod.Set(span, req.Method)
	ext.HTTPUrl.Set(span, req.URL.String())

	req = req.Clone(ctx)

	opentracing.GlobalTracer().Inject(
		span.Context(),
		opentracing.HTTPHeaders,
		opentracing.HTTPHeadersCarrier(req.Header))

	resp, err := base.RoundTrip(req)

	if err != nil {
		ext.Error.Set(span, true)
		span.LogFields(
			trace_log.String("event", "error"),
			trace_log.Error(err),
		)

		return nil, err
	}

	ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))

	if resp.StatusCode >= http.StatusInternalServerError {
		ext.Error.Set(span, true)
	}

	return resp, nil
}

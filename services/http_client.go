package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"

	"device-portal-client/httputil"
	edge_log "device-portal-client/log"

	"github.com/opentracing/opentracing-go"
	trace_log "github.com/opentracing/opentracing-go/log"
	"go.uber.org/zap"
)

// Client sends JSON requests to the device backend
type Client struct {
	Client *http.Client
	Logger *zap.Logger
}

func (client *Client) httpClient() *http.Client {
	if client.Client == nil {
		return http.DefaultClient
	}

	return client.Client
}

func (client *Client) logger() *zap.Logger {
	if client.Logger == nil {
		return zap.NewNop()
	}

	return client.Logger
}

// doRequest sends one request and decodes a 200 response into response. Any other
// outcome is returned as a RequestError. The client span and trace headers come
// from tracing.Transport when the http.Client is instrumented.
func (client *Client) doRequest(ctx context.Context, method string, urlStr string, header http.Header, body interface{}, response interface{}) (requestError *RequestError) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Client.doRequest()")
	defer span.Finish()

	requestID := httputil.RequestID(ctx)

	logger := edge_log.WithContext(ctx, client.logger()).With(zap.String("function", "doRequest()")).With(zap.String("request_id", requestID))

	span.SetTag("request_id", requestID)
	logger = logger.With(zap.String("method", method), zap.String("url", urlStr))

	defer func() {
		if requestError != nil {
			span.LogFields(
				trace_log.String("event", "error"),
				trace_log.Error(requestError),
			)

			if _, ok := requestError.StatusCode(); !ok || requestError.Status >= http.StatusInternalServerError {
				span.SetTag("error", true)
			}
		}
	}()

	fail := func(status int, err error) *RequestError {
		return &RequestError{Method: method, URL: urlStr, Status: status, Err: err}
	}

	if header == nil {
		header = http.Header{}
	}

	var bodyReader io.Reader = http.NoBody
	var bodyBytes []byte
	var err error

	if body != nil {
		bodyBytes, err = json.Marshal(body)

		if err != nil {
			logger.Error("could not encode request body", zap.Error(err))

			return fail(0, fmt.Errorf("%w: %s", ErrEncodeRequest, err))
		}

		header.Set("Content-Type", "application/json")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	logger = logger.With(zap.String("request_body", string(bodyBytes)))

	req, err := http.NewRequestWithContext(ctx, method, urlStr, bodyReader)

	if err != nil {
		logger.Error("could not create request", zap.Error(err))

		return fail(0, fmt.Errorf("%w: %s", ErrTransport, err))
	}

	for name, value := range header {
		for _, v := range value {
			req.Header.Add(name, v)
		}
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(httputil.HeaderRequestID, requestID)

	resp, err := client.httpClient().Do(req)

	if err != nil {
		logger.Error("could not make request", zap.Error(err))

		return fail(0, fmt.Errorf("%w: %s", ErrTransport, err))
	}

	defer resp.Body.Close()
	logger = logger.With(zap.Int("status_code", resp.StatusCode))

	respBody, err := ioutil.ReadAll(resp.Body)

	if err != nil {
		logger.Error("unable to read response body", zap.Error(err))

		return fail(resp.StatusCode, fmt.Errorf("%w: %s", ErrReadResponse, err))
	}

	logger.Debug("Read response body", zap.String("response_body", string(respBody)))

	if resp.StatusCode != http.StatusOK {
		requestError = fail(resp.StatusCode, ErrUnexpectedStatus)

		if !httputil.IsSuccessResponse(resp) {
			publicError := &httputil.PublicError{}

			if err := json.Unmarshal(respBody, publicError); err == nil && !publicError.Empty() {
				requestError.Public = publicError
			}
		}

		return requestError
	}

	if response != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, response); err != nil {
			logger.Error("unable to parse response body", zap.Error(err))

			return fail(resp.StatusCode, fmt.Errorf("%w: %s", ErrDecodeResponse, err))
		}
	}

	logger.Debug("do request")

	return nil
}

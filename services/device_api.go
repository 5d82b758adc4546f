package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	edge_log "device-portal-client/log"
	"device-portal-client/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/opentracing/opentracing-go"
	trace_log "github.com/opentracing/opentracing-go/log"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// AuthContext is the signed-in user's session. EnsureUserInContext may sign the
// user in again; LastLoadedAccessToken then returns the token to send.
type AuthContext interface {
	EnsureUserInContext(ctx context.Context) (bool, error)
	LastLoadedAccessToken() (string, bool)
}

// DeviceEndpoint resolves the URL of the device controller
type DeviceEndpoint interface {
	DeviceURL() string
}

var validate = validator.New()

// DeviceAPIClient lists and removes the signed-in user's devices.
//
// A DeviceAPIClient cannot refresh its access token and fails once the token
// expires, so create one per sequence of calls instead of keeping it around.
// It is not safe for concurrent use.
type DeviceAPIClient struct {
	Client
	Endpoints DeviceEndpoint
	Session   AuthContext

	lastStatus    int
	hasLastStatus bool
	accessToken   string
}

// LastStatus returns the HTTP status of the most recent call. It is unset when
// that call received no response.
func (c *DeviceAPIClient) LastStatus() (int, bool) {
	return c.lastStatus, c.hasLastStatus
}

func (c *DeviceAPIClient) setLastStatus(status int, ok bool) {
	c.lastStatus, c.hasLastStatus = status, ok
}

// onRequest copies the session's token into the client, or fails before any request is made
func (c *DeviceAPIClient) onRequest(ctx context.Context) error {
	c.accessToken = ""
	c.setLastStatus(0, false)

	if c.Session == nil {
		return &UnauthenticatedError{Err: errors.New("no session")}
	}

	ok, err := c.Session.EnsureUserInContext(ctx)

	if err != nil {
		return &UnauthenticatedError{Err: err}
	}

	token, loaded := c.Session.LastLoadedAccessToken()

	if !ok || !loaded || token == "" {
		return &UnauthenticatedError{}
	}

	c.accessToken = token

	return nil
}

func (c *DeviceAPIClient) deviceURL(method string) (string, error) {
	if c.Endpoints == nil {
		return "", &RequestError{
			Method: method,
			Err:    fmt.Errorf("%w: no device endpoint configured", ErrInvalidRequest),
		}
	}

	return c.Endpoints.DeviceURL(), nil
}

func (c *DeviceAPIClient) authHeader() http.Header {
	return http.Header{
		"Authorization": []string{"Bearer " + c.accessToken},
	}
}

func (c *DeviceAPIClient) fail(span opentracing.Span, logger *zap.Logger, operation string, msg string, err error) {
	var requestError *RequestError

	if errors.As(err, &requestError) {
		status, ok := requestError.StatusCode()
		c.setLastStatus(status, ok)

		if ok {
			logger = logger.With(zap.Int("status_code", status))
			metrics.PrometheusResponseStatusCounter.WithLabelValues(operation, strconv.Itoa(status)).Inc()
		}
	}

	logger.Error(msg, zap.Error(err))

	span.LogFields(
		trace_log.String("event", "error"),
		trace_log.String("message", msg),
		trace_log.Error(err),
	)

	metrics.PrometheusRequestFailureCounter.WithLabelValues(operation, failureReason(err)).Inc()
}

func (c *DeviceAPIClient) succeed(operation string) {
	c.setLastStatus(http.StatusOK, true)
	metrics.PrometheusResponseStatusCounter.WithLabelValues(operation, strconv.Itoa(http.StatusOK)).Inc()
}

// ListDevices returns the user's devices in the order the backend sent them. On
// any failure the devices are nil and LastStatus tells what the backend answered.
func (c *DeviceAPIClient) ListDevices(ctx context.Context) ([]UserDevice, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeviceAPIClient.ListDevices()")
	defer span.Finish()

	timer := prometheus.NewTimer(metrics.PrometheusRequestDurations.WithLabelValues(metrics.OperationListDevices))
	defer timer.ObserveDuration()

	logger := edge_log.WithContext(ctx, c.logger()).With(zap.String("function", "ListDevices()"))

	if err := c.onRequest(ctx); err != nil {
		c.fail(span, logger, metrics.OperationListDevices, "Failed to load devices.", err)
		return nil, err
	}

	urlStr, err := c.deviceURL(http.MethodGet)

	if err != nil {
		c.fail(span, logger, metrics.OperationListDevices, "Failed to load devices.", err)
		return nil, err
	}

	var devices []UserDevice

	if requestError := c.doRequest(ctx, http.MethodGet, urlStr, c.authHeader(), nil, &devices); requestError != nil {
		c.fail(span, logger, metrics.OperationListDevices, "Failed to load devices.", requestError)
		return nil, requestError
	}

	c.succeed(metrics.OperationListDevices)

	if devices == nil {
		devices = []UserDevice{}
	}

	logger.Info("Loaded devices.", zap.String("ids", deviceIDs(devices)))

	span.LogFields(
		trace_log.String("event", "success"),
		trace_log.Int("devices", len(devices)),
	)

	return devices, nil
}

// RemoveDevice unregisters the device with the given public key. It returns true
// only when the backend answered 200.
func (c *DeviceAPIClient) RemoveDevice(ctx context.Context, devicePubkey string) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DeviceAPIClient.RemoveDevice()")
	defer span.Finish()

	timer := prometheus.NewTimer(metrics.PrometheusRequestDurations.WithLabelValues(metrics.OperationRemoveDevice))
	defer timer.ObserveDuration()

	logger := edge_log.WithContext(ctx, c.logger()).With(zap.String("function", "RemoveDevice()"), zap.String("device_pubkey", devicePubkey))

	if err := c.onRequest(ctx); err != nil {
		c.fail(span, logger, metrics.OperationRemoveDevice, "Failed to remove device.", err)
		return false, err
	}

	urlStr, err := c.deviceURL(http.MethodPatch)

	if err != nil {
		c.fail(span, logger, metrics.OperationRemoveDevice, "Failed to remove device.", err)
		return false, err
	}

	request := DeleteDeviceRequest{DevicePubkey: devicePubkey}

	if err := validate.Struct(request); err != nil {
		requestError := &RequestError{
			Method: http.MethodPatch,
			URL:    urlStr,
			Err:    fmt.Errorf("%w: devicePubkey is required", ErrInvalidRequest),
		}

		c.fail(span, logger, metrics.OperationRemoveDevice, "Failed to remove device.", requestError)
		return false, requestError
	}

	if requestError := c.doRequest(ctx, http.MethodPatch, urlStr, c.authHeader(), request, nil); requestError != nil {
		c.fail(span, logger, metrics.OperationRemoveDevice, "Failed to remove device.", requestError)
		return false, requestError
	}

	c.succeed(metrics.OperationRemoveDevice)
	logger.Info("Removed device.")

	return true, nil
}

func deviceIDs(devices []UserDevice) string {
	if len(devices) == 0 {
		return "none"
	}

	ids := make([]string, len(devices))

	for i, device := range devices {
		ids[i] = device.ID
	}

	return strings.Join(ids, " ")
}

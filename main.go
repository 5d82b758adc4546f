package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"device-portal-client/httputil"
	"device-portal-client/log"
	"device-portal-client/services"
	"device-portal-client/session"
	"device-portal-client/tokens"
	"device-portal-client/tracing"
	"device-portal-client/urls"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const usage = `usage: device-portal-client [flags] list
       device-portal-client [flags] remove <devicePubkey>
       device-portal-client [flags] watch`

func main() {
	var origin string
	var endpointsFile string
	var loggingLevel string
	var accessToken string
	var accessTokenFile string
	var jwtSigningKeyFile string
	var jwtIssuer string
	var jwtExpSeconds int64
	var userID string
	var timeout time.Duration
	var interval time.Duration
	var metricsAddr string
	var enableTracing bool
	flag.StringVar(&origin, "origin", "", "Origin (scheme and host) of the device portal")
	flag.StringVar(&endpointsFile, "endpoints", "", "Path to the endpoint configuration file (JSON or YAML)")
	flag.StringVar(&loggingLevel, "loggingLevel", "info", "The level of logging desired")
	flag.StringVar(&accessToken, "token", "", "Access token of the signed-in user")
	flag.StringVar(&accessTokenFile, "tokenFile", "", "File holding the access token, read again whenever the token expires")
	flag.StringVar(&jwtSigningKeyFile, "jwtSigningKey", "", "Private key used to mint a development access token")
	flag.StringVar(&jwtIssuer, "jwtIssuer", "device-portal", "Issuer field for minted access tokens")
	flag.Int64Var(&jwtExpSeconds, "jwtExpiration", 300, "Minted access token expiration time in seconds")
	flag.StringVar(&userID, "userID", "", "Subject of minted access tokens")
	flag.DurationVar(&timeout, "timeout", 15*time.Second, "Timeout of each HTTP request")
	flag.DurationVar(&interval, "interval", time.Minute, "Polling interval of the watch command")
	flag.StringVar(&metricsAddr, "metricsAddr", "", "Address serving prometheus metrics in watch mode")
	flag.BoolVar(&enableTracing, "tracing", false, "Report spans to jaeger, configured from JAEGER_* variables")
	flag.Parse()

	if origin == "" {
		fmt.Fprintf(os.Stderr, "Argument \"origin\" is required.\n")
		os.Exit(1)
	}

	if endpointsFile == "" {
		fmt.Fprintf(os.Stderr, "Argument \"endpoints\" is required.\n")
		os.Exit(1)
	}

	if accessToken == "" && accessTokenFile == "" && jwtSigningKeyFile == "" {
		fmt.Fprintf(os.Stderr, "One of \"token\", \"tokenFile\" or \"jwtSigningKey\" is required.\n")
		os.Exit(1)
	}

	if jwtSigningKeyFile != "" && userID == "" {
		fmt.Fprintf(os.Stderr, "Argument \"userID\" is required with \"jwtSigningKey\".\n")
		os.Exit(1)
	}

	args := flag.Args()

	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}

	logger, _ := log.NewLogger(loggingLevel)

	endpoints, err := urls.LoadEndpointConfig(endpointsFile)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load endpoint configuration: %s\n", err)
		os.Exit(1)
	}

	builder, err := urls.NewBuilder(origin, endpoints)

	if err != nil {
		fmt.Fprintf(os.Stderr, "\"origin\" could not be parsed: %s\n", err)
		os.Exit(1)
	}

	var loader session.Loader

	switch {
	case accessTokenFile != "":
		loader = func(ctx context.Context) (string, error) {
			raw, err := ioutil.ReadFile(accessTokenFile)

			if err != nil {
				return "", err
			}

			return strings.TrimSpace(string(raw)), nil
		}
	case jwtSigningKeyFile != "":
		jwtSigningKeyPEM, err := ioutil.ReadFile(jwtSigningKeyFile)

		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to read JWT signing key file: %s\n", jwtSigningKeyFile)
			os.Exit(1)
		}

		jwtSigningKey, err := jwt.ParseRSAPrivateKeyFromPEM(jwtSigningKeyPEM)

		if err != nil {
			fmt.Fprintf(os.Stderr, "Unable to parse JWT signing key PEM: %s\n", jwtSigningKeyFile)
			os.Exit(1)
		}

		tokenFactory := tokens.JWTTokenFactory{
			Issuer:     jwtIssuer,
			TokenExp:   time.Duration(jwtExpSeconds) * time.Second,
			SigningKey: jwtSigningKey,
		}

		loader = func(ctx context.Context) (string, error) {
			return tokenFactory.CreateUserToken(userID, nil)
		}
	}

	store := session.NewStore(
		session.WithLoader(loader),
		session.WithLeeway(5*time.Second),
		session.WithLogger(logger.With(zap.String("component", "session.Store"))),
	)

	if accessToken != "" {
		store.Load(accessToken)
	}

	var closer io.Closer

	if enableTracing {
		closer, err = tracing.Start("device-portal-client", logger.With(zap.String("component", "opentracing")))

		if err != nil {
			fmt.Fprintf(os.Stderr, "Could not start tracing: %s", err)
			os.Exit(1)
		}
	}

	httpClient := tracing.InstrumentClient(&http.Client{Timeout: timeout})

	// Clients are transient: every command builds its own
	newClient := func() *services.DeviceAPIClient {
		return &services.DeviceAPIClient{
			Client: services.Client{
				Client: httpClient,
				Logger: logger.With(zap.String("component", "services.DeviceAPIClient")),
			},
			Endpoints: builder,
			Session:   store,
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	exitCode := 0

	switch {
	case args[0] == "list":
		exitCode = list(ctx, newClient())
	case args[0] == "remove" && len(args) == 2:
		exitCode = remove(ctx, newClient(), args[1])
	case args[0] == "watch":
		watch(ctx, logger, newClient, interval, metricsAddr)
	default:
		fmt.Fprintln(os.Stderr, usage)
		exitCode = 1
	}

	cancel()

	if closer != nil {
		closer.Close()
	}

	logger.Sync()
	os.Exit(exitCode)
}

func describeFailure(client *services.DeviceAPIClient, err error) string {
	if status, ok := client.LastStatus(); ok {
		return fmt.Sprintf("%s (HTTP_%d)", err, status)
	}

	return err.Error()
}

func list(ctx context.Context, client *services.DeviceAPIClient) int {
	devices, err := client.ListDevices(ctx)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load devices: %s\n", describeFailure(client, err))
		return 1
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(devices); err != nil {
		fmt.Fprintf(os.Stderr, "Could not encode devices: %s\n", err)
		return 1
	}

	return 0
}

func remove(ctx context.Context, client *services.DeviceAPIClient, devicePubkey string) int {
	removed, err := client.RemoveDevice(ctx, devicePubkey)

	if !removed {
		fmt.Fprintf(os.Stderr, "Failed to remove device: %s\n", describeFailure(client, err))
		return 1
	}

	return 0
}

// watch lists the devices every interval until interrupted
func watch(ctx context.Context, logger *zap.Logger, newClient func() *services.DeviceAPIClient, interval time.Duration, metricsAddr string) {
	logger = logger.With(zap.String("component", "watch"))

	if metricsAddr != "" {
		router := mux.NewRouter()
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")

		srv := &http.Server{
			Addr:         metricsAddr,
			Handler:      router,
			WriteTimeout: time.Second * 15,
			ReadTimeout:  time.Second * 15,
		}

		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Metrics server error", zap.Error(err))
			}
		}()

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			srv.Shutdown(shutdownCtx)
		}()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		requestID := uuid.NewString()
		pollCtx := log.WithFields(httputil.WithRequestID(ctx, requestID), zap.String("request_id", requestID))

		client := newClient()
		devices, err := client.ListDevices(pollCtx)

		if err != nil {
			status, _ := client.LastStatus()
			logger.Warn("Device poll failed", zap.Error(err), zap.Int("last_status", status))
		} else {
			logger.Debug("Device poll finished", zap.Int("devices", len(devices)))
		}

		select {
		case <-ctx.Done():
			logger.Debug("Stopped watching devices")
			return
		case <-ticker.C:
		}
	}
}

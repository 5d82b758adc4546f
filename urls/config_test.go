package urls

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const endpointsJSON = `{
  "backend": {
    "basePath": "/api",
    "authControllerPath": "auth",
    "connectionControllerPath": "connection",
    "deviceControllerPath": "device"
  }
}`

const endpointsYAML = `
backend:
  basePath: /api
  authControllerPath: auth
  connectionControllerPath: connection
  deviceControllerPath: device
`

func TestParseEndpointConfig(t *testing.T) {
	want := EndpointConfig{
		BasePath:                 "/api",
		AuthControllerPath:       "auth",
		ConnectionControllerPath: "connection",
		DeviceControllerPath:     "device",
	}

	for name, doc := range map[string]string{"json": endpointsJSON, "yaml": endpointsYAML} {
		cfg, err := ParseEndpointConfig([]byte(doc))
		require.NoError(t, err, name)
		assert.Equal(t, want, cfg, name)
	}
}

func TestParseEndpointConfigMissingPath(t *testing.T) {
	_, err := ParseEndpointConfig([]byte(`{"backend": {"basePath": "api", "authControllerPath": "auth", "connectionControllerPath": "c"}}`))
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "DeviceControllerPath")
}

func TestParseEndpointConfigMalformed(t *testing.T) {
	_, err := ParseEndpointConfig([]byte(`{"backend": [`))
	assert.ErrorIs(t, err, ErrCouldNotParseConfig)
}

func TestLoadEndpointConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "endpoints.json")
	require.NoError(t, ioutil.WriteFile(path, []byte(endpointsJSON), 0600))

	cfg, err := LoadEndpointConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "device", cfg.DeviceControllerPath)

	_, err = LoadEndpointConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, ErrCouldNotReadConfig)
}

func TestParseEndpointConfigEscapedJSON(t *testing.T) {
	cfg, err := ParseEndpointConfig([]byte(`{"backend": {"basePath": "\/api", "authControllerPath": "auth", "connectionControllerPath": "connection", "deviceControllerPath": "device"}}`))
	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.BasePath)
}

func TestParseEndpointConfigEmptyBasePath(t *testing.T) {
	cfg, err := ParseEndpointConfig([]byte(`{"backend": {"basePath": "", "authControllerPath": "auth", "connectionControllerPath": "connection", "deviceControllerPath": "devices"}}`))
	require.NoError(t, err)

	b, err := NewBuilder("https://example.com", cfg)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", b.APIBaseURL())
	assert.Equal(t, "https://example.com/devices", b.DeviceURL())
}

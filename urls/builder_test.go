package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEndpoints() EndpointConfig {
	return EndpointConfig{
		BasePath:                 "api",
		AuthControllerPath:       "auth",
		ConnectionControllerPath: "connection",
		DeviceControllerPath:     "devices",
	}
}

func TestBuilderURLs(t *testing.T) {
	b, err := NewBuilder("https://example.com", testEndpoints())
	require.NoError(t, err)

	assert.Equal(t, "https://example.com", b.HostURL())
	assert.Equal(t, "https://example.com/api", b.APIBaseURL())
	assert.Equal(t, "https://example.com/api/auth", b.AuthURL())
	assert.Equal(t, "https://example.com/api/connection", b.ConnectionURL())
	assert.Equal(t, "https://example.com/api/devices", b.DeviceURL())
}

func TestBuilderDeviceURLSlashVariants(t *testing.T) {
	origins := []string{"https://example.com", "https://example.com/", "https://example.com/app/index.html?x=1"}
	bases := []string{"api", "/api", "api/", "/api/", "//api//"}
	devices := []string{"devices", "/devices", "devices/", "/devices/"}

	for _, origin := range origins {
		for _, base := range bases {
			for _, device := range devices {
				cfg := testEndpoints()
				cfg.BasePath = base
				cfg.DeviceControllerPath = device

				b, err := NewBuilder(origin, cfg)
				require.NoError(t, err)
				assert.Equal(t, "https://example.com/api/devices", b.DeviceURL(), "origin=%q base=%q device=%q", origin, base, device)
			}
		}
	}
}

func TestBuilderKeepsPort(t *testing.T) {
	b, err := NewBuilder("http://localhost:5000/", testEndpoints())
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api/devices", b.DeviceURL())
}

func TestNewBuilderRejectsRelativeOrigin(t *testing.T) {
	for _, origin := range []string{"", "example.com", "/api", "://nohost"} {
		_, err := NewBuilder(origin, testEndpoints())
		assert.ErrorIs(t, err, ErrInvalidOrigin, "origin %q", origin)
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "https://h/a/b", Join("https://h/", "/a/", "/b"))
	assert.Equal(t, "https://h/b", Join("https://h", "", "/", "b"))
	assert.Equal(t, "/a/b", Join("/a", "b"))
	assert.Equal(t, "", Join())
}

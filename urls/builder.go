package urls

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var ErrInvalidOrigin = errors.New("origin must be an absolute URL with scheme and host")

// Builder resolves the configured endpoints against a host origin.
// A Builder is immutable and safe for concurrent use.
type Builder struct {
	origin    url.URL
	endpoints EndpointConfig
}

// NewBuilder parses origin and keeps only its scheme and host
func NewBuilder(origin string, endpoints EndpointConfig) (*Builder, error) {
	u, err := url.Parse(strings.TrimSpace(origin))

	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOrigin, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrigin, origin)
	}

	return &Builder{
		origin:    url.URL{Scheme: u.Scheme, Host: u.Host},
		endpoints: endpoints,
	}, nil
}

func (b *Builder) HostURL() string {
	return b.origin.Scheme + "://" + b.origin.Host
}

func (b *Builder) APIBaseURL() string {
	return Join(b.HostURL(), b.endpoints.BasePath)
}

func (b *Builder) AuthURL() string {
	return Join(b.APIBaseURL(), b.endpoints.AuthControllerPath)
}

func (b *Builder) ConnectionURL() string {
	return Join(b.APIBaseURL(), b.endpoints.ConnectionControllerPath)
}

func (b *Builder) DeviceURL() string {
	return Join(b.APIBaseURL(), b.endpoints.DeviceControllerPath)
}

// Join concatenates segments with exactly one slash between them. Slashes at
// the edges of every segment are dropped, except the leading ones of the first
// segment, and empty segments are skipped.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))

	for i, segment := range segments {
		if i == 0 {
			segment = strings.TrimRight(segment, "/")
		} else {
			segment = strings.Trim(segment, "/")
		}

		if segment == "" {
			continue
		}

		parts = append(parts, segment)
	}

	return strings.Join(parts, "/")
}

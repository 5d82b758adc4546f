package urls

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// EndpointConfig maps the backend's logical endpoints to paths relative to the host
type EndpointConfig struct {
	BasePath                 string `json:"basePath" yaml:"basePath"`
	AuthControllerPath       string `json:"authControllerPath" yaml:"authControllerPath" validate:"required"`
	ConnectionControllerPath string `json:"connectionControllerPath" yaml:"connectionControllerPath" validate:"required"`
	DeviceControllerPath     string `json:"deviceControllerPath" yaml:"deviceControllerPath" validate:"required"`
}

type endpointsFile struct {
	Backend EndpointConfig `json:"backend" yaml:"backend"`
}

var (
	ErrCouldNotReadConfig  = errors.New("could not read endpoint configuration")
	ErrCouldNotParseConfig = errors.New("could not parse endpoint configuration")
	ErrInvalidConfig       = errors.New("invalid endpoint configuration")
)

var validate = validator.New()

// LoadEndpointConfig reads the endpoint document at path. Both JSON and YAML
// documents are accepted, with the paths nested under a "backend" key. An empty
// basePath serves the API from the host root.
func LoadEndpointConfig(path string) (EndpointConfig, error) {
	raw, err := ioutil.ReadFile(path)

	if err != nil {
		return EndpointConfig{}, fmt.Errorf("%w %q: %s", ErrCouldNotReadConfig, path, err)
	}

	return ParseEndpointConfig(raw)
}

// ParseEndpointConfig decodes and validates an endpoint document
func ParseEndpointConfig(raw []byte) (EndpointConfig, error) {
	var file endpointsFile
	var err error

	// yaml.v2 does not accept every JSON document
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("{")) {
		err = json.Unmarshal(raw, &file)
	} else {
		err = yaml.Unmarshal(raw, &file)
	}

	if err != nil {
		return EndpointConfig{}, fmt.Errorf("%w: %s", ErrCouldNotParseConfig, err)
	}

	if err := file.Backend.Validate(); err != nil {
		return EndpointConfig{}, err
	}

	return file.Backend, nil
}

// Validate checks that every endpoint path is set
func (cfg EndpointConfig) Validate() error {
	err := validate.Struct(cfg)

	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors

	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		return fmt.Errorf("%w: %s is %s", ErrInvalidConfig, fieldErrors[0].Field(), fieldErrors[0].Tag())
	}

	return fmt.Errorf("%w: %s", ErrInvalidConfig, err)
}

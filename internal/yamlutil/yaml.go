// Package yamlutil decodes the site's YAML files: registry, authors and
// site configuration. It keeps the YAML library behind one small API.
package yamlutil

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// MaxInputSize bounds a YAML document. Registries for large sites stay
// well below 4MB.
var MaxInputSize = 4 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
)

// Unmarshal decodes YAML into v. Whitespace-only input is ErrNilData.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict is Unmarshal that also rejects unknown fields.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

// ReadFile reads path and decodes it into v.
// Read errors keep their os error chain so callers can test os.ErrNotExist.
func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from site configuration
	if err != nil {
		return err
	}
	return decode(data, v)
}

func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	switch {
	case len(bytes.TrimSpace(data)) == 0:
		return ErrNilData
	case len(data) > MaxInputSize:
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	case v == nil:
		return ErrNilDestination
	}

	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return &DecodeError{Detail: yaml.FormatError(err, false, true), err: err}
	}
	return nil
}

// DecodeError is a YAML syntax or type error. Detail holds the position
// and the offending source lines.
type DecodeError struct {
	Detail string
	err    error
}

func (e *DecodeError) Error() string { return "yamlutil: " + e.Detail }

func (e *DecodeError) Unwrap() error { return e.err }

package nbsite

import (
	"errors"
	"fmt"

	"github.com/alnah/go-nbsite/internal/assets"
	"github.com/alnah/go-nbsite/internal/dateutil"
	"github.com/alnah/go-nbsite/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	// ErrConfigRead indicates the registry or authors file could not be
	// read or decoded. The build cannot start without both.
	ErrConfigRead = errors.New("cannot read site configuration")

	// ErrConversion indicates a source document could not be converted,
	// for example a notebook that is not valid nbformat 4 JSON.
	ErrConversion = pipeline.ErrConversion

	// ErrWriteOutput indicates a generated page could not be written.
	ErrWriteOutput = errors.New("failed to write page")

	// ErrOutputDir indicates the output directory could not be created.
	ErrOutputDir = errors.New("failed to create output directory")

	// Option validation errors.
	ErrInvalidWorkers    = errors.New("invalid worker count")
	ErrStyleNotFound     = assets.ErrStyleNotFound
	ErrInvalidStyleName  = assets.ErrInvalidStyleName
	ErrInvalidDateFormat = dateutil.ErrInvalidDateFormat
)

// ConfigFileError reports which configuration file failed to load.
// It matches ErrConfigRead and the underlying cause with errors.Is.
type ConfigFileError struct {
	Path string
	Err  error
}

func (e *ConfigFileError) Error() string {
	return fmt.Sprintf("%v: %s: %v", ErrConfigRead, e.Path, e.Err)
}

func (e *ConfigFileError) Unwrap() []error {
	return []error{ErrConfigRead, e.Err}
}

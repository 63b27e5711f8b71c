package main

import (
	"errors"
	"os"

	nbsite "github.com/alnah/go-nbsite"
	"github.com/alnah/go-nbsite/internal/config"
)

// Exit codes for the nbsite CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess    = 0 // Site built
	ExitGeneral    = 1 // General/unexpected error
	ExitUsage      = 2 // Invalid flags, config, or validation
	ExitIO         = 3 // Config file unreadable, output not writable
	ExitConversion = 4 // A source document failed to convert
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Conversion errors (exit 4)
	if errors.Is(err, nbsite.ErrConversion) {
		return ExitConversion
	}

	// I/O errors (exit 3)
	if errors.Is(err, nbsite.ErrConfigRead) ||
		errors.Is(err, nbsite.ErrWriteOutput) ||
		errors.Is(err, nbsite.ErrOutputDir) ||
		errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrEmptyConfigName) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, nbsite.ErrInvalidWorkers) ||
		errors.Is(err, nbsite.ErrStyleNotFound) ||
		errors.Is(err, nbsite.ErrInvalidStyleName) ||
		errors.Is(err, nbsite.ErrInvalidDateFormat) ||
		errors.Is(err, ErrInvalidFlags) ||
		errors.Is(err, ErrUnexpectedArgs) ||
		errors.Is(err, ErrUnsupportedShell) {
		return ExitUsage
	}

	return ExitGeneral
}

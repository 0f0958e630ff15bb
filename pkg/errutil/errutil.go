// Package errutil provides small helpers that run an operation, log its
// failure with context, and hand the error back to the caller.
package errutil

import (
	"fmt"
	"log/slog"
)

// HandleTransportError executes fn and logs any error that occurs as a
// transport-related failure. It returns whatever error fn returns, unmodified,
// so callers can still unwrap typed API errors.
func HandleTransportError(operation string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("nil function provided")
	}

	err := fn()
	if err == nil {
		return nil
	}

	slog.Error("transport operation failed", "operation", operation, "error", err)
	return err
}

// HandleStorageError executes fn and logs any error that occurs as a
// storage-related failure. It returns a wrapped error with context about the
// operation and path.
func HandleStorageError(operation, path string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("nil function provided")
	}

	err := fn()
	if err == nil {
		return nil
	}

	slog.Error("storage operation failed", "operation", operation, "path", path, "error", err)
	return fmt.Errorf("storage %s %s: %w", operation, path, err)
}

package helpers

import (
	"errors"
	"fmt"
	"time"

	"deviation-dashboard/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type DashboardError struct {
	Message string
	Cause   error
}

func (e *DashboardError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DashboardError) Unwrap() error {
	return e.Cause
}

// Distinct error types for type assertions at the API boundary
type ConfigurationError struct{ DashboardError }
type NetworkError struct{ DashboardError }
type DatabaseError struct{ DashboardError }
type ValidationError struct{ DashboardError }

// DataUnavailableError means the provider returned no rows for the requested
// symbol/range, or the symbol is invalid. Surfaced to the user as-is; the
// user must change ticker or range, there is nothing to retry.
type DataUnavailableError struct{ DashboardError }

// -----------------------------------------------------------------------------

func NewDataUnavailable(symbol string, cause error) *DataUnavailableError {
	return &DataUnavailableError{DashboardError{
		Message: fmt.Sprintf("no data available for %s", symbol),
		Cause:   cause,
	}}
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{DashboardError{Message: fmt.Sprintf(format, args...)}}
}

// -----------------------------------------------------------------------------

// IsDataUnavailable reports whether err (or anything it wraps) is a
// DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var e *DataUnavailableError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
// DataUnavailable errors are returned immediately: retrying cannot help.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if IsDataUnavailable(err) {
			return err
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return &DashboardError{Message: fmt.Sprintf("%s failed after %d attempts", operation, maxRetries), Cause: lastErr}
}

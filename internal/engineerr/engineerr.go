// Package engineerr defines the typed error kinds from spec.md §7.
// InsufficientData is deliberately not an error type here: per spec it is
// a recovered HOLD path inside a detector, never something that
// propagates as an error value.
package engineerr

import "fmt"

// TransportError wraps a DataProvider failure (network, exchange API,
// malformed response). binance.RESTClient.FetchKlines returns it, and
// cmd/engine exits on it in backtest mode; the live stream's reconnect
// loop retries its own failures without producing one.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError builds a TransportError.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{Op: op, Err: err}
}

// ConfigError is a fatal, construction-time validation failure reported by
// internal/config: threshold inversions, negative weights, invalid
// volume-filter thresholds, and out-of-range backtest or advisor settings.
// Detector names in the weight table are not checked against the
// catalogue, and a duplicate detector.Registry registration returns a
// plain error rather than a ConfigError.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Reason)
}

// NewConfigError builds a ConfigError.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// InvariantViolation signals that a core invariant the system depends on
// for correctness (e.g. more than one open position, a negative notional)
// was observed at runtime. It is always a programming error, never a
// recoverable condition.
type InvariantViolation struct {
	Invariant string
	Detail    string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation (%s): %s", e.Invariant, e.Detail)
}

// NewInvariantViolation builds an InvariantViolation.
func NewInvariantViolation(invariant, detail string) *InvariantViolation {
	return &InvariantViolation{Invariant: invariant, Detail: detail}
}

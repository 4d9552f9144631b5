package shipper

import (
	"errors"
	"fmt"
)

// Error codes carried by CarrierError.
const (
	CodeTransport          = "TRANSPORT_ERROR"
	CodeCarrierRejected    = "CARRIER_REJECTED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeMalformedResponse  = "MALFORMED_RESPONSE"
	CodeRelayLookup        = "RELAY_LOOKUP_ERROR"
)

// CarrierError represents an error from a shipping carrier.
type CarrierError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *CarrierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *CarrierError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for CarrierError. Two carrier errors match when
// their codes are equal.
func (e *CarrierError) Is(target error) bool {
	t, ok := target.(*CarrierError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewCarrierError creates a new CarrierError.
func NewCarrierError(carrier, code, message string) *CarrierError {
	return &CarrierError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *CarrierError) WithCause(err error) *CarrierError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *CarrierError) WithStatusCode(code int) *CarrierError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *CarrierError) WithRetryable(retryable bool) *CarrierError {
	e.Retryable = retryable
	return e
}

// Sentinel carrier errors, matched by code with errors.Is.
var (
	// ErrTransport indicates the carrier could not be reached.
	ErrTransport = &CarrierError{Code: CodeTransport, Message: "transport failure"}

	// ErrCarrierRejected indicates the carrier refused the request.
	ErrCarrierRejected = &CarrierError{Code: CodeCarrierRejected, Message: "request rejected"}

	// ErrServiceUnavailable indicates the carrier service is temporarily unavailable.
	ErrServiceUnavailable = &CarrierError{Code: CodeServiceUnavailable, Message: "service unavailable"}

	// ErrMalformedResponse indicates a response without tracking number nor error message.
	ErrMalformedResponse = &CarrierError{Code: CodeMalformedResponse, Message: "malformed response"}

	// ErrRelayLookup indicates the relay point service reported an error.
	ErrRelayLookup = &CarrierError{Code: CodeRelayLookup, Message: "relay point lookup failed"}
)

// ErrInvalidShipment indicates the label request breaks an invariant.
var ErrInvalidShipment = errors.New("invalid shipment")

// IsRetryable returns true if the error is worth retrying by the caller.
func IsRetryable(err error) bool {
	var carrierErr *CarrierError
	if errors.As(err, &carrierErr) {
		return carrierErr.Retryable
	}
	return false
}

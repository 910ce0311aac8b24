// Package errs provides types and support related to web v1 functionality.
package errs

import (
	"errors"
	"net/http"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/ledger"
)

// Response is the form used for API responses from failures in the API.
type Response struct {
	Error  string            `json:"error"`
	Kind   string            `json:"kind,omitempty"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Trusted is used to pass an error during the request through the
// application with web specific context.
type Trusted struct {
	Err    error
	Status int
}

// NewTrusted wraps a provided error with an HTTP status code. This
// function should be used when handlers encounter expected errors.
func NewTrusted(err error, status int) error {
	return &Trusted{err, status}
}

// Error implements the error interface. It uses the default message of the
// wrapped error. This is what will be shown in the services' logs.
func (te *Trusted) Error() string {
	return te.Err.Error()
}

// Unwrap provides access to the wrapped error.
func (te *Trusted) Unwrap() error {
	return te.Err
}

// IsTrusted checks if an error of type Trusted exists.
func IsTrusted(err error) bool {
	var te *Trusted
	return errors.As(err, &te)
}

// GetTrusted returns a copy of the Trusted pointer.
func GetTrusted(err error) *Trusted {
	var te *Trusted
	if !errors.As(err, &te) {
		return nil
	}
	return te
}

// =============================================================================

// FromLedger converts an error returned while decoding or validating a
// ledger into a trusted error. A document that can't be decoded is a bad
// request, a document that decodes but fails validation is not acceptable
// and a valid ledger that doesn't extend the local one is a conflict.
// Any other error is returned as is.
func FromLedger(err error) error {
	switch {
	case errors.Is(err, ledger.ErrDecode):
		return NewTrusted(err, http.StatusBadRequest)

	case ledger.IsValidation(err):
		return NewTrusted(err, http.StatusNotAcceptable)

	case errors.Is(err, ledger.ErrPayloadEncoding):
		return NewTrusted(err, http.StatusUnprocessableEntity)

	case errors.Is(err, ledger.ErrConflict):
		return NewTrusted(err, http.StatusConflict)
	}

	return err
}

// Kind returns the name of the ledger error kind for the response.
func Kind(err error) string {
	switch {
	case errors.Is(err, ledger.ErrDecode):
		return "DecodeError"
	case errors.Is(err, ledger.ErrInvalidParentDigest):
		return "InvalidParentDigest"
	case errors.Is(err, ledger.ErrInvalidDigest):
		return "InvalidDigest"
	case errors.Is(err, ledger.ErrDanglingPayload):
		return "DanglingPayload"
	case errors.Is(err, ledger.ErrPayloadMismatch):
		return "PayloadMismatch"
	case errors.Is(err, ledger.ErrPayloadEncoding):
		return "PayloadEncoding"
	case errors.Is(err, ledger.ErrConflict):
		return "Conflict"
	}
	return ""
}

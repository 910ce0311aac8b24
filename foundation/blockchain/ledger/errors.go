package ledger

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/anchorchain/foundation/blockchain/digest"
)

// Set of errors returned by decoding and validation. Use errors.Is to
// identify the kind of failure.
var (
	ErrDecode              = digest.ErrDecode
	ErrInvalidParentDigest = errors.New("invalid parent digest")
	ErrInvalidDigest       = errors.New("invalid digest")
	ErrDanglingPayload     = errors.New("dangling payload")
	ErrPayloadMismatch     = errors.New("payload does not match its digest")
	ErrPayloadEncoding     = errors.New("payload is not valid utf-8")
	ErrConflict            = errors.New("ledger does not extend the local ledger")
)

// BlockError reports which block failed validation and why.
type BlockError struct {
	Index int
	Err   error
	Got   string
	Exp   string
}

// Error implements the error interface.
func (be *BlockError) Error() string {
	msg := fmt.Sprintf("block[%d]: %s", be.Index, be.Err)
	if be.Got != "" {
		msg += ", got " + be.Got
	}
	if be.Exp != "" {
		msg += ", exp " + be.Exp
	}
	return msg
}

// Unwrap returns the kind of failure.
func (be *BlockError) Unwrap() error {
	return be.Err
}

// IsValidation reports whether the error is one of the validator failures
// as opposed to a document that could not be decoded.
func IsValidation(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidParentDigest),
		errors.Is(err, ErrInvalidDigest),
		errors.Is(err, ErrDanglingPayload),
		errors.Is(err, ErrPayloadMismatch):
		return true
	}
	return false
}

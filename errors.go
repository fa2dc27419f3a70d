package anchor

import (
	"errors"
	"fmt"
)

// ErrSubscriptionClosed is reported by EventUnsubscriber.Err when the
// underlying notification stream closed without an unsubscribe.
var ErrSubscriptionClosed = errors.New("anchor: subscription stream closed")

// TransportError wraps an RPC collaborator failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("anchor: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports account or event bytes that do not match the
// expected layout or discriminator.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("anchor: decode: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("anchor: decode: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// SigningError reports a signer that refused or failed to produce a
// signature.
type SigningError struct {
	Err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("anchor: signing: %v", e.Err)
}

func (e *SigningError) Unwrap() error { return e.Err }

func transportErr(op string, err error) error {
	return &TransportError{Op: op, Err: err}
}

func decodeErr(reason string, err error) error {
	return &DecodeError{Reason: reason, Err: err}
}

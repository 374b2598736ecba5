package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMalformedBody   = errors.New("malformed message body")
	ErrMissingField    = errors.New("missing body field")
)

// DecodeError reports a frame that could not be split into a routing prefix
// and payload, or whose target is not part of the protocol.
type DecodeError struct {
	Frame  string
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Frame)
}

package protocol

import (
	"errors"
	"fmt"
)

// Protocol errors are fatal to the connection: the frame can no longer be
// trusted once the stream is misaligned.
var (
	ErrTruncated  = errors.New("protocol: truncated command payload")
	ErrBadCommand = errors.New("protocol: explicit bad command from server")
)

// UnknownCommandError reports an unrecognized command id. Fatal: the payload
// length is unknowable so the rest of the frame cannot be parsed.
type UnknownCommandError struct {
	ID byte
}

func (e *UnknownCommandError) Error() string {
	return fmt.Sprintf("protocol: unknown command id %d", e.ID)
}

// VersionError reports a protocol version mismatch from ServerInfo or
// Version commands.
type VersionError struct {
	Got int32
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("protocol: unrecognized protocol version %d (want %d)", e.Got, Version)
}

// IsFatal reports whether err ends the connection: any decode-level error
// is fatal, referential errors raised by dispatch are not and live in
// internal/client.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var unknown *UnknownCommandError
	var version *VersionError
	return errors.Is(err, ErrTruncated) ||
		errors.Is(err, ErrBadCommand) ||
		errors.As(err, &unknown) ||
		errors.As(err, &version)
}

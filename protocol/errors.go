package protocol

import (
	"errors"
	"fmt"
	"strconv"
)

// Error types for protocol operations.
// They tell the caller whether the connection is still usable after the
// failure, which decides between clearing the error and dropping the
// connection.

// ServerError represents an ACK response from the daemon.
// The daemon rejected the command but the response framing is intact:
// the line was read completely and the next command can be sent.
//
// Common causes:
//   - Unknown command (AckUnknown)
//   - Bad argument (AckArg)
//   - Missing song, output or playlist (AckNoExist)
//   - Permission denied (AckPermission)
//
// Connection handling: Connection can be REUSED once the error is cleared
type ServerError struct {
	Code             AckCode
	CommandListIndex int
	Command          string
	Message          string
}

func (e *ServerError) Error() string {
	return "ACK [" + strconv.Itoa(int(e.Code)) + "@" + strconv.Itoa(e.CommandListIndex) + "] {" + e.Command + "} " + e.Message
}

// ShouldCloseConnection returns false - ACK responses end the response cleanly
func (e *ServerError) ShouldCloseConnection() bool {
	return false
}

// ParseError represents a response the client could not make sense of.
//
// Common causes:
//   - Line without the "key: value" separator
//   - Malformed ACK or greeting line
//   - Entity whose primary value is unusable (e.g. non numeric outputid)
//
// Connection handling: Connection should be CLOSED as framing is uncertain
type ParseError struct {
	Message string
	Err     error // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse error: " + e.Message + ": " + e.Err.Error()
	}
	return "parse error: " + e.Message
}

// Unwrap returns the underlying error for error chain inspection
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - parse errors indicate corrupted state
func (e *ParseError) ShouldCloseConnection() bool {
	return true
}

// ConnectionError wraps I/O errors from the underlying transport.
//
// Connection handling: Connection is already broken, CLOSE it
type ConnectionError struct {
	Op  string // Operation that failed (read, write, etc.)
	Err error  // Underlying error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chain inspection
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ShouldCloseConnection returns true - connection errors mean connection is broken
func (e *ConnectionError) ShouldCloseConnection() bool {
	return true
}

// ErrorWithConnectionState is implemented by all protocol error types.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err leaves the connection unusable.
//
// Returns false for nil and ServerError, true for ParseError,
// ConnectionError and any error of unknown type.
func ShouldCloseConnection(err error) bool {
	if err == nil {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}

	// Unknown error type - be conservative and close connection
	return true
}

// IsAck reports whether err is an ACK response carrying code.
func IsAck(err error, code AckCode) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Code == code
}

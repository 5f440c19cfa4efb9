package model

import (
	"errors"
	"fmt"
)

// ErrEmptyInput is returned when a calendar is requested for zero offers.
var ErrEmptyInput = errors.New("no offers to render")

// AuthError indicates that the mail server rejected the credentials.
type AuthError struct {
	Username string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.Username, e.Message)
}

// ConnectionError indicates that the mail server could not be reached.
type ConnectionError struct {
	Addr string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to %s: %v", e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// FetchError indicates that a message could not be retrieved.
type FetchError struct {
	MessageID string
	Err       error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetching message %s: not found", e.MessageID)
	}
	return fmt.Sprintf("fetching message %s: %v", e.MessageID, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError indicates a missing or malformed header, timestamp or
// snapshot document. Field names what was being parsed and Value holds the
// offending input when there is one.
type ParseError struct {
	Field string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	msg := "parsing " + e.Field
	if e.Value != "" {
		msg += fmt.Sprintf(" %q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error { return e.Err }

// FileSystemError indicates that a cache, snapshot or output path could
// not be read or written.
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileSystemError) Unwrap() error { return e.Err }

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsConnectionError reports whether err wraps a ConnectionError.
func IsConnectionError(err error) bool {
	var connErr *ConnectionError
	return errors.As(err, &connErr)
}

// IsFetchError reports whether err wraps a FetchError.
func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}

// IsParseError reports whether err wraps a ParseError.
func IsParseError(err error) bool {
	var parseErr *ParseError
	return errors.As(err, &parseErr)
}

// IsFileSystemError reports whether err wraps a FileSystemError.
func IsFileSystemError(err error) bool {
	var fsErr *FileSystemError
	return errors.As(err, &fsErr)
}

// Package errs defines the discriminated error kinds greppy's callers
// switch on, following the taxonomy every layer (CLI, daemon, pipeline)
// reports through.
package errs

import (
	"errors"
	"fmt"
)

// Kind is one of the fixed error categories reported across the wire
// protocol. The CLI exits with status 1 for every kind.
type Kind string

const (
	KindProjectNotFound Kind = "project-not-found"
	KindNoProjectRoot   Kind = "no-project-root"
	KindIndexNotFound   Kind = "index-not-found"
	KindIndexError      Kind = "index-error"
	KindSearchError     Kind = "search-error"
	KindConfigError     Kind = "config-error"
	KindDaemonNotRunning Kind = "daemon-not-running"
	KindDaemonError     Kind = "daemon-error"
	KindIOError         Kind = "io-error"
	KindParseError      Kind = "parse-error"
	KindProtocolError   Kind = "protocol-error"
)

// Sentinel errors. Wrap these with fmt.Errorf("...: %w", Err...) at the
// call site; unwrap with errors.Is / As at the CLI or daemon boundary to
// recover the Kind.
var (
	ErrProjectNotFound  = &kindError{kind: KindProjectNotFound, msg: "project not found"}
	ErrNoProjectRoot    = &kindError{kind: KindNoProjectRoot, msg: "no project root found from this directory"}
	ErrIndexNotFound    = &kindError{kind: KindIndexNotFound, msg: "index not found"}
	ErrIndexError       = &kindError{kind: KindIndexError, msg: "index error"}
	ErrSearchError      = &kindError{kind: KindSearchError, msg: "search error"}
	ErrConfigError      = &kindError{kind: KindConfigError, msg: "config error"}
	ErrDaemonNotRunning = &kindError{kind: KindDaemonNotRunning, msg: "daemon not running"}
	ErrDaemonError      = &kindError{kind: KindDaemonError, msg: "daemon error"}
	ErrIOError          = &kindError{kind: KindIOError, msg: "io error"}
	ErrParseError       = &kindError{kind: KindParseError, msg: "parse error"}
	ErrProtocolError    = &kindError{kind: KindProtocolError, msg: "protocol error"}
)

type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

// Wrap attaches context to a sentinel, e.g. Wrap(ErrIndexNotFound, root).
func Wrap(sentinel error, context string) error {
	return fmt.Errorf("%s: %w", context, sentinel)
}

// KindOf extracts the Kind carried by err, walking its wrapped chain.
// Returns ("", false) if err does not wrap one of the sentinels above.
func KindOf(err error) (Kind, bool) {
	for _, sentinel := range []*kindError{
		ErrProjectNotFound, ErrNoProjectRoot, ErrIndexNotFound, ErrIndexError,
		ErrSearchError, ErrConfigError, ErrDaemonNotRunning, ErrDaemonError,
		ErrIOError, ErrParseError, ErrProtocolError,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.kind, true
		}
	}
	return "", false
}

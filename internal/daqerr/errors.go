// Package daqerr classifies failures by kind and
// gives main() a single Exit path, the way busoc-assist's err.go did for
// its own domain.
package daqerr

import (
	"fmt"
	"os"
)

// Kind is one row of the error taxonomy by failure category.
type Kind int

const (
	// TransientTransport covers I/O timeouts, garbled decodes, and
	// Modbus retry exhaustion. Never fatal; the loop logs a sentinel and
	// continues.
	TransientTransport Kind = iota
	// FramingUnderrun is a streamed sentence left incomplete after the
	// retry budget. The tick is dropped.
	FramingUnderrun
	// WriteContention is an append failure due to a lock or permission
	// error. Rows stay queued for the next flush.
	WriteContention
	// ConfigInvalid is a parse failure or an instrument_name mismatch.
	ConfigInvalid
	// ConfigFileMissing is a named instrument with no config file.
	ConfigFileMissing
	// FatalStartup is an unrecoverable condition at loop start (output
	// directory uncreatable, required transport unavailable).
	FatalStartup
)

func (k Kind) String() string {
	switch k {
	case TransientTransport:
		return "transient-transport"
	case FramingUnderrun:
		return "framing-underrun"
	case WriteContention:
		return "write-contention"
	case ConfigInvalid:
		return "config-invalid"
	case ConfigFileMissing:
		return "config-file-missing"
	case FatalStartup:
		return "fatal-startup"
	default:
		return "unknown"
	}
}

// exit codes for the CLI surface: 0 on clean shutdown,
// non-zero on unrecoverable config errors.
const (
	codeGeneric           = 1
	codeConfigInvalid     = 2
	codeConfigFileMissing = 3
	codeFatalStartup      = 4
)

// Error wraps a cause with the kind it belongs to and the process exit
// code that kind maps to, mirroring busoc-assist's Error{Cause, Code}.
type Error struct {
	Cause error
	Kind  Kind
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) exitCode() int {
	switch e.Kind {
	case ConfigInvalid:
		return codeConfigInvalid
	case ConfigFileMissing:
		return codeConfigFileMissing
	case FatalStartup:
		return codeFatalStartup
	default:
		return codeGeneric
	}
}

// New wraps cause as the given kind. Returns nil if cause is nil, so call
// sites can write `return daqerr.New(daqerr.ConfigInvalid, err)` unconditionally.
func New(kind Kind, cause error) error {
	if cause == nil {
		return nil
	}
	return &Error{Cause: cause, Kind: kind}
}

// Newf builds a new Error of the given kind from a format string, with no
// underlying cause to wrap.
func Newf(kind Kind, format string, args ...interface{}) error {
	return &Error{Cause: fmt.Errorf(format, args...), Kind: kind}
}

// Exit prints err to stderr and terminates the process with the exit
// code that its kind maps to. If err is nil, Exit returns without
// terminating the process.
func Exit(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	if e, ok := err.(*Error); ok {
		os.Exit(e.exitCode())
	}
	os.Exit(codeGeneric)
}

// Package logging wires the process-wide logrus logger the way
// busoc-assist's init() wired the stdlib logger: stderr output, one line
// per event, a program/version prefix — here carried as structured fields
// instead of a string prefix.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the base logger for a binary: full timestamps, stderr output,
// tagged with the program name and version the way busoc-assist's
// log.SetPrefix(fmt.Sprintf("[%s-%s] ", Program, Version)) did.
func New(program, version string) *logrus.Entry {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log.WithFields(logrus.Fields{
		"program": program,
		"version": version,
	})
}

// TeeFile adds a second destination for everything the logger already
// writes to stderr, used by cmd/jaqlogger to reproduce the original's
// per-instrument log-file convention (see SPEC_FULL.md, supplemented
// feature 1).
func TeeFile(log *logrus.Entry, w io.Writer) {
	base := log.Logger
	base.SetOutput(io.MultiWriter(base.Out, w))
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the package-wide optional structured-logging hook. It is
// nil by default: a pure computation library has no business logging
// on every call, so this is only consulted when an iterator terminates
// with an IterationError (guard limit, invalid year) — never on the
// per-occurrence hot path.
var Logger *zerolog.Logger

// SetLogger installs l as the package-wide logger. Passing nil
// disables logging again.
func SetLogger(l *zerolog.Logger) {
	Logger = l
}

// NewRotatingLogger builds a zerolog.Logger that writes through
// lumberjack for size-based rotation, the same pairing
// jpfluger-alibs-slim's alog package uses around zerolog.
func NewRotatingLogger(path string, maxSizeMB, maxBackups, maxAgeDays int) *zerolog.Logger {
	var w io.Writer = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   true,
	}
	l := zerolog.New(w).With().Timestamp().Logger()
	return &l
}

// NewConsoleLogger builds a human-readable zerolog.Logger writing to
// stderr, useful during development.
func NewConsoleLogger() *zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	return &l
}

func logGuardLimit(r *RRule, stage string, iterations int) {
	if Logger == nil {
		return
	}
	Logger.Warn().
		Str("freq", r.Freq.String()).
		Str("stage", stage).
		Int("iterations", iterations).
		Msg("rrule: iteration terminated by error")
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import (
	"errors"
	"fmt"
)

// errOutOfRange is returned internally by pySubscript; BYSETPOS call
// sites translate it into "skip this position" rather than surfacing it.
var errOutOfRange = errors.New("rrule: index out of range")

// ParseError reports a malformed textual RRULE/RRuleSet. It wraps the
// lower-level cause so errors.Unwrap/errors.As work.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("rrule: parse error in %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func newParseError(input string, err error) error {
	return &ParseError{Input: input, Err: err}
}

// ValidationError reports a validated-record invariant violation caught
// at build time: missing FREQ, an incompatible BY-clause combination,
// an out-of-domain value, UNTIL before DTSTART, or a negative INTERVAL.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("rrule: validation error: %v", e.Err)
	}
	return fmt.Sprintf("rrule: validation error on %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func newValidationError(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IterationError reports a failure encountered mid-iteration: a
// guard-limit hit, arithmetic on an invalid date, a counter year
// beyond MAXYEAR, or an empty timeset where one was required. The
// top-level iterator surfaces this via its "paired" API rather than
// panicking, so a caller can distinguish clean exhaustion from failure.
type IterationError struct {
	Reason string
	Err    error
}

func (e *IterationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("rrule: iteration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("rrule: iteration error: %s", e.Reason)
}

func (e *IterationError) Unwrap() error { return e.Err }

func newIterationError(reason string, err error) error {
	return &IterationError{Reason: reason, Err: err}
}

var (
	// ErrGuardLimit is wrapped by IterationError when either guard
	// limit (formula-loop or total-iteration) is exceeded.
	ErrGuardLimit = errors.New("rrule: guard limit exceeded")
	// ErrInvalidYear is wrapped by IterationError when the counter
	// date's year falls outside [1, MAXYEAR].
	ErrInvalidYear = errors.New("rrule: year out of range")
)

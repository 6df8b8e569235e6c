// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package rrule implements the recurrence expansion engine defined by
// RFC 5545 (RRULE, plus RDATE/EXRULE/EXDATE set composition): given a
// validated rule record, it produces a lazy, strictly increasing
// sequence of occurrence instants in the rule's time zone.
package rrule

import (
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ROption offers the options used to construct an RRule instance —
// the unvalidated input record, before NewRRule checks it.
type ROption struct {
	Freq       Frequency
	Dtstart    time.Time
	Interval   int
	Wkst       Weekday
	Count      int
	Until      time.Time
	Bysetpos   []int
	Bymonth    []int
	Bymonthday []int
	Byyearday  []int
	Byweekno   []int
	Byweekday  []Weekday
	Byhour     []int
	Byminute   []int
	Bysecond   []int
	Byeaster   []int
	// RFC, when true, formats String() without a DTSTART line, matching
	// raw RFC 5545 RRULE value syntax (no DTSTART property).
	RFC bool
	// AllowByWeekNoAnyFreq accepts BYWEEKNO with a frequency other than
	// YEARLY, instead of rejecting it at validation time (the default).
	AllowByWeekNoAnyFreq bool
}

// RRule offers a small, complete implementation of the RFC 5545
// recurrence rule. Len holds the number of occurrences an iterator
// emitted when it last stopped at COUNT or UNTIL; results are not
// cached.
type RRule struct {
	OrigOptions             ROption
	Options                 ROption
	Freq                    Frequency
	DateStart               time.Time
	Interval                int
	Wkst                    int
	Count                   int
	UntilTime               time.Time
	Bysetpos                []int
	Bymonth                 []int
	Bymonthday, Bynmonthday []int
	Byyearday               []int
	Byweekno                []int
	Byweekday               []int
	Bynweekday              []Weekday
	Byhour                  []int
	Byminute                []int
	Bysecond                []int
	Byeaster                []int
	Timeset                 []time.Time
	Len                     int
}

// boundedOptions mirrors the plain-inclusive-range BY-clauses of
// ROption for struct-tag validation via go-playground/validator/v10.
// The sign-flipping fields (BYMONTHDAY, BYYEARDAY, BYWEEKNO, BYSETPOS)
// are intentionally absent here — validator's tag language can't
// express "in [a,b] or its negation" — and are checked by
// checkSignedBounds instead.
type boundedOptions struct {
	Bysecond []int `validate:"dive,min=0,max=59"`
	Byminute []int `validate:"dive,min=0,max=59"`
	Byhour   []int `validate:"dive,min=0,max=23"`
	Bymonth  []int `validate:"dive,min=1,max=12"`
	Interval int `validate:"min=1"`
	Count    int `validate:"min=0"`
}

// NewRRule constructs a new RRule, validating arg's invariants first.
func NewRRule(arg ROption) (*RRule, error) {
	if err := validateOptions(arg); err != nil {
		return nil, err
	}
	r := RRule{}
	r.OrigOptions = arg
	if arg.Dtstart.IsZero() {
		arg.Dtstart = time.Now().UTC()
	}
	arg.Dtstart = arg.Dtstart.Truncate(time.Second)
	r.DateStart = arg.Dtstart
	r.Freq = arg.Freq
	if arg.Interval == 0 {
		r.Interval = 1
	} else {
		r.Interval = arg.Interval
	}
	r.Count = arg.Count
	if arg.Until.IsZero() {
		// The largest representable duration (roughly 290 years).
		arg.Until = r.DateStart.Add(time.Duration(1<<63 - 1))
	}
	r.UntilTime = arg.Until
	r.Wkst = arg.Wkst.weekday
	r.Bysetpos = arg.Bysetpos

	if len(arg.Byweekno) == 0 &&
		len(arg.Byyearday) == 0 &&
		len(arg.Bymonthday) == 0 &&
		len(arg.Byweekday) == 0 &&
		len(arg.Byeaster) == 0 {
		if r.Freq == YEARLY {
			if len(arg.Bymonth) == 0 {
				arg.Bymonth = []int{int(r.DateStart.Month())}
			}
			arg.Bymonthday = []int{r.DateStart.Day()}
		} else if r.Freq == MONTHLY {
			arg.Bymonthday = []int{r.DateStart.Day()}
		} else if r.Freq == WEEKLY {
			arg.Byweekday = []Weekday{{weekday: toPyWeekday(r.DateStart.Weekday())}}
		}
	}

	r.Bymonth = arg.Bymonth
	r.Byyearday = arg.Byyearday
	r.Byeaster = arg.Byeaster
	for _, mday := range arg.Bymonthday {
		if mday > 0 {
			r.Bymonthday = append(r.Bymonthday, mday)
		} else if mday < 0 {
			r.Bynmonthday = append(r.Bynmonthday, mday)
		}
	}
	r.Byweekno = arg.Byweekno
	for _, wday := range arg.Byweekday {
		if wday.n == 0 || r.Freq > MONTHLY {
			r.Byweekday = append(r.Byweekday, wday.weekday)
		} else {
			r.Bynweekday = append(r.Bynweekday, wday)
		}
	}

	if len(arg.Byhour) == 0 {
		if r.Freq < HOURLY {
			r.Byhour = []int{r.DateStart.Hour()}
		}
	} else {
		r.Byhour = arg.Byhour
	}
	if len(arg.Byminute) == 0 {
		if r.Freq < MINUTELY {
			r.Byminute = []int{r.DateStart.Minute()}
		}
	} else {
		r.Byminute = arg.Byminute
	}
	if len(arg.Bysecond) == 0 {
		if r.Freq < SECONDLY {
			r.Bysecond = []int{r.DateStart.Second()}
		}
	} else {
		r.Bysecond = arg.Bysecond
	}

	r.Options = arg
	r.calculateTimeset()

	return &r, nil
}

// validateOptions checks arg's invariants, using
// go-playground/validator/v10 for the plain inclusive-range BY-clauses
// and a hand-rolled check for the sign-flipping ones (see
// boundedOptions's doc comment).
func validateOptions(arg ROption) error {
	interval := arg.Interval
	if interval == 0 {
		interval = 1
	}
	bo := boundedOptions{
		Bysecond: arg.Bysecond,
		Byminute: arg.Byminute,
		Byhour:   arg.Byhour,
		Bymonth:  arg.Bymonth,
		Interval: interval,
		Count:    arg.Count,
	}
	if err := validate.Struct(bo); err != nil {
		return newValidationError("", err)
	}

	signed := []struct {
		field string
		vals  []int
		lo    int
		hi    int
	}{
		{"Bymonthday", arg.Bymonthday, 1, 31},
		{"Byyearday", arg.Byyearday, 1, 366},
		{"Byweekno", arg.Byweekno, 1, 53},
		{"Bysetpos", arg.Bysetpos, 1, 366},
	}
	for _, s := range signed {
		if err := checkSignedBounds(s.field, s.vals, s.lo, s.hi); err != nil {
			return err
		}
	}

	for _, w := range arg.Byweekday {
		if w.n > 366 || w.n < -366 {
			return newValidationError("Byweekday", fmt.Errorf("byday position must be between -366 and 366, got %d", w.n))
		}
	}

	if arg.Interval < 0 {
		return newValidationError("Interval", fmt.Errorf("interval must be >= 1"))
	}

	if len(arg.Byweekno) != 0 && arg.Freq != YEARLY && !arg.AllowByWeekNoAnyFreq {
		return newValidationError("Byweekno", fmt.Errorf("BYWEEKNO is only valid with FREQ=YEARLY unless AllowByWeekNoAnyFreq is set"))
	}

	if !arg.Until.IsZero() && !arg.Dtstart.IsZero() && arg.Until.Before(arg.Dtstart) {
		return newValidationError("Until", fmt.Errorf("UNTIL must not be before DTSTART"))
	}

	return nil
}

// checkSignedBounds checks that every value in vals lies in [lo, hi] or,
// symmetrically, in [-hi, -lo] — the shape validator's struct tags
// can't express directly (see boundedOptions).
func checkSignedBounds(field string, vals []int, lo, hi int) error {
	for _, v := range vals {
		if (v >= lo && v <= hi) || (v <= -lo && v >= -hi) {
			continue
		}
		return newValidationError(field, fmt.Errorf("value %d out of bounds (%d..%d or %d..%d)", v, lo, hi, -hi, -lo))
	}
	return nil
}

// DTStart sets a new DTSTART for the rule and recalculates the
// time-set if needed.
func (r *RRule) DTStart(dt time.Time) {
	r.DateStart = dt.Truncate(time.Second)
	r.Options.Dtstart = r.DateStart

	if len(r.Options.Byhour) == 0 && r.Freq < HOURLY {
		r.Byhour = []int{r.DateStart.Hour()}
	}
	if len(r.Options.Byminute) == 0 && r.Freq < MINUTELY {
		r.Byminute = []int{r.DateStart.Minute()}
	}
	if len(r.Options.Bysecond) == 0 && r.Freq < SECONDLY {
		r.Bysecond = []int{r.DateStart.Second()}
	}
	r.calculateTimeset()
}

// Until sets a new UNTIL for the rule.
func (r *RRule) Until(ut time.Time) {
	r.UntilTime = ut
	r.Options.Until = ut
}

// calculateTimeset rebuilds Timeset, the Cartesian product of
// BYHOUR×BYMINUTE×BYSECOND used by frequencies coarser than Daily
// (component I, "coarse" path).
func (r *RRule) calculateTimeset() {
	r.Timeset = []time.Time{}
	if r.Freq >= HOURLY {
		return
	}
	for _, hour := range r.Byhour {
		for _, minute := range r.Byminute {
			for _, second := range r.Bysecond {
				r.Timeset = append(r.Timeset, time.Date(1, 1, 1, hour, minute, second, 0, r.DateStart.Location()))
			}
		}
	}
	sort.Sort(timeSlice(r.Timeset))
}

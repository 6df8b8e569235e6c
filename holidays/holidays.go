// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package holidays turns a business calendar into EXDATE instants a
// recurrence set can exclude: given an ISO country code and a date
// range, it returns every observed holiday in that range as midnight
// instants, ready for Set.ExDate.
package holidays

import (
	"fmt"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

// Calendar is the collaborator this package needs from
// github.com/rickar/cal/v2: whether a given date is a holiday, with
// the distinction between the holiday's actual date and the day its
// observance shifts to when it falls on a weekend.
type Calendar interface {
	IsHoliday(date time.Time) (actual, observed bool, h *cal.Holiday)
}

// registry maps a lowercased ISO country code to the calendar backing
// it. Only "us" is wired by default; callers add more via Register.
var registry = map[string]Calendar{
	"us": newUSCalendar(),
}

func newUSCalendar() Calendar {
	bc := cal.NewBusinessCalendar()
	bc.AddHoliday(us.Holidays...)
	return bc
}

// Register adds or replaces the calendar for iso (case-insensitive).
func Register(iso string, c Calendar) {
	registry[strings.ToLower(strings.TrimSpace(iso))] = c
}

// ForISO returns the registered calendar for iso, or an error if none
// is registered.
func ForISO(iso string) (Calendar, error) {
	c, ok := registry[strings.ToLower(strings.TrimSpace(iso))]
	if !ok {
		return nil, fmt.Errorf("holidays: no calendar registered for ISO code %q", iso)
	}
	return c, nil
}

// Observance selects which of a holiday's two dates (its actual
// calendar date, or the day its observance is shifted to) ExDates
// should use.
type Observance int

const (
	// ObserveActual excludes the holiday's literal calendar date.
	ObserveActual Observance = iota
	// ObserveObserved excludes the (possibly weekend-shifted) day the
	// holiday is actually observed on.
	ObserveObserved
	// ObserveBoth excludes both dates when they differ.
	ObserveBoth
)

// ExDates returns every holiday instant from cal in [from, until),
// expressed at midnight in loc, selecting actual/observed/both dates
// per mode. Used to seed Set.ExDate so a recurrence rule skips
// holidays entirely rather than landing on them.
func ExDates(c Calendar, from, until time.Time, loc *time.Location, mode Observance) []time.Time {
	var out []time.Time
	seen := make(map[time.Time]bool)
	add := func(t time.Time) {
		d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}

	for d := from; d.Before(until); d = d.AddDate(0, 0, 1) {
		actual, observed, h := c.IsHoliday(d)
		if h == nil {
			continue
		}
		if (mode == ObserveActual || mode == ObserveBoth) && actual {
			add(d)
		}
		if (mode == ObserveObserved || mode == ObserveBoth) && observed {
			add(d)
		}
	}
	return out
}

// ApplyExDates pushes every holiday instant from cal in [from, until)
// into set via its ExDate method, so a recurrence is excluded on those
// days without the caller hand-rolling the loop in ExDates.
func ApplyExDates(set interface{ ExDate(time.Time) }, c Calendar, from, until time.Time, loc *time.Location, mode Observance) {
	for _, d := range ExDates(c, from, until, loc, mode) {
		set.ExDate(d)
	}
}

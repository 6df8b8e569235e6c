// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import (
	"sort"
	"time"
)

// Set composes the effective recurrence set
// (∪ RRULE ∪ RDATE) \ (∪ EXRULE ∪ EXDATE) — component M. It streams a
// bounded k-way merge over one Next per RRULE/EXRULE plus the sorted
// RDATE/EXDATE queues, rather than materializing any of the underlying
// sequences; exclude sources suppress a candidate but never themselves
// emit.
type Set struct {
	dtstart  time.Time
	hasStart bool
	rrule    []*RRule
	exrule   []*RRule
	rdate    []time.Time
	exdate   []time.Time
}

// DTStart sets the set's anchor instant, used only for textual
// round-tripping (str.go); the underlying RRULEs keep their own
// DateStart.
func (set *Set) DTStart(dt time.Time) {
	set.dtstart = dt
	set.hasStart = true
}

// GetDTStart returns the set's anchor instant, or the zero time if
// none was set explicitly.
func (set *Set) GetDTStart() time.Time {
	return set.dtstart
}

// RRule adds r to the set's inclusion rules.
func (set *Set) RRule(r *RRule) { set.rrule = append(set.rrule, r) }

// ExRule adds r to the set's exclusion rules.
func (set *Set) ExRule(r *RRule) { set.exrule = append(set.exrule, r) }

// RDate adds a single inclusion instant.
func (set *Set) RDate(t time.Time) { set.rdate = append(set.rdate, t) }

// ExDate adds a single exclusion instant.
func (set *Set) ExDate(t time.Time) { set.exdate = append(set.exdate, t) }

// GetRRule returns the set's inclusion rules.
func (set *Set) GetRRule() []*RRule { return set.rrule }

// GetExRule returns the set's exclusion rules.
func (set *Set) GetExRule() []*RRule { return set.exrule }

// GetRDate returns the set's individual inclusion instants.
func (set *Set) GetRDate() []time.Time { return set.rdate }

// GetExDate returns the set's individual exclusion instants.
func (set *Set) GetExDate() []time.Time { return set.exdate }

// head is one merge source: a lazily-pulled next value plus whether it
// is still live.
type head struct {
	next Next
	val  time.Time
	ok   bool
}

func newHeads(rules []*RRule) []*head {
	heads := make([]*head, 0, len(rules))
	for _, r := range rules {
		h := &head{next: r.Iterator()}
		h.val, h.ok = h.next()
		heads = append(heads, h)
	}
	return heads
}

func sortedQueue(dates []time.Time) []time.Time {
	out := append([]time.Time{}, dates...)
	sort.Sort(timeSlice(out))
	return out
}

// Iterator returns a Next iterator over the merged, deduplicated,
// excluded set.
func (set *Set) Iterator() Next {
	incHeads := newHeads(set.rrule)
	excHeads := newHeads(set.exrule)
	rdate := sortedQueue(set.rdate)
	exdate := sortedQueue(set.exdate)

	var lastEmitted time.Time
	haveEmitted := false

	advanceRdate := func() {
		rdate = rdate[1:]
	}
	advanceExdate := func() {
		exdate = exdate[1:]
	}

	return func() (time.Time, bool) {
		for {
			cand, ok := minCandidate(incHeads, rdate)
			if !ok {
				return time.Time{}, false
			}

			excluded := false
			for _, h := range excHeads {
				for h.ok && h.val.Before(cand) {
					h.val, h.ok = h.next()
				}
				if h.ok && h.val.Equal(cand) {
					h.val, h.ok = h.next()
					excluded = true
				}
			}
			for len(exdate) != 0 && exdate[0].Before(cand) {
				advanceExdate()
			}
			if len(exdate) != 0 && exdate[0].Equal(cand) {
				advanceExdate()
				excluded = true
			}

			advanceMatchingIncHeads(incHeads, cand)
			if len(rdate) != 0 && rdate[0].Equal(cand) {
				advanceRdate()
			}

			if excluded {
				continue
			}
			if haveEmitted && cand.Equal(lastEmitted) {
				continue
			}
			lastEmitted = cand
			haveEmitted = true
			return cand, true
		}
	}
}

func advanceMatchingIncHeads(heads []*head, cand time.Time) {
	for _, h := range heads {
		if h.ok && h.val.Equal(cand) {
			h.val, h.ok = h.next()
		}
	}
}

// minCandidate returns the earliest live value among the RRULE heads
// and the RDATE queue's front.
func minCandidate(heads []*head, rdate []time.Time) (time.Time, bool) {
	var best time.Time
	found := false
	for _, h := range heads {
		if h.ok && (!found || h.val.Before(best)) {
			best = h.val
			found = true
		}
	}
	if len(rdate) != 0 && (!found || rdate[0].Before(best)) {
		best = rdate[0]
		found = true
	}
	return best, found
}

// All returns every occurrence of the set. Unbounded sets will not
// return; use Take(set.Iterator(), limit) instead.
func (set *Set) All() []time.Time {
	return all(set.Iterator())
}

// Between returns every occurrence of the set in (after, before), or
// [after, before] when inc is true.
func (set *Set) Between(afterT, beforeT time.Time, inc bool) []time.Time {
	return between(set.Iterator(), afterT, beforeT, inc)
}

// Before returns the last occurrence of the set before dt (or ≤ dt).
func (set *Set) Before(dt time.Time, inc bool) time.Time {
	return before(set.Iterator(), dt, inc)
}

// After returns the first occurrence of the set after dt (or ≥ dt).
func (set *Set) After(dt time.Time, inc bool) time.Time {
	return after(set.Iterator(), dt, inc)
}

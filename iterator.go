// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import "time"

// defaultFormulaLoopLimit bounds the per-period inner loop the
// Hourly/Minutely/Secondly advance (component K) uses to find the next
// BY-clause-accepting sub-unit; it should normally terminate in
// O(interval) steps and only protects against pathological BY-clause
// combinations.
const defaultFormulaLoopLimit = 10000

// defaultTotalIterationLimit bounds the number of periods a single
// call to generate will advance through without queueing an
// occurrence; the count starts again on each call.
const defaultTotalIterationLimit = 100000

// counter is the top-level iterator's internal cursor ("Counter
// date") — not itself necessarily an emitted occurrence.
type counter struct {
	year    int
	month   time.Month
	day     int
	hour    int
	minute  int
	second  int
	weekday int
}

// rIterator is the top-level iterator state machine (component L). It
// owns one iterInfo exclusively and is not safe for concurrent use;
// concurrent expansion of the same *RRule requires one iterator per
// goroutine.
type rIterator struct {
	c        counter
	ii       iterInfo
	timeset  []time.Time
	total    int
	count    int
	remain   []time.Time
	finished bool
	err      error
}

// generate runs Period → Emit → Advance until it has at least one
// occurrence queued in remain, the rule is exhausted, or a guard
// limit / arithmetic error terminates the iterator.
func (it *rIterator) generate() {
	r := it.ii.rrule
	iterations := 0
	for len(it.remain) == 0 {
		iterations++
		if iterations > defaultTotalIterationLimit {
			it.err = newIterationError("total iteration limit exceeded", ErrGuardLimit)
			logGuardLimit(r, "total-iteration", iterations)
			it.finished = true
			return
		}

		dayset, start, end := it.ii.getdayset(r.Freq, it.c.year, it.c.month, it.c.day)
		filtered := applyFilters(r, &it.ii, dayset, start, end)

		if len(r.Bysetpos) != 0 && len(it.timeset) != 0 {
			poslist := applySetPos(r, &it.ii, dayset, start, end, it.timeset)
			if it.emit(poslist) {
				return
			}
		} else if it.emitFlat(dayset, start, end) {
			return
		}

		loopLimit := defaultFormulaLoopLimit
		newTimeset, err := it.c.advance(r, &it.ii, filtered, loopLimit)
		if err != nil {
			it.err = err
			logGuardLimit(r, "counter-advance", iterations)
			it.finished = true
			return
		}
		if newTimeset != nil {
			it.timeset = newTimeset
		}
	}
}

// emit appends occurrences from an already-ordered candidate list
// (used by the BYSETPOS path), applying DTSTART/UNTIL/COUNT exactly as
// the flat path does. It returns true once the iterator has finished.
func (it *rIterator) emit(candidates []time.Time) bool {
	r := it.ii.rrule
	for _, res := range candidates {
		if !r.UntilTime.IsZero() && res.After(r.UntilTime) {
			r.Len = it.total
			it.finished = true
			return true
		}
		if res.Before(r.DateStart) {
			continue
		}
		it.total++
		it.remain = append(it.remain, res)
		if it.count != 0 {
			it.count--
			if it.count == 0 {
				r.Len = it.total
				it.finished = true
				return true
			}
		}
	}
	return false
}

// emitFlat is the non-BYSETPOS emission path: every surviving day in
// the dayset, crossed with every entry in the time-set.
func (it *rIterator) emitFlat(dayset []*int, start, end int) bool {
	r := it.ii.rrule
	for _, i := range dayset[start:end] {
		if i == nil {
			continue
		}
		date := it.ii.firstyday.AddDate(0, 0, *i)
		for _, t := range it.timeset {
			res := wallClock(date, t)
			if !r.UntilTime.IsZero() && res.After(r.UntilTime) {
				r.Len = it.total
				it.finished = true
				return true
			}
			if res.Before(r.DateStart) {
				continue
			}
			it.total++
			it.remain = append(it.remain, res)
			if it.count != 0 {
				it.count--
				if it.count == 0 {
					r.Len = it.total
					it.finished = true
					return true
				}
			}
		}
	}
	return false
}

// wallClock combines date's calendar day with t's time of day in t's
// location. A wall-clock time that does not exist there (a
// spring-forward gap) maps to its forward-shifted equivalent: the
// reading taken at the offset in force before the gap.
func wallClock(date, t time.Time) time.Time {
	res := time.Date(date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if res.Hour() != t.Hour() || res.Minute() != t.Minute() || res.Second() != t.Second() {
		_, off := res.Zone()
		res = time.Date(date.Year(), date.Month(), date.Day(),
			t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC).
			Add(-time.Duration(off) * time.Second).In(t.Location())
	}
	return res
}

// next returns the next occurrence and true, or the zero time and
// false once the iterator is exhausted or has failed. Failures are
// reported through NextSafe instead of being observable here, keeping
// the plain func() (time.Time, bool) shape drop-in for simple
// iteration.
func (it *rIterator) next() (time.Time, bool) {
	if !it.finished {
		it.generate()
	}
	if len(it.remain) == 0 {
		return time.Time{}, false
	}
	value := it.remain[0]
	it.remain = it.remain[1:]
	return value, true
}

// NextSafe wraps a *RRule's Next iterator so a mid-stream IterationError
// can be observed instead of silently truncating the sequence.
func (r *RRule) NextSafe() (Next, func() error) {
	it := &rIterator{}
	it.init(r)
	return it.next, func() error { return it.err }
}

func (it *rIterator) init(r *RRule) {
	it.c.year, it.c.month, it.c.day = r.DateStart.Date()
	it.c.hour, it.c.minute, it.c.second = r.DateStart.Clock()
	it.c.weekday = toPyWeekday(r.DateStart.Weekday())

	it.ii = iterInfo{rrule: r}
	it.ii.rebuild(it.c.year, it.c.month)

	if r.Freq < HOURLY {
		it.timeset = r.Timeset
	} else if r.Freq >= HOURLY && len(r.Byhour) != 0 && !contains(r.Byhour, it.c.hour) ||
		r.Freq >= MINUTELY && len(r.Byminute) != 0 && !contains(r.Byminute, it.c.minute) ||
		r.Freq >= SECONDLY && len(r.Bysecond) != 0 && !contains(r.Bysecond, it.c.second) {
		it.timeset = []time.Time{}
	} else {
		it.timeset = it.ii.gettimeset(r.Freq, it.c.hour, it.c.minute, it.c.second)
	}
	it.count = r.Count
}

// Iterator returns a Next iterator for r. It never surfaces
// IterationError directly; use NextSafe for that.
func (r *RRule) Iterator() Next {
	it := &rIterator{}
	it.init(r)
	return it.next
}

// All returns every occurrence of r. Unbounded rules (no COUNT/UNTIL)
// will not return; use Take(r.Iterator(), limit) instead.
func (r *RRule) All() []time.Time {
	return all(r.Iterator())
}

// Between returns every occurrence of r in (after, before), or
// [after, before] when inc is true.
func (r *RRule) Between(after, before time.Time, inc bool) []time.Time {
	return between(r.Iterator(), after, before, inc)
}

// Before returns the last occurrence of r before dt (or ≤ dt when inc),
// or the zero time if none.
func (r *RRule) Before(dt time.Time, inc bool) time.Time {
	return before(r.Iterator(), dt, inc)
}

// After returns the first occurrence of r after dt (or ≥ dt when inc),
// or the zero time if none.
func (r *RRule) After(dt time.Time, inc bool) time.Time {
	return after(r.Iterator(), dt, inc)
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import (
	"sort"
	"strconv"
	"time"
)

// Next is the iterator shape every occurrence source in this package
// exposes: call it repeatedly; it returns the next occurrence and true,
// or the zero time and false once exhausted.
type Next func() (time.Time, bool)

func itoa(n int) string {
	return strconv.Itoa(n)
}

// timeSlice adapts []time.Time for sort.Sort.
type timeSlice []time.Time

func (t timeSlice) Len() int           { return len(t) }
func (t timeSlice) Less(i, j int) bool { return t[i].Before(t[j]) }
func (t timeSlice) Swap(i, j int)      { t[i], t[j] = t[j], t[i] }

func timeContains(s []time.Time, v time.Time) bool {
	for _, x := range s {
		if x.Equal(v) {
			return true
		}
	}
	return false
}

// pySubscript implements Python's negative-index list subscript: index
// -1 is the last element, -2 the second-to-last, and so on. An
// out-of-range index is an error, matching "out-of-range positions are
// silently skipped" at the BYSETPOS call site (component J), which
// treats this error as "skip".
func pySubscript(s []int, i int) (int, error) {
	n := len(s)
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, errOutOfRange
	}
	return s[i], nil
}

// all drains a Next iterator completely. Prefer Take when the sequence
// might be unbounded (no COUNT/UNTIL).
func all(next Next) []time.Time {
	out := []time.Time{}
	for {
		t, ok := next()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}

// Take drains at most limit occurrences from a Next iterator. limit is
// clamped to the [0, 65535] convenience-function window.
func Take(next Next, limit int) []time.Time {
	if limit < 0 {
		limit = 0
	}
	if limit > 65535 {
		limit = 65535
	}
	out := make([]time.Time, 0, limit)
	for i := 0; i < limit; i++ {
		t, ok := next()
		if !ok {
			break
		}
		out = append(out, t)
	}
	return out
}

// between returns every occurrence in (after, before), or [after, before]
// when inc is true.
func between(nextFunc Next, after, before time.Time, inc bool) []time.Time {
	if before.Before(after) {
		return []time.Time{}
	}
	out := []time.Time{}
	for {
		t, ok := nextFunc()
		if !ok {
			break
		}
		if inc {
			if !t.Before(after) && !t.After(before) {
				out = append(out, t)
			}
		} else {
			if t.After(after) && t.Before(before) {
				out = append(out, t)
			}
		}
		if t.After(before) {
			break
		}
	}
	sort.Sort(timeSlice(out))
	return out
}

// before returns the last occurrence strictly before dt (or ≤ dt when
// inc is true), or the zero time if none.
func before(nextFunc Next, dt time.Time, inc bool) time.Time {
	var last time.Time
	for {
		t, ok := nextFunc()
		if !ok {
			break
		}
		if inc {
			if t.After(dt) {
				break
			}
		} else {
			if !t.Before(dt) {
				break
			}
		}
		last = t
	}
	return last
}

// after returns the first occurrence strictly after dt (or ≥ dt when
// inc is true), or the zero time if none.
func after(nextFunc Next, dt time.Time, inc bool) time.Time {
	for {
		t, ok := nextFunc()
		if !ok {
			return time.Time{}
		}
		if inc {
			if !t.Before(dt) {
				return t
			}
		} else {
			if t.After(dt) {
				return t
			}
		}
	}
}

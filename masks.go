// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import "time"

// MAXYEAR bounds the counter date arithmetic (component K). Years beyond
// this are rejected rather than silently wrapping.
const MAXYEAR = 9999

// Every day-of-year mask is 7 entries longer than the year itself, so a
// WEEKLY dayset that crosses the year boundary can be indexed without a
// bounds check.
var (
	M366MASK     []int
	M365MASK     []int
	MDAY366MASK  []int
	MDAY365MASK  []int
	NMDAY366MASK []int
	NMDAY365MASK []int
	WDAYMASK     []int
	M366RANGE    = []int{0, 31, 60, 91, 121, 152, 182, 213, 244, 274, 305, 335, 366}
	M365RANGE    = []int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}
)

func init() {
	M366MASK = concat(repeat(1, 31), repeat(2, 29), repeat(3, 31),
		repeat(4, 30), repeat(5, 31), repeat(6, 30), repeat(7, 31),
		repeat(8, 31), repeat(9, 30), repeat(10, 31), repeat(11, 30),
		repeat(12, 31), repeat(1, 7))
	M365MASK = concat(M366MASK[:59], M366MASK[60:])
	m29, m30, m31 := rang(1, 30), rang(1, 31), rang(1, 32)
	MDAY366MASK = concat(m31, m29, m31, m30, m31, m30, m31, m31, m30, m31, m30, m31, m31[:7])
	MDAY365MASK = concat(MDAY366MASK[:59], MDAY366MASK[60:])
	m29, m30, m31 = rang(-29, 0), rang(-30, 0), rang(-31, 0)
	NMDAY366MASK = concat(m31, m29, m31, m30, m31, m30, m31, m31, m30, m31, m30, m31, m31[:7])
	NMDAY365MASK = concat(NMDAY366MASK[:31], NMDAY366MASK[32:])
	for i := 0; i < 55; i++ {
		WDAYMASK = append(WDAYMASK, 0, 1, 2, 3, 4, 5, 6)
	}
}

// concat joins several int slices into one, copying their contents.
func concat(slices ...[]int) []int {
	out := []int{}
	for _, s := range slices {
		out = append(out, s...)
	}
	return out
}

// repeat returns a slice of n copies of v.
func repeat(v, n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// rang returns the half-open integer range [from, to).
func rang(from, to int) []int {
	out := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// isLeap reports 1 if year is a Gregorian leap year, else 0 — kept as
// an int so `365 + isLeap(year)` arithmetic reads directly.
func isLeap(year int) int {
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 1
	}
	return 0
}

// daysIn returns the number of days in the given month/year.
func daysIn(month time.Month, year int) int {
	switch month {
	case time.January, time.March, time.May, time.July,
		time.August, time.October, time.December:
		return 31
	case time.April, time.June, time.September, time.November:
		return 30
	case time.February:
		return 28 + isLeap(year)
	}
	return 30
}

// pymod is Python-style floor modulo: the result always has the sign of
// the divisor (unlike Go's %, which has the sign of the dividend).
func pymod(a, b int) int {
	r := a % b
	if (r < 0 && b > 0) || (r > 0 && b < 0) {
		r += b
	}
	return r
}

// divmod is Python-style floor division paired with pymod.
func divmod(a, b int) (div, mod int) {
	mod = pymod(a, b)
	div = (a - mod) / b
	return
}

// toPyWeekday converts Go's Sunday=0..Saturday=6 numbering to the
// Monday=0..Sunday=6 numbering used throughout this package.
func toPyWeekday(wd time.Weekday) int {
	return pymod(int(wd)-1, 7)
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import "time"

// EasterCapability gates BYEASTER support: when false, the filter
// pipeline treats BYEASTER as a no-op instead of erroring, so a build
// that wants to drop the feature can do so without touching
// validation.
var EasterCapability = true

// easter returns Easter Sunday of the given Gregorian year, using the
// Gauss Easter algorithm (component E). Callers add the BYEASTER offset
// in days-of-year space, not here, matching info.eastermask's usage
// (see iterinfo.go rebuildEaster).
func easter(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import (
	"sort"
	"time"
)

// applySetPos is the BYSETPOS selector (component J). The filtered
// day-set × time-set product for the current period is a flat, sorted
// list; for each requested position (1-based from the front, or
// negative counting from the back) it picks one element, silently
// skipping out-of-range positions and dropping duplicates.
func applySetPos(r *RRule, info *iterInfo, dayset []*int, start, end int, timeset []time.Time) []time.Time {
	days := make([]int, 0, end-start)
	for _, x := range dayset[start:end] {
		if x != nil {
			days = append(days, *x)
		}
	}

	poslist := []time.Time{}
	for _, pos := range r.Bysetpos {
		var daypos, timepos int
		if pos < 0 {
			daypos, timepos = divmod(pos, len(timeset))
		} else {
			daypos, timepos = divmod(pos-1, len(timeset))
		}
		dayIdx, err := pySubscript(days, daypos)
		if err != nil {
			continue
		}
		t := timeset[timepos]
		date := info.firstyday.AddDate(0, 0, dayIdx)
		res := wallClock(date, t)
		if !timeContains(poslist, res) {
			poslist = append(poslist, res)
		}
	}
	sort.Sort(timeSlice(poslist))
	return poslist
}

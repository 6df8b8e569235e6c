// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

// applyFilters is the BY-clause filter pipeline (component H). It walks
// the [start, end) window of dayset, rejecting a candidate day when any
// of the seven BY-clause rejection rules holds; rejected slots are set to nil
// in place (not compacted) so BYSETPOS can still count positions by
// their location in the original period. It reports whether anything
// was filtered out, which component K's Hourly/Minutely/Secondly
// advance uses to decide whether to take its closed-form jump.
func applyFilters(r *RRule, info *iterInfo, dayset []*int, start, end int) bool {
	filtered := false
	for _, i := range dayset[start:end] {
		if i == nil {
			continue
		}
		if rejectDay(r, info, *i) {
			dayset[*i] = nil
			filtered = true
		}
	}
	return filtered
}

func rejectDay(r *RRule, info *iterInfo, i int) bool {
	return len(r.Bymonth) != 0 && !contains(r.Bymonth, info.mmask[i]) ||
		len(r.Byweekno) != 0 && info.wnomask[i] == 0 ||
		len(r.Byweekday) != 0 && !contains(r.Byweekday, info.wdaymask[i]) ||
		len(info.nwdaymask) != 0 && info.nwdaymask[i] == 0 ||
		EasterCapability && len(r.Byeaster) != 0 && info.eastermask[i] == 0 ||
		(len(r.Bymonthday) != 0 || len(r.Bynmonthday) != 0) &&
			!contains(r.Bymonthday, info.mdaymask[i]) &&
			!contains(r.Bynmonthday, info.nmdaymask[i]) ||
		len(r.Byyearday) != 0 && rejectByYearDay(r, info, i)
}

// rejectByYearDay implements the BYYEARDAY clause, which must look at
// next year's length for the 7-day overflow tail a WEEKLY dayset can
// produce (i >= info.yearlen).
func rejectByYearDay(r *RRule, info *iterInfo, i int) bool {
	if i < info.yearlen {
		return !contains(r.Byyearday, i+1) && !contains(r.Byyearday, -info.yearlen+i)
	}
	return !contains(r.Byyearday, i+1-info.yearlen) && !contains(r.Byyearday, -info.nextyearlen+i-info.yearlen)
}

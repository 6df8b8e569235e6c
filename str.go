// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package rrule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Textual formats: a bare RRULE value never carries an offset,
// DTSTART/RDATE/EXDATE properties do (either a trailing Z or a TZID
// parameter), and a VALUE=DATE line carries only a calendar date.
const (
	strDateTimeFormatUTC = "20060102T150405Z"
	strDateTimeFormat    = "20060102T150405"
	strDateFormat        = "20060102"
)

// timeToStr renders t as a UTC wall-clock string: every emitted instant
// (a Set's DTSTART line excepted, see dtstartToStr) normalizes to Z-suffixed UTC
// regardless of its source location.
func timeToStr(t time.Time) string {
	return t.UTC().Format(strDateTimeFormatUTC)
}

// dtstartToStr renders a Set's own anchor instant, preserving its
// original zone as a TZID parameter instead of normalizing to UTC —
// this is the one place the textual format keeps a named zone.
func dtstartToStr(t time.Time) string {
	if t.Location() == time.UTC {
		return "DTSTART:" + timeToStr(t)
	}
	name := t.Location().String()
	return fmt.Sprintf("DTSTART;TZID=%s:%s", name, t.Format(strDateTimeFormat))
}

// String renders r back to its RFC 5545 RRULE value. When
// r.OrigOptions.RFC is set, DTSTART is omitted, matching bare RRULE:
// value syntax; otherwise DTSTART is folded in as a plain field so a
// single RRule can round-trip standalone via StrToRRule.
func (r *RRule) String() string {
	var b strings.Builder
	b.WriteString("FREQ=")
	b.WriteString(r.OrigOptions.Freq.String())

	if !r.OrigOptions.RFC {
		b.WriteString(";DTSTART=")
		b.WriteString(timeToStr(r.DateStart))
	}
	if r.OrigOptions.Interval != 0 {
		fmt.Fprintf(&b, ";INTERVAL=%d", r.OrigOptions.Interval)
	}
	if r.OrigOptions.Wkst.weekday != 0 {
		fmt.Fprintf(&b, ";WKST=%s", r.OrigOptions.Wkst.String())
	}
	if r.OrigOptions.Count != 0 {
		fmt.Fprintf(&b, ";COUNT=%d", r.OrigOptions.Count)
	}
	if !r.OrigOptions.Until.IsZero() {
		fmt.Fprintf(&b, ";UNTIL=%s", timeToStr(r.OrigOptions.Until))
	}
	writeIntList(&b, "BYSETPOS", r.OrigOptions.Bysetpos)
	writeIntList(&b, "BYMONTH", r.OrigOptions.Bymonth)
	writeIntList(&b, "BYMONTHDAY", r.OrigOptions.Bymonthday)
	writeIntList(&b, "BYYEARDAY", r.OrigOptions.Byyearday)
	writeIntList(&b, "BYWEEKNO", r.OrigOptions.Byweekno)
	if len(r.OrigOptions.Byweekday) != 0 {
		b.WriteString(";BYDAY=")
		for i, w := range r.OrigOptions.Byweekday {
			if i != 0 {
				b.WriteByte(',')
			}
			b.WriteString(w.String())
		}
	}
	writeIntList(&b, "BYHOUR", r.OrigOptions.Byhour)
	writeIntList(&b, "BYMINUTE", r.OrigOptions.Byminute)
	writeIntList(&b, "BYSECOND", r.OrigOptions.Bysecond)
	writeIntList(&b, "BYEASTER", r.OrigOptions.Byeaster)

	return b.String()
}

func writeIntList(b *strings.Builder, name string, vals []int) {
	if len(vals) == 0 {
		return
	}
	b.WriteByte(';')
	b.WriteString(name)
	b.WriteByte('=')
	for i, v := range vals {
		if i != 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
}

// String renders the full recurrence set: an optional DTSTART line,
// then one RRULE:/EXRULE: line per rule (each formatted RFC-style, with
// no inline DTSTART), then one comma-joined RDATE:/EXDATE: line for
// each non-empty queue.
func (set *Set) String() string {
	var lines []string
	if set.hasStart {
		lines = append(lines, dtstartToStr(set.dtstart))
	}
	for _, r := range set.rrule {
		lines = append(lines, "RRULE:"+rfcString(r))
	}
	for _, r := range set.exrule {
		lines = append(lines, "EXRULE:"+rfcString(r))
	}
	if len(set.exdate) != 0 {
		lines = append(lines, "EXDATE:"+joinTimes(set.exdate))
	}
	if len(set.rdate) != 0 {
		lines = append(lines, "RDATE:"+joinTimes(set.rdate))
	}
	return strings.Join(lines, "\n")
}

// rfcString formats r exactly as RRule.String() would with
// OrigOptions.RFC forced true, without mutating r.
func rfcString(r *RRule) string {
	orig := r.OrigOptions
	orig.RFC = true
	clone := *r
	clone.OrigOptions = orig
	return clone.String()
}

func joinTimes(ts []time.Time) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = timeToStr(t)
	}
	return strings.Join(parts, ",")
}

// StrToRRule parses a single RFC 5545 RRULE value (optionally carrying
// a DTSTART= field, matching RRule.String()'s non-RFC shape) into an
// RRule.
func StrToRRule(str string) (*RRule, error) {
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return nil, newParseError(str, fmt.Errorf("empty rule"))
	}

	opt := ROption{RFC: true}
	sawFreq := false

	for _, pair := range strings.Split(trimmed, ";") {
		key, val, err := splitPair(pair)
		if err != nil {
			return nil, newParseError(str, err)
		}
		switch key {
		case "FREQ":
			f, err := parseFreq(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Freq = f
			sawFreq = true
		case "DTSTART":
			t, err := strToDtStart(val, time.UTC)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Dtstart = t
			opt.RFC = false
		case "INTERVAL":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Interval = n
		case "WKST":
			w, err := parseWeekdayName(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Wkst = w
		case "COUNT":
			n, err := strconv.Atoi(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Count = n
		case "UNTIL":
			t, err := strToDtStart(val, time.UTC)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Until = t
		case "BYSETPOS":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Bysetpos = vals
		case "BYMONTH":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Bymonth = vals
		case "BYMONTHDAY":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Bymonthday = vals
		case "BYYEARDAY":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Byyearday = vals
		case "BYWEEKNO":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Byweekno = vals
		case "BYDAY":
			vals, err := parseWeekdayList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Byweekday = vals
		case "BYHOUR":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Byhour = vals
		case "BYMINUTE":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Byminute = vals
		case "BYSECOND":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Bysecond = vals
		case "BYEASTER":
			vals, err := parseIntList(val)
			if err != nil {
				return nil, newParseError(str, err)
			}
			opt.Byeaster = vals
		default:
			return nil, newParseError(str, fmt.Errorf("unknown rule part %q", key))
		}
	}

	if !sawFreq {
		return nil, newParseError(str, fmt.Errorf("missing FREQ"))
	}

	return NewRRule(opt)
}

func splitPair(pair string) (string, string, error) {
	parts := strings.SplitN(pair, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("malformed rule part %q", pair)
	}
	return parts[0], parts[1], nil
}

func parseFreq(val string) (Frequency, error) {
	switch val {
	case "YEARLY":
		return YEARLY, nil
	case "MONTHLY":
		return MONTHLY, nil
	case "WEEKLY":
		return WEEKLY, nil
	case "DAILY":
		return DAILY, nil
	case "HOURLY":
		return HOURLY, nil
	case "MINUTELY":
		return MINUTELY, nil
	case "SECONDLY":
		return SECONDLY, nil
	}
	return 0, fmt.Errorf("invalid FREQ %q", val)
}

func parseIntList(val string) ([]int, error) {
	if val == "" {
		return nil, fmt.Errorf("empty integer list")
	}
	parts := strings.Split(val, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", p)
		}
		out[i] = n
	}
	return out, nil
}

func parseWeekdayName(val string) (Weekday, error) {
	for _, w := range weekdays {
		if w.String() == val {
			return w, nil
		}
	}
	return Weekday{}, fmt.Errorf("invalid weekday %q", val)
}

// parseWeekdayList parses a BYDAY value such as "MO,+2FR,-1SU".
func parseWeekdayList(val string) ([]Weekday, error) {
	if val == "" {
		return nil, fmt.Errorf("empty BYDAY")
	}
	parts := strings.Split(val, ",")
	out := make([]Weekday, len(parts))
	for i, p := range parts {
		if len(p) < 2 {
			return nil, fmt.Errorf("invalid BYDAY token %q", p)
		}
		name := p[len(p)-2:]
		w, err := parseWeekdayName(name)
		if err != nil {
			return nil, fmt.Errorf("invalid BYDAY token %q", p)
		}
		nstr := p[:len(p)-2]
		if nstr == "" {
			out[i] = w
			continue
		}
		n, err := strconv.Atoi(nstr)
		if err != nil {
			return nil, fmt.Errorf("invalid BYDAY position %q", p)
		}
		out[i] = w.Nth(n)
	}
	return out, nil
}

// strToDtStart parses a single DTSTART/UNTIL-shaped value: a bare local
// timestamp ("19970714T133000"), a UTC timestamp ("...Z"), or a
// TZID-qualified one ("TZID=America/New_York:19970714T133000"). A
// leading "DTSTART" property name is rejected — callers strip it first
// (strSliceToRRuleSet does so after processRRuleName has identified the
// line).
func strToDtStart(val string, defaultLoc *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("empty date-time")
	}
	if strings.HasPrefix(trimmed, "DTSTART") {
		return time.Time{}, fmt.Errorf("unexpected DTSTART property name in %q", val)
	}

	loc := defaultLoc
	body := trimmed
	if strings.HasPrefix(trimmed, "TZID=") {
		rest := trimmed[len("TZID="):]
		idx := strings.Index(rest, ":")
		if idx < 0 {
			return time.Time{}, fmt.Errorf("malformed TZID value %q", val)
		}
		tzName, ts := rest[:idx], rest[idx+1:]
		if tzName == "" {
			return time.Time{}, fmt.Errorf("empty TZID in %q", val)
		}
		l, err := time.LoadLocation(tzName)
		if err != nil {
			return time.Time{}, fmt.Errorf("unknown TZID %q", tzName)
		}
		loc = l
		body = ts
	}

	switch {
	case strings.HasSuffix(body, "Z"):
		t, err := time.ParseInLocation(strDateTimeFormatUTC, body, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed date-time %q", val)
		}
		return t, nil
	case len(body) == len(strDateFormat) && !strings.Contains(body, "T"):
		t, err := time.ParseInLocation(strDateFormat, body, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed date %q", val)
		}
		return t, nil
	}
	t, err := time.ParseInLocation(strDateTimeFormat, body, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed date-time %q", val)
	}
	return t, nil
}

// StrToDates parses an RDATE/EXDATE value list in UTC, see
// StrToDatesInLoc.
func StrToDates(str string) ([]time.Time, error) {
	return StrToDatesInLoc(str, time.UTC)
}

// StrToDatesInLoc parses an RDATE/EXDATE value list ("VALUE=DATE-TIME:
// ...", "VALUE=DATE:...", or a bare comma-joined timestamp list),
// defaulting bare local timestamps to loc.
func StrToDatesInLoc(str string, loc *time.Location) ([]time.Time, error) {
	trimmed := strings.TrimSpace(str)
	if trimmed == "" {
		return nil, newParseError(str, fmt.Errorf("empty date list"))
	}

	valueType := "DATE-TIME"
	body := trimmed
	tzName := ""

	for strings.HasPrefix(body, "VALUE=") || strings.HasPrefix(body, "TZID=") {
		idx := strings.Index(body, ":")
		if idx < 0 {
			return nil, newParseError(str, fmt.Errorf("malformed value %q", str))
		}
		head, rest := body[:idx], body[idx+1:]
		for _, param := range strings.Split(head, ";") {
			kv := strings.SplitN(param, "=", 2)
			if len(kv) != 2 {
				return nil, newParseError(str, fmt.Errorf("malformed parameter %q", param))
			}
			switch kv[0] {
			case "VALUE":
				if kv[1] != "DATE-TIME" && kv[1] != "DATE" {
					return nil, newParseError(str, fmt.Errorf("unsupported VALUE %q", kv[1]))
				}
				valueType = kv[1]
			case "TZID":
				if kv[1] == "" {
					return nil, newParseError(str, fmt.Errorf("empty TZID"))
				}
				tzName = kv[1]
			default:
				return nil, newParseError(str, fmt.Errorf("unknown parameter %q", kv[0]))
			}
		}
		body = rest
		break
	}

	effLoc := loc
	if tzName != "" {
		l, err := time.LoadLocation(tzName)
		if err != nil {
			return nil, newParseError(str, fmt.Errorf("unknown TZID %q", tzName))
		}
		effLoc = l
	}

	parts := strings.Split(body, ",")
	out := make([]time.Time, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			return nil, newParseError(str, fmt.Errorf("empty date token"))
		}
		datePrefixLen := len(p)
		if datePrefixLen > len(strDateFormat) {
			datePrefixLen = len(strDateFormat)
		}
		var t time.Time
		var err error
		switch {
		case valueType == "DATE":
			t, err = time.ParseInLocation(strDateFormat, p[:datePrefixLen], time.UTC)
		case strings.HasSuffix(p, "Z"):
			t, err = time.ParseInLocation(strDateTimeFormatUTC, p, time.UTC)
		default:
			t, err = time.ParseInLocation(strDateTimeFormat, p, effLoc)
		}
		if err != nil {
			return nil, newParseError(str, fmt.Errorf("malformed date token %q", p))
		}
		out = append(out, t)
	}
	return out, nil
}

// processRRuleName validates the leading property name ("DTSTART",
// "RRULE", "EXRULE", "EXDATE", "RDATE") of one line of a multi-line set
// string and returns that name; it does not strip it from the line.
func processRRuleName(rfcLine string) (string, error) {
	trimmed := strings.TrimSpace(rfcLine)
	if trimmed == "" {
		return "", fmt.Errorf("empty rule line")
	}
	idx := strings.IndexAny(trimmed, ";:")
	if idx <= 0 {
		return "", fmt.Errorf("malformed rule line %q", rfcLine)
	}
	name := trimmed[:idx]
	switch name {
	case "DTSTART", "RRULE", "EXRULE", "EXDATE", "RDATE":
		return name, nil
	}
	return "", fmt.Errorf("unknown property %q", name)
}

// splitNameAndValue splits a "NAME[;params]:value" line into its
// parameter header (without the name) and its comma-joined value part.
func splitNameAndValue(line string) (params, value string, err error) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", fmt.Errorf("malformed line %q", line)
	}
	head, value := line[:idx], line[idx+1:]
	parts := strings.SplitN(head, ";", 2)
	if len(parts) == 2 {
		params = parts[1]
	}
	return params, value, nil
}

// StrToRRuleSet parses a multi-line recurrence set string: one optional
// DTSTART line, any number of RRULE/EXRULE/RDATE/EXDATE lines.
func StrToRRuleSet(s string) (*Set, error) {
	if strings.TrimSpace(s) == "" {
		return nil, newParseError(s, fmt.Errorf("empty recurrence set"))
	}
	return strSliceToRRuleSet(splitSetLines(s), s, time.UTC)
}

// StrSliceToRRuleSet parses a recurrence set already split into lines,
// defaulting bare local timestamps to UTC.
func StrSliceToRRuleSet(ss []string) (*Set, error) {
	return strSliceToRRuleSet(ss, strings.Join(ss, "\n"), time.UTC)
}

// StrSliceToRRuleSetInLoc is StrSliceToRRuleSet, defaulting bare local
// timestamps to loc instead of UTC.
func StrSliceToRRuleSetInLoc(ss []string, loc *time.Location) (*Set, error) {
	return strSliceToRRuleSet(ss, strings.Join(ss, "\n"), loc)
}

func splitSetLines(s string) []string {
	raw := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

func strSliceToRRuleSet(lines []string, orig string, defaultLoc *time.Location) (*Set, error) {
	set := &Set{}
	loc := defaultLoc

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		name, err := processRRuleName(line)
		if err != nil {
			return nil, newParseError(orig, err)
		}
		params, value, err := splitNameAndValue(line)
		if err != nil {
			return nil, newParseError(orig, err)
		}

		switch name {
		case "DTSTART":
			dtLine := strings.TrimPrefix(line[len("DTSTART"):], ";")
			dtLine = strings.TrimPrefix(dtLine, ":")
			dt, err := strToDtStart(dtLine, defaultLoc)
			if err != nil {
				return nil, newParseError(orig, err)
			}
			if tz := paramValue(params, "TZID"); tz != "" {
				l, err := time.LoadLocation(tz)
				if err != nil {
					return nil, newParseError(orig, fmt.Errorf("unknown TZID %q", tz))
				}
				loc = l
			}
			set.DTStart(dt)
		case "RRULE":
			r, err := StrToRRule(value)
			if err != nil {
				return nil, newParseError(orig, err)
			}
			if set.hasStart {
				r.DTStart(set.dtstart)
			}
			set.RRule(r)
		case "EXRULE":
			r, err := StrToRRule(value)
			if err != nil {
				return nil, newParseError(orig, err)
			}
			if set.hasStart {
				r.DTStart(set.dtstart)
			}
			set.ExRule(r)
		case "RDATE":
			dates, err := StrToDatesInLoc(withParams(params, value), loc)
			if err != nil {
				return nil, newParseError(orig, err)
			}
			for _, d := range dates {
				set.RDate(d)
			}
		case "EXDATE":
			dates, err := StrToDatesInLoc(withParams(params, value), loc)
			if err != nil {
				return nil, newParseError(orig, err)
			}
			for _, d := range dates {
				set.ExDate(d)
			}
		}
	}

	return set, nil
}

func paramValue(params, key string) string {
	for _, p := range strings.Split(params, ";") {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) == 2 && kv[0] == key {
			return kv[1]
		}
	}
	return ""
}

func withParams(params, value string) string {
	if params == "" {
		return value
	}
	return params + ":" + value
}

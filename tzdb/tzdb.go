// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

// Package tzdb resolves time-zone names into *time.Location values for
// DTSTART/RRULE construction, backed by the system's IANA tzdata and
// cross-checked against a static zone table so a typo in a TZID
// produces a clear error instead of a silent fallback to UTC.
package tzdb

import (
	"fmt"
	"sort"
	"time"

	"github.com/mileusna/timezones"
)

// TzDb is the abstract time-zone lookup collaborator: callers depend on
// this interface rather than a concrete loader so tests can substitute
// a fixed zone set.
type TzDb interface {
	// Load resolves name (an IANA zone identifier, or "UTC"/"Local")
	// into a *time.Location.
	Load(name string) (*time.Location, error)
	// Known reports whether name appears in the static zone table, used
	// to distinguish "unknown zone" from "tzdata unavailable on this
	// host" when Load fails.
	Known(name string) bool
	// Names returns every zone identifier the static table knows about,
	// sorted.
	Names() []string
}

// systemTzDb is the default TzDb: it resolves through time.LoadLocation
// (the system/embedded tzdata) and validates against the zone names
// shipped in github.com/mileusna/timezones so an unresolvable name can
// be reported as "not a real zone" versus "no tzdata on this host".
type systemTzDb struct {
	known map[string]bool
	names []string
}

// New returns the default TzDb implementation.
func New() TzDb {
	names := timezones.List()
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	sorted := append([]string{}, names...)
	sort.Strings(sorted)
	return &systemTzDb{known: known, names: sorted}
}

func (db *systemTzDb) Load(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		if db.known[name] {
			return nil, fmt.Errorf("tzdb: zone %q is a recognized IANA zone but tzdata could not load it: %w", name, err)
		}
		return nil, fmt.Errorf("tzdb: unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

func (db *systemTzDb) Known(name string) bool {
	return db.known[name]
}

func (db *systemTzDb) Names() []string {
	return db.names
}

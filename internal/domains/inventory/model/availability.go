package model

import (
	"time"

	"lodge/shared/timezone"
)

// IsAvailable reports whether the given day is bookable according to the
// entry list. A day with no entry is NOT available: providers open days
// explicitly, absence means closed. Range validation below depends on this
// strict-match rule.
func IsAvailable(entries []Entry, date time.Time) bool {
	day := timezone.Day(date)

	for _, entry := range entries {
		if timezone.Day(entry.Date).Equal(day) {
			return entry.Available
		}
	}

	return false
}

// SetAvailability upserts the flag for the given day and returns the updated
// list. At most one entry per day survives: the first match is updated and
// any later duplicates for the same day are dropped.
func SetAvailability(entries []Entry, propertyID string, date time.Time, available bool) []Entry {
	day := timezone.Day(date)
	found := false

	result := entries[:0]

	for _, entry := range entries {
		if !timezone.Day(entry.Date).Equal(day) {
			result = append(result, entry)

			continue
		}

		if found {
			continue
		}

		entry.Date = day
		entry.Available = available
		result = append(result, entry)
		found = true
	}

	if !found {
		result = append(result, Entry{
			PropertyID: propertyID,
			Date:       day,
			Available:  available,
		})
	}

	return result
}

// ExpandRange enumerates the nights of a stay: check-in inclusive, check-out
// exclusive. An inverted or zero-length range yields nil; callers must reject
// it.
func ExpandRange(checkIn, checkOut time.Time) []time.Time {
	start := timezone.Day(checkIn)
	end := timezone.Day(checkOut)

	if !start.Before(end) {
		return nil
	}

	var days []time.Time
	for day := start; day.Before(end); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}

	return days
}

// ValidateRange checks every night of the stay against the entry list and
// collects ALL conflicting days in date order, so the caller can report the
// full set at once instead of the first failure.
func ValidateRange(entries []Entry, checkIn, checkOut time.Time) (ok bool, conflicts []time.Time) {
	for _, day := range ExpandRange(checkIn, checkOut) {
		if !IsAvailable(entries, day) {
			conflicts = append(conflicts, day)
		}
	}

	return len(conflicts) == 0, conflicts
}

// Dedupe collapses an entry list to at most one entry per calendar day, the
// last occurrence winning. Wholesale inventory replacement runs through this
// before anything is written.
func Dedupe(entries []Entry) []Entry {
	index := make(map[time.Time]int, len(entries))

	var result []Entry

	for _, entry := range entries {
		day := timezone.Day(entry.Date)
		entry.Date = day

		if at, seen := index[day]; seen {
			result[at] = entry

			continue
		}

		index[day] = len(result)
		result = append(result, entry)
	}

	return result
}

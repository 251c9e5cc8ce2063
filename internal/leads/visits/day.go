// Package visits implements same-day return-visit detection for open-house
// check-ins. Both trackers share the same notion of a calendar day: the day
// containing the check-in in the business timezone.
package visits

import "time"

// DayBounds returns [start, end) of the calendar day containing at in loc.
func DayBounds(at time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := at.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

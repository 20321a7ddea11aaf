// Package availability derives which calendar days a vehicle is booked on.
//
// All dates are normalized in one business timezone. The rental operation has
// a single physical location, so the customer's locale never matters here.
package availability

import (
	"sort"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// TimezoneRule decides which calendar day an instant belongs to.
type TimezoneRule struct {
	loc *time.Location
}

// BusinessTimezone is the fixed UTC+1 civil timezone the fleet operates in.
var BusinessTimezone = FixedOffset("UTC+1", 60*60)

func FixedOffset(name string, offsetSeconds int) TimezoneRule {
	return TimezoneRule{loc: time.FixedZone(name, offsetSeconds)}
}

// Location returns the rule's location; the zero rule is UTC.
func (r TimezoneRule) Location() *time.Location {
	if r.loc == nil {
		return time.UTC
	}
	return r.loc
}

func (r TimezoneRule) DateOf(t time.Time) civil.Date {
	return civil.DateOf(t.In(r.Location()))
}

// Midnight returns the start of d in the rule's timezone.
func (r TimezoneRule) Midnight(d civil.Date) time.Time {
	return d.In(r.Location())
}

// DayBounds returns the first and last instant of d.
func (r TimezoneRule) DayBounds(d civil.Date) (time.Time, time.Time) {
	return r.Midnight(d), r.Midnight(d.AddDays(1)).Add(-time.Nanosecond)
}

// BookingInterval is a booking's date range. Both endpoints count as booked days.
type BookingInterval struct {
	VehicleID uuid.UUID `json:"vehicle_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
}

// Rental builds the interval of a rental whose end is the exclusive return
// time, so a car due back at midnight does not block the following day.
func Rental(vehicleID uuid.UUID, start, end time.Time) BookingInterval {
	last := end.Add(-time.Nanosecond)
	if last.Before(start) {
		last = start
	}
	return BookingInterval{VehicleID: vehicleID, Start: start, End: last}
}

// BookedDateSet is the set of days a vehicle is unavailable.
type BookedDateSet map[civil.Date]struct{}

// ExpandBookedDates returns every day covered by any of the intervals.
// Overlapping intervals yield each day once. Intervals ending before they
// start contribute nothing.
func ExpandBookedDates(intervals []BookingInterval, rule TimezoneRule) BookedDateSet {
	set := make(BookedDateSet)
	for _, iv := range intervals {
		set.addRange(rule.DateOf(iv.Start), rule.DateOf(iv.End))
	}
	return set
}

// ExpandForVehicle is ExpandBookedDates restricted to one vehicle's intervals.
func ExpandForVehicle(vehicleID uuid.UUID, intervals []BookingInterval, rule TimezoneRule) BookedDateSet {
	own := make([]BookingInterval, 0, len(intervals))
	for _, iv := range intervals {
		if iv.VehicleID == vehicleID {
			own = append(own, iv)
		}
	}
	return ExpandBookedDates(own, rule)
}

func (s BookedDateSet) addRange(from, to civil.Date) {
	for d := from; !d.After(to); d = d.AddDays(1) {
		s[d] = struct{}{}
	}
}

func (s BookedDateSet) Contains(d civil.Date) bool {
	_, ok := s[d]
	return ok
}

// IsBooked reports whether the day t falls on, in the rule's timezone, is booked.
func (s BookedDateSet) IsBooked(t time.Time, rule TimezoneRule) bool {
	return s.Contains(rule.DateOf(t))
}

// Overlaps reports whether any day of the inclusive range [start, end] is booked.
func (s BookedDateSet) Overlaps(start, end time.Time, rule TimezoneRule) bool {
	from, to := rule.DateOf(start), rule.DateOf(end)
	for d := from; !d.After(to); d = d.AddDays(1) {
		if s.Contains(d) {
			return true
		}
	}
	return false
}

func (s BookedDateSet) Len() int {
	return len(s)
}

// Dates returns the booked days in ascending order.
func (s BookedDateSet) Dates() []civil.Date {
	out := make([]civil.Date, 0, len(s))
	for d := range s {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Between returns the booked days within [from, to] in ascending order.
func (s BookedDateSet) Between(from, to civil.Date) []civil.Date {
	var out []civil.Date
	for _, d := range s.Dates() {
		if d.Before(from) || d.After(to) {
			continue
		}
		out = append(out, d)
	}
	return out
}

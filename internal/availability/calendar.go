package availability

import (
	"time"

	"cloud.google.com/go/civil"
)

// DayStatus is one cell of the admin calendar.
type DayStatus struct {
	Date   civil.Date `json:"date"`
	Booked bool       `json:"booked"`
}

// MonthCalendar returns one entry per day of the month, in order.
func MonthCalendar(set BookedDateSet, year int, month time.Month) []DayStatus {
	var days []DayStatus
	for d := (civil.Date{Year: year, Month: month, Day: 1}); d.Month == month; d = d.AddDays(1) {
		days = append(days, DayStatus{Date: d, Booked: set.Contains(d)})
	}
	return days
}

// MonthBounds returns the first and last day of the month.
func MonthBounds(year int, month time.Month) (civil.Date, civil.Date) {
	first := civil.Date{Year: year, Month: month, Day: 1}
	last := civil.DateOf(first.In(time.UTC).AddDate(0, 1, -1))
	return first, last
}

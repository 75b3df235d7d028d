package payroll

import (
	"time"

	"github.com/mamadbah2/farmsync/internal/domain/models"
)

// CalendarDay is one cell of a month calendar. Record is nil when no
// attendance was captured for the day.
type CalendarDay struct {
	Day    int                      `json:"day"`
	Date   string                   `json:"date"`
	Record *models.AttendanceRecord `json:"record,omitempty"`
}

// Calendar lays out one month of attendance. LeadingBlanks is the weekday of
// day 1 (Sunday = 0), i.e. the number of empty cells before it.
type Calendar struct {
	Year          int           `json:"year"`
	Month         time.Month    `json:"month"`
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`
}

// MonthCalendar builds the calendar of the given month from a date-indexed
// attendance map.
func MonthCalendar(year int, month time.Month, attendance models.AttendanceMap) Calendar {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	cal := Calendar{
		Year:          first.Year(),
		Month:         first.Month(),
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]CalendarDay, 0, daysInMonth),
	}

	for d := 1; d <= daysInMonth; d++ {
		date := time.Date(year, month, d, 0, 0, 0, 0, time.UTC).Format(DayLayout)
		day := CalendarDay{Day: d, Date: date}
		if rec, ok := attendance[date]; ok {
			rec := rec
			day.Record = &rec
		}
		cal.Days = append(cal.Days, day)
	}

	return cal
}

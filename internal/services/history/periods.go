package history

import "time"

const (
	dayLabelLayout   = "2006-01-02"
	weekStartLayout  = "Jan 02"
	weekEndLayout    = "02 Jan 2006"
	monthLabelLayout = "January 2006"
)

// Periods holds the period starts containing one instant.
type Periods struct {
	Day   time.Time
	Week  time.Time
	Month time.Time
}

// PeriodsFor returns the day, ISO week and month starts containing t,
// evaluated in loc.
func PeriodsFor(t time.Time, loc *time.Location) Periods {
	t = t.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	// Weekday counts from Sunday; ISO weeks start on Monday.
	sinceMonday := (int(day.Weekday()) + 6) % 7
	return Periods{
		Day:   day,
		Week:  day.AddDate(0, 0, -sinceMonday),
		Month: time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc),
	}
}

// DayLabel formats the calendar day, e.g. "2024-03-13".
func (p Periods) DayLabel() string {
	return p.Day.Format(dayLabelLayout)
}

// WeekLabel formats the Monday-to-Sunday span, e.g. "Mar 11 - 17 Mar 2024".
func (p Periods) WeekLabel() string {
	sunday := p.Week.AddDate(0, 0, 6)
	return p.Week.Format(weekStartLayout) + " - " + sunday.Format(weekEndLayout)
}

// MonthLabel formats the calendar month, e.g. "March 2024".
func (p Periods) MonthLabel() string {
	return p.Month.Format(monthLabelLayout)
}

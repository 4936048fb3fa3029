package forecast

import (
	"fmt"
	"time"
)

// DateFormat is the layout Cost Explorer uses for dates.
const DateFormat = "2006-01-02"

// TimePeriod is a month-aligned forecast window. End is exclusive.
type TimePeriod struct {
	Start time.Time
	End   time.Time
}

// NewWindow returns the window starting on the first day of the month after
// now and ending on the first day of the month after now+intervalDays.
// December rolls over into January of the following year.
func NewWindow(now time.Time, intervalDays int) TimePeriod {
	end := now.AddDate(0, 0, intervalDays)
	return TimePeriod{
		Start: firstOfNextMonth(now),
		End:   firstOfNextMonth(end),
	}
}

// firstOfNextMonth relies on time.Date normalizing month 13 to January.
func firstOfNextMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
}

// StartDate is the window start formatted for Cost Explorer.
func (p TimePeriod) StartDate() string {
	return p.Start.Format(DateFormat)
}

// EndDate is the window end formatted for Cost Explorer.
func (p TimePeriod) EndDate() string {
	return p.End.Format(DateFormat)
}

// String returns a human readable representation of the window.
func (p TimePeriod) String() string {
	return fmt.Sprintf("TimePeriod[%s to %s]", p.StartDate(), p.EndDate())
}

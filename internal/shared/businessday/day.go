package businessday

import (
	"fmt"
	"time"
)

const Layout = "2006-01-02"

// Day is one calendar date in the venue time zone. Start and End are the
// UTC instants bounding it, End exclusive.
type Day struct {
	Date  string
	Start time.Time
	End   time.Time
}

// Parse resolves a YYYY-MM-DD date in loc. An empty date means today.
func Parse(date string, loc *time.Location, now time.Time) (Day, error) {
	if loc == nil {
		loc = time.UTC
	}
	if date == "" {
		return Of(now, loc), nil
	}
	t, err := time.ParseInLocation(Layout, date, loc)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
	}
	return Of(t, loc), nil
}

// Of returns the day containing t in loc
func Of(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return Day{
		Date:  start.Format(Layout),
		Start: start.UTC(),
		End:   end.UTC(),
	}
}

// Next returns the following calendar day
func (d Day) Next(loc *time.Location) Day {
	return Of(d.End, loc)
}

func (d Day) String() string {
	return d.Date
}

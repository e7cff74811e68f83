package weather

import "time"

// DateLayout is the format of Day.Datetime.
const DateLayout = "2006-01-02"

// SelectToday returns the day whose datetime equals now's calendar date in
// loc. When no day matches it falls back to the first day, and to an empty
// Day when the timeline has none.
func SelectToday(t *Timeline, now time.Time, loc *time.Location) Day {
	if t == nil || len(t.Days) == 0 {
		return Day{}
	}
	if loc == nil {
		loc = time.UTC
	}

	today := now.In(loc).Format(DateLayout)
	for _, d := range t.Days {
		if d.Datetime == today {
			return d
		}
	}
	return t.Days[0]
}

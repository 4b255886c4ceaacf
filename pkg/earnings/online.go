package earnings

import (
	"time"

	"ridetracker/pkg/models"
)

// SessionDuration is the whole number of minutes between start and end.
func SessionDuration(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// OnlineMinutes sums the minutes each session spent inside day's window.
// Open sessions run until now. Each session is floored on its own so a
// closed session fully inside the day counts exactly its stored duration.
func OnlineMinutes(sessions []*models.OnlineSession, day, now time.Time) int {
	start, end := DayBounds(day)

	total := 0
	for _, s := range sessions {
		if s == nil {
			continue
		}
		from := s.StartTime
		to := now
		if s.EndTime != nil {
			to = *s.EndTime
		}
		if from.Before(start) {
			from = start
		}
		if to.After(end) {
			to = end
		}
		total += SessionDuration(from, to)
	}
	return total
}

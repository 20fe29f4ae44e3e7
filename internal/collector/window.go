package collector

import (
	"fmt"
	"time"
)

// WindowCount is the number of quarter windows covering the trailing year.
const WindowCount = 4

// Window is a half-open [Start, End) range fetched by one request.
type Window struct {
	Start time.Time
	End   time.Time
}

func (w Window) String() string {
	return fmt.Sprintf("%s..%s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
}

// Windows returns the four quarter windows for the year ending today, oldest first.
// Each bound is midnight of (today - n months + 1 day), so window i ends exactly where
// window i+1 starts and the last window ends after today.
func Windows(now time.Time) []Window {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	bound := func(monthsBack int) time.Time {
		return addMonths(today, -monthsBack).AddDate(0, 0, 1)
	}
	windows := make([]Window, 0, WindowCount)
	for back := 3 * WindowCount; back > 0; back -= 3 {
		windows = append(windows, Window{Start: bound(back), End: bound(back - 3)})
	}
	return windows
}

// addMonths shifts t by whole months, clamping to the last day of the target month
// (Dec 31 minus three months is Sep 30, not Oct 1).
func addMonths(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

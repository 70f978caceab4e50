// Package clockface derives the display representation of the current
// moment: 12-hour time with seconds and meridiem plus a long date string.
package clockface

import (
	"fmt"
	"time"
)

// Snapshot is everything the display surface needs for one moment in time.
type Snapshot struct {
	// Time is the zero-padded 12-hour "hh:mm" string.
	Time string
	// Seconds is the zero-padded seconds string.
	Seconds string
	// Meridiem is "AM" or "PM".
	Meridiem string
	// Date is the long date, e.g. "Sunday, March 10, 2024".
	Date string
}

// At renders the snapshot for the given moment.
func At(t time.Time) Snapshot {
	hour := t.Hour() % 12
	if hour == 0 {
		hour = 12
	}

	meridiem := "AM"
	if t.Hour() >= 12 {
		meridiem = "PM"
	}

	return Snapshot{
		Time:     fmt.Sprintf("%02d:%02d", hour, t.Minute()),
		Seconds:  fmt.Sprintf("%02d", t.Second()),
		Meridiem: meridiem,
		Date:     t.Format("Monday, January 2, 2006"),
	}
}

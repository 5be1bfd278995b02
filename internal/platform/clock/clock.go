package clock

import "time"

// Clock abstracts time to keep stage timing deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock returns local time with its monotonic reading intact, so
// elapsed stage durations are unaffected by wall-clock adjustments.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

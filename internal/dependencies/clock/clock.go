package clock

import "time"

// Clock supplies timestamps for players and games
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC
type SystemClock struct{}

// New creates a new SystemClock
func New() *SystemClock {
	return &SystemClock{}
}

// Now returns the current UTC time truncated to microseconds, which every storage backend can round-trip
func (c *SystemClock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

package dates

import "time"

// Clock supplies the current instant to relative-date resolution.
//
// The engine never reads the wall clock implicitly: every compilation takes a
// Clock (or an explicit instant) so that the same widget configuration
// resolves to the same query at the same logical moment. Tests freeze time
// with testutil.FrozenClock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Used when a caller pins "now"
// explicitly, e.g. the CLI's --now flag.
type FixedClock time.Time

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}

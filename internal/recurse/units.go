package recurse

import "strings"

// TimeUnit is the unit used for thresholds and reported durations.
type TimeUnit string

const (
	Secs  TimeUnit = "secs"
	Mins  TimeUnit = "mins"
	Hours TimeUnit = "hours"
	Days  TimeUnit = "days"
)

// ValidTimeUnits lists the recognised time units.
var ValidTimeUnits = []TimeUnit{Secs, Mins, Hours, Days}

// IsValidTimeUnit reports whether s names a recognised time unit.
func IsValidTimeUnit(s string) bool {
	for _, u := range ValidTimeUnits {
		if TimeUnit(s) == u {
			return true
		}
	}
	return false
}

// ValidTimeUnitsString returns the recognised units for error messages.
func ValidTimeUnitsString() string {
	names := make([]string, len(ValidTimeUnits))
	for i, u := range ValidTimeUnits {
		names[i] = string(u)
	}
	return strings.Join(names, ", ")
}

// ParseTimeUnit converts s to a TimeUnit. Unrecognised values fall back to
// Secs without error; callers wanting strictness check IsValidTimeUnit first.
func ParseTimeUnit(s string) TimeUnit {
	if IsValidTimeUnit(s) {
		return TimeUnit(s)
	}
	return Secs
}

// SecondsPerUnit returns how many seconds one u lasts.
func (u TimeUnit) SecondsPerUnit() float64 {
	switch u {
	case Mins:
		return 60
	case Hours:
		return 60 * 60
	case Days:
		return 60 * 60 * 24
	default:
		return 1
	}
}

// ToSeconds converts v from u to seconds.
func (u TimeUnit) ToSeconds(v float64) float64 {
	return v * u.SecondsPerUnit()
}

// FromSeconds converts v from seconds to u.
func (u TimeUnit) FromSeconds(v float64) float64 {
	return v * (1.0 / u.SecondsPerUnit())
}

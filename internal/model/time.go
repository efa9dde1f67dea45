package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TimeOfDay is a clock time with minute resolution.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// Sentinel times used by operating-period records.
var (
	// Midnight marks "all other times" records.
	Midnight = TimeOfDay{0, 0}
	// EndOfDay marks unassigned or inactive records.
	EndOfDay = TimeOfDay{23, 59}
)

// ParseClock parses "HH:MM" text such as the command-line time window.
func ParseClock(s string) (TimeOfDay, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return TimeOfDay{}, fmt.Errorf("invalid clock time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid clock time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return TimeOfDay{}, fmt.Errorf("clock time %q out of range", s)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

// FromDateSerial converts the fractional part of a spreadsheet date serial to
// a clock time. Serial 0.75 is 18:00.
func FromDateSerial(v float64) TimeOfDay {
	frac := v - math.Floor(v)
	total := int(math.Round(frac * 24 * 60))
	if total >= 24*60 {
		total = 24*60 - 1
	}
	return TimeOfDay{Hour: total / 60, Minute: total % 60}
}

// Minutes returns the time as minutes after midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is earlier than o.
func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Minutes() < o.Minutes()
}

// After reports whether t is later than o.
func (t TimeOfDay) After(o TimeOfDay) bool {
	return t.Minutes() > o.Minutes()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

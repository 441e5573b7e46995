package internal

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrInvalidTimeUnit = errors.New("invalid time unit")

func ParseTimeUnit(unitString string) (time.Duration, error) {
	switch strings.TrimSpace(strings.ToLower(unitString)) {
	case "ns":
		return time.Nanosecond, nil
	case "us", "µs":
		return time.Microsecond, nil
	case "ms":
		return time.Millisecond, nil
	case "s":
		return time.Second, nil
	case "m":
		return time.Minute, nil
	case "h":
		return time.Hour, nil
	default:
		return 0, ErrInvalidTimeUnit
	}
}

var unitSuffixes = map[time.Duration]string{
	time.Nanosecond:  "ns",
	time.Microsecond: "us",
	time.Millisecond: "ms",
	time.Second:      "s",
	time.Minute:      "m",
	time.Hour:        "h",
}

// unitSuffix panics for units ParseTimeUnit never returns.
func unitSuffix(unit time.Duration) string {
	suffix, ok := unitSuffixes[unit]
	if !ok {
		panic("unknown time unit: " + unit.String())
	}
	return suffix
}

// inUnit expresses d as a number of units.
func inUnit(d, unit time.Duration) float64 {
	return float64(d) / float64(unit)
}

// formatDuration renders d in unit with three decimals, like "12.345ms".
func formatDuration(d, unit time.Duration) string {
	return fmt.Sprintf("%.3f%s", roundFloat(inUnit(d, unit), 3), unitSuffix(unit))
}

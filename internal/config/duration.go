package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationRegEx = regexp.MustCompile(`^(\d+)([a-z]+)$`)

// ParseDuration accepts "<amount><unit>" with unit s|min|h|d|w|m|y
// (e.g. "1d", "30min") as well as time.ParseDuration syntax ("1h30m").
// The result must be positive.
func ParseDuration(s string) (time.Duration, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	if raw == "" {
		return 0, fmt.Errorf("empty duration")
	}

	if match := durationRegEx.FindStringSubmatch(raw); len(match) == 3 {
		amount, err := strconv.Atoi(match[1])
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		if d, err := unitToDuration(amount, match[2]); err == nil {
			return positive(s, d)
		}
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q (expected e.g. 1d, 12h, 30min)", s)
	}
	return positive(s, d)
}

func positive(s string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be > 0", s)
	}
	return d, nil
}

func unitToDuration(amount int, unit string) (time.Duration, error) {
	// month = 30 days, year = 365 days
	switch unit {
	case "s":
		return time.Duration(amount) * time.Second, nil
	case "min":
		return time.Duration(amount) * time.Minute, nil
	case "h":
		return time.Duration(amount) * time.Hour, nil
	case "d":
		return time.Duration(amount) * 24 * time.Hour, nil
	case "w":
		return time.Duration(amount) * 7 * 24 * time.Hour, nil
	case "m":
		return time.Duration(amount) * 30 * 24 * time.Hour, nil
	case "y":
		return time.Duration(amount) * 365 * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("unknown unit %q (use s|min|h|d|w|m|y)", unit)
	}
}

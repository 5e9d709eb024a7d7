package entry

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Clock is a time of day in minutes since midnight.
type Clock int

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Clock) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := parseClock(s)
	if !ok {
		return fmt.Errorf("invalid clock %q", s)
	}
	*c = parsed
	return nil
}

// Duration is the day/time range parsed from a schedule line label.
// Day, Start and End are empty when the label does not follow the grammar.
type Duration struct {
	Raw   string `json:"raw"`
	Day   string `json:"day,omitempty"`
	Start *Clock `json:"start,omitempty"`
	End   *Clock `json:"end,omitempty"`
}

// Minutes returns the length of the range, or 0 if it is unknown.
func (d Duration) Minutes() int {
	if d.Start == nil || d.End == nil || *d.End < *d.Start {
		return 0
	}
	return int(*d.End - *d.Start)
}

// ClassFields are the attributes of one class listing.
type ClassFields struct {
	Subject string `json:"subject,omitempty"`
	Type    string `json:"type,omitempty"`
	Room    string `json:"room,omitempty"`
	Group   string `json:"group,omitempty"`
	Raw     string `json:"raw"`
}

var (
	// [Day ]H[:MM]-H[:MM], separators ':' or '.'
	durationRegEx = regexp.MustCompile(`^(?:(\pL+)\.?\s+)?(\d{1,2}(?:[:.]\d{2})?)\s*[-–]\s*(\d{1,2}(?:[:.]\d{2})?)$`)
	clockRegEx    = regexp.MustCompile(`^(\d{1,2})(?:[:.](\d{2}))?$`)
	// [Subject, ][Type/]Room[ gr. Group]
	classRegEx = regexp.MustCompile(`^(?:(.+?),\s*)?(?:([^/,]+?)\s*/\s*)?([^/,]+?)(?:\s+gr\.?\s*(\S+))?$`)
)

// Parser is the default line parser for the department schedule pages.
type Parser struct{}

// ParseDuration parses a line label such as "Mon 10-12" or "8:30-10.00".
func (Parser) ParseDuration(label string) Duration {
	return ParseDuration(label)
}

// ParseClass parses a line value such as "Algorithms, Lab/101 gr. 2".
func (Parser) ParseClass(value string) ClassFields {
	return ParseClass(value)
}

func ParseDuration(label string) Duration {
	d := Duration{Raw: strings.TrimSpace(label)}

	match := durationRegEx.FindStringSubmatch(d.Raw)
	if len(match) != 4 {
		return d
	}

	start, ok := parseClock(match[2])
	if !ok {
		return d
	}
	end, ok := parseClock(match[3])
	if !ok {
		return d
	}

	d.Day = match[1]
	d.Start = &start
	d.End = &end
	return d
}

func ParseClass(value string) ClassFields {
	f := ClassFields{Raw: strings.TrimSpace(value)}

	match := classRegEx.FindStringSubmatch(f.Raw)
	if len(match) != 5 {
		f.Subject = f.Raw
		return f
	}

	f.Subject = strings.TrimSpace(match[1])
	f.Type = strings.TrimSpace(match[2])
	f.Room = strings.TrimSpace(match[3])
	f.Group = match[4]
	return f
}

func parseClock(s string) (Clock, bool) {
	match := clockRegEx.FindStringSubmatch(strings.TrimSpace(s))
	if len(match) != 3 {
		return 0, false
	}

	hours, _ := strconv.Atoi(match[1])
	minutes := 0
	if match[2] != "" {
		minutes, _ = strconv.Atoi(match[2])
	}
	if hours > 24 || minutes > 59 || (hours == 24 && minutes > 0) {
		return 0, false
	}
	return Clock(hours*60 + minutes), true
}

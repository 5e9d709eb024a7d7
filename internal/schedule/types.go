package schedule

import (
	"slices"

	"github.com/fvbommel/sortorder"
	"github.com/rbnhln/kckScraper/internal/entry"
)

// EntryParser turns the two halves of a "label: value" line into typed fields.
type EntryParser interface {
	ParseDuration(label string) entry.Duration
	ParseClass(value string) entry.ClassFields
}

// ClassEntry is one class listing within a block.
type ClassEntry struct {
	entry.ClassFields
	Duration entry.Duration `json:"duration"`
}

// Block maps a line label to its entries in source order.
type Block map[string][]ClassEntry

// Labels returns the block's labels in natural order ("8-10" before "10-12").
func (b Block) Labels() []string {
	labels := make([]string, 0, len(b))
	for l := range b {
		labels = append(labels, l)
	}
	slices.SortFunc(labels, naturalCompare)
	return labels
}

// Schedule maps a block label (usually a day) to its block.
type Schedule map[string]Block

// TeacherSchedule is the cached per-teacher record.
type TeacherSchedule struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Schedule Schedule `json:"schedule"`
	// Blocks lists Schedule's keys in page order.
	Blocks []string `json:"blocks,omitempty"`
}

// Days returns the block labels in page order, falling back to natural order
// for records that carry no ordering.
func (t TeacherSchedule) Days() []string {
	if len(t.Blocks) == len(t.Schedule) {
		return t.Blocks
	}
	days := make([]string, 0, len(t.Schedule))
	for d := range t.Schedule {
		days = append(days, d)
	}
	slices.SortFunc(days, naturalCompare)
	return days
}

func naturalCompare(a, b string) int {
	switch {
	case sortorder.NaturalLess(a, b):
		return -1
	case sortorder.NaturalLess(b, a):
		return 1
	default:
		return 0
	}
}

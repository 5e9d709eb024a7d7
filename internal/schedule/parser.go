package schedule

import (
	"regexp"
	"slices"
	"strings"
)

// Kind classifies a node of the schedule page.
type Kind int

const (
	KindOther     Kind = iota
	KindHeader         // starts a new block, text is the block label
	KindParagraph      // "label: value" lines
	KindTerminal       // end of schedule content
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindParagraph:
		return "paragraph"
	case KindTerminal:
		return "terminal"
	default:
		return "other"
	}
}

// Node is one sibling of the schedule content, already reduced to its kind
// and text.
type Node struct {
	Kind Kind
	Text string
}

// Result is the output of one parse pass.
type Result struct {
	Schedule Schedule
	// Blocks lists Schedule's keys in the order they were first seen.
	Blocks []string
	// Skipped holds non-blank paragraph lines that were not parsed.
	Skipped []string
}

var lineRegEx = regexp.MustCompile(`^(.+?): (.+)$`)

type state int

const (
	stateScanning state = iota
	stateDone
)

// rowBuilder accumulates one block. It is folded exactly once and then
// replaced, never reused.
type rowBuilder struct {
	label   string
	entries Block
}

func newRow(label string) *rowBuilder {
	return &rowBuilder{label: label, entries: Block{}}
}

func (r *rowBuilder) add(label string, e ClassEntry) {
	r.entries[label] = append(r.entries[label], e)
}

func (r *rowBuilder) build() Block {
	out := make(Block, len(r.entries))
	for label, list := range r.entries {
		out[label] = slices.Clone(list)
	}
	return out
}

type machine struct {
	state  state
	parser EntryParser
	row    *rowBuilder
	res    Result
}

// Parse walks nodes in order and groups the class entries they contain by
// block and label. Traversal ends at the first terminal node or at the end
// of nodes; the open block is kept in both cases. Lines that do not look
// like "label: value", and lines seen before the first header, are skipped
// and reported in Result.Skipped.
func Parse(nodes []Node, p EntryParser) Result {
	m := &machine{
		parser: p,
		res:    Result{Schedule: Schedule{}},
	}

	for _, n := range nodes {
		if m.state == stateDone {
			break
		}
		m.step(n)
	}
	m.fold()
	return m.res
}

func (m *machine) step(n Node) {
	switch n.Kind {
	case KindHeader:
		m.fold()
		m.row = newRow(strings.TrimSpace(n.Text))
	case KindParagraph:
		m.paragraph(n.Text)
	case KindTerminal:
		m.state = stateDone
	}
}

func (m *machine) paragraph(text string) {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		match := lineRegEx.FindStringSubmatch(line)
		if len(match) != 3 || m.row == nil {
			m.res.Skipped = append(m.res.Skipped, line)
			continue
		}

		label, value := match[1], match[2]
		m.row.add(label, ClassEntry{
			ClassFields: m.parser.ParseClass(value),
			Duration:    m.parser.ParseDuration(label),
		})
	}
}

func (m *machine) fold() {
	if m.row == nil {
		return
	}
	if _, seen := m.res.Schedule[m.row.label]; !seen {
		m.res.Blocks = append(m.res.Blocks, m.row.label)
	}
	m.res.Schedule[m.row.label] = m.row.build()
	m.row = nil
}

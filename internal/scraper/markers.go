package scraper

import (
	"regexp"
	"strings"

	"github.com/chriserin/metascrape/internal/doctree"
)

// Marker identifies a lead-in phrase that opens a section of javadoc prose.
type Marker int

const (
	PropertyMarker Marker = iota
	TypeMarker
	ValidationTypeMarker
	DefaultValueMarker
	ParentMarker
	ViolationKeysMarker
	ExamplesMarker
)

// Markers is the single table of marker patterns. Each pattern is matched
// against the whitespace-trimmed text of one node.
var Markers = map[Marker]*regexp.Regexp{
	PropertyMarker:       regexp.MustCompile(`^Property$`),
	TypeMarker:           regexp.MustCompile(`(^|\s)Type is(\s|$)`),
	ValidationTypeMarker: regexp.MustCompile(`(^|\s)Validation type is(\s|$)`),
	DefaultValueMarker:   regexp.MustCompile(`^Default value is`),
	ParentMarker:         regexp.MustCompile(`^Parent is$`),
	ViolationKeysMarker:  regexp.MustCompile(`^Violation Message Keys:$`),
	ExamplesMarker:       regexp.MustCompile(`^To configure the (default )?check`),
}

// tokenPattern matches upper-case symbolic token names such as LITERAL_IF.
var tokenPattern = regexp.MustCompile(`([A-Z]+_*)+[A-Z]+`)

var bareTokenPattern = regexp.MustCompile(`^([A-Z]+_*)+[A-Z]+$`)

// Matches reports whether text opens the given marker.
func (m Marker) Matches(text string) bool {
	return Markers[m].MatchString(strings.TrimSpace(text))
}

// Section is the outcome of classifying a paragraph.
type Section int

const (
	NoSection Section = iota
	ParentSection
	ViolationSection
	ExamplesSection
)

func (s Section) String() string {
	switch s {
	case ParentSection:
		return "parent"
	case ViolationSection:
		return "violation-messages"
	case ExamplesSection:
		return "examples"
	}
	return "none"
}

// firstText returns the text of the first Text child of n, and false if
// there is none.
func firstText(n *doctree.Node) (string, bool) {
	t := n.FirstChild(doctree.Text, 0)
	if t == nil {
		return "", false
	}
	return t.Text, true
}

// ClassifyParagraph decides which section, if any, a paragraph opens.
func ClassifyParagraph(p *doctree.Node) Section {
	text, ok := firstText(p)
	if !ok {
		return NoSection
	}
	switch {
	case ParentMarker.Matches(text):
		return ParentSection
	case ViolationKeysMarker.Matches(text):
		return ViolationSection
	case ExamplesMarker.Matches(text):
		return ExamplesSection
	}
	return NoSection
}

// IsPropertyItem reports whether a list item starts with the Property marker.
func IsPropertyItem(li *doctree.Node) bool {
	text, ok := firstText(li)
	return ok && PropertyMarker.Matches(text)
}

// firstMatching returns the first direct child whose text opens m.
func firstMatching(n *doctree.Node, m Marker) *doctree.Node {
	return n.FirstChildWhere(func(c *doctree.Node) bool {
		return c.Text != "" && m.Matches(c.Text)
	})
}

package scraper

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedDocumentation means a marker or inline tag the section
	// grammar requires is missing.
	ErrMalformedDocumentation = errors.New("malformed documentation")
	// ErrUnclassifiableSection means a node sits where a known marker is
	// expected but matches none. The scraper itself never raises it: list
	// items and paragraphs that match no marker are ignored.
	ErrUnclassifiableSection = errors.New("unclassifiable section")
)

// SectionError locates a scrape failure inside a declaration's doc tree.
type SectionError struct {
	Err     error  // one of the sentinels above
	Section string // "property", "parent", "message-key" ...
	Index   int    // root child index of the offending section
	Detail  string
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s: %s section at %d: %s", e.Err, e.Section, e.Index, e.Detail)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

func malformed(section string, index int, format string, args ...any) error {
	return &SectionError{Err: ErrMalformedDocumentation, Section: section, Index: index, Detail: fmt.Sprintf(format, args...)}
}

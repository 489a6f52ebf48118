package parser

import "fmt"

// Layer 1: source-level syntax of a Java file, as far as documentation
// scraping needs it.

type SourceFile struct {
	Package      string
	Declarations []TypeDecl
}

// TypeDecl is a class, interface, enum, record or annotation type.
type TypeDecl struct {
	Keyword  string // class, interface, enum, record, @interface
	Name     string
	Line     int  // 1-based line of the keyword
	TopLevel bool // declared at brace depth 0
	Doc      *DocComment
}

// DocComment is a /** ... */ comment attached to the declaration after it.
type DocComment struct {
	Text string // everything between /** and */
	Line int    // 1-based line of the opening /**
}

type ParseError struct {
	Line    int
	Message string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

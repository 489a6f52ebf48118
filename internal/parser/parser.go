package parser

import "strings"

var declKeywords = map[string]bool{
	"class":     true,
	"interface": true,
	"enum":      true,
	"record":    true,
}

type scanner struct {
	src    string
	i      int
	line   int
	depth  int
	prev   byte // last significant byte outside comments and literals
	doc    *DocComment
	file   *SourceFile
	errors []ParseError
}

// Parse scans a Java source file for its package clause, type declarations
// and the doc comments attached to them. Parsing continues after recoverable
// errors; an unterminated comment or text block ends the scan.
func Parse(filename string, content []byte) (*SourceFile, []ParseError) {
	s := &scanner{src: lineEndings.Replace(string(content)), line: 1, file: &SourceFile{}}
	s.run()
	return s.file, s.errors
}

func (s *scanner) errorf(line int, msg string) {
	s.errors = append(s.errors, ParseError{Line: line, Message: msg})
}

func (s *scanner) peek(off int) byte {
	if s.i+off < len(s.src) {
		return s.src[s.i+off]
	}
	return 0
}

func (s *scanner) advance(n int) {
	for k := 0; k < n && s.i < len(s.src); k++ {
		if s.src[s.i] == '\n' {
			s.line++
		}
		s.i++
	}
}

func (s *scanner) run() {
	for s.i < len(s.src) {
		c := s.src[s.i]
		switch {
		case c == '\n' || c == ' ' || c == '\t' || c == '\r' || c == '\f':
			s.advance(1)
		case c == '/' && s.peek(1) == '/':
			s.skipLineComment()
		case c == '/' && s.peek(1) == '*':
			if !s.blockComment() {
				return
			}
		case c == '"' && s.peek(1) == '"' && s.peek(2) == '"':
			if !s.textBlock() {
				return
			}
		case c == '"' || c == '\'':
			s.quoted(c)
		case c == '@':
			s.annotation()
		case isIdentStart(c):
			s.word()
		default:
			s.punct(c)
		}
	}
	if s.depth > 0 {
		s.errorf(s.line, "unbalanced braces at end of file")
	}
}

func (s *scanner) skipLineComment() {
	for s.i < len(s.src) && s.src[s.i] != '\n' {
		s.i++
	}
}

// blockComment consumes a /* */ comment, recording it when it is a doc
// comment. It reports false when the comment is unterminated.
func (s *scanner) blockComment() bool {
	start := s.line
	body := s.i + 2
	end := strings.Index(s.src[body:], "*/")
	if end < 0 {
		s.errorf(start, "unterminated comment")
		s.advance(len(s.src) - s.i)
		return false
	}
	text := s.src[body : body+end]
	s.advance(2 + end + 2)

	// /**/ is an empty block comment, not a doc comment.
	if strings.HasPrefix(text, "*") && text != "*" {
		s.doc = &DocComment{Text: text[1:], Line: start}
	}
	return true
}

func (s *scanner) textBlock() bool {
	start := s.line
	s.advance(3)
	for s.i < len(s.src) {
		switch {
		case s.src[s.i] == '\\':
			s.advance(2)
		case strings.HasPrefix(s.src[s.i:], `"""`):
			s.advance(3)
			s.prev = '"'
			return true
		default:
			s.advance(1)
		}
	}
	s.errorf(start, "unterminated text block")
	return false
}

// quoted consumes a string or char literal. A literal broken by a newline is
// reported and scanning resumes on the next line.
func (s *scanner) quoted(q byte) {
	start := s.line
	s.advance(1)
	for s.i < len(s.src) {
		switch s.src[s.i] {
		case '\\':
			s.advance(2)
		case '\n':
			s.errorf(start, "unterminated literal")
			return
		case q:
			s.advance(1)
			s.prev = q
			return
		default:
			s.advance(1)
		}
	}
	s.errorf(start, "unterminated literal")
}

// annotation skips an annotation and its arguments, or handles @interface.
func (s *scanner) annotation() {
	s.advance(1)
	s.skipSpace()
	name := s.ident()
	if name == "interface" {
		s.declaration("@interface")
		return
	}
	// Qualified annotation names.
	for s.peek(0) == '.' {
		s.advance(1)
		s.ident()
	}
	s.skipSpace()
	if s.peek(0) == '(' {
		s.skipParens()
	}
}

func (s *scanner) skipParens() {
	depth := 0
	for s.i < len(s.src) {
		c := s.src[s.i]
		switch {
		case c == '/' && s.peek(1) == '/':
			s.skipLineComment()
			continue
		case c == '/' && s.peek(1) == '*':
			if !s.blockComment() {
				return
			}
			continue
		case c == '"' && s.peek(1) == '"' && s.peek(2) == '"':
			if !s.textBlock() {
				return
			}
			continue
		case c == '"' || c == '\'':
			s.quoted(c)
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
		}
		s.advance(1)
		if depth == 0 {
			s.prev = ')'
			return
		}
	}
}

func (s *scanner) skipSpace() {
	for s.i < len(s.src) {
		switch s.src[s.i] {
		case ' ', '\t', '\n', '\r', '\f':
			s.advance(1)
		default:
			return
		}
	}
}

func (s *scanner) ident() string {
	start := s.i
	for s.i < len(s.src) && isIdentPart(s.src[s.i]) {
		s.i++
	}
	return s.src[start:s.i]
}

func (s *scanner) word() {
	after := s.prev
	w := s.ident()
	s.prev = 'a'

	switch {
	case w == "package" && s.depth == 0 && s.file.Package == "" && len(s.file.Declarations) == 0:
		s.packageClause()
	case declKeywords[w] && after != '.':
		if w == "record" && !s.looksLikeRecord() {
			return
		}
		s.declaration(w)
	}
}

func (s *scanner) packageClause() {
	var b strings.Builder
	for s.i < len(s.src) && s.src[s.i] != ';' {
		c := s.src[s.i]
		if isIdentPart(c) || c == '.' {
			b.WriteByte(c)
		}
		s.advance(1)
	}
	s.file.Package = b.String()
	s.doc = nil
}

// looksLikeRecord tells the contextual keyword record from an identifier:
// a record name is followed by a component list or type parameters.
func (s *scanner) looksLikeRecord() bool {
	j := s.i
	for j < len(s.src) && isSpace(s.src[j]) {
		j++
	}
	if j >= len(s.src) || !isIdentStart(s.src[j]) {
		return false
	}
	for j < len(s.src) && isIdentPart(s.src[j]) {
		j++
	}
	for j < len(s.src) && isSpace(s.src[j]) {
		j++
	}
	return j < len(s.src) && (s.src[j] == '(' || s.src[j] == '<')
}

func (s *scanner) declaration(keyword string) {
	line := s.line
	s.skipSpace()
	name := s.ident()
	if name == "" {
		s.errorf(line, keyword+" without a name")
		return
	}
	s.file.Declarations = append(s.file.Declarations, TypeDecl{
		Keyword:  keyword,
		Name:     name,
		Line:     line,
		TopLevel: s.depth == 0,
		Doc:      s.doc,
	})
	s.doc = nil
	s.prev = 'a'
}

func (s *scanner) punct(c byte) {
	switch c {
	case '{':
		s.depth++
		s.doc = nil
	case '}':
		if s.depth == 0 {
			s.errorf(s.line, "unexpected }")
		} else {
			s.depth--
		}
		s.doc = nil
	case ';', '=':
		s.doc = nil
	}
	s.prev = c
	s.advance(1)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || c >= 0x80 || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/chriserin/metascrape/internal/doctree"
)

var (
	leadingMarker = regexp.MustCompile(`^[ \t]*\*`)
	blockTagStart = regexp.MustCompile(`^\s*@([a-zA-Z]+)`)

	lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// inline tags whose first word is a reference followed by an optional label
var referenceTags = map[string]bool{
	"link":      true,
	"linkplain": true,
	"value":     true,
	"see":       true,
}

type javadocBuilder struct {
	root  *doctree.Node
	stack []*doctree.Node // open containers below root
	block *doctree.Node   // current block tag, once the block section started
}

// ParseJavadoc builds the documentation tree of a doc comment. text is the
// comment body without the surrounding /** and */. CRLF and lone CR line
// endings are read as LF.
//
// Every line after the first starts with an Other("\n") node and, when
// present, a LeadingMarker. Paragraphs, lists and list items become
// containers; other HTML tags are Other leaves holding their raw markup.
// {@tag ...} becomes an InlineTag, and block tags such as @since become
// BlockTag children of the root.
func ParseJavadoc(text string) *doctree.Node {
	b := &javadocBuilder{root: doctree.NewRoot()}
	for k, line := range strings.Split(lineEndings.Replace(text), "\n") {
		if k > 0 {
			b.add(doctree.New(doctree.Other, "\n"))
			if m := leadingMarker.FindString(line); m != "" {
				b.add(doctree.New(doctree.LeadingMarker, m))
				line = line[len(m):]
			}
		}
		if blockTagStart.MatchString(line) {
			b.startBlock(line)
			continue
		}
		if b.block != nil {
			b.inline(b.block, line)
			continue
		}
		b.content(line)
	}
	return b.root
}

func (b *javadocBuilder) current() *doctree.Node {
	if b.block != nil {
		return b.block
	}
	if len(b.stack) == 0 {
		return b.root
	}
	return b.stack[len(b.stack)-1]
}

func (b *javadocBuilder) add(n *doctree.Node) {
	b.current().Append(n)
}

func (b *javadocBuilder) push(n *doctree.Node) {
	b.add(n)
	b.stack = append(b.stack, n)
}

func (b *javadocBuilder) topIs(kind doctree.Kind) bool {
	return len(b.stack) > 0 && b.stack[len(b.stack)-1].Kind == kind
}

func (b *javadocBuilder) startBlock(line string) {
	b.stack = nil
	m := blockTagStart.FindStringSubmatchIndex(line)
	if lead := line[:m[2]-1]; lead != "" {
		b.root.Append(doctree.New(doctree.Other, lead))
	}
	b.block = doctree.New(doctree.BlockTag, line[m[2]-1:m[3]])
	b.root.Append(b.block)
	b.inline(b.block, line[m[3]:])
}

// content splits one line into HTML tags, inline tags and text.
func (b *javadocBuilder) content(line string) {
	for line != "" {
		lt := strings.IndexByte(line, '<')
		if lt != 0 {
			end := len(line)
			if lt > 0 {
				end = lt
			}
			b.inline(b.current(), line[:end])
			line = line[end:]
			continue
		}

		z := html.NewTokenizer(strings.NewReader(line))
		tt := z.Next()
		raw := string(z.Raw())
		switch tt {
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			b.tag(tt, string(name), raw)
			line = line[len(raw):]
		case html.CommentToken, html.DoctypeToken:
			b.add(doctree.New(doctree.Other, raw))
			line = line[len(raw):]
		default:
			// A bare '<' in prose.
			b.inline(b.current(), "<")
			line = line[1:]
		}
	}
}

func (b *javadocBuilder) tag(tt html.TokenType, name, raw string) {
	leaf := doctree.New(doctree.Other, raw)
	isList := func(n *doctree.Node) bool { return n.Kind == doctree.Other && n.Text == "" }

	if tt == html.EndTagToken {
		var kind doctree.Kind
		var match func(*doctree.Node) bool
		switch name {
		case "p":
			kind = doctree.Paragraph
		case "li":
			kind = doctree.ListItem
		case "ul", "ol":
			match = isList
		default:
			b.add(leaf)
			return
		}
		if match == nil {
			match = func(n *doctree.Node) bool { return n.Kind == kind }
		}
		for i := len(b.stack) - 1; i >= 0; i-- {
			if match(b.stack[i]) {
				b.stack[i].Append(leaf)
				b.stack = b.stack[:i]
				return
			}
		}
		b.add(leaf)
		return
	}

	switch name {
	case "p":
		if b.topIs(doctree.Paragraph) {
			b.stack = b.stack[:len(b.stack)-1]
		}
		b.push(doctree.New(doctree.Paragraph, ""))
	case "ul", "ol":
		if b.topIs(doctree.Paragraph) {
			b.stack = b.stack[:len(b.stack)-1]
		}
		b.push(doctree.New(doctree.Other, ""))
	case "li":
		if b.topIs(doctree.ListItem) {
			b.stack = b.stack[:len(b.stack)-1]
		}
		b.push(doctree.New(doctree.ListItem, ""))
	}
	b.add(leaf)
}

// inline splits text into {@tag ...} inline tags and plain text. Text that
// is only whitespace becomes an Other node so it never counts as the first
// text of a section.
func (b *javadocBuilder) inline(parent *doctree.Node, text string) {
	for text != "" {
		start := strings.Index(text, "{@")
		if start < 0 {
			appendText(parent, text)
			return
		}
		end := closingBrace(text, start)
		if end < 0 {
			appendText(parent, text)
			return
		}
		if start > 0 {
			appendText(parent, text[:start])
		}
		parent.Append(inlineTag(text[start+2 : end]))
		text = text[end+1:]
	}
}

func appendText(parent *doctree.Node, text string) {
	if strings.TrimSpace(text) == "" {
		parent.Append(doctree.New(doctree.Other, text))
		return
	}
	parent.Append(doctree.New(doctree.Text, text))
}

// closingBrace finds the brace closing the inline tag opened at start,
// allowing balanced braces inside the body.
func closingBrace(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// inlineTag builds the node for the inside of {@...}.
func inlineTag(inside string) *doctree.Node {
	name, body, _ := strings.Cut(inside, " ")
	tag := doctree.New(doctree.InlineTag, "")
	open := "{@" + name
	if inside != name {
		open += " "
	}
	tag.Append(doctree.New(doctree.Other, open))

	if referenceTags[name] {
		if ref, label, ok := strings.Cut(strings.TrimLeft(body, " "), " "); ok && strings.TrimSpace(label) != "" {
			tag.Append(doctree.New(doctree.Other, ref+" "))
			body = label
		}
	}
	if body != "" {
		tag.Append(doctree.New(doctree.Text, body))
	}
	tag.Append(doctree.New(doctree.Other, "}"))
	return tag
}

package scraper

import (
	"strings"

	"github.com/chriserin/metascrape/internal/doctree"
)

// Reconstruct joins the text of root's direct children with index in
// [left, right] and of all their descendants, in document order. Leading
// markers and bare token names are dropped; the result is trimmed.
func Reconstruct(root *doctree.Node, left, right int) string {
	var b strings.Builder
	visited := make(map[*doctree.Node]bool)

	stack := []*doctree.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[n] {
			continue
		}
		visited[n] = true

		if n.Kind != doctree.LeadingMarker && !bareTokenPattern.MatchString(n.Text) {
			b.WriteString(n.Text)
		}

		// Push in reverse so the leftmost child is popped first.
		for i := len(n.Children) - 1; i >= 0; i-- {
			c := n.Children[i]
			if n == root && (c.Index < left || c.Index > right) {
				continue
			}
			if !visited[c] {
				stack = append(stack, c)
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// tokenList extracts the distinct token names of text in first-seen order and
// joins them with commas.
func tokenList(text string) string {
	seen := make(map[string]bool)
	var tokens []string
	for _, tok := range tokenPattern.FindAllString(text, -1) {
		if !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	return strings.Join(tokens, ",")
}

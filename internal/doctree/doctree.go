package doctree

import "strings"

// Kind tags the role of a node in a javadoc tree.
type Kind int

const (
	Root Kind = iota
	Paragraph
	ListItem
	InlineTag
	Text
	LeadingMarker
	BlockTag // @since, @author ... ; everything after the first one is not prose
	Other
)

var kindNames = [...]string{"Root", "Paragraph", "ListItem", "InlineTag", "Text", "LeadingMarker", "BlockTag", "Other"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Unknown"
	}
	return kindNames[k]
}

// Node is one element of a documentation tree. Index is the position of the
// node among its siblings; the root has index -1.
type Node struct {
	Kind     Kind
	Text     string
	Index    int
	Children []*Node
}

// New creates a detached node.
func New(kind Kind, text string) *Node {
	return &Node{Kind: kind, Text: text, Index: -1}
}

// NewRoot creates an empty root node.
func NewRoot() *Node {
	return New(Root, "")
}

// Append adds children in order, assigning their sibling index, and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.Index = len(n.Children)
		n.Children = append(n.Children, c)
	}
	return n
}

// FirstChild returns the first direct child of the given kind whose index is
// at least offset, or nil.
func (n *Node) FirstChild(kind Kind, offset int) *Node {
	for _, c := range n.Children {
		if c.Index >= offset && c.Kind == kind {
			return c
		}
	}
	return nil
}

// FirstChildWhere returns the first direct child satisfying pred, or nil.
func (n *Node) FirstChildWhere(pred func(*Node) bool) *Node {
	for _, c := range n.Children {
		if pred(c) {
			return c
		}
	}
	return nil
}

// String renders the subtree text in document order, markers included.
// Intended for debugging and test failure messages.
func (n *Node) String() string {
	var b strings.Builder
	var write func(*Node)
	write = func(x *Node) {
		b.WriteString(x.Text)
		for _, c := range x.Children {
			write(c)
		}
	}
	write(n)
	return b.String()
}

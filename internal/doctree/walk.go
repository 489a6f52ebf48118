package doctree

import "errors"

// SkipRest can be returned by a WalkFunc to end the walk early without error.
var SkipRest = errors.New("skip rest of tree")

// Visit describes one node handed to a scraper by a driver.
type Visit struct {
	Node   *Node
	Parent *Node
	// Top is the sibling index of the root child that contains Node
	// (Node's own index when it is a direct child of the root).
	Top int
}

// WalkFunc is called once per node, in document order.
type WalkFunc func(v Visit) error

// Walk visits every descendant of root in document order (pre-order, children
// left to right). The root itself is not visited.
func Walk(root *Node, fn WalkFunc) error {
	err := walkChildren(root, -1, fn)
	if errors.Is(err, SkipRest) {
		return nil
	}
	return err
}

func walkChildren(parent *Node, top int, fn WalkFunc) error {
	for _, c := range parent.Children {
		t := top
		if t < 0 {
			t = c.Index
		}
		if err := fn(Visit{Node: c, Parent: parent, Top: t}); err != nil {
			return err
		}
		if err := walkChildren(c, t, fn); err != nil {
			return err
		}
	}
	return nil
}

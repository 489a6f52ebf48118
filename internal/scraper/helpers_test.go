package scraper

import "github.com/chriserin/metascrape/internal/doctree"

func text(s string) *doctree.Node {
	return doctree.New(doctree.Text, s)
}

func code(s string) *doctree.Node {
	return doctree.New(doctree.InlineTag, "").Append(
		doctree.New(doctree.Other, "{@code "),
		text(s),
		doctree.New(doctree.Other, "}"),
	)
}

func para(children ...*doctree.Node) *doctree.Node {
	return doctree.New(doctree.Paragraph, "").Append(children...)
}

func item(children ...*doctree.Node) *doctree.Node {
	return doctree.New(doctree.ListItem, "").Append(children...)
}

func list(items ...*doctree.Node) *doctree.Node {
	return doctree.New(doctree.Other, "").Append(items...)
}

func since(version string) *doctree.Node {
	return doctree.New(doctree.BlockTag, "@since").Append(text(" " + version))
}

// propertyItem lays out a property the way the checkstyle sources write one,
// with one text node per source line.
func propertyItem(name, desc, typ string, def *doctree.Node) *doctree.Node {
	li := item(
		text("Property "), code(name), text(" - "+desc),
		text("Type is "), code(typ), text("."),
		text("Default value is "),
	)
	if def != nil {
		li.Append(def, text("."))
	}
	return li
}

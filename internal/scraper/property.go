package scraper

import (
	"strings"

	"github.com/chriserin/metascrape/internal/doctree"
	"github.com/chriserin/metascrape/internal/meta"
)

// DefaultNoDefaultSentinels are default-value texts meaning "no default".
var DefaultNoDefaultSentinels = []string{
	"null",
	"the charset property of the parent",
}

// tagText returns the trimmed, unquoted text of an inline tag, and false when
// the tag has no text.
func tagText(tag *doctree.Node) (string, bool) {
	if tag == nil {
		return "", false
	}
	t := tag.FirstChild(doctree.Text, 0)
	if t == nil {
		return "", false
	}
	return strings.ReplaceAll(strings.TrimSpace(t.Text), `"`, ""), true
}

// ExtractProperty builds a property record from a list item already known to
// open a property. sentinels lists default values that mean "no default".
func ExtractProperty(li *doctree.Node, sentinels []string) (meta.Property, error) {
	var p meta.Property
	at := li.Index

	nameTag := li.FirstChild(doctree.InlineTag, 0)
	name, ok := tagText(nameTag)
	if !ok || name == "" {
		return p, malformed("property", at, "no name tag")
	}

	typeMarker := firstMatching(li, TypeMarker)
	if typeMarker == nil {
		return p, malformed("property", at, "%s: no %q marker", name, "Type is")
	}
	typ, ok := tagText(li.FirstChild(doctree.InlineTag, typeMarker.Index+1))
	if !ok || typ == "" {
		return p, malformed("property", at, "%s: no type tag", name)
	}

	desc := Reconstruct(li, nameTag.Index+1, typeMarker.Index-1)
	p.Name = name
	p.Type = typ
	p.Description = strings.TrimSpace(strings.ReplaceAll(desc, "-", ""))

	if vm := firstMatching(li, ValidationTypeMarker); vm != nil {
		vt, ok := tagText(li.FirstChild(doctree.InlineTag, vm.Index+1))
		if !ok {
			return meta.Property{}, malformed("property", at, "%s: no validation type tag", name)
		}
		p.ValidationType = vt
	}

	def, err := defaultValue(li, name)
	if err != nil {
		return meta.Property{}, err
	}
	if !isSentinel(def, sentinels) {
		p.DefaultValue = meta.StringPtr(def)
	}
	return p, nil
}

// defaultValue reads the literal default after the "Default value is" marker,
// falling back to the token list that follows it.
func defaultValue(li *doctree.Node, name string) (string, error) {
	marker := firstMatching(li, DefaultValueMarker)
	if marker == nil {
		return "", malformed("property", li.Index, "%s: no %q marker", name, "Default value is")
	}
	if tag := li.FirstChild(doctree.InlineTag, marker.Index+1); tag != nil {
		v, _ := tagText(tag)
		return v, nil
	}

	trailer := Markers[DefaultValueMarker].ReplaceAllString(strings.TrimSpace(marker.Text), "")
	if strings.Trim(trailer, ":. ") == "" && !hasTextAfter(li, marker.Index) {
		return "", malformed("property", li.Index, "%s: nothing follows %q", name, "Default value is")
	}
	return tokenList(Reconstruct(li, marker.Index, len(li.Children))), nil
}

// hasTextAfter reports whether any Text node below the children of n that
// follow index carries non-blank text.
func hasTextAfter(n *doctree.Node, index int) bool {
	var hasText func(*doctree.Node) bool
	hasText = func(x *doctree.Node) bool {
		if x.Kind == doctree.Text && strings.TrimSpace(x.Text) != "" {
			return true
		}
		for _, c := range x.Children {
			if hasText(c) {
				return true
			}
		}
		return false
	}
	for _, c := range n.Children[index+1:] {
		if hasText(c) {
			return true
		}
	}
	return false
}

func isSentinel(v string, sentinels []string) bool {
	for _, s := range sentinels {
		if v == s {
			return true
		}
	}
	return false
}

// Package codec reads and writes module metadata as checkstyle-metadata XML.
package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/chriserin/metascrape/internal/meta"
)

// ErrSchemaViolation means a persisted record lacks a required element or
// attribute.
var ErrSchemaViolation = errors.New("metadata schema violation")

const (
	rootTag        = "checkstyle-metadata"
	moduleTag      = "module"
	descriptionTag = "description"
	propertiesTag  = "properties"
	propertyTag    = "property"
	messageKeysTag = "message-keys"
	messageKeyTag  = "message-key"
)

var kinds = []meta.Kind{meta.Check, meta.Filter, meta.FileFilter}

// Document builds the XML document for m.
func Document(m *meta.Module) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	el := doc.CreateElement(rootTag).CreateElement(moduleTag).CreateElement(m.Kind.Element())
	el.CreateAttr("name", m.Name)
	el.CreateAttr("fully-qualified-name", m.FullyQualifiedName)
	if m.Parent != "" {
		el.CreateAttr("parent", m.Parent)
	}
	writeCData(el.CreateElement(descriptionTag), m.Description)

	if len(m.Properties) > 0 {
		props := el.CreateElement(propertiesTag)
		for _, p := range m.Properties {
			pe := props.CreateElement(propertyTag)
			pe.CreateAttr("name", p.Name)
			pe.CreateAttr("type", p.Type)
			if p.DefaultValue != nil {
				pe.CreateAttr("default-value", *p.DefaultValue)
			}
			if p.ValidationType != "" {
				pe.CreateAttr("validation-type", p.ValidationType)
			}
			writeCData(pe.CreateElement(descriptionTag), p.Description)
		}
	}

	if len(m.MessageKeys) > 0 {
		keys := el.CreateElement(messageKeysTag)
		for _, k := range m.MessageKeys {
			keys.CreateElement(messageKeyTag).CreateAttr("key", k)
		}
	}

	doc.Indent(2)
	return doc
}

// Encode writes m to w.
func Encode(w io.Writer, m *meta.Module) error {
	if _, err := Document(m).WriteTo(w); err != nil {
		return fmt.Errorf("encoding %s: %w", m.FullyQualifiedName, err)
	}
	return nil
}

// Marshal returns the encoded form of m.
func Marshal(m *meta.Module) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads one record from r. The module kind is taken from whichever
// kind element is present.
func Decode(r io.Reader) (*meta.Module, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("reading metadata: %w", err)
	}
	return FromDocument(doc)
}

// Unmarshal decodes a record held in memory.
func Unmarshal(data []byte) (*meta.Module, error) {
	return Decode(bytes.NewReader(data))
}

// FromDocument rebuilds a module from a parsed document.
func FromDocument(doc *etree.Document) (*meta.Module, error) {
	root := doc.SelectElement(rootTag)
	if root == nil {
		return nil, violation("missing <%s>", rootTag)
	}
	mod := root.SelectElement(moduleTag)
	if mod == nil {
		return nil, violation("missing <%s>", moduleTag)
	}

	m := meta.New()
	var el *etree.Element
	for _, k := range kinds {
		if el = mod.SelectElement(k.Element()); el != nil {
			m.Kind = k
			break
		}
	}
	if el == nil {
		return nil, violation("missing check, filter or file-filter element")
	}

	var err error
	if m.Name, err = requiredAttr(el, "name"); err != nil {
		return nil, err
	}
	if m.FullyQualifiedName, err = requiredAttr(el, "fully-qualified-name"); err != nil {
		return nil, err
	}
	m.Parent = el.SelectAttrValue("parent", "")
	if m.Description, err = description(el); err != nil {
		return nil, err
	}

	if props := el.SelectElement(propertiesTag); props != nil {
		for _, pe := range props.SelectElements(propertyTag) {
			p, err := property(pe)
			if err != nil {
				return nil, err
			}
			if err := m.AddProperty(p); err != nil {
				return nil, violation("%v", err)
			}
		}
	}

	if keys := el.SelectElement(messageKeysTag); keys != nil {
		for _, ke := range keys.SelectElements(messageKeyTag) {
			key, err := requiredAttr(ke, "key")
			if err != nil {
				return nil, err
			}
			m.AddMessageKey(key)
		}
	}
	return m, nil
}

func property(pe *etree.Element) (meta.Property, error) {
	var p meta.Property
	var err error
	if p.Name, err = requiredAttr(pe, "name"); err != nil {
		return p, err
	}
	if p.Type, err = requiredAttr(pe, "type"); err != nil {
		return p, err
	}
	if a := pe.SelectAttr("default-value"); a != nil {
		p.DefaultValue = meta.StringPtr(a.Value)
	}
	p.ValidationType = pe.SelectAttrValue("validation-type", "")
	if p.Description, err = description(pe); err != nil {
		return p, err
	}
	return p, nil
}

func requiredAttr(el *etree.Element, key string) (string, error) {
	a := el.SelectAttr(key)
	if a == nil {
		return "", violation("<%s> has no %s attribute", el.Tag, key)
	}
	return a.Value, nil
}

func description(el *etree.Element) (string, error) {
	d := el.SelectElement(descriptionTag)
	if d == nil {
		return "", violation("<%s> has no description", el.Tag)
	}
	var b strings.Builder
	for _, c := range d.Child {
		if cd, ok := c.(*etree.CharData); ok {
			b.WriteString(cd.Data)
		}
	}
	return b.String(), nil
}

// writeCData stores text as CDATA. A "]]>" inside text is split across two
// sections so the terminator never appears unescaped.
func writeCData(el *etree.Element, text string) {
	parts := strings.Split(text, "]]>")
	for i, part := range parts {
		if i > 0 {
			part = ">" + part
		}
		if i < len(parts)-1 {
			part += "]]"
		}
		el.CreateCData(part)
	}
}

func violation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchemaViolation, fmt.Sprintf(format, args...))
}

package meta

import "fmt"

// Kind is the category a module belongs to.
type Kind int

const (
	Check Kind = iota
	Filter
	FileFilter
)

// Element returns the XML element name used for the kind.
func (k Kind) Element() string {
	switch k {
	case Filter:
		return "filter"
	case FileFilter:
		return "file-filter"
	default:
		return "check"
	}
}

func (k Kind) String() string {
	return k.Element()
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "check":
		return Check, nil
	case "filter":
		return Filter, nil
	case "file-filter":
		return FileFilter, nil
	}
	return Check, fmt.Errorf("unknown module kind %q", s)
}

// Property is one configurable property of a module.
type Property struct {
	Name           string
	Type           string
	ValidationType string  // empty when not documented
	DefaultValue   *string // nil when the module has no default
	Description    string
}

// Default returns the default value and whether one is set.
func (p Property) Default() (string, bool) {
	if p.DefaultValue == nil {
		return "", false
	}
	return *p.DefaultValue, true
}

// StringPtr is a helper for building DefaultValue.
func StringPtr(s string) *string {
	return &s
}

// Module is the metadata record for one documented declaration.
type Module struct {
	Name               string
	FullyQualifiedName string
	Parent             string // empty when not declared
	Description        string
	Kind               Kind
	Properties         []Property
	MessageKeys        []string
}

// New returns an empty module with non-nil collections.
func New() *Module {
	return &Module{
		Properties:  []Property{},
		MessageKeys: []string{},
	}
}

// AddProperty appends p. Property names are unique within a module.
func (m *Module) AddProperty(p Property) error {
	if _, ok := m.Property(p.Name); ok {
		return fmt.Errorf("duplicate property %q", p.Name)
	}
	m.Properties = append(m.Properties, p)
	return nil
}

// AddMessageKey appends key; duplicates are kept.
func (m *Module) AddMessageKey(key string) {
	m.MessageKeys = append(m.MessageKeys, key)
}

// Property looks a property up by name.
func (m *Module) Property(name string) (Property, bool) {
	for _, p := range m.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// PropertyIndex returns a name-keyed view of the properties.
func (m *Module) PropertyIndex() map[string]Property {
	idx := make(map[string]Property, len(m.Properties))
	for _, p := range m.Properties {
		idx[p.Name] = p
	}
	return idx
}

package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/metascrape/internal/doctree"
	"github.com/chriserin/metascrape/internal/meta"
)

var emptyBlock = Unit{
	Path:         "checks/blocks/EmptyBlockCheck.java",
	Package:      "com.puppycrawl.tools.checkstyle.checks.blocks",
	ExpectedName: "EmptyBlockCheck",
}

func scrape(t *testing.T, root *doctree.Node) (*meta.Module, error) {
	t.Helper()
	s := New(DefaultConfig())
	return s.Scrape(emptyBlock, Declaration{Name: "EmptyBlockCheck", TopLevel: true}, root)
}

func TestScrape_DescriptionBoundedByPropertySection(t *testing.T) {
	root := doctree.NewRoot().Append(
		text(" Checks"), text(" for"), text(" empty"), text(" blocks"), text("."),
		list(propertyItem("option", "specify the policy.", "BlockOption", code("statement"))),
		text(" trailing prose"),
		para(text("To configure the check:")),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Equal(t, "Checks for empty blocks.", m.Description)
	require.Len(t, m.Properties, 1)
	assert.Equal(t, "option", m.Properties[0].Name)
	assert.Equal(t, "statement", *m.Properties[0].DefaultValue)
}

func TestScrape_Identity(t *testing.T) {
	root := doctree.NewRoot().Append(para(text("Checks for empty blocks.")))

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Equal(t, "EmptyBlock", m.Name)
	assert.Equal(t, "com.puppycrawl.tools.checkstyle.checks.blocks.EmptyBlockCheck", m.FullyQualifiedName)
	assert.Equal(t, meta.Check, m.Kind)
	assert.Equal(t, "Checks for empty blocks.", m.Description)
	assert.Empty(t, m.Properties)
	assert.Empty(t, m.MessageKeys)
}

func TestScrape_ParentBoundsDescription(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("Checks for empty blocks.")),
		para(text("Parent is "), code("com.puppycrawl.tools.checkstyle.TreeWalker")),
		para(text("Violation Message Keys:")),
		list(item(code("block.empty")), item(code("block.noStatement"))),
		since("3.0"),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Equal(t, "Checks for empty blocks.", m.Description)
	assert.Equal(t, "com.puppycrawl.tools.checkstyle.TreeWalker", m.Parent)
	assert.Equal(t, []string{"block.empty", "block.noStatement"}, m.MessageKeys)
}

func TestScrape_ParentIsTreeWalker(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("Checks something.")),
		para(text("Parent is "), code("TreeWalker")),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Equal(t, "TreeWalker", m.Parent)
	assert.Equal(t, "Checks something.", m.Description)
}

func TestScrape_ExamplesBoundDescriptionWithoutProperties(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("First.")),
		para(text("Second.")),
		para(text("To configure the check:")),
		para(text("Example prose.")),
		para(text("To configure the default check:")),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Equal(t, "First.Second.", m.Description)
}

func TestScrape_BlockTagEndsScanning(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("Prose.")),
		since("8.0"),
		para(text("Parent is "), code("TreeWalker")),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Equal(t, "Prose.", m.Description)
	assert.Empty(t, m.Parent)
}

func TestState_BlockTagSkipsRestOfWalk(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("Prose.")),
		since("8.0"),
		list(item(text("Property "), code("broken"))),
	)
	st, ok := New(DefaultConfig()).Begin(emptyBlock, Declaration{Name: "EmptyBlockCheck", TopLevel: true}, root)
	require.True(t, ok)

	var visited []doctree.Kind
	err := doctree.Walk(root, func(v doctree.Visit) error {
		visited = append(visited, v.Node.Kind)
		return st.Visit(v)
	})
	require.NoError(t, err)
	assert.Equal(t, []doctree.Kind{doctree.Paragraph, doctree.Text, doctree.BlockTag}, visited)
	assert.ErrorIs(t, st.Visit(doctree.Visit{Node: root.Children[2], Parent: root, Top: 2}), doctree.SkipRest)

	m, err := st.Finish()
	require.NoError(t, err)
	assert.Equal(t, "Prose.", m.Description)
	assert.Empty(t, m.Properties)
}

func TestScrape_DescriptionCommittedOnce(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("Intro.")),
		list(propertyItem("first", "one.", "int", code("1"))),
		para(text("More prose.")),
		list(propertyItem("second", "two.", "int", code("2"))),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Equal(t, "Intro.", m.Description)
	require.Len(t, m.Properties, 2)
	assert.Equal(t, "first", m.Properties[0].Name)
	assert.Equal(t, "second", m.Properties[1].Name)
}

func TestScrape_NestedDeclarationIgnored(t *testing.T) {
	s := New(DefaultConfig())
	root := doctree.NewRoot().Append(para(text("Inner.")))

	_, ok := s.Begin(emptyBlock, Declaration{Name: "Helper", TopLevel: false}, root)
	assert.False(t, ok)
	_, ok = s.Begin(emptyBlock, Declaration{Name: "Other", TopLevel: true}, root)
	assert.False(t, ok)

	_, err := s.Scrape(emptyBlock, Declaration{Name: "EmptyBlockCheck", TopLevel: false}, root)
	assert.ErrorIs(t, err, ErrNotTopLevel)
}

func TestScrape_MalformedPropertyStopsRecord(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("Intro.")),
		list(item(text("Property "), code("broken"), text(" - no type"))),
	)

	m, err := scrape(t, root)
	assert.Nil(t, m)
	assert.ErrorIs(t, err, ErrMalformedDocumentation)

	var se *SectionError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "property", se.Section)
}

func TestScrape_DuplicatePropertyIsMalformed(t *testing.T) {
	root := doctree.NewRoot().Append(
		list(
			propertyItem("option", "a.", "int", code("1")),
			propertyItem("option", "b.", "int", code("2")),
		),
	)

	_, err := scrape(t, root)
	assert.ErrorIs(t, err, ErrMalformedDocumentation)
}

func TestScrape_PlainItemInPropertyListIgnored(t *testing.T) {
	root := doctree.NewRoot().Append(
		para(text("Checks things.")),
		list(
			propertyItem("option", "a.", "int", code("1")),
			item(text("Note: properties are applied in order.")),
			propertyItem("max", "b.", "int", code("3")),
		),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	require.Len(t, m.Properties, 2)
	assert.Equal(t, "option", m.Properties[0].Name)
	assert.Equal(t, "max", m.Properties[1].Name)
	assert.Equal(t, "Checks things.", m.Description)
	assert.Empty(t, m.MessageKeys)
}

func TestScrape_OtherListsIgnoredInPropertyPhase(t *testing.T) {
	root := doctree.NewRoot().Append(
		list(propertyItem("option", "a.", "int", code("1"))),
		para(text("Notes:")),
		list(item(text("a plain bullet"))),
	)

	m, err := scrape(t, root)
	require.NoError(t, err)
	assert.Len(t, m.Properties, 1)
}

func TestScrape_MissingParentTag(t *testing.T) {
	root := doctree.NewRoot().Append(para(text("Parent is ")))

	_, err := scrape(t, root)
	assert.ErrorIs(t, err, ErrMalformedDocumentation)
}

func TestState_PhaseTransitions(t *testing.T) {
	s := New(DefaultConfig())
	root := doctree.NewRoot().Append(
		list(propertyItem("option", "a.", "int", code("1"))),
		para(text("Parent is "), code("TreeWalker")),
		para(text("Violation Message Keys:")),
	)
	st, ok := s.Begin(emptyBlock, Declaration{Name: "EmptyBlockCheck", TopLevel: true}, root)
	require.True(t, ok)

	var phases []Phase
	err := doctree.Walk(root, func(v doctree.Visit) error {
		if err := st.Visit(v); err != nil {
			return err
		}
		if len(phases) == 0 || phases[len(phases)-1] != st.Phase() {
			phases = append(phases, st.Phase())
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []Phase{DescriptionPhase, PropertyPhase, ParentPhase, ViolationPhase}, phases)
}

func TestKind(t *testing.T) {
	s := New(DefaultConfig())
	assert.Equal(t, meta.Check, s.Kind("EmptyBlockCheck"))
	assert.Equal(t, meta.Filter, s.Kind("SuppressionFilter"))
	assert.Equal(t, meta.FileFilter, s.Kind("BeforeExecutionExclusionFileFilter"))
	assert.Equal(t, meta.Check, s.Kind("SuppressWarningsHolder"))
	assert.Equal(t, meta.Check, s.Kind("Whatever"))

	custom := New(Config{CheckOverrides: []string{"SpecialFilter"}})
	assert.Equal(t, meta.Check, custom.Kind("SpecialFilter"))
}

func TestModuleName(t *testing.T) {
	assert.Equal(t, "EmptyBlock", ModuleName("EmptyBlockCheck"))
	assert.Equal(t, "SuppressionFilter", ModuleName("SuppressionFilter"))
	assert.Equal(t, "Check", ModuleName("Check"))
}

package parser

import (
	"path/filepath"
	"strings"

	"github.com/chriserin/metascrape/internal/doctree"
)

// ParsedFile is the Layer 2 model handed to the scraper: one source file with
// the doc trees of its declarations.
type ParsedFile struct {
	Path         string
	Name         string // expected top-level type, the file name without extension
	Package      string
	Declarations []ParsedDeclaration
	Errors       []ParseError
}

// ParsedDeclaration is a type declaration with its documentation tree.
type ParsedDeclaration struct {
	Keyword  string
	Name     string
	Line     int
	TopLevel bool
	Doc      *doctree.Node // nil when undocumented
}

// FullyQualifiedName of the file's expected top-level type.
func (pf *ParsedFile) FullyQualifiedName() string {
	if pf.Package == "" {
		return pf.Name
	}
	return pf.Package + "." + pf.Name
}

// Primary returns the documented top-level declaration named after the file.
func (pf *ParsedFile) Primary() (ParsedDeclaration, bool) {
	for _, d := range pf.Declarations {
		if d.TopLevel && d.Name == pf.Name {
			return d, true
		}
	}
	return ParsedDeclaration{}, false
}

// Transform converts a Layer 1 SourceFile into a Layer 2 ParsedFile.
func Transform(file *SourceFile, path string, errors []ParseError) *ParsedFile {
	pf := &ParsedFile{
		Path:    path,
		Name:    filenameWithoutExt(path),
		Package: file.Package,
		Errors:  errors,
	}
	if pf.Package == "" {
		pf.Package = packageFromPath(path)
	}

	for _, d := range file.Declarations {
		pd := ParsedDeclaration{
			Keyword:  d.Keyword,
			Name:     d.Name,
			Line:     d.Line,
			TopLevel: d.TopLevel,
		}
		if d.Doc != nil {
			pd.Doc = ParseJavadoc(d.Doc.Text)
		}
		pf.Declarations = append(pf.Declarations, pd)
	}
	return pf
}

// ParseFile parses and transforms in one step.
func ParseFile(path string, content []byte) *ParsedFile {
	file, errors := Parse(path, content)
	return Transform(file, path, errors)
}

func filenameWithoutExt(filename string) string {
	name := filepath.ToSlash(filename)
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return name
}

// packageFromPath derives a package from the directories after the last
// "java" or "resources" directory of path.
func packageFromPath(path string) string {
	dirs := strings.Split(filepath.ToSlash(filepath.Dir(path)), "/")
	for i := len(dirs) - 1; i >= 0; i-- {
		if dirs[i] == "java" || dirs[i] == "resources" {
			return strings.Join(dirs[i+1:], ".")
		}
	}
	return ""
}

package codec

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/chriserin/metascrape/internal/meta"
)

// Layout selects how output paths are derived from a module.
type Layout string

const (
	// PackageLayout mirrors the package as directories.
	PackageLayout Layout = "package"
	// FlatLayout puts every record directly under the root.
	FlatLayout Layout = "flat"
)

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	switch l := Layout(s); l {
	case PackageLayout, FlatLayout:
		return l, nil
	}
	return "", fmt.Errorf("unknown output layout %q", s)
}

// OutputPath is the file a module's record is written to.
func OutputPath(root string, m *meta.Module, layout Layout) string {
	if layout == FlatLayout {
		name := m.Name
		if m.Kind == meta.Check && !strings.HasSuffix(name, "Check") {
			name += "Check"
		}
		return filepath.Join(root, name+".xml")
	}

	parts := strings.Split(m.FullyQualifiedName, ".")
	simple := parts[len(parts)-1]
	dirs := append([]string{root}, parts[:len(parts)-1]...)
	return filepath.Join(append(dirs, simple+".xml")...)
}

// WriteFile writes m to path, creating parent directories. The file is
// replaced atomically.
func WriteFile(path string, m *meta.Module) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".metascrape-*.xml")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, m); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming to %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes the record stored at path.
func ReadFile(path string) (*meta.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}

// Entry is one decoded record.
type Entry struct {
	Path   string
	Module *meta.Module
}

// FileError ties a read or decode failure to its file.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// ReadDir decodes every .xml file below dir in lexical order. A file that
// fails is reported and does not stop the others.
func ReadDir(dir string) ([]Entry, []FileError) {
	var entries []Entry
	var errs []FileError

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			errs = append(errs, FileError{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != ".xml" || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		m, err := ReadFile(path)
		if err != nil {
			errs = append(errs, FileError{Path: path, Err: err})
			return nil
		}
		entries = append(entries, Entry{Path: path, Module: m})
		return nil
	})
	if walkErr != nil {
		errs = append(errs, FileError{Path: dir, Err: walkErr})
	}
	return entries, errs
}

package runner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sources selects which Java files are scraped.
type Sources struct {
	Folders         []string // subdirectories of the root to walk; the root itself when empty
	Suffixes        []string // accepted file name suffixes
	AllowedAbstract []string // Abstract* file names that are still scraped
}

// DefaultSources mirrors the checkstyle source layout.
func DefaultSources() Sources {
	return Sources{
		Folders:         []string{"checks", "filters", "filefilters"},
		Suffixes:        []string{"Check.java", "Filter.java", "SuppressWarningsHolder.java"},
		AllowedAbstract: []string{"AbstractClassNameCheck.java"},
	}
}

// Match reports whether a file name is a scrape candidate.
func (s Sources) Match(path string) bool {
	base := filepath.Base(path)
	matched := false
	for _, suffix := range s.Suffixes {
		if strings.HasSuffix(base, suffix) {
			matched = true
			break
		}
	}
	if !matched {
		return false
	}
	if !strings.HasPrefix(base, "Abstract") {
		return true
	}
	for _, allowed := range s.AllowedAbstract {
		if base == allowed {
			return true
		}
	}
	return false
}

// Discover lists the files to scrape under path in lexical order. A path
// naming a .java file is returned as is. Configured folders that do not
// exist are skipped.
func Discover(path string, src Sources) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		if filepath.Ext(path) != ".java" {
			return nil, fmt.Errorf("%s is not a .java file", path)
		}
		return []string{path}, nil
	}

	roots := []string{path}
	if len(src.Folders) > 0 {
		roots = roots[:0]
		for _, folder := range src.Folders {
			roots = append(roots, filepath.Join(path, folder))
		}
	}

	var files []string
	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && src.Match(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	sort.Strings(files)
	return files, nil
}

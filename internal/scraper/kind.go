package scraper

import (
	"strings"

	"github.com/chriserin/metascrape/internal/meta"
)

// Kind classifies a declaration by its simple name.
func (s *Scraper) Kind(simpleName string) meta.Kind {
	for _, name := range s.cfg.CheckOverrides {
		if name == simpleName {
			return meta.Check
		}
	}
	switch {
	case strings.HasSuffix(simpleName, "FileFilter"):
		return meta.FileFilter
	case strings.HasSuffix(simpleName, "Filter"):
		return meta.Filter
	}
	return meta.Check
}

// ModuleName is the simple name without a trailing "Check".
func ModuleName(simpleName string) string {
	if name := strings.TrimSuffix(simpleName, "Check"); name != "" {
		return name
	}
	return simpleName
}

// Package scraper extracts module metadata from the javadoc tree of a
// top-level declaration.
//
// A driver calls Begin once per declaration, Visit once per node in document
// order and Finish at the end. All mutable state lives in the returned State,
// so declarations can be scraped concurrently with one State each.
package scraper

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/chriserin/metascrape/internal/doctree"
	"github.com/chriserin/metascrape/internal/meta"
)

// ErrNotTopLevel is returned by Scrape for documentation that does not belong
// to the unit's own top-level declaration.
var ErrNotTopLevel = errors.New("not the top-level declaration of the unit")

// Unit is one source file handed to the scraper.
type Unit struct {
	Path         string
	Package      string
	ExpectedName string // simple name of the type the file must declare
}

// FullyQualifiedName joins the package and the expected name.
func (u Unit) FullyQualifiedName() string {
	if u.Package == "" {
		return u.ExpectedName
	}
	return u.Package + "." + u.ExpectedName
}

// Declaration is the declaration a doc tree is attached to.
type Declaration struct {
	Name     string
	TopLevel bool
}

// Config holds the data-driven parts of scraping.
type Config struct {
	// NoDefaultSentinels are default-value texts that mean "no default".
	NoDefaultSentinels []string
	// CheckOverrides are simple names always classified as checks.
	CheckOverrides []string
}

// DefaultConfig returns the built-in sentinels and overrides.
func DefaultConfig() Config {
	return Config{
		NoDefaultSentinels: append([]string(nil), DefaultNoDefaultSentinels...),
		CheckOverrides:     []string{"SuppressWarningsHolder"},
	}
}

type Option func(*Scraper)

// WithLogger sets the logger used for debug output.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Scraper) { s.log = log }
}

// Scraper holds immutable configuration shared by every State it creates.
type Scraper struct {
	cfg Config
	log zerolog.Logger
}

func New(cfg Config, opts ...Option) *Scraper {
	s := &Scraper{cfg: cfg, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Phase is the part of the documentation the scraper is currently in.
type Phase int

const (
	DescriptionPhase Phase = iota
	PropertyPhase
	ParentPhase
	ViolationPhase
)

func (p Phase) String() string {
	switch p {
	case PropertyPhase:
		return "property"
	case ParentPhase:
		return "parent"
	case ViolationPhase:
		return "violation-messages"
	}
	return "description"
}

// State is the scrape state of a single declaration.
type State struct {
	cfg    *Config
	log    zerolog.Logger
	root   *doctree.Node
	module *meta.Module
	phase  Phase

	propertyStart int
	examplesStart int
	parentStart   int
	blockStart    int

	described bool
	scanning  bool
	err       error
}

// Begin starts scraping the doc tree of decl. It reports false when decl is
// not the unit's top-level declaration; such documentation is never scraped.
func (s *Scraper) Begin(unit Unit, decl Declaration, root *doctree.Node) (*State, bool) {
	if !decl.TopLevel || decl.Name != unit.ExpectedName {
		return nil, false
	}

	m := meta.New()
	m.Name = ModuleName(decl.Name)
	m.FullyQualifiedName = unit.FullyQualifiedName()
	m.Kind = s.Kind(decl.Name)

	return &State{
		cfg:           &s.cfg,
		log:           s.log.With().Str("module", m.FullyQualifiedName).Logger(),
		root:          root,
		module:        m,
		phase:         DescriptionPhase,
		propertyStart: -1,
		examplesStart: -1,
		parentStart:   -1,
		blockStart:    -1,
		scanning:      true,
	}, true
}

// Phase returns the current phase.
func (st *State) Phase() Phase {
	return st.phase
}

func (st *State) setPhase(p Phase, top int) {
	if st.phase != p {
		st.log.Debug().Str("from", st.phase.String()).Str("to", p.String()).Int("top", top).Msg("phase change")
	}
	st.phase = p
}

// Visit processes one node. At the first block tag it returns
// doctree.SkipRest, since nothing after it is scraped. After the first error
// the state keeps returning that error.
func (st *State) Visit(v doctree.Visit) error {
	if st.err != nil {
		return st.err
	}
	if !st.scanning {
		return doctree.SkipRest
	}

	switch v.Node.Kind {
	case doctree.BlockTag:
		st.scanning = false
		if st.blockStart < 0 {
			st.blockStart = v.Top
		}
		return doctree.SkipRest
	case doctree.Paragraph:
		st.err = st.visitParagraph(v)
	case doctree.ListItem:
		st.err = st.visitListItem(v)
	}
	return st.err
}

func (st *State) visitParagraph(v doctree.Visit) error {
	switch ClassifyParagraph(v.Node) {
	case ParentSection:
		parent, ok := tagText(v.Node.FirstChild(doctree.InlineTag, 0))
		if !ok || parent == "" {
			return malformed("parent", v.Top, "no parent tag")
		}
		st.module.Parent = parent
		st.setPhase(ParentPhase, v.Top)
		if st.parentStart < 0 {
			st.parentStart = v.Top
		}
	case ViolationSection:
		st.setPhase(ViolationPhase, v.Top)
	case ExamplesSection:
		if st.examplesStart < 0 {
			st.examplesStart = v.Top
		}
	}
	return nil
}

func (st *State) visitListItem(v doctree.Visit) error {
	li := v.Node
	if IsPropertyItem(li) {
		st.setPhase(PropertyPhase, v.Top)
		if st.propertyStart < 0 {
			st.propertyStart = v.Top
		}
		if !st.described {
			st.commitDescription(st.propertyStart)
		}

		p, err := ExtractProperty(li, st.cfg.NoDefaultSentinels)
		if err != nil {
			return err
		}
		if err := st.module.AddProperty(p); err != nil {
			return malformed("property", v.Top, "%v", err)
		}
		return nil
	}

	// Outside the violation section a list item that opens no property is
	// ignored.
	if st.phase == ViolationPhase {
		key, ok := tagText(li.FirstChild(doctree.InlineTag, 0))
		if !ok || key == "" {
			return malformed("message-key", v.Top, "no key tag")
		}
		st.module.AddMessageKey(key)
	}
	return nil
}

// commitDescription sets the description to the prose before boundary. It
// runs at most once per declaration.
func (st *State) commitDescription(boundary int) {
	st.module.Description = Reconstruct(st.root, 0, boundary-1)
	st.described = true
}

// boundary is the root index where descriptive prose ends. With no section
// boundary set, prose stops at the first block tag rather than the end of the
// tree, so @since and friends never leak into the description.
func (st *State) boundary() int {
	for _, idx := range []int{st.propertyStart, st.examplesStart, st.parentStart, st.blockStart} {
		if idx >= 0 {
			return idx
		}
	}
	return len(st.root.Children)
}

// Finish completes the record. It returns the first error seen by Visit, in
// which case no record is produced.
func (st *State) Finish() (*meta.Module, error) {
	if st.err != nil {
		return nil, st.err
	}
	if !st.described {
		st.commitDescription(st.boundary())
	}
	return st.module, nil
}

// Scrape runs a whole declaration through Begin, Visit and Finish.
func (s *Scraper) Scrape(unit Unit, decl Declaration, root *doctree.Node) (*meta.Module, error) {
	st, ok := s.Begin(unit, decl, root)
	if !ok {
		return nil, ErrNotTopLevel
	}
	if err := doctree.Walk(root, st.Visit); err != nil {
		return nil, err
	}
	return st.Finish()
}

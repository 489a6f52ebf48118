// Package runner drives scraping over many source files.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/chriserin/metascrape/internal/codec"
	"github.com/chriserin/metascrape/internal/doctree"
	"github.com/chriserin/metascrape/internal/meta"
	"github.com/chriserin/metascrape/internal/parser"
	"github.com/chriserin/metascrape/internal/scraper"
)

// ErrNoDeclaration means a file has no documented top-level declaration
// named after it.
var ErrNoDeclaration = errors.New("no documented top-level declaration")

type Options struct {
	OutputDir string
	Layout    codec.Layout
	Workers   int
}

// Result is the outcome for one source file. Module and Output are set only
// when a record was written.
type Result struct {
	Path        string
	Module      *meta.Module
	Output      string
	Err         error
	ParseErrors []parser.ParseError
}

// Skipped reports whether the file simply had nothing to scrape.
func (r Result) Skipped() bool {
	return errors.Is(r.Err, ErrNoDeclaration)
}

// Failed reports whether the file had a real error.
func (r Result) Failed() bool {
	return r.Err != nil && !r.Skipped()
}

type Runner struct {
	scraper *scraper.Scraper
	opts    Options
	log     zerolog.Logger
}

func New(s *scraper.Scraper, opts Options, log zerolog.Logger) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Layout == "" {
		opts.Layout = codec.PackageLayout
	}
	return &Runner{scraper: s, opts: opts, log: log}
}

// Run scrapes files concurrently, at most Workers at a time. A failing file
// never stops the others; only cancelling ctx does, in which case files not
// yet started carry ctx's error.
func (r *Runner) Run(ctx context.Context, files []string) []Result {
	results := make([]Result, len(files))
	for i, path := range files {
		results[i] = Result{Path: path, Err: context.Canceled}
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(r.opts.Workers)

	for i, path := range files {
		if ctx.Err() != nil {
			break
		}
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return err
			}
			results[i] = r.ScrapeFile(path)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		r.log.Warn().Err(err).Msg("scrape interrupted")
	}
	return results
}

// ScrapeFile parses one file, scrapes its top-level declaration and writes
// the record.
func (r *Runner) ScrapeFile(path string) Result {
	res := Result{Path: path}
	log := r.log.With().Str("file", path).Logger()

	content, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	pf := parser.ParseFile(path, content)
	res.ParseErrors = pf.Errors
	for _, pe := range pf.Errors {
		log.Warn().Int("line", pe.Line).Msg(pe.Message)
	}

	m, err := r.scrape(pf, log)
	if err != nil {
		res.Err = err
		return res
	}

	out := codec.OutputPath(r.opts.OutputDir, m, r.opts.Layout)
	if err := codec.WriteFile(out, m); err != nil {
		res.Err = err
		return res
	}
	log.Debug().Str("output", out).Int("properties", len(m.Properties)).Msg("wrote metadata")

	res.Module = m
	res.Output = out
	return res
}

// scrape offers every documented declaration to the scraper, which only
// accepts the top-level one named after the file.
func (r *Runner) scrape(pf *parser.ParsedFile, log zerolog.Logger) (*meta.Module, error) {
	unit := scraper.Unit{Path: pf.Path, Package: pf.Package, ExpectedName: pf.Name}

	for _, d := range pf.Declarations {
		if d.Doc == nil {
			continue
		}
		decl := scraper.Declaration{Name: d.Name, TopLevel: d.TopLevel}
		st, ok := r.scraper.Begin(unit, decl, d.Doc)
		if !ok {
			log.Debug().Str("declaration", d.Name).Msg("not the top-level declaration")
			continue
		}
		if err := doctree.Walk(d.Doc, st.Visit); err != nil {
			return nil, fmt.Errorf("%s: %w", d.Name, err)
		}
		return st.Finish()
	}
	return nil, fmt.Errorf("%w named %s", ErrNoDeclaration, pf.Name)
}

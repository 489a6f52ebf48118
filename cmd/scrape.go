package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/config"
	"github.com/chriserin/metascrape/internal/runner"
	"github.com/chriserin/metascrape/internal/scraper"
	"github.com/chriserin/metascrape/internal/ui"
)

var scrapeOutFlag string

var scrapeCmd = &cobra.Command{
	Use:   "scrape <path>",
	Short: "Scrape module metadata from java sources",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cmd.ErrOrStderr(), cfg)
		return RunScrape(cmd.Context(), cmd.OutOrStdout(), cfg, log, args[0], scrapeOutFlag)
	},
}

func init() {
	scrapeCmd.Flags().StringVar(&scrapeOutFlag, "out", "", "Output directory (default output.dir)")
	rootCmd.AddCommand(scrapeCmd)
}

func newRunner(cfg *config.Config, log zerolog.Logger, outDir string) *runner.Runner {
	s := scraper.New(cfg.Scraper(), scraper.WithLogger(log))
	return runner.New(s, cfg.RunnerOptions(outDir), log)
}

// RunScrape scrapes path, a single .java file or a source root, and writes
// one record per module.
func RunScrape(ctx context.Context, w io.Writer, cfg *config.Config, log zerolog.Logger, path, outDir string) error {
	files, err := runner.Discover(path, cfg.RunnerSources())
	if err != nil {
		return err
	}
	log.Debug().Int("files", len(files)).Str("path", path).Msg("discovered sources")

	results := newRunner(cfg, log, outDir).Run(ctx, files)

	written, skipped, failed := 0, 0, 0
	for _, res := range results {
		reportResult(w, res)
		switch {
		case res.Failed():
			failed++
		case res.Skipped():
			skipped++
		default:
			written++
		}
	}
	ui.ScrapeSummary(w, written, skipped, failed)

	if err := ctx.Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func reportResult(w io.Writer, res runner.Result) {
	switch {
	case res.Failed():
		ui.ErrLine(w, res.Path, res.Err)
	case res.Skipped():
		ui.SkipLine(w, res.Path, res.Err.Error())
	default:
		ui.OkLine(w, res.Path, res.Output)
	}
}

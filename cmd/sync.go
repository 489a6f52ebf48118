package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/codec"
	"github.com/chriserin/metascrape/internal/config"
	"github.com/chriserin/metascrape/internal/db"
	"github.com/chriserin/metascrape/internal/ui"
)

var syncCmd = &cobra.Command{
	Use:   "sync [dir]",
	Short: "Load metadata records into the index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := ""
		if len(args) == 1 {
			dir = args[0]
		}
		return RunSync(cmd.OutOrStdout(), cfg, dir)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

// RunSync indexes every record under dir, or under output.dir when dir is
// empty. Modules indexed from dir whose record is gone are removed unless a
// record failed to decode.
func RunSync(w io.Writer, cfg *config.Config, dir string) error {
	if err := requireInit(); err != nil {
		return err
	}
	if dir == "" {
		dir = cfg.Output.Dir
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("reading records: %w", err)
	}

	sqlDB, err := db.Open(cfg.Index.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	entries, errs := codec.ReadDir(dir)
	for _, fe := range errs {
		ui.ErrLine(w, fe.Path, fe.Err)
	}

	keep := make(map[string]bool, len(entries))
	count := 0
	for _, e := range entries {
		if keep[e.Module.FullyQualifiedName] {
			ui.ErrLine(w, e.Path, fmt.Errorf("duplicate module %s", e.Module.FullyQualifiedName))
			continue
		}
		keep[e.Module.FullyQualifiedName] = true

		change, err := db.UpsertModule(sqlDB, e.Module, e.Path)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", e.Path, err)
		}
		switch change {
		case db.Inserted:
			ui.NewLine(w, e.Path)
		case db.Updated:
			ui.UpdLine(w, e.Path)
		default:
			ui.TrkLine(w, e.Path)
		}
		count++
	}

	if len(errs) > 0 {
		ui.SummaryLine(w, count)
		return fmt.Errorf("%d records could not be read", len(errs))
	}

	removed, err := db.Prune(sqlDB, dir, keep)
	if err != nil {
		return fmt.Errorf("pruning index: %w", err)
	}
	for _, name := range removed {
		ui.DelLine(w, name)
	}

	ui.SummaryLine(w, count)
	return nil
}

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/config"
	"github.com/chriserin/metascrape/internal/db"
	"github.com/chriserin/metascrape/internal/meta"
	"github.com/chriserin/metascrape/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show indexed module counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return RunStatus(cmd.OutOrStdout(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func RunStatus(w io.Writer, cfg *config.Config) error {
	if err := requireInit(); err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.Index.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	counts, err := db.CountByKind(sqlDB)
	if err != nil {
		return err
	}

	total := 0
	for _, n := range counts {
		total += n
	}
	fmt.Fprintf(w, "Modules: %d\n", total)

	for _, k := range []meta.Kind{meta.Check, meta.Filter, meta.FileFilter} {
		if n := counts[k]; n > 0 {
			ui.StatusLine(w, k.String(), n)
		}
	}
	return nil
}

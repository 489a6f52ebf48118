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

var kindFlag string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return RunList(cmd.OutOrStdout(), cfg, kindFlag)
	},
}

func init() {
	listCmd.Flags().StringVar(&kindFlag, "kind", "", "Filter by kind (check, filter, file-filter)")
	rootCmd.AddCommand(listCmd)
}

func RunList(w io.Writer, cfg *config.Config, kindFilter string) error {
	var kind *meta.Kind
	if kindFilter != "" {
		k, err := meta.ParseKind(kindFilter)
		if err != nil {
			return err
		}
		kind = &k
	}

	if err := requireInit(); err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.Index.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	rows, err := db.ListModules(sqlDB, kind)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}

	// Compute column widths
	nameWidth, kindWidth := 0, 0
	for _, r := range rows {
		if len(r.Name) > nameWidth {
			nameWidth = len(r.Name)
		}
		if k := r.Kind.String(); len(k) > kindWidth {
			kindWidth = len(k)
		}
	}

	for _, r := range rows {
		ui.ListRow(w, r.Name, r.Kind.String(), r.Parent, r.Properties, r.MessageKeys, nameWidth, kindWidth)
	}
	return nil
}

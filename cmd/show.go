package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/config"
	"github.com/chriserin/metascrape/internal/db"
	"github.com/chriserin/metascrape/internal/ui"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a module by name or fully qualified name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return RunShow(cmd.OutOrStdout(), cfg, args[0])
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}

func RunShow(w io.Writer, cfg *config.Config, name string) error {
	if err := requireInit(); err != nil {
		return err
	}

	sqlDB, err := db.Open(cfg.Index.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer sqlDB.Close()

	m, err := db.LoadModule(sqlDB, name)
	if errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("module %s not found", name)
	}
	if err != nil {
		return err
	}

	ui.ShowHeader(w, m)
	if m.Description != "" {
		fmt.Fprintln(w)
		ui.ShowDescription(w, m.Description)
	}

	if len(m.Properties) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Properties:")
		for _, p := range m.Properties {
			ui.PropertyLine(w, p)
		}
	}

	if len(m.MessageKeys) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Message keys:")
		for _, k := range m.MessageKeys {
			ui.KeyLine(w, k)
		}
	}
	return nil
}

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/codec"
	"github.com/chriserin/metascrape/internal/ui"
)

var errNotCanonical = errors.New("re-encoding changes the record")

var verifyCmd = &cobra.Command{
	Use:   "verify [dir]",
	Short: "Check that metadata records decode and re-encode unchanged",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dir := cfg.Output.Dir
		if len(args) == 1 {
			dir = args[0]
		}
		return RunVerify(cmd.OutOrStdout(), dir)
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// RunVerify decodes every record under dir and checks that encoding the
// result reproduces the file byte for byte.
func RunVerify(w io.Writer, dir string) error {
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("reading records: %w", err)
	}

	entries, errs := codec.ReadDir(dir)
	failed := len(errs)
	for _, fe := range errs {
		ui.ErrLine(w, fe.Path, fe.Err)
	}

	for _, e := range entries {
		if err := verifyRecord(e); err != nil {
			ui.ErrLine(w, e.Path, err)
			failed++
			continue
		}
		ui.TrkLine(w, e.Path)
	}

	ui.VerifySummary(w, len(entries)+len(errs)-failed, failed)
	if failed > 0 {
		return fmt.Errorf("%d records failed verification", failed)
	}
	return nil
}

func verifyRecord(e codec.Entry) error {
	onDisk, err := os.ReadFile(e.Path)
	if err != nil {
		return err
	}
	encoded, err := codec.Marshal(e.Module)
	if err != nil {
		return err
	}
	if !bytes.Equal(onDisk, encoded) {
		return errNotCanonical
	}
	return nil
}

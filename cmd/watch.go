package cmd

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/config"
	"github.com/chriserin/metascrape/internal/runner"
)

var watchOutFlag string

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Rescrape java sources as they change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cmd.ErrOrStderr(), cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return RunWatch(ctx, cmd.OutOrStdout(), cfg, log, args[0], watchOutFlag)
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchOutFlag, "out", "", "Output directory (default output.dir)")
	rootCmd.AddCommand(watchCmd)
}

// RunWatch rescrapes matching files under dir until ctx is done.
func RunWatch(ctx context.Context, w io.Writer, cfg *config.Config, log zerolog.Logger, dir, outDir string) error {
	r := newRunner(cfg, log, outDir)
	return r.Watch(ctx, dir, cfg.RunnerSources(), func(res runner.Result) {
		reportResult(w, res)
	})
}

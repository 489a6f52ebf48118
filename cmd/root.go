package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/config"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:          "metascrape",
	Short:        "metascrape: module metadata from javadoc",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.Path, "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the --log-level flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		if _, err := zerolog.ParseLevel(logLevel); err != nil {
			return nil, fmt.Errorf("invalid log level %q", logLevel)
		}
		cfg.Logging.Level = logLevel
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg *config.Config) zerolog.Logger {
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	return zerolog.New(out).Level(cfg.Level()).With().Timestamp().Logger()
}

func requireInit() error {
	if _, err := os.Stat(config.Dir); os.IsNotExist(err) {
		return fmt.Errorf("run `metascrape init` first")
	}
	return nil
}

// Package config loads .metascrape/config.yaml with environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/chriserin/metascrape/internal/codec"
	"github.com/chriserin/metascrape/internal/runner"
	"github.com/chriserin/metascrape/internal/scraper"
)

const (
	Dir      = ".metascrape"
	FileName = "config.yaml"
)

// Path is the project configuration file.
var Path = filepath.Join(Dir, FileName)

type Config struct {
	Output  OutputConfig  `yaml:"output" mapstructure:"output"`
	Scrape  ScrapeConfig  `yaml:"scrape" mapstructure:"scrape"`
	Sources SourcesConfig `yaml:"sources" mapstructure:"sources"`
	Index   IndexConfig   `yaml:"index" mapstructure:"index"`
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
}

type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`
	Layout string `yaml:"layout" mapstructure:"layout"`
}

type ScrapeConfig struct {
	Workers            int      `yaml:"workers" mapstructure:"workers"`
	NoDefaultSentinels []string `yaml:"no_default_sentinels" mapstructure:"no_default_sentinels"`
	CheckOverrides     []string `yaml:"check_overrides" mapstructure:"check_overrides"`
}

type SourcesConfig struct {
	Folders         []string `yaml:"folders" mapstructure:"folders"`
	Suffixes        []string `yaml:"suffixes" mapstructure:"suffixes"`
	AllowedAbstract []string `yaml:"allowed_abstract" mapstructure:"allowed_abstract"`
}

type IndexConfig struct {
	DBPath string `yaml:"db_path" mapstructure:"db_path"`
}

type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	sc := scraper.DefaultConfig()
	src := runner.DefaultSources()
	return &Config{
		Output: OutputConfig{
			Dir:    "meta",
			Layout: string(codec.PackageLayout),
		},
		Scrape: ScrapeConfig{
			Workers:            4,
			NoDefaultSentinels: sc.NoDefaultSentinels,
			CheckOverrides:     sc.CheckOverrides,
		},
		Sources: SourcesConfig{
			Folders:         src.Folders,
			Suffixes:        src.Suffixes,
			AllowedAbstract: src.AllowedAbstract,
		},
		Index:   IndexConfig{DBPath: filepath.Join(Dir, "index.db")},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the project configuration from the working directory.
func Load() (*Config, error) {
	return LoadFromPath(Path)
}

// LoadFromPath reads path over the defaults. A missing file yields the
// defaults; METASCRAPE_* variables override both, e.g.
// METASCRAPE_SCRAPE_WORKERS=8.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())
	v.SetEnvPrefix("METASCRAPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see keys absent from
// the file.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("output.dir", d.Output.Dir)
	v.SetDefault("output.layout", d.Output.Layout)
	v.SetDefault("scrape.workers", d.Scrape.Workers)
	v.SetDefault("scrape.no_default_sentinels", d.Scrape.NoDefaultSentinels)
	v.SetDefault("scrape.check_overrides", d.Scrape.CheckOverrides)
	v.SetDefault("sources.folders", d.Sources.Folders)
	v.SetDefault("sources.suffixes", d.Sources.Suffixes)
	v.SetDefault("sources.allowed_abstract", d.Sources.AllowedAbstract)
	v.SetDefault("index.db_path", d.Index.DBPath)
	v.SetDefault("logging.level", d.Logging.Level)
}

func (c *Config) Validate() error {
	if _, err := codec.ParseLayout(c.Output.Layout); err != nil {
		return err
	}
	if c.Scrape.Workers < 1 {
		return fmt.Errorf("scrape.workers must be at least 1, got %d", c.Scrape.Workers)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}

// Write stores cfg at path as YAML.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (c *Config) Scraper() scraper.Config {
	return scraper.Config{
		NoDefaultSentinels: c.Scrape.NoDefaultSentinels,
		CheckOverrides:     c.Scrape.CheckOverrides,
	}
}

func (c *Config) RunnerSources() runner.Sources {
	return runner.Sources{
		Folders:         c.Sources.Folders,
		Suffixes:        c.Sources.Suffixes,
		AllowedAbstract: c.Sources.AllowedAbstract,
	}
}

// RunnerOptions builds runner options writing below outDir, or the
// configured directory when outDir is empty.
func (c *Config) RunnerOptions(outDir string) runner.Options {
	if outDir == "" {
		outDir = c.Output.Dir
	}
	layout, _ := codec.ParseLayout(c.Output.Layout)
	return runner.Options{
		OutputDir: outDir,
		Layout:    layout,
		Workers:   c.Scrape.Workers,
	}
}

// Level is the configured log level, info when unparsable.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Logging.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chriserin/metascrape/internal/config"
	"github.com/chriserin/metascrape/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize metascrape in the current directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunInit(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func RunInit(w io.Writer) error {
	// .metascrape/ directory
	_, err := os.Stat(config.Dir)
	dirExists := err == nil
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return fmt.Errorf("creating %s directory: %w", config.Dir, err)
	}
	if dirExists {
		fmt.Fprintln(w, config.Dir+"/ already exists")
	} else {
		fmt.Fprintln(w, config.Dir+"/ created")
	}

	// config
	if _, err := os.Stat(configPath); err == nil {
		fmt.Fprintln(w, configPath+" already exists")
	} else {
		if err := config.Write(configPath, config.Default()); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
		fmt.Fprintln(w, configPath+" created")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// database
	dbPath := cfg.Index.DBPath
	_, err = os.Stat(dbPath)
	dbExists := err == nil
	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	sqlDB.Close()
	if dbExists {
		fmt.Fprintln(w, dbPath+" already exists")
	} else {
		fmt.Fprintln(w, dbPath+" created")
	}

	// gitignore
	msgs, err := ensureGitignore(dbPath)
	if err != nil {
		return fmt.Errorf("updating .gitignore: %w", err)
	}
	for _, msg := range msgs {
		fmt.Fprintln(w, msg)
	}

	return nil
}

func ensureGitignore(entry string) ([]string, error) {
	data, err := os.ReadFile(".gitignore")
	if os.IsNotExist(err) {
		if err := os.WriteFile(".gitignore", []byte(entry+"\n"), 0o644); err != nil {
			return nil, err
		}
		return []string{".gitignore created", entry + " added to .gitignore"}, nil
	}
	if err != nil {
		return nil, err
	}

	lines := strings.Split(string(data), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == entry {
			return []string{entry + " already in .gitignore"}, nil
		}
	}

	content := string(data)
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}
	content += entry + "\n"

	if err := os.WriteFile(".gitignore", []byte(content), 0o644); err != nil {
		return nil, err
	}
	return []string{entry + " added to .gitignore"}, nil
}

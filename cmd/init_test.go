package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/metascrape/internal/config"
	"github.com/chriserin/metascrape/internal/db"
)

const goodSource = `package com.example;

/**
 * <p>
 * Does good things.
 * </p>
 * <ul>
 * <li>
 * Property {@code max} - the maximum.
 * Type is {@code int}.
 * Default value is {@code 3}.
 * </li>
 * </ul>
 * <p>
 * Parent is {@code com.puppycrawl.tools.checkstyle.TreeWalker}
 * </p>
 * <p>
 * Violation Message Keys:
 * </p>
 * <ul>
 * <li>
 * {@code good.max}
 * </li>
 * </ul>
 *
 * @since 1.0
 */
public class GoodCheck {}
`

const brokenSource = `package com.example;

/**
 * <ul>
 * <li>
 * Property {@code max} - no type marker here.
 * </li>
 * </ul>
 */
public class BrokenCheck {}
`

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(orig) })
	return dir
}

func runInit(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunInit(&buf))
	return buf.String()
}

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// runScrape scrapes src into the configured output directory.
func runScrape(t *testing.T, src string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, RunScrape(context.Background(), &buf, config.Default(), zerolog.Nop(), src, ""))
	return buf.String()
}

func TestInit_CreatesProjectDirectory(t *testing.T) {
	dir := inTempDir(t)
	out := runInit(t)

	info, err := os.Stat(filepath.Join(dir, ".metascrape"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Contains(t, out, ".metascrape/ created")
}

func TestInit_ProjectDirectoryAlreadyExists(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".metascrape"), 0o755))

	out := runInit(t)

	assert.Contains(t, out, ".metascrape/ already exists")
}

func TestInit_WritesDefaultConfig(t *testing.T) {
	inTempDir(t)
	out := runInit(t)

	assert.Contains(t, out, ".metascrape/config.yaml created")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInit_KeepsExistingConfig(t *testing.T) {
	inTempDir(t)
	custom := config.Default()
	custom.Output.Dir = "generated"
	require.NoError(t, config.Write(config.Path, custom))

	out := runInit(t)

	assert.Contains(t, out, ".metascrape/config.yaml already exists")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, "generated", cfg.Output.Dir)
}

func TestInit_HonoursConfigFlag(t *testing.T) {
	inTempDir(t)
	orig := configPath
	t.Cleanup(func() { configPath = orig })
	configPath = filepath.Join("conf", "metascrape.yaml")

	custom := config.Default()
	custom.Index.DBPath = filepath.Join("conf", "modules.db")
	require.NoError(t, config.Write(configPath, custom))

	out := runInit(t)

	assert.Contains(t, out, configPath+" already exists")
	assert.Contains(t, out, custom.Index.DBPath+" created")
	assert.FileExists(t, custom.Index.DBPath)
	assert.NoFileExists(t, config.Path)
}

func TestInit_WritesConfigAtFlagPath(t *testing.T) {
	inTempDir(t)
	orig := configPath
	t.Cleanup(func() { configPath = orig })
	configPath = "metascrape.yaml"

	out := runInit(t)

	assert.Contains(t, out, "metascrape.yaml created")
	cfg, err := config.LoadFromPath("metascrape.yaml")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestInit_InitializesSQLiteDatabase(t *testing.T) {
	dir := inTempDir(t)
	out := runInit(t)

	dbPath := filepath.Join(dir, ".metascrape", "index.db")
	_, err := os.Stat(dbPath)
	require.NoError(t, err)

	sqlDB, err := db.Open(dbPath)
	require.NoError(t, err)
	defer sqlDB.Close()

	var mode string
	require.NoError(t, sqlDB.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)
	assert.Contains(t, out, ".metascrape/index.db created")
}

func TestInit_DatabaseAlreadyExists(t *testing.T) {
	inTempDir(t)
	runInit(t)

	out := runInit(t)
	assert.Contains(t, out, ".metascrape/index.db already exists")
}

func TestInit_AddsMigrationSystem(t *testing.T) {
	inTempDir(t)
	runInit(t)

	sqlDB, err := db.Open(".metascrape/index.db")
	require.NoError(t, err)
	defer sqlDB.Close()

	var version int
	require.NoError(t, sqlDB.QueryRow("SELECT version FROM schema_version").Scan(&version))
	assert.Equal(t, len(db.All), version)
}

func TestInit_AddsToGitignore(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("target\n"), 0o644))

	out := runInit(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(data), ".metascrape/index.db\n")
	assert.Contains(t, string(data), "target\n")
	assert.Contains(t, out, ".metascrape/index.db added to .gitignore")
}

func TestInit_GitignoreAlreadyHasEntry(t *testing.T) {
	dir := inTempDir(t)
	original := "target\n.metascrape/index.db\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(original), 0o644))

	out := runInit(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
	assert.Contains(t, out, ".metascrape/index.db already in .gitignore")
}

func TestInit_GitignoreWithoutTrailingNewline(t *testing.T) {
	dir := inTempDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("target"), 0o644))

	runInit(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "target\n.metascrape/index.db\n", string(data))
}

func TestInit_NoGitignoreExists(t *testing.T) {
	dir := inTempDir(t)
	out := runInit(t)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, ".metascrape/index.db\n", string(data))
	assert.Contains(t, out, ".gitignore created")
	assert.Contains(t, out, ".metascrape/index.db added to .gitignore")
}

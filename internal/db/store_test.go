package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chriserin/metascrape/internal/meta"
)

func openIndex(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func module(name, fqn string, kind meta.Kind) *meta.Module {
	m := meta.New()
	m.Name = name
	m.FullyQualifiedName = fqn
	m.Kind = kind
	m.Description = name + " description"
	return m
}

func emptyBlock() *meta.Module {
	m := module("EmptyBlock", "com.example.blocks.EmptyBlockCheck", meta.Check)
	m.Parent = "TreeWalker"
	m.Properties = []meta.Property{
		{Name: "option", Type: "BlockOption", DefaultValue: meta.StringPtr("statement"), Description: "the policy."},
		{Name: "format", Type: "Pattern", ValidationType: "regexp", Description: "no default."},
		{Name: "blank", Type: "String", DefaultValue: meta.StringPtr(""), Description: ""},
	}
	m.MessageKeys = []string{"block.empty", "block.noStatement"}
	return m
}

func TestUpsertModule_InsertLoadRoundTrip(t *testing.T) {
	db := openIndex(t)
	m := emptyBlock()

	change, err := UpsertModule(db, m, "meta/EmptyBlockCheck.xml")
	require.NoError(t, err)
	assert.Equal(t, Inserted, change)

	back, err := LoadModule(db, "com.example.blocks.EmptyBlockCheck")
	require.NoError(t, err)
	assert.Equal(t, m, back)

	byName, err := LoadModule(db, "EmptyBlock")
	require.NoError(t, err)
	assert.Equal(t, m, byName)
}

func TestUpsertModule_UnchangedAndUpdated(t *testing.T) {
	db := openIndex(t)
	m := emptyBlock()
	_, err := UpsertModule(db, m, "a.xml")
	require.NoError(t, err)

	change, err := UpsertModule(db, emptyBlock(), "a.xml")
	require.NoError(t, err)
	assert.Equal(t, Unchanged, change)

	m.Properties = m.Properties[:1]
	m.MessageKeys = []string{"block.other"}
	change, err = UpsertModule(db, m, "a.xml")
	require.NoError(t, err)
	assert.Equal(t, Updated, change)

	back, err := LoadModule(db, "EmptyBlock")
	require.NoError(t, err)
	assert.Equal(t, m, back)

	change, err = UpsertModule(db, m, "b.xml")
	require.NoError(t, err)
	assert.Equal(t, Updated, change)
}

func TestLoadModule_NotFoundAndAmbiguous(t *testing.T) {
	db := openIndex(t)
	_, err := LoadModule(db, "Missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = UpsertModule(db, module("Dup", "a.DupCheck", meta.Check), "")
	require.NoError(t, err)
	_, err = UpsertModule(db, module("Dup", "b.DupCheck", meta.Check), "")
	require.NoError(t, err)

	_, err = LoadModule(db, "Dup")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)

	m, err := LoadModule(db, "b.DupCheck")
	require.NoError(t, err)
	assert.Equal(t, "b.DupCheck", m.FullyQualifiedName)
}

func TestListModules(t *testing.T) {
	db := openIndex(t)
	_, err := UpsertModule(db, emptyBlock(), "eb.xml")
	require.NoError(t, err)
	_, err = UpsertModule(db, module("SuppressionFilter", "f.SuppressionFilter", meta.Filter), "sf.xml")
	require.NoError(t, err)
	_, err = UpsertModule(db, module("BeforeExecutionExclusionFileFilter", "f.BeforeExecutionExclusionFileFilter", meta.FileFilter), "")
	require.NoError(t, err)

	all, err := ListModules(db, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "BeforeExecutionExclusionFileFilter", all[0].Name)
	assert.Equal(t, "EmptyBlock", all[1].Name)
	assert.Equal(t, 3, all[1].Properties)
	assert.Equal(t, 2, all[1].MessageKeys)
	assert.Equal(t, "TreeWalker", all[1].Parent)
	assert.Equal(t, "eb.xml", all[1].RecordPath)

	filter := meta.Filter
	filters, err := ListModules(db, &filter)
	require.NoError(t, err)
	require.Len(t, filters, 1)
	assert.Equal(t, "SuppressionFilter", filters[0].Name)
	assert.Equal(t, meta.Filter, filters[0].Kind)
}

func TestCountByKind(t *testing.T) {
	db := openIndex(t)
	counts, err := CountByKind(db)
	require.NoError(t, err)
	assert.Empty(t, counts)

	_, err = UpsertModule(db, module("A", "x.ACheck", meta.Check), "")
	require.NoError(t, err)
	_, err = UpsertModule(db, module("B", "x.BCheck", meta.Check), "")
	require.NoError(t, err)
	_, err = UpsertModule(db, module("CFilter", "x.CFilter", meta.Filter), "")
	require.NoError(t, err)

	counts, err = CountByKind(db)
	require.NoError(t, err)
	assert.Equal(t, map[meta.Kind]int{meta.Check: 2, meta.Filter: 1}, counts)
}

func TestPrune(t *testing.T) {
	db := openIndex(t)
	_, err := UpsertModule(db, emptyBlock(), "")
	require.NoError(t, err)
	_, err = UpsertModule(db, module("Gone", "x.GoneCheck", meta.Check), "")
	require.NoError(t, err)

	removed, err := Prune(db, "", map[string]bool{"com.example.blocks.EmptyBlockCheck": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.GoneCheck"}, removed)

	rows, err := ListModules(db, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	var orphans int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM properties WHERE module_id NOT IN (SELECT id FROM modules)`).Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestPrune_OnlyUnderDirectory(t *testing.T) {
	db := openIndex(t)
	_, err := UpsertModule(db, module("A", "x.ACheck", meta.Check), filepath.Join("meta", "x", "ACheck.xml"))
	require.NoError(t, err)
	_, err = UpsertModule(db, module("B", "x.BCheck", meta.Check), filepath.Join("meta", "extra", "x", "BCheck.xml"))
	require.NoError(t, err)
	_, err = UpsertModule(db, module("C", "x.CCheck", meta.Check), filepath.Join("metadata", "CCheck.xml"))
	require.NoError(t, err)

	removed, err := Prune(db, filepath.Join("meta", "extra"), map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.BCheck"}, removed)

	removed, err = Prune(db, "meta", map[string]bool{})
	require.NoError(t, err)
	assert.Equal(t, []string{"x.ACheck"}, removed)

	rows, err := ListModules(db, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "x.CCheck", rows[0].FullyQualifiedName)
}

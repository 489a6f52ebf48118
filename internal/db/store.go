package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/chriserin/metascrape/internal/meta"
)

// ErrNotFound is returned when no indexed module matches.
var ErrNotFound = errors.New("module not found")

// Change describes what UpsertModule did.
type Change int

const (
	Inserted Change = iota
	Updated
	Unchanged
)

// ModuleRow is the summary of one indexed module.
type ModuleRow struct {
	Name               string
	FullyQualifiedName string
	Kind               meta.Kind
	Parent             string
	Properties         int
	MessageKeys        int
	RecordPath         string
}

// UpsertModule stores m, keyed by its fully qualified name, replacing any
// earlier version of the record.
func UpsertModule(db *sql.DB, m *meta.Module, recordPath string) (Change, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM modules WHERE fully_qualified_name = ?`, m.FullyQualifiedName).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		return Inserted, insertModule(db, m, recordPath)
	case err != nil:
		return 0, fmt.Errorf("querying %s: %w", m.FullyQualifiedName, err)
	}

	existing, err := loadByID(db, id)
	if err != nil {
		return 0, err
	}
	var path string
	if err := db.QueryRow(`SELECT record_path FROM modules WHERE id = ?`, id).Scan(&path); err != nil {
		return 0, fmt.Errorf("querying %s: %w", m.FullyQualifiedName, err)
	}
	if path == recordPath && reflect.DeepEqual(existing, m) {
		return Unchanged, nil
	}
	return Updated, updateModule(db, id, m, recordPath)
}

func insertModule(db *sql.DB, m *meta.Module, recordPath string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	res, err := tx.Exec(`INSERT INTO modules (name, fully_qualified_name, kind, parent, description, record_path)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.Name, m.FullyQualifiedName, m.Kind.String(), m.Parent, m.Description, recordPath)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("inserting %s: %w", m.FullyQualifiedName, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}
	if err := insertChildren(tx, id, m); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func updateModule(db *sql.DB, id int64, m *meta.Module, recordPath string) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	_, err = tx.Exec(`UPDATE modules SET name = ?, kind = ?, parent = ?, description = ?, record_path = ?,
		updated_at = datetime('now') WHERE id = ?`,
		m.Name, m.Kind.String(), m.Parent, m.Description, recordPath, id)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("updating %s: %w", m.FullyQualifiedName, err)
	}
	if err := deleteChildren(tx, id); err != nil {
		tx.Rollback()
		return err
	}
	if err := insertChildren(tx, id, m); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func deleteChildren(tx *sql.Tx, id int64) error {
	if _, err := tx.Exec(`DELETE FROM properties WHERE module_id = ?`, id); err != nil {
		return fmt.Errorf("deleting properties: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM message_keys WHERE module_id = ?`, id); err != nil {
		return fmt.Errorf("deleting message keys: %w", err)
	}
	return nil
}

func insertChildren(tx *sql.Tx, id int64, m *meta.Module) error {
	for i, p := range m.Properties {
		var def sql.NullString
		if p.DefaultValue != nil {
			def = sql.NullString{String: *p.DefaultValue, Valid: true}
		}
		_, err := tx.Exec(`INSERT INTO properties (module_id, position, name, type, validation_type, default_value, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, i, p.Name, p.Type, p.ValidationType, def, p.Description)
		if err != nil {
			return fmt.Errorf("inserting property %s: %w", p.Name, err)
		}
	}
	for i, k := range m.MessageKeys {
		if _, err := tx.Exec(`INSERT INTO message_keys (module_id, position, key) VALUES (?, ?, ?)`, id, i, k); err != nil {
			return fmt.Errorf("inserting message key %s: %w", k, err)
		}
	}
	return nil
}

// ListModules returns indexed modules ordered by name, optionally limited to
// one kind.
func ListModules(db *sql.DB, kind *meta.Kind) ([]ModuleRow, error) {
	query := `SELECT m.name, m.fully_qualified_name, m.kind, m.parent, m.record_path,
		(SELECT COUNT(*) FROM properties p WHERE p.module_id = m.id),
		(SELECT COUNT(*) FROM message_keys k WHERE k.module_id = m.id)
		FROM modules m`
	var args []any
	if kind != nil {
		query += ` WHERE m.kind = ?`
		args = append(args, kind.String())
	}
	query += ` ORDER BY m.name, m.fully_qualified_name`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var out []ModuleRow
	for rows.Next() {
		var r ModuleRow
		var k string
		if err := rows.Scan(&r.Name, &r.FullyQualifiedName, &k, &r.Parent, &r.RecordPath, &r.Properties, &r.MessageKeys); err != nil {
			return nil, err
		}
		if r.Kind, err = meta.ParseKind(k); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadModule rebuilds a module from the index, looked up by fully qualified
// name or, failing that, by simple name. A simple name shared by several
// modules is an error.
func LoadModule(db *sql.DB, name string) (*meta.Module, error) {
	var id int64
	err := db.QueryRow(`SELECT id FROM modules WHERE fully_qualified_name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		rows, err := db.Query(`SELECT id FROM modules WHERE name = ?`, name)
		if err != nil {
			return nil, err
		}
		var ids []int64
		for rows.Next() {
			var x int64
			if err := rows.Scan(&x); err != nil {
				rows.Close()
				return nil, err
			}
			ids = append(ids, x)
		}
		rows.Close()
		switch len(ids) {
		case 0:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		case 1:
			id = ids[0]
		default:
			return nil, fmt.Errorf("%s is ambiguous: %d modules share the name", name, len(ids))
		}
	} else if err != nil {
		return nil, err
	}
	return loadByID(db, id)
}

func loadByID(db *sql.DB, id int64) (*meta.Module, error) {
	m := meta.New()
	var kind string
	err := db.QueryRow(`SELECT name, fully_qualified_name, kind, parent, description FROM modules WHERE id = ?`, id).
		Scan(&m.Name, &m.FullyQualifiedName, &kind, &m.Parent, &m.Description)
	if err != nil {
		return nil, fmt.Errorf("loading module %d: %w", id, err)
	}
	if m.Kind, err = meta.ParseKind(kind); err != nil {
		return nil, err
	}

	rows, err := db.Query(`SELECT name, type, validation_type, default_value, description
		FROM properties WHERE module_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p meta.Property
		var def sql.NullString
		if err := rows.Scan(&p.Name, &p.Type, &p.ValidationType, &def, &p.Description); err != nil {
			rows.Close()
			return nil, err
		}
		if def.Valid {
			p.DefaultValue = meta.StringPtr(def.String)
		}
		m.Properties = append(m.Properties, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	keys, err := db.Query(`SELECT key FROM message_keys WHERE module_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer keys.Close()
	for keys.Next() {
		var k string
		if err := keys.Scan(&k); err != nil {
			return nil, err
		}
		m.MessageKeys = append(m.MessageKeys, k)
	}
	return m, keys.Err()
}

// CountByKind returns the number of indexed modules per kind.
func CountByKind(db *sql.DB) (map[meta.Kind]int, error) {
	rows, err := db.Query(`SELECT kind, COUNT(*) FROM modules GROUP BY kind`)
	if err != nil {
		return nil, fmt.Errorf("counting modules: %w", err)
	}
	defer rows.Close()

	counts := map[meta.Kind]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		k, err := meta.ParseKind(kind)
		if err != nil {
			return nil, err
		}
		counts[k] = n
	}
	return counts, rows.Err()
}

// Prune deletes modules whose record lies under dir and whose fully qualified
// name is not in keep, returning the deleted names in order. An empty dir
// covers every module.
func Prune(db *sql.DB, dir string, keep map[string]bool) ([]string, error) {
	rows, err := db.Query(`SELECT id, fully_qualified_name, record_path FROM modules`)
	if err != nil {
		return nil, err
	}
	stale := map[string]int64{}
	for rows.Next() {
		var id int64
		var fqn, path string
		if err := rows.Scan(&id, &fqn, &path); err != nil {
			rows.Close()
			return nil, err
		}
		if !keep[fqn] && (dir == "" || within(dir, path)) {
			stale[fqn] = id
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var removed []string
	for fqn := range stale {
		removed = append(removed, fqn)
	}
	sort.Strings(removed)

	for _, fqn := range removed {
		tx, err := db.Begin()
		if err != nil {
			return nil, err
		}
		if err := deleteChildren(tx, stale[fqn]); err != nil {
			tx.Rollback()
			return nil, err
		}
		if _, err := tx.Exec(`DELETE FROM modules WHERE id = ?`, stale[fqn]); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("deleting %s: %w", fqn, err)
		}
		if err := tx.Commit(); err != nil {
			return nil, err
		}
	}
	return removed, nil
}

func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

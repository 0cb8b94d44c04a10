package indexdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"voxelengine.dev/internal/assets"
	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/persistence/backup"
)

const schemaVersion = "1"

// SQLiteIndex is a queryable view of the project's textures, block assets and tool runs.
// The files on disk stay the source of truth; the index is rebuilt by ReplaceInventory.
type SQLiteIndex struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteIndex{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS textures (
			tile_index INTEGER PRIMARY KEY,
			file TEXT NOT NULL,
			path TEXT NOT NULL,
			present INTEGER NOT NULL,
			guid TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_textures_guid ON textures(guid);`,
		`CREATE TABLE IF NOT EXISTS blocks (
			name TEXT PRIMARY KEY,
			block_id INTEGER NOT NULL,
			asset_path TEXT NOT NULL,
			present INTEGER NOT NULL,
			guid TEXT,
			top INTEGER NOT NULL,
			side INTEGER NOT NULL,
			bottom INTEGER NOT NULL,
			top_guid TEXT,
			side_guid TEXT,
			bottom_guid TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_blocks_guid ON blocks(guid);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run TEXT PRIMARY KEY,
			tool TEXT NOT NULL,
			created_at TEXT NOT NULL,
			files INTEGER NOT NULL,
			changes INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// UpsertCatalogs stores the raw catalog files and their digests.
func (s *SQLiteIndex) UpsertCatalogs(configDir string, cats *catalogs.Catalogs) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	read := func(name, file, digest string) error {
		b, err := os.ReadFile(filepath.Join(configDir, file))
		if err != nil {
			return err
		}
		rows = append(rows, kv{name: name, digest: digest, json: b})
		return nil
	}
	if err := read("textures", "textures.json", cats.Textures.Digest); err != nil {
		return err
	}
	if err := read("blocks", "blocks.json", cats.Blocks.Digest); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version',?)`, schemaVersion); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if !json.Valid(r.json) {
			return fmt.Errorf("%s: invalid json", r.name)
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReplaceInventory rebuilds the textures and blocks tables from a scan.
func (s *SQLiteIndex) ReplaceInventory(inv assets.Inventory) error {
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, q := range []string{`DELETE FROM textures`, `DELETE FROM blocks`} {
		if _, err := tx.Exec(q); err != nil {
			return err
		}
	}

	insTex, err := tx.Prepare(`INSERT INTO textures(tile_index,file,path,present,guid) VALUES(?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insTex.Close()
	for _, t := range inv.Textures {
		if _, err := insTex.Exec(t.Index, t.File, t.Path, boolInt(t.Present), nullString(t.GUID)); err != nil {
			return err
		}
	}

	insBlock, err := tx.Prepare(`INSERT INTO blocks(name,block_id,asset_path,present,guid,top,side,bottom,top_guid,side_guid,bottom_guid) VALUES(?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer insBlock.Close()
	for _, b := range inv.Blocks {
		if _, err := insBlock.Exec(
			b.Name, b.ID, b.AssetPath, boolInt(b.Present), nullString(b.GUID),
			b.Tiles[0], b.Tiles[1], b.Tiles[2],
			nullString(b.TextureGUIDs[0]), nullString(b.TextureGUIDs[1]), nullString(b.TextureGUIDs[2]),
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('indexed_at',?)`, time.Now().UTC().Format(time.RFC3339Nano)); err != nil {
		return err
	}
	return tx.Commit()
}

// RecordRun stores a summary of a backup run and the number of journaled changes.
func (s *SQLiteIndex) RecordRun(m backup.RunMeta, changes int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO runs(run,tool,created_at,files,changes) VALUES(?,?,?,?,?)`,
		m.Run, m.Tool, m.CreatedAt, len(m.Files), changes)
	return err
}

type Run struct {
	Run       string
	Tool      string
	CreatedAt string
	Files     int
	Changes   int
}

func (s *SQLiteIndex) Runs() ([]Run, error) {
	rows, err := s.db.Query(`SELECT run,tool,created_at,files,changes FROM runs ORDER BY run`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Run, &r.Tool, &r.CreatedAt, &r.Files, &r.Changes); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

const (
	KindTexture = "texture"
	KindBlock   = "block"
)

// Hit is an indexed asset owning a GUID.
type Hit struct {
	Kind  string
	Name  string
	Path  string
	Index int
}

// LookupGUID resolves a GUID to the texture or block asset that owns it.
func (s *SQLiteIndex) LookupGUID(guid string) ([]Hit, error) {
	rows, err := s.db.Query(`
		SELECT 'texture', file, path, tile_index FROM textures WHERE guid = ?
		UNION ALL
		SELECT 'block', name, asset_path, block_id FROM blocks WHERE guid = ?
		ORDER BY 1, 4`, guid, guid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Hit
	for rows.Next() {
		var h Hit
		if err := rows.Scan(&h.Kind, &h.Name, &h.Path, &h.Index); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// BlocksUsingTexture lists the blocks with tile on any face, in block id order.
func (s *SQLiteIndex) BlocksUsingTexture(tile int) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM blocks WHERE top = ? OR side = ? OR bottom = ? ORDER BY block_id`, tile, tile, tile)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

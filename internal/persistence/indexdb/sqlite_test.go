package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"voxelengine.dev/internal/assets"
	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/persistence/backup"
)

const grassGUID = "84f7b997588994941b26694bd273b8ab"

func testInventory() assets.Inventory {
	return assets.Inventory{
		Textures: []assets.TextureRecord{
			{Index: 1, File: "tile_1_grass_top.png", Path: "/p/tile_1_grass_top.png", Present: true, GUID: "00000000000000000000000000000002"},
			{Index: 2, File: "tile_2_dirt.png", Path: "/p/tile_2_dirt.png", Present: true, GUID: "00000000000000000000000000000003"},
			{Index: 26, File: "tile_26_grass_side.png", Path: "/p/tile_26_grass_side.png"},
		},
		Blocks: []assets.BlockRecord{
			{Name: "Block_Grass", ID: 1, AssetPath: "/b/Block_Grass.asset", Present: true, GUID: grassGUID, Tiles: [3]int{1, 26, 2}},
			{Name: "Block_Dirt", ID: 2, AssetPath: "/b/Block_Dirt.asset", Tiles: [3]int{2, 2, 2}},
			{Name: "Block_Snow", ID: 18, AssetPath: "/b/Block_Snow.asset", Tiles: [3]int{18, 30, 2}},
		},
	}
}

func TestSQLiteIndex_InventoryQueries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()

	if err := idx.ReplaceInventory(testInventory()); err != nil {
		t.Fatalf("ReplaceInventory: %v", err)
	}
	// Rebuilding must not duplicate rows.
	if err := idx.ReplaceInventory(testInventory()); err != nil {
		t.Fatalf("ReplaceInventory again: %v", err)
	}

	hits, err := idx.LookupGUID(grassGUID)
	if err != nil {
		t.Fatalf("LookupGUID: %v", err)
	}
	if len(hits) != 1 || hits[0].Kind != KindBlock || hits[0].Name != "Block_Grass" || hits[0].Index != 1 {
		t.Fatalf("hits: %+v", hits)
	}
	hits, err = idx.LookupGUID("00000000000000000000000000000003")
	if err != nil || len(hits) != 1 || hits[0].Kind != KindTexture || hits[0].Index != 2 {
		t.Fatalf("texture hit: %+v %v", hits, err)
	}
	if hits, _ := idx.LookupGUID("ffffffffffffffffffffffffffffffff"); len(hits) != 0 {
		t.Fatalf("unexpected hits: %+v", hits)
	}

	users, err := idx.BlocksUsingTexture(2)
	if err != nil {
		t.Fatalf("BlocksUsingTexture: %v", err)
	}
	if len(users) != 3 || users[0] != "Block_Grass" || users[2] != "Block_Snow" {
		t.Fatalf("users: %v", users)
	}
}

func TestSQLiteIndex_UpsertCatalogsAndRuns(t *testing.T) {
	configDir := filepath.Join("..", "..", "..", "configs")
	cats, err := catalogs.Load(configDir)
	if err != nil {
		t.Fatalf("catalogs.Load: %v", err)
	}
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.UpsertCatalogs(configDir, cats); err != nil {
		t.Fatalf("UpsertCatalogs: %v", err)
	}
	m := backup.RunMeta{Run: "20261018-120000.000000", Tool: "blockassets", CreatedAt: "2026-10-18T12:00:00Z", Files: []backup.Entry{{Seq: 1}}}
	if err := idx.RecordRun(m, 1); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	runs, err := idx.Runs()
	if err != nil || len(runs) != 1 || runs[0].Files != 1 || runs[0].Changes != 1 {
		t.Fatalf("runs: %+v %v", runs, err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var digest, version string
	if err := db.QueryRow(`SELECT digest FROM catalogs WHERE name='blocks'`).Scan(&digest); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if digest != cats.Blocks.Digest {
		t.Fatalf("digest mismatch: %q vs %q", digest, cats.Blocks.Digest)
	}
	if err := db.QueryRow(`SELECT value FROM meta WHERE key='schema_version'`).Scan(&version); err != nil || version != schemaVersion {
		t.Fatalf("schema_version: %q %v", version, err)
	}
}

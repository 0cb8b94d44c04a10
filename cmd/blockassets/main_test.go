package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"voxelengine.dev/internal/config"
	"voxelengine.dev/internal/persistence/backup"
	"voxelengine.dev/internal/persistence/indexdb"
)

func TestSplitList(t *testing.T) {
	got := splitList(" Water, Glass ,,Block_Sand ")
	want := []string{"Water", "Glass", "Block_Sand"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitList: %v", got)
	}
	if splitList("") != nil {
		t.Fatalf("empty list should be nil")
	}
}

func TestSession_DiscardsEmptyRunAndRecordsChanges(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	logger := log.New(io.Discard, "", 0)

	s := openSession(cfg, "assign", false, false)
	s.close(logger)
	runs, err := backup.ListRuns(cfg.DataPath("backups"))
	if err != nil || len(runs) != 0 {
		t.Fatalf("empty run should be discarded: %+v %v", runs, err)
	}

	target := filepath.Join(t.TempDir(), "Block_Stone.asset")
	if err := os.WriteFile(target, []byte("old\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s = openSession(cfg, "assign", false, false)
	if changed, err := s.writer.WriteFile(target, []byte("new\n")); err != nil || !changed {
		t.Fatalf("WriteFile: %v %v", changed, err)
	}
	s.close(logger)

	runs, err = backup.ListRuns(cfg.DataPath("backups"))
	if err != nil || len(runs) != 1 || len(runs[0].Files) != 1 {
		t.Fatalf("runs: %+v %v", runs, err)
	}
	idx, err := indexdb.OpenSQLite(cfg.DataPath("index.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer idx.Close()
	recorded, err := idx.Runs()
	if err != nil || len(recorded) != 1 || recorded[0].Changes != 1 || recorded[0].Tool != "blockassets assign" {
		t.Fatalf("recorded runs: %+v %v", recorded, err)
	}
}

func TestCollectRuns_IncludesJournalOnlyRuns(t *testing.T) {
	cfg := config.Defaults()
	cfg.DataDir = t.TempDir()
	logger := log.New(io.Discard, "", 0)
	dir := t.TempDir()

	s := openSession(cfg, "generate", false, true)
	if _, err := s.writer.WriteFile(filepath.Join(dir, "Block_Sand.asset"), []byte("sand\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s.close(logger)

	s = openSession(cfg, "assign", false, false)
	if _, err := s.writer.WriteFile(filepath.Join(dir, "Block_Sand.asset"), []byte("patched\n")); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s.close(logger)

	runs, err := collectRuns(cfg.DataPath("backups"), cfg.DataPath("journal"))
	if err != nil {
		t.Fatalf("collectRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs: %+v", runs)
	}
	if runs[0].Backup || runs[0].Tool != "blockassets generate" || runs[0].Files != 1 || runs[0].Bytes != 5 {
		t.Fatalf("journal-only run: %+v", runs[0])
	}
	if !runs[1].Backup || runs[1].Tool != "blockassets assign" || runs[1].Files != 1 {
		t.Fatalf("backup run: %+v", runs[1])
	}
}

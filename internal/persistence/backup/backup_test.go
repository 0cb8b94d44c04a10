package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_SaveAndRestore(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "backups")

	asset := filepath.Join(dir, "Block_Grass.asset")
	if err := os.WriteFile(asset, []byte("topTexture: {fileID: 0}\n"), 0o644); err != nil {
		t.Fatalf("write asset: %v", err)
	}
	created := filepath.Join(dir, "Block_Sand.asset")

	run := NewRunID(time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC))
	s, err := Open(base, run, "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(asset); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(asset, []byte("patched\n"), 0o644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	// A second save in the same run must keep the first saved bytes.
	if err := s.Save(asset); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	if err := s.Save(created); err != nil {
		t.Fatalf("Save new: %v", err)
	}
	if err := os.WriteFile(created, []byte("new\n"), 0o644); err != nil {
		t.Fatalf("create: %v", err)
	}

	runs, err := ListRuns(base)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].Run != run || len(runs[0].Files) != 2 {
		t.Fatalf("runs: %+v", runs)
	}
	if !runs[0].Files[0].Existed || runs[0].Files[1].Existed {
		t.Fatalf("existed flags: %+v", runs[0].Files)
	}

	restored, err := Restore(base, run)
	if err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if len(restored) != 2 {
		t.Fatalf("restored: %v", restored)
	}
	got, err := os.ReadFile(asset)
	if err != nil {
		t.Fatalf("read asset: %v", err)
	}
	if string(got) != "topTexture: {fileID: 0}\n" {
		t.Fatalf("asset not restored: %q", got)
	}
	if _, err := os.Stat(created); !os.IsNotExist(err) {
		t.Fatalf("created file should be removed, stat err=%v", err)
	}
}

func TestOpen_RejectsDuplicateRun(t *testing.T) {
	base := t.TempDir()
	if _, err := Open(base, "r1", "test"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := Open(base, "r1", "test"); err == nil {
		t.Fatalf("expected duplicate run error")
	}
}

func TestStore_DiscardEmptyRun(t *testing.T) {
	base := t.TempDir()
	s, err := Open(base, "empty", "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if gone, err := s.Discard(); err != nil || !gone {
		t.Fatalf("Discard: %v %v", gone, err)
	}
	runs, err := ListRuns(base)
	if err != nil || len(runs) != 0 {
		t.Fatalf("runs after discard: %+v %v", runs, err)
	}
}

func TestListRuns_MissingDir(t *testing.T) {
	runs, err := ListRuns(filepath.Join(t.TempDir(), "nope"))
	if err != nil || len(runs) != 0 {
		t.Fatalf("ListRuns: %v %v", runs, err)
	}
}

func TestRestore_DetectsCorruptBlob(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "backups")
	f := filepath.Join(dir, "scene.unity")
	if err := os.WriteFile(f, []byte("definitions:\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(base, "r1", "test")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Save(f); err != nil {
		t.Fatalf("Save: %v", err)
	}
	blob := filepath.Join(base, "r1", "files", s.Meta().Files[0].Blob)
	if err := writeBlob(blob, []byte("other")); err != nil {
		t.Fatalf("writeBlob: %v", err)
	}
	if _, err := Restore(base, "r1"); err == nil {
		t.Fatalf("expected checksum error")
	}
}

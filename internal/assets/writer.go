package assets

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"voxelengine.dev/internal/persistence/backup"
	"voxelengine.dev/internal/persistence/journal"
)

// Writer writes project files in place. When configured it backs up the previous content and
// journals the change. A nil *Writer writes plainly.
type Writer struct {
	Backup  *backup.Store
	Journal *journal.Writer
	DryRun  bool
}

// WriteFile replaces path with data and reports whether the content changed. Unchanged files
// are not rewritten.
func (w *Writer) WriteFile(path string, data []byte) (bool, error) {
	old, err := os.ReadFile(path)
	existed := err == nil
	if err != nil && !os.IsNotExist(err) {
		return false, err
	}
	if existed && bytes.Equal(old, data) {
		return false, nil
	}
	if w != nil && w.DryRun {
		return true, nil
	}

	if w != nil && w.Backup != nil {
		if err := w.Backup.Save(path); err != nil {
			return false, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}

	if w != nil && w.Journal != nil {
		e := journal.Entry{
			Action: journal.ActionCreate,
			Path:   path,
			After:  sha256Hex(data),
			Bytes:  len(data),
		}
		if existed {
			e.Action = journal.ActionUpdate
			e.Before = sha256Hex(old)
		}
		if err := w.Journal.Write(e); err != nil {
			return true, err
		}
	}
	return true, nil
}

func sha256Hex(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

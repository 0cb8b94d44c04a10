package backup

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
)

const metaName = "run.json"

// RunMeta describes one backup run: the previous content of every file a run overwrote.
type RunMeta struct {
	Run       string  `json:"run"`
	Tool      string  `json:"tool"`
	CreatedAt string  `json:"created_at"`
	Files     []Entry `json:"files"`
}

type Entry struct {
	Seq     int    `json:"seq"`
	Path    string `json:"path"`
	Existed bool   `json:"existed"`
	Size    int64  `json:"size"`
	SHA256  string `json:"sha256,omitempty"`
	Blob    string `json:"blob,omitempty"`
}

type Store struct {
	dir  string
	meta RunMeta
	seen map[string]bool
}

// NewRunID returns a sortable run id such as 20261018-120304.123456.
func NewRunID(now time.Time) string {
	return now.UTC().Format("20060102-150405.000000")
}

// Open starts a new run under baseDir/<run>/.
func Open(baseDir, run, tool string) (*Store, error) {
	if run == "" {
		return nil, fmt.Errorf("empty run id")
	}
	dir := filepath.Join(baseDir, run)
	if _, err := os.Stat(filepath.Join(dir, metaName)); err == nil {
		return nil, fmt.Errorf("backup run %s already exists", run)
	}
	if err := os.MkdirAll(filepath.Join(dir, "files"), 0o755); err != nil {
		return nil, err
	}
	s := &Store{
		dir: dir,
		meta: RunMeta{
			Run:       run,
			Tool:      tool,
			CreatedAt: time.Now().UTC().Format(time.RFC3339Nano),
		},
		seen: map[string]bool{},
	}
	return s, s.writeMeta()
}

func (s *Store) Run() string { return s.meta.Run }

func (s *Store) Meta() RunMeta { return s.meta }

// Save records the current content of path before it gets overwritten. Only the first save
// of a path within a run is kept, so a restore always returns to the pre-run state.
func (s *Store) Save(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if s.seen[abs] {
		return nil
	}

	e := Entry{Seq: len(s.meta.Files) + 1, Path: abs}
	raw, err := os.ReadFile(abs)
	switch {
	case err == nil:
		e.Existed = true
		e.Size = int64(len(raw))
		sum := sha256.Sum256(raw)
		e.SHA256 = hex.EncodeToString(sum[:])
		e.Blob = fmt.Sprintf("%05d.zst", e.Seq)
		if err := writeBlob(filepath.Join(s.dir, "files", e.Blob), raw); err != nil {
			return err
		}
	case errors.Is(err, os.ErrNotExist):
		// Restore removes files the run created.
	default:
		return err
	}

	s.seen[abs] = true
	s.meta.Files = append(s.meta.Files, e)
	return s.writeMeta()
}

// Discard removes the run when nothing was saved into it and reports whether it did.
func (s *Store) Discard() (bool, error) {
	if len(s.meta.Files) > 0 {
		return false, nil
	}
	return true, os.RemoveAll(s.dir)
}

func (s *Store) writeMeta() error {
	b, err := json.MarshalIndent(s.meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.dir, metaName), append(b, '\n'), 0o644)
}

func writeBlob(path string, raw []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)
	if _, err := bw.Write(raw); err != nil {
		_ = enc.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return f.Close()
}

func readBlob(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return io.ReadAll(dec)
}

func ReadMeta(baseDir, run string) (RunMeta, error) {
	var m RunMeta
	b, err := os.ReadFile(filepath.Join(baseDir, run, metaName))
	if err != nil {
		return m, err
	}
	if err := json.Unmarshal(b, &m); err != nil {
		return m, fmt.Errorf("%s/%s: %w", run, metaName, err)
	}
	return m, nil
}

// ListRuns returns every recorded run, oldest first.
func ListRuns(baseDir string) ([]RunMeta, error) {
	ents, err := os.ReadDir(baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	names := make([]string, 0, len(ents))
	for _, e := range ents {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]RunMeta, 0, len(names))
	for _, name := range names {
		m, err := ReadMeta(baseDir, name)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Restore puts every file touched by run back into its pre-run state and returns the
// restored paths. Files the run created are removed.
func Restore(baseDir, run string) ([]string, error) {
	m, err := ReadMeta(baseDir, run)
	if err != nil {
		return nil, err
	}
	var restored []string
	for i := len(m.Files) - 1; i >= 0; i-- {
		e := m.Files[i]
		if !e.Existed {
			if err := os.Remove(e.Path); err != nil && !os.IsNotExist(err) {
				return restored, err
			}
			restored = append(restored, e.Path)
			continue
		}
		raw, err := readBlob(filepath.Join(baseDir, run, "files", e.Blob))
		if err != nil {
			return restored, fmt.Errorf("%s: %w", e.Blob, err)
		}
		sum := sha256.Sum256(raw)
		if hex.EncodeToString(sum[:]) != e.SHA256 {
			return restored, fmt.Errorf("%s: checksum mismatch", e.Blob)
		}
		if err := os.MkdirAll(filepath.Dir(e.Path), 0o755); err != nil {
			return restored, err
		}
		if err := os.WriteFile(e.Path, raw, 0o644); err != nil {
			return restored, err
		}
		restored = append(restored, e.Path)
	}
	return restored, nil
}

package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Entry is one file change made by a tool run.
type Entry struct {
	Time   string `json:"time"`
	Run    string `json:"run"`
	Tool   string `json:"tool"`
	Action string `json:"action"`
	Path   string `json:"path"`
	Before string `json:"sha256_before,omitempty"`
	After  string `json:"sha256_after"`
	Bytes  int    `json:"bytes"`
	Detail string `json:"detail,omitempty"`
}

const (
	ActionCreate = "create"
	ActionUpdate = "update"
)

// Writer appends compressed JSONL entries to <dir>/patch-<run>.jsonl.zst.
type Writer struct {
	dir  string
	run  string
	tool string

	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

func NewWriter(dir, run, tool string) *Writer {
	return &Writer{dir: dir, run: run, tool: tool}
}

func (w *Writer) Path() string { return PathFor(w.dir, w.run) }

func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

func PathFor(dir, run string) string {
	return filepath.Join(dir, fmt.Sprintf("patch-%s.jsonl.zst", run))
}

func (w *Writer) Write(e Entry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.w == nil {
		if err := w.openLocked(); err != nil {
			return err
		}
	}
	if e.Time == "" {
		e.Time = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if e.Run == "" {
		e.Run = w.run
	}
	if e.Tool == "" {
		e.Tool = w.tool
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return w.w.Flush()
}

func (w *Writer) openLocked() error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(w.Path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.f = f
	w.enc = enc
	w.w = bufio.NewWriterSize(enc, 64*1024)
	return nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// ReadAll decodes every entry of one journal file.
func ReadAll(path string) ([]Entry, error) {
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

	var out []Entry
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("%s:%d: %w", filepath.Base(path), line, err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}

// Runs lists the run ids that have a journal in dir, sorted.
func Runs(dir string) ([]string, error) {
	ents, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []string
	for _, e := range ents {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, "patch-") || !strings.HasSuffix(name, ".jsonl.zst") {
			continue
		}
		out = append(out, strings.TrimSuffix(strings.TrimPrefix(name, "patch-"), ".jsonl.zst"))
	}
	sort.Strings(out)
	return out, nil
}

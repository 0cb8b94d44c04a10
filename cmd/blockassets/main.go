package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"voxelengine.dev/internal/assets"
	"voxelengine.dev/internal/catalogs"
	"voxelengine.dev/internal/config"
	"voxelengine.dev/internal/persistence/backup"
	"voxelengine.dev/internal/persistence/indexdb"
	"voxelengine.dev/internal/persistence/journal"
)

const tool = "blockassets"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	switch os.Args[1] {
	case "generate":
		generateCmd(os.Args[2:])
	case "assign":
		assignCmd(os.Args[2:])
	case "scene":
		sceneCmd(os.Args[2:])
	case "index":
		indexCmd(os.Args[2:])
	case "lookup":
		lookupCmd(os.Args[2:])
	case "runs":
		runsCmd(os.Args[2:])
	case "restore":
		restoreCmd(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: blockassets <command> [flags]

commands:
  generate   write Block_<Name>.asset + .meta files from the block catalog
  assign     point block asset texture fields at the tile PNGs
  scene      rewrite the scene's block definitions list
  index      rebuild the sqlite asset index
  lookup     resolve a guid or list blocks using a tile
  runs       list backup runs
  restore    undo a run from its backups`)
}

type common struct {
	configPath *string
	configDir  *string
	project    *string
	dataDir    *string
}

func commonFlags(fs *flag.FlagSet) common {
	return common{
		configPath: fs.String("config", "", "path to toolkit.yaml (default: "+config.DefaultPath+" if present)"),
		configDir:  fs.String("configs", "./configs", "catalog directory (textures.json, blocks.json)"),
		project:    fs.String("project", "", "Unity project root (overrides project_root)"),
		dataDir:    fs.String("data", "", "data directory for backups, journals and the index (overrides data_dir)"),
	}
}

func (c common) load(logger *log.Logger) (config.Config, *catalogs.Catalogs) {
	cfg, used, err := config.Find(*c.configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *c.project != "" {
		cfg.ProjectRoot = *c.project
	}
	if *c.dataDir != "" {
		cfg.DataDir = *c.dataDir
	}
	if used != "" {
		logger.Printf("config: %s", used)
	}
	cats, err := catalogs.Load(*c.configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "catalogs:", err)
		os.Exit(1)
	}
	return cfg, cats
}

func newLogger(cmd string) *log.Logger {
	return log.New(os.Stdout, "["+tool+" "+cmd+"] ", log.LstdFlags)
}

// session wraps one modifying run: its backups, its journal and the writer that uses both.
type session struct {
	cfg     config.Config
	cmd     string
	writer  *assets.Writer
	backups *backup.Store
	journal *journal.Writer
}

func openSession(cfg config.Config, cmd string, dryRun, noBackup bool) *session {
	s := &session{cfg: cfg, cmd: cmd, writer: &assets.Writer{DryRun: dryRun}}
	if dryRun {
		return s
	}
	run := backup.NewRunID(time.Now())
	if !noBackup {
		store, err := backup.Open(cfg.DataPath("backups"), run, tool+" "+cmd)
		if err != nil {
			fmt.Fprintln(os.Stderr, "backup:", err)
			os.Exit(1)
		}
		s.backups = store
		s.writer.Backup = store
	}
	s.journal = journal.NewWriter(cfg.DataPath("journal"), run, tool+" "+cmd)
	s.writer.Journal = s.journal
	return s
}

// close flushes the journal and records the run in the index. Runs that changed nothing
// leave no backup directory behind.
func (s *session) close(logger *log.Logger) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Close(); err != nil {
		logger.Printf("journal close: %v", err)
	}
	changes := s.journal.Count()
	if s.backups == nil {
		if changes > 0 {
			logger.Printf("journal: %s (%d changes)", s.journal.Path(), changes)
		}
		return
	}
	if gone, err := s.backups.Discard(); err != nil {
		logger.Printf("backup discard: %v", err)
		return
	} else if gone {
		return
	}
	logger.Printf("backup run %s: %d files saved, journal %s", s.backups.Run(), len(s.backups.Meta().Files), s.journal.Path())

	idx, err := indexdb.OpenSQLite(s.cfg.DataPath("index.db"))
	if err != nil {
		logger.Printf("index open: %v", err)
		return
	}
	defer idx.Close()
	if err := idx.RecordRun(s.backups.Meta(), changes); err != nil {
		logger.Printf("index record run: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

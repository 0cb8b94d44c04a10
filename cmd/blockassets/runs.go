package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"voxelengine.dev/internal/persistence/backup"
	"voxelengine.dev/internal/persistence/journal"
)

func runsCmd(args []string) {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	c := commonFlags(fs)
	verbose := fs.Bool("v", false, "also print each journaled change")
	_ = fs.Parse(args)

	logger := newLogger("runs")
	cfg, _ := c.load(logger)
	journalDir := cfg.DataPath("journal")

	runs, err := collectRuns(cfg.DataPath("backups"), journalDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "list runs:", err)
		os.Exit(1)
	}
	if len(runs) == 0 {
		fmt.Println("no runs")
		return
	}
	for _, r := range runs {
		when := r.CreatedAt
		if t, err := time.Parse(time.RFC3339Nano, r.CreatedAt); err == nil {
			when = humanize.Time(t)
		}
		kind := "backup"
		if !r.Backup {
			kind = "journal only"
		}
		fmt.Printf("%s\t%s\t%s\t%d files\t%s\t%s\n", r.Run, r.Tool, when, r.Files, humanize.Bytes(uint64(r.Bytes)), kind)

		if !*verbose {
			continue
		}
		entries, err := journal.ReadAll(journal.PathFor(journalDir, r.Run))
		if err != nil {
			if !os.IsNotExist(err) {
				fmt.Fprintln(os.Stderr, "read journal:", err)
			}
			continue
		}
		for _, e := range entries {
			fmt.Printf("  %s\t%s\t%s\n", e.Action, e.Path, humanize.Bytes(uint64(e.Bytes)))
		}
	}
}

type runSummary struct {
	Run       string
	Tool      string
	CreatedAt string
	Files     int
	Bytes     int64
	Backup    bool
}

// collectRuns merges backup runs with runs that were only journaled (-no_backup), by run id.
func collectRuns(backupsDir, journalDir string) ([]runSummary, error) {
	backups, err := backup.ListRuns(backupsDir)
	if err != nil {
		return nil, err
	}
	byRun := map[string]bool{}
	var out []runSummary
	for _, r := range backups {
		var size int64
		for _, f := range r.Files {
			size += f.Size
		}
		byRun[r.Run] = true
		out = append(out, runSummary{Run: r.Run, Tool: r.Tool, CreatedAt: r.CreatedAt, Files: len(r.Files), Bytes: size, Backup: true})
	}

	journaled, err := journal.Runs(journalDir)
	if err != nil {
		return nil, err
	}
	for _, run := range journaled {
		if byRun[run] {
			continue
		}
		entries, err := journal.ReadAll(journal.PathFor(journalDir, run))
		if err != nil {
			return nil, fmt.Errorf("journal %s: %w", run, err)
		}
		r := runSummary{Run: run, Files: len(entries)}
		for i, e := range entries {
			if i == 0 {
				r.Tool, r.CreatedAt = e.Tool, e.Time
			}
			r.Bytes += int64(e.Bytes)
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Run < out[j].Run })
	return out, nil
}

func restoreCmd(args []string) {
	fs := flag.NewFlagSet("restore", flag.ExitOnError)
	c := commonFlags(fs)
	runID := fs.String("run", "", "run id to restore, or \"latest\" (required)")
	_ = fs.Parse(args)

	run := strings.TrimSpace(*runID)
	if run == "" {
		fmt.Fprintln(os.Stderr, "missing -run")
		os.Exit(2)
	}

	logger := newLogger("restore")
	cfg, _ := c.load(logger)
	base := cfg.DataPath("backups")

	if run == "latest" {
		runs, err := backup.ListRuns(base)
		if err != nil {
			fmt.Fprintln(os.Stderr, "list runs:", err)
			os.Exit(1)
		}
		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "no backup runs in", base)
			os.Exit(1)
		}
		run = runs[len(runs)-1].Run
	}

	restored, err := backup.Restore(base, run)
	for _, p := range restored {
		logger.Printf("restored %s", p)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "restore:", err)
		os.Exit(1)
	}
	logger.Printf("done: run %s, %d files restored", run, len(restored))
}

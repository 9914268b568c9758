// Package ingest orchestrates the catalog parse -> normalize -> write
// pipeline (C1 through C4).
package ingest

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/elwood/romcat/internal/catalog"
	"github.com/elwood/romcat/internal/catalogxml"
	"github.com/elwood/romcat/internal/store"
	"github.com/elwood/romcat/internal/util"
)

// Options controls one Run call.
type Options struct {
	// Overwrite permits replacing an existing file at the output path.
	Overwrite bool
	// EventLog receives per-phase JSONL events; a nil logger is a no-op.
	EventLog *EventLogger
	// ShowProgress draws a progress bar on stderr when it is a terminal.
	ShowProgress bool
}

// Run reads the catalog XML at xmlPath, normalizes it, and writes a fresh
// store to outPath. Failure in any phase aborts the whole ingest: there is
// no partially-ingested state to resume or repair.
func Run(ctx context.Context, xmlPath, outPath string, opts Options) error {
	f, err := os.Open(xmlPath)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", util.ErrIngestParseFailed, xmlPath, err)
	}
	defer f.Close()

	start := time.Now()
	var machines []*catalogxml.MachineRecord
	header, err := catalogxml.Parse(f, func(m *catalogxml.MachineRecord) error {
		machines = append(machines, m)
		return nil
	})
	if err != nil {
		opts.EventLog.LogError(EventParse, err)
		return err
	}
	opts.EventLog.LogPhase(EventParse, "parse", len(machines), 0, 0, time.Since(start))
	util.DebugLog("parsed %d machines from %s", len(machines), xmlPath)

	start = time.Now()
	cat, err := catalog.Normalize(header, machines)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", util.ErrIngestParseFailed, err)
		opts.EventLog.LogError(EventNormalize, wrapped)
		return wrapped
	}
	opts.EventLog.LogPhase(EventNormalize, "normalize", len(cat.Machines), len(cat.Roms), len(cat.Edges), time.Since(start))
	util.DebugLog("normalized to %d machines, %d roms, %d edges", len(cat.Machines), len(cat.Roms), len(cat.Edges))

	var bar *progressbar.ProgressBar
	if opts.ShowProgress && util.IsTerminal(os.Stderr.Fd()) {
		total := int64(len(cat.Machines) + len(cat.Roms) + len(cat.Edges))
		bar = progressbar.Default(total, "writing store")
	}
	progress := func(phase string, done, total int) {
		if bar != nil {
			bar.Add(1)
		}
	}

	start = time.Now()
	if err := store.Write(ctx, cat, outPath, opts.Overwrite, progress); err != nil {
		opts.EventLog.LogError(EventWrite, err)
		return err
	}
	if bar != nil {
		bar.Finish()
	}
	opts.EventLog.LogPhase(EventWrite, "write", len(cat.Machines), len(cat.Roms), len(cat.Edges), time.Since(start))
	util.SuccessLog("ingested %s into %s", xmlPath, outPath)

	return nil
}

// Package romcat ingests an arcade-machine catalog and answers ROM-set
// queries against it.
package romcat

import (
	"context"

	"github.com/elwood/romcat/internal/dossier"
	"github.com/elwood/romcat/internal/ingest"
	"github.com/elwood/romcat/internal/setkind"
	"github.com/elwood/romcat/internal/store"
)

// Handle is an open catalog store.
type Handle struct {
	st *store.Store
}

// MachineSummary is one row of ListMachines.
type MachineSummary = store.MachineSummary

// Dossier is the per-query bundle returned by LoadDossier.
type Dossier = dossier.Dossier

// Rom is a content identity: name, size, and CRC.
type Rom = dossier.Rom

// SetKind names one of the seven canonical ROM-set views.
type SetKind = setkind.Kind

const (
	Split         = setkind.Split
	Merged        = setkind.Merged
	MergedPlus    = setkind.MergedPlus
	MergedFull    = setkind.MergedFull
	NonMerged     = setkind.NonMerged
	NonMergedPlus = setkind.NonMergedPlus
	NonMergedFull = setkind.NonMergedFull
)

// IngestOptions controls Ingest.
type IngestOptions struct {
	Overwrite    bool
	EventLogDir  string
	ShowProgress bool
}

// OpenStore opens an existing catalog file, returning ErrNotFound if it
// does not exist and ErrStoreUnavailable if it cannot be opened. The
// returned handle is cached process-wide per canonical path.
func OpenStore(path string) (*Handle, error) {
	st, err := store.OpenCached(path)
	if err != nil {
		return nil, err
	}
	return &Handle{st: st}, nil
}

// Ingest parses the catalog XML at xmlPath, normalizes it, and writes a
// fresh store to outPath, then opens it.
func Ingest(ctx context.Context, xmlPath, outPath string, opts IngestOptions) (*Handle, error) {
	var eventLog *ingest.EventLogger
	if opts.EventLogDir != "" {
		l, err := ingest.NewEventLogger(opts.EventLogDir)
		if err != nil {
			return nil, err
		}
		eventLog = l
		defer eventLog.Close()
	}

	if err := ingest.Run(ctx, xmlPath, outPath, ingest.Options{
		Overwrite:    opts.Overwrite,
		EventLog:     eventLog,
		ShowProgress: opts.ShowProgress,
	}); err != nil {
		return nil, err
	}

	return OpenStore(outPath)
}

// CatalogVersion returns the ingested catalog's build string.
func (h *Handle) CatalogVersion(ctx context.Context) (string, error) {
	return h.st.CatalogVersion(ctx)
}

// ListMachines returns every machine in the store.
func (h *Handle) ListMachines(ctx context.Context) ([]MachineSummary, error) {
	return h.st.ListMachines(ctx)
}

// LoadDossier builds the Dossier for the named machine.
func (h *Handle) LoadDossier(ctx context.Context, name string) (*Dossier, error) {
	return dossier.Load(ctx, h.st, name)
}

// DeriveSet derives the ROM-set view of kind kind from d.
func DeriveSet(d *Dossier, kind SetKind) []Rom {
	return setkind.Derive(d, kind)
}

// FindMachineByCRCs returns the id of a machine whose ROM CRCs include every
// one of crcs (compared case-insensitively); the machine may own further
// ROMs. Ties go to the lowest machine_id.
func (h *Handle) FindMachineByCRCs(ctx context.Context, crcs []string) (int64, error) {
	return h.st.FindMachineByCRCs(ctx, crcs)
}

// MachineName resolves a machine_id to its name.
func (h *Handle) MachineName(ctx context.Context, machineID int64) (string, error) {
	return h.st.MachineName(ctx, machineID)
}

// Close closes the underlying store connection.
func (h *Handle) Close() error {
	return h.st.Close()
}

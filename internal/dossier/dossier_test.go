package dossier

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/elwood/romcat/internal/catalog"
	"github.com/elwood/romcat/internal/store"
)

// buildStore writes the S1 scenario (puckman/pacman) plus an unrelated
// sibling clone, to exercise the sibling branch of Query 1.
func buildStore(t *testing.T) *store.Store {
	t.Helper()
	cat := &catalog.Catalog{
		Build: "0.260",
		Machines: []catalog.Machine{
			{Name: "puckman", Description: "Puck Man", HasRoms: true},
			{Name: "pacman", Description: "Pac-Man", CloneOf: "puckman", HasRoms: true},
			{Name: "pacmanf", Description: "Pac-Man (fast)", CloneOf: "puckman", HasRoms: true},
		},
		Roms: []catalog.Rom{
			{Name: "pm1.cpu", Size: 4096, CRC: "1111"},
			{Name: "pm2.cpu", Size: 4096, CRC: "2222"},
			{Name: "pacman.cpu", Size: 4096, CRC: "2233"},
			{Name: "pacmanf.cpu", Size: 4096, CRC: "2244"},
		},
		Edges: []catalog.Edge{
			{MachineIdx: 0, RomIdx: 0},
			{MachineIdx: 0, RomIdx: 1},
			{MachineIdx: 1, RomIdx: 2, Merge: "pm2.cpu"},
			{MachineIdx: 2, RomIdx: 3, Merge: "pm2.cpu"},
		},
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.db")
	if err := store.Write(context.Background(), cat, path, false, nil); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLoadCloneDossier(t *testing.T) {
	st := buildStore(t)
	d, err := Load(context.Background(), st, "pacman")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if d.Parent == nil || d.Parent.Name != "puckman" {
		t.Fatalf("expected parent puckman, got %+v", d.Parent)
	}

	var machineRoms, parentRoms, cloneRoms int
	for _, r := range d.Roms {
		switch r.Source {
		case SourceMachine:
			machineRoms++
			if r.MachineID != d.Target.MachineID {
				t.Errorf("invariant violated: source=machine row with machine_id %d != target %d", r.MachineID, d.Target.MachineID)
			}
		case SourceParent:
			parentRoms++
		case SourceClone:
			cloneRoms++
		}
	}
	if machineRoms != 1 {
		t.Errorf("expected 1 machine-sourced rom, got %d", machineRoms)
	}
	if parentRoms != 2 {
		t.Errorf("expected 2 parent-sourced roms, got %d", parentRoms)
	}
	if cloneRoms != 1 {
		t.Errorf("expected 1 sibling (pacmanf) rom pulled in, got %d", cloneRoms)
	}
}

func TestReplacedByBackEdge(t *testing.T) {
	st := buildStore(t)
	d, err := Load(context.Background(), st, "pacman")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var bRow *RomInfo
	for i := range d.Roms {
		if d.Roms[i].Rom.Name == "pm2.cpu" {
			bRow = &d.Roms[i]
		}
	}
	if bRow == nil {
		t.Fatal("expected pm2.cpu to be present in dossier")
	}
	found := false
	for _, n := range bRow.ReplacedBy {
		if n == "pacman.cpu" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected pm2.cpu.ReplacedBy to include pacman.cpu, got %v", bRow.ReplacedBy)
	}
}

func TestLoadNonCloneHasNoSiblings(t *testing.T) {
	st := buildStore(t)
	d, err := Load(context.Background(), st, "puckman")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Parent != nil {
		t.Errorf("expected no parent for puckman, got %+v", d.Parent)
	}
	for _, r := range d.Roms {
		if r.Source == SourceClone && r.MachineName != "pacman" && r.MachineName != "pacmanf" {
			t.Errorf("unexpected clone-sourced row from %q", r.MachineName)
		}
	}
}

func TestLoadUnknownMachine(t *testing.T) {
	st := buildStore(t)
	if _, err := Load(context.Background(), st, "does-not-exist"); err == nil {
		t.Error("expected NotFound error for unknown machine")
	}
}

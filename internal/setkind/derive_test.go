package setkind

import (
	"reflect"
	"testing"

	"github.com/elwood/romcat/internal/dossier"
)

// pacmanDossier reconstructs scenario S1 from the specification: pacman
// (clone) replaces puckman's ROM B with its own B'.
func pacmanDossier() *dossier.Dossier {
	d := &dossier.Dossier{
		Target: dossier.Machine{MachineID: 2, Name: "pacman", CloneOf: "puckman"},
		Parent: &dossier.Machine{MachineID: 1, Name: "puckman"},
	}
	d.Roms = []dossier.RomInfo{
		{Rom: dossier.Rom{Name: "B'", CRC: "2233"}, Type: dossier.TypeCloneRom, Source: dossier.SourceMachine, MachineID: 2, MachineName: "pacman", Replaces: "B"},
		{Rom: dossier.Rom{Name: "A", CRC: "1111"}, Type: dossier.TypeGameRom, Source: dossier.SourceParent, MachineID: 1, MachineName: "puckman"},
		{Rom: dossier.Rom{Name: "B", CRC: "2222"}, Type: dossier.TypeGameRom, Source: dossier.SourceParent, MachineID: 1, MachineName: "puckman"},
	}
	d.Roms[2].ReplacedBy = []string{"B'"}
	return d
}

func names(roms []dossier.Rom) []string {
	out := make([]string, len(roms))
	for i, r := range roms {
		out[i] = r.Name
	}
	return out
}

func TestDeriveSplitForClone(t *testing.T) {
	got := names(Derive(pacmanDossier(), Split))
	want := []string{"B'"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("split: got %v, want %v", got, want)
	}
}

func TestDeriveMerged(t *testing.T) {
	got := names(Derive(pacmanDossier(), Merged))
	want := []string{"B'", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("merged: got %v, want %v", got, want)
	}
}

func TestDeriveNonMerged(t *testing.T) {
	got := names(Derive(pacmanDossier(), NonMerged))
	want := []string{"B'", "A"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("nonmerged: got %v, want %v", got, want)
	}
}

// deviceBiosDossier layers a device ROM and a BIOS ROM onto a non-clone
// target, matching scenarios S2 and S3.
func deviceBiosDossier() *dossier.Dossier {
	d := &dossier.Dossier{
		Target: dossier.Machine{MachineID: 1, Name: "mslug"},
	}
	d.Roms = []dossier.RomInfo{
		{Rom: dossier.Rom{Name: "m1.rom", CRC: "beef"}, Type: dossier.TypeGameRom, Source: dossier.SourceMachine, MachineID: 1, MachineName: "mslug"},
		{Rom: dossier.Rom{Name: "dev.rom", CRC: "dead"}, Type: dossier.TypeDeviceRom, Source: dossier.SourceDevice, MachineID: 2, MachineName: "d1"},
		{Rom: dossier.Rom{Name: "neo-bios", CRC: "aaaa"}, Type: dossier.TypeBiosRom, Source: dossier.SourceBios, MachineID: 3, MachineName: "neogeo"},
	}
	return d
}

func TestDeriveMergedPlusIncludesDeviceNotMerged(t *testing.T) {
	merged := names(Derive(deviceBiosDossier(), Merged))
	for _, n := range merged {
		if n == "dev.rom" {
			t.Errorf("merged should not include device rom, got %v", merged)
		}
	}

	plus := names(Derive(deviceBiosDossier(), MergedPlus))
	found := false
	for _, n := range plus {
		if n == "dev.rom" {
			found = true
		}
		if n == "neo-bios" {
			t.Errorf("mergedplus should not include bios rom, got %v", plus)
		}
	}
	if !found {
		t.Errorf("mergedplus should include device rom, got %v", plus)
	}
}

func TestDeriveMergedFullIncludesBios(t *testing.T) {
	full := names(Derive(deviceBiosDossier(), MergedFull))
	foundDevice, foundBios := false, false
	for _, n := range full {
		if n == "dev.rom" {
			foundDevice = true
		}
		if n == "neo-bios" {
			foundBios = true
		}
	}
	if !foundDevice || !foundBios {
		t.Errorf("mergedfull should include both device and bios roms, got %v", full)
	}
}

func TestDeriveNonMergedFullMatchesMergedFullSet(t *testing.T) {
	full := Derive(deviceBiosDossier(), NonMergedFull)
	plain := Derive(deviceBiosDossier(), MergedFull)
	if len(full) != len(plain) {
		t.Errorf("expected nonmergedfull and mergedfull to carry the same rom count for a non-clone target, got %d vs %d", len(full), len(plain))
	}
}

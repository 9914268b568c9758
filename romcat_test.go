package romcat

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

const testCatalogXML = `<?xml version="1.0"?>
<mame build="0.260" debug="no">
  <machine name="puckman">
    <description>Puck Man</description>
    <rom name="pm1.cpu" size="4096" crc="1111"/>
    <rom name="pm2.cpu" size="4096" crc="2222"/>
  </machine>
  <machine name="pacman" cloneof="puckman" romof="puckman">
    <description>Pac-Man</description>
    <rom name="pacman.cpu" size="4096" crc="2233" merge="pm2.cpu"/>
  </machine>
</mame>`

func writeTestXML(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.xml")
	if err := os.WriteFile(path, []byte(testCatalogXML), 0o644); err != nil {
		t.Fatalf("writing fixture xml: %v", err)
	}
	return path
}

func TestIngestAndQueryEndToEnd(t *testing.T) {
	xmlPath := writeTestXML(t)
	dbPath := filepath.Join(filepath.Dir(xmlPath), "catalog.db")

	ctx := context.Background()
	handle, err := Ingest(ctx, xmlPath, dbPath, IngestOptions{})
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	defer handle.Close()

	version, err := handle.CatalogVersion(ctx)
	if err != nil || version != "0.260" {
		t.Fatalf("expected catalog version 0.260, got %q err=%v", version, err)
	}

	machines, err := handle.ListMachines(ctx)
	if err != nil || len(machines) != 2 {
		t.Fatalf("expected 2 machines, got %d err=%v", len(machines), err)
	}

	d, err := handle.LoadDossier(ctx, "pacman")
	if err != nil {
		t.Fatalf("LoadDossier failed: %v", err)
	}

	merged := DeriveSet(d, Merged)
	if len(merged) != 2 {
		t.Fatalf("expected 2 roms in merged set, got %d: %+v", len(merged), merged)
	}

	id, err := handle.FindMachineByCRCs(ctx, []string{"2233"})
	if err != nil {
		t.Fatalf("FindMachineByCRCs failed: %v", err)
	}
	name, err := handle.MachineName(ctx, id)
	if err != nil || name != "pacman" {
		t.Fatalf("expected FindMachineByCRCs to resolve pacman, got %q err=%v", name, err)
	}
}

func TestIngestTwiceProducesEquivalentContent(t *testing.T) {
	xmlPath := writeTestXML(t)
	dir := filepath.Dir(xmlPath)
	ctx := context.Background()

	h1, err := Ingest(ctx, xmlPath, filepath.Join(dir, "a.db"), IngestOptions{})
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	defer h1.Close()
	h2, err := Ingest(ctx, xmlPath, filepath.Join(dir, "b.db"), IngestOptions{})
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	defer h2.Close()

	m1, _ := h1.ListMachines(ctx)
	m2, _ := h2.ListMachines(ctx)
	if len(m1) != len(m2) {
		t.Fatalf("expected equal machine counts, got %d vs %d", len(m1), len(m2))
	}
	for i := range m1 {
		if m1[i].Name != m2[i].Name {
			t.Errorf("machine %d: %q != %q", i, m1[i].Name, m2[i].Name)
		}
	}
}

func TestIngestRefusesOverwriteWithoutFlag(t *testing.T) {
	xmlPath := writeTestXML(t)
	dbPath := filepath.Join(filepath.Dir(xmlPath), "catalog.db")
	ctx := context.Background()

	h, err := Ingest(ctx, xmlPath, dbPath, IngestOptions{})
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	h.Close()

	if _, err := Ingest(ctx, xmlPath, dbPath, IngestOptions{}); err == nil {
		t.Error("expected AlreadyExists error on re-ingest without Overwrite")
	}
}

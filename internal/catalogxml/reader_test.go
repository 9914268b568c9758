package catalogxml

import (
	"strings"
	"testing"
)

const sampleXML = `<?xml version="1.0"?>
<mame build="0.260" debug="no" mameconfig="10">
  <machine name="puckman">
    <description>Puck Man</description>
    <year>1980</year>
    <manufacturer>Namco</manufacturer>
    <rom name="pm1.cpu" size="4096" crc="1111"/>
    <rom name="pm2.cpu" size="4096" crc="2222"/>
  </machine>
  <machine name="pacman" cloneof="puckman" romof="puckman">
    <description>Pac-Man</description>
    <rom name="pacman.cpu" size="4096" crc="2233" merge="pm2.cpu"/>
  </machine>
  <machine name="d1" isdevice="yes">
    <rom name="dev.rom" size="512" crc="dead"/>
  </machine>
  <machine name="m1">
    <rom name="m1.rom" size="1024" crc="beef"/>
    <device_ref name="d1"/>
  </machine>
  <machine/>
</mame>`

func TestParseBasic(t *testing.T) {
	var machines []*MachineRecord
	header, err := Parse(strings.NewReader(sampleXML), func(m *MachineRecord) error {
		machines = append(machines, m)
		return nil
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if header == nil || header.Build != "0.260" {
		t.Fatalf("expected header build 0.260, got %+v", header)
	}
	if header.Debug {
		t.Error("expected debug=false")
	}

	if len(machines) != 4 {
		t.Fatalf("expected 4 named machines (noname dropped), got %d", len(machines))
	}

	puckman := machines[0]
	if puckman.Description != "Puck Man" || puckman.Year != "1980" || puckman.Manufacturer != "Namco" {
		t.Errorf("unexpected puckman fields: %+v", puckman)
	}
	if len(puckman.Roms) != 2 {
		t.Fatalf("expected 2 roms on puckman, got %d", len(puckman.Roms))
	}
	if puckman.Roms[0].CRC != "1111" {
		t.Errorf("expected crc normalized, got %q", puckman.Roms[0].CRC)
	}

	pacman := machines[1]
	if pacman.CloneOf != "puckman" || pacman.RomOf != "puckman" {
		t.Errorf("expected pacman cloneof/romof puckman, got %+v", pacman)
	}
	if len(pacman.Roms) != 1 || pacman.Roms[0].Merge != "pm2.cpu" {
		t.Errorf("expected pacman rom to merge pm2.cpu, got %+v", pacman.Roms)
	}

	d1 := machines[2]
	if !d1.IsDevice {
		t.Error("expected d1.IsDevice=true")
	}

	m1 := machines[3]
	if len(m1.DeviceRefs) != 1 || m1.DeviceRefs[0] != "d1" {
		t.Errorf("expected m1 device_ref d1, got %+v", m1.DeviceRefs)
	}
}

func TestParseDropsIncompleteRoms(t *testing.T) {
	const doc = `<mame><machine name="x"><rom name="a" crc="1"/><rom size="4" crc="2"/><rom name="b" size="4" crc="3"/></machine></mame>`
	var got *MachineRecord
	_, err := Parse(strings.NewReader(doc), func(m *MachineRecord) error {
		got = m
		return nil
	})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(got.Roms) != 1 {
		t.Fatalf("expected 1 complete rom to survive, got %d", len(got.Roms))
	}
	if got.Roms[0].Name != "b" {
		t.Errorf("expected surviving rom to be %q, got %q", "b", got.Roms[0].Name)
	}
}

func TestParseAbortsOnCallbackError(t *testing.T) {
	const doc = `<mame><machine name="a"/><machine name="b"/></mame>`
	count := 0
	boom := func(m *MachineRecord) error {
		count++
		if m.Name == "a" {
			return errStub
		}
		return nil
	}
	_, err := Parse(strings.NewReader(doc), boom)
	if err != errStub {
		t.Fatalf("expected errStub, got %v", err)
	}
	if count != 1 {
		t.Errorf("expected callback invoked once before abort, got %d", count)
	}
}

var errStub = &stubError{"boom"}

type stubError struct{ msg string }

func (e *stubError) Error() string { return e.msg }

// Package catalog turns the raw machine records read by catalogxml into the
// deduplicated, provenance-tagged shape the store writer loads.
package catalog

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/elwood/romcat/internal/catalogxml"
)

// Kind classifies machines and ROMs by provenance.
type Kind string

const (
	KindRegular Kind = ""
	KindBios    Kind = "b"
	KindDevice  Kind = "d"
)

// Machine is a normalized machine row, ready for the store writer.
type Machine struct {
	Name               string
	Description        string
	Year               string
	Manufacturer       string
	RomOf              string
	CloneOf            string
	Type               Kind
	ReferencedAsDevice bool
	HasRoms            bool
}

// Rom is a deduplicated ROM identity, ready for the store writer.
type Rom struct {
	Name string
	Size int64
	CRC  string
	Type Kind
}

// Edge is one machine's claim on a ROM, indexing into Catalog.Machines/Roms.
type Edge struct {
	MachineIdx int
	RomIdx     int
	Merge      string
}

// Catalog is the fully normalized, closure-expanded catalog.
type Catalog struct {
	Build      string
	Debug      bool
	MameConfig string
	Machines   []Machine
	Roms       []Rom
	Edges      []Edge
}

type romKey struct {
	name string
	size int64
	crc  string
}

// Normalize classifies machines, deduplicates ROMs by (name, size, crc),
// assigns provenance kinds, and expands each machine's edge set across its
// transitive device closure.
func Normalize(header *catalogxml.Header, machines []*catalogxml.MachineRecord) (*Catalog, error) {
	byName := make(map[string]*catalogxml.MachineRecord, len(machines))
	order := make([]string, 0, len(machines))
	for _, m := range machines {
		if m.Name == "" {
			continue
		}
		if _, dup := byName[m.Name]; dup {
			continue
		}
		byName[m.Name] = m
		order = append(order, m.Name)
	}

	biosRomNames := map[string]bool{}
	deviceRomNames := map[string]bool{}
	referencedAsDevice := map[string]bool{}

	for _, name := range order {
		m := byName[name]
		kind := classify(m)
		for _, r := range m.Roms {
			if r.Bios != "" {
				biosRomNames[r.Name] = true
			}
			switch kind {
			case KindBios:
				biosRomNames[r.Name] = true
			case KindDevice:
				deviceRomNames[r.Name] = true
			}
		}
		for _, dref := range m.DeviceRefs {
			referencedAsDevice[dref] = true
		}
	}

	cat := &Catalog{}
	if header != nil {
		cat.Build = header.Build
		cat.Debug = header.Debug
		cat.MameConfig = header.MameConfig
	}

	machineIdx := make(map[string]int, len(order))
	romIdx := make(map[romKey]int)

	for i, name := range order {
		m := byName[name]
		kind := classify(m)
		cat.Machines = append(cat.Machines, Machine{
			Name:               m.Name,
			Description:        norm.NFC.String(m.Description),
			Year:               m.Year,
			Manufacturer:       norm.NFC.String(m.Manufacturer),
			RomOf:              m.RomOf,
			CloneOf:            m.CloneOf,
			Type:               kind,
			ReferencedAsDevice: referencedAsDevice[m.Name],
		})
		machineIdx[name] = i
	}

	closureOf := newClosureResolver(byName)

	seen := map[[2]int]bool{}
	addEdge := func(mi, ri int, merge string) {
		key := [2]int{mi, ri}
		if seen[key] {
			return
		}
		seen[key] = true
		cat.Edges = append(cat.Edges, Edge{MachineIdx: mi, RomIdx: ri, Merge: merge})
		cat.Machines[mi].HasRoms = true
	}

	identityOf := func(r catalogxml.RomEntry) (int, Kind) {
		k := romKey{name: r.Name, size: r.Size, crc: r.CRC}
		if idx, ok := romIdx[k]; ok {
			return idx, cat.Roms[idx].Type
		}
		kind := KindRegular
		if biosRomNames[r.Name] {
			kind = KindBios
		} else if deviceRomNames[r.Name] {
			kind = KindDevice
		}
		idx := len(cat.Roms)
		cat.Roms = append(cat.Roms, Rom{Name: r.Name, Size: r.Size, CRC: r.CRC, Type: kind})
		romIdx[k] = idx
		return idx, kind
	}

	for _, name := range order {
		mi := machineIdx[name]
		m := byName[name]
		for _, r := range m.Roms {
			ri, _ := identityOf(r)
			addEdge(mi, ri, r.Merge)
		}
	}

	for _, name := range order {
		mi := machineIdx[name]
		closure, err := closureOf(name)
		if err != nil {
			return nil, fmt.Errorf("device closure for %q: %w", name, err)
		}
		for _, devName := range closure {
			dev, ok := byName[devName]
			if !ok {
				continue
			}
			for _, r := range dev.Roms {
				ri, _ := identityOf(r)
				addEdge(mi, ri, "")
			}
		}
	}

	return cat, nil
}

func classify(m *catalogxml.MachineRecord) Kind {
	switch {
	case m.IsBios:
		return KindBios
	case m.IsDevice:
		return KindDevice
	default:
		return KindRegular
	}
}

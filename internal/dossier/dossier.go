// Package dossier loads, for one target machine, everything reachable
// through its parent/clone/device/bios relations, and annotates each ROM
// with where it came from and what it replaces.
package dossier

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/elwood/romcat/internal/store"
	"github.com/elwood/romcat/internal/util"
)

// Source is the provenance category of a ROM within a Dossier.
type Source string

const (
	SourceMachine Source = "machine"
	SourceParent  Source = "parent"
	SourceClone   Source = "clone"
	SourceDevice  Source = "device"
	SourceBios    Source = "bios"
)

// Type is the renderer-facing classification of a ROM within a Dossier.
type Type string

const (
	TypeBiosRom   Type = "biosRom"
	TypeDeviceRom Type = "deviceRom"
	TypeCloneRom  Type = "cloneRom"
	TypeGameRom   Type = "gameRom"
)

// Rom is a content identity: name, size, and CRC.
type Rom struct {
	Name string
	Size int64
	CRC  string
}

// RomInfo is one ROM within a Dossier, with its provenance and replacement
// edges resolved.
type RomInfo struct {
	Rom         Rom
	Type        Type
	Source      Source
	MachineID   int64
	MachineName string
	Replaces    string
	ReplacedBy  []string
}

// Machine is the subset of machine columns a Dossier needs.
type Machine struct {
	MachineID    int64
	Name         string
	Description  string
	Year         string
	Manufacturer string
	RomOf        string
	CloneOf      string
}

// Dossier is the per-query bundle: one target machine, its parent if any,
// and every ROM reachable from the target, its parent, its clones/siblings,
// its devices, and any BIOS they pull in.
type Dossier struct {
	Target Machine
	Parent *Machine
	Roms   []RomInfo
}

// Load builds the Dossier for the machine named name.
func Load(ctx context.Context, st *store.Store, name string) (*Dossier, error) {
	d := &Dossier{}
	var cloneIDs, siblingIDs string
	found := false

	err := st.Query(ctx, query1, []any{name, name, name}, func(rows *sql.Rows) error {
		if !rows.Next() {
			return nil
		}
		found = true

		var parentID sql.NullInt64
		var parentName, parentDesc, parentYear, parentMfr, parentRomOf, parentCloneOf sql.NullString
		var cloneIDsN, siblingIDsN sql.NullString

		if err := rows.Scan(
			&d.Target.MachineID, &d.Target.Name, &d.Target.Description, &d.Target.Year,
			&d.Target.Manufacturer, &d.Target.RomOf, &d.Target.CloneOf,
			&parentID, &parentName, &parentDesc, &parentYear, &parentMfr, &parentRomOf, &parentCloneOf,
			&cloneIDsN, &siblingIDsN,
		); err != nil {
			return err
		}

		if parentID.Valid {
			d.Parent = &Machine{
				MachineID:    parentID.Int64,
				Name:         parentName.String,
				Description:  parentDesc.String,
				Year:         parentYear.String,
				Manufacturer: parentMfr.String,
				RomOf:        parentRomOf.String,
				CloneOf:      parentCloneOf.String,
			}
		}
		cloneIDs = cloneIDsN.String
		siblingIDs = siblingIDsN.String
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: machine %q", util.ErrNotFound, name)
	}

	ids := []int64{d.Target.MachineID}
	if d.Parent != nil {
		ids = append(ids, d.Parent.MachineID)
	}
	ids = append(ids, parseIDs(cloneIDs)...)
	ids = append(ids, parseIDs(siblingIDs)...)

	parentID := int64(-1)
	if d.Parent != nil {
		parentID = d.Parent.MachineID
	}

	if err := loadRoms(ctx, st, d, ids, parentID); err != nil {
		return nil, err
	}

	resolveReplacedBy(d)

	return d, nil
}

const query1 = `
SELECT
  t.machine_id, t.name, COALESCE(t.description,''), COALESCE(t.year,''),
  COALESCE(t.manufacturer,''), COALESCE(t.romof,''), COALESCE(t.cloneof,''),
  p.machine_id, p.name, COALESCE(p.description,''), COALESCE(p.year,''),
  COALESCE(p.manufacturer,''), COALESCE(p.romof,''), COALESCE(p.cloneof,''),
  (SELECT GROUP_CONCAT(c.machine_id) FROM machine c WHERE c.cloneof = ?) AS clone_ids,
  (SELECT GROUP_CONCAT(s.machine_id) FROM machine s
     WHERE s.cloneof = (SELECT cloneof FROM machine WHERE name = ?)) AS sibling_ids
FROM machine t
LEFT JOIN machine p ON p.name = t.cloneof
WHERE t.name = ?`

func parseIDs(csv string) []int64 {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		if id, err := strconv.ParseInt(p, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func loadRoms(ctx context.Context, st *store.Store, d *Dossier, ids []int64, parentID int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, 0, len(ids)+2)
	for i, id := range ids {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, d.Target.MachineID, parentID)

	query := fmt.Sprintf(`
		SELECT mr.rom_id, r.name, r.size, r.crc, COALESCE(r.rom_type,''), mr.merge, mr.machine_id, m.name
		FROM machine_rom mr
		JOIN rom r ON r.rom_id = mr.rom_id
		JOIN machine m ON m.machine_id = mr.machine_id
		WHERE mr.machine_id IN (%s)
		ORDER BY CASE mr.machine_id WHEN ? THEN 0 WHEN ? THEN 1 ELSE 2 END, mr.rom_id`,
		strings.Join(placeholders, ","))

	seen := map[int64]bool{}
	return st.Query(ctx, query, args, func(rows *sql.Rows) error {
		for rows.Next() {
			var romID, machineID int64
			var name, crc, romType, machineName string
			var size int64
			var merge sql.NullString

			if err := rows.Scan(&romID, &name, &size, &crc, &romType, &merge, &machineID, &machineName); err != nil {
				return err
			}
			if seen[romID] {
				continue
			}
			seen[romID] = true

			source := classifySource(romType, machineID, d.Target.MachineID, parentID)
			d.Roms = append(d.Roms, RomInfo{
				Rom:         Rom{Name: name, Size: size, CRC: crc},
				Type:        classifyType(romType, source, d.Parent != nil),
				Source:      source,
				MachineID:   machineID,
				MachineName: machineName,
				Replaces:    merge.String,
			})
		}
		return nil
	})
}

func classifySource(romType string, machineID, targetID, parentID int64) Source {
	switch romType {
	case "b":
		return SourceBios
	case "d":
		return SourceDevice
	}
	if machineID == targetID {
		return SourceMachine
	}
	if parentID >= 0 && machineID == parentID {
		return SourceParent
	}
	return SourceClone
}

func classifyType(romType string, source Source, hasParent bool) Type {
	switch romType {
	case "b":
		return TypeBiosRom
	case "d":
		return TypeDeviceRom
	}
	if source == SourceMachine && hasParent {
		return TypeCloneRom
	}
	return TypeGameRom
}

// resolveReplacedBy is C7: a one-pass annotator building replaced_by
// back-edges from the forward replaces pointers.
func resolveReplacedBy(d *Dossier) {
	byName := map[string]int{}
	for i, r := range d.Roms {
		byName[r.Rom.Name] = i
	}
	for _, r := range d.Roms {
		if r.Replaces == "" {
			continue
		}
		if j, ok := byName[r.Replaces]; ok {
			d.Roms[j].ReplacedBy = append(d.Roms[j].ReplacedBy, r.Rom.Name)
		}
	}
}

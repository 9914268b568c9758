package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/elwood/romcat/internal/catalog"
	"github.com/elwood/romcat/internal/util"
)

// ProgressFunc reports writer progress; phase is one of "machine", "rom",
// "edge". Called after each row inserted within that phase.
type ProgressFunc func(phase string, done, total int)

// Write builds a fresh store from cat and publishes it to outPath.
// It writes to an in-memory database first, then snapshots to outPath via
// VACUUM INTO and an atomic rename, so disk I/O never interleaves with the
// insert workload and a reader never observes a half-written file.
func Write(ctx context.Context, cat *catalog.Catalog, outPath string, overwrite bool, progress ProgressFunc) error {
	if !overwrite {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%w: %s", util.ErrAlreadyExists, outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("%w: stat %s: %v", util.ErrIngestWriteFailed, outPath, err)
		}
	}

	mem, err := openMemory()
	if err != nil {
		return err
	}
	defer mem.Close()

	machineID, romID, err := load(ctx, mem, cat, progress)
	if err != nil {
		return err
	}

	if err := insertEdges(ctx, mem, cat, machineID, romID, progress); err != nil {
		return err
	}

	return publish(mem, outPath)
}

func load(ctx context.Context, mem *Store, cat *catalog.Catalog, progress ProgressFunc) (machineID map[int]int64, romID map[int]int64, err error) {
	if err := mem.Transaction(func(tx *sql.Tx) error {
		if cat.Build != "" || cat.MameConfig != "" {
			_, err := tx.ExecContext(ctx, `INSERT INTO mame (build, debug, mameconfig) VALUES (?, ?, ?)`,
				cat.Build, boolToInt(cat.Debug), cat.MameConfig)
			if err != nil {
				return fmt.Errorf("insert mame header: %w", err)
			}
		}
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", util.ErrIngestWriteFailed, err)
	}

	machineID = make(map[int]int64, len(cat.Machines))
	if err := mem.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO machine (name, description, year, manufacturer, romof, cloneof, machine_type)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, m := range cat.Machines {
			if !m.HasRoms && !m.ReferencedAsDevice {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := stmt.ExecContext(ctx, m.Name, nullableString(m.Description), nullableString(m.Year),
				nullableString(m.Manufacturer), nullableString(m.RomOf), nullableString(m.CloneOf), nullableKind(m.Type))
			if err != nil {
				return fmt.Errorf("insert machine %q: %w", m.Name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			machineID[i] = id
			if progress != nil {
				progress("machine", len(machineID), len(cat.Machines))
			}
		}
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", util.ErrIngestWriteFailed, err)
	}

	retainedRom := make(map[int]bool, len(cat.Roms))
	for _, e := range cat.Edges {
		if _, ok := machineID[e.MachineIdx]; ok {
			retainedRom[e.RomIdx] = true
		}
	}

	romID = make(map[int]int64, len(retainedRom))
	if err := mem.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO rom (name, size, crc, rom_type) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for i, r := range cat.Roms {
			if !retainedRom[i] {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := stmt.ExecContext(ctx, r.Name, r.Size, r.CRC, nullableKind(r.Type))
			if err != nil {
				return fmt.Errorf("insert rom %q: %w", r.Name, err)
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			romID[i] = id
			if progress != nil {
				progress("rom", len(romID), len(retainedRom))
			}
		}
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", util.ErrIngestWriteFailed, err)
	}

	return machineID, romID, nil
}

func insertEdges(ctx context.Context, mem *Store, cat *catalog.Catalog, machineID, romID map[int]int64, progress ProgressFunc) error {
	err := mem.Transaction(func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT OR IGNORE INTO machine_rom (machine_id, rom_id, merge) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		done := 0
		for _, e := range cat.Edges {
			mid, ok := machineID[e.MachineIdx]
			if !ok {
				continue
			}
			rid, ok := romID[e.RomIdx]
			if !ok {
				continue
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, mid, rid, nullableString(e.Merge)); err != nil {
				return fmt.Errorf("insert machine_rom (%d,%d): %w", mid, rid, err)
			}
			done++
			if progress != nil {
				progress("edge", done, len(cat.Edges))
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", util.ErrIngestWriteFailed, err)
	}
	return nil
}

// publish snapshots mem to a temp file beside outPath via VACUUM INTO, then
// atomically renames it into place. The rename is retried with backoff on
// the transient errors util.IsRetryableError recognizes (EAGAIN, EIO and
// similar): such a failure is not a semantic failure of ingestion. EBUSY is
// not among them and fails the publish on the first attempt.
func publish(mem *Store, outPath string) error {
	dir := filepath.Dir(outPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", util.ErrIngestWriteFailed, dir, err)
	}

	tmp := outPath + ".tmp-romcat"
	os.Remove(tmp)

	if _, err := mem.DB().Exec(fmt.Sprintf("VACUUM INTO %s", quoteSQLLiteral(tmp))); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: vacuum into %s: %v", util.ErrIngestWriteFailed, tmp, err)
	}

	if err := renameOrCopy(tmp, dir, outPath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: publish %s: %v", util.ErrIngestWriteFailed, outPath, err)
	}

	forget(outPath)
	return nil
}

// renameOrCopy moves tmp into place at outPath. A cross-device rename
// fails with EXDEV, which RetryableRename cannot retry its way past; once
// IsSameFilesystem confirms tmp and dir genuinely sit on different devices,
// it falls back to a same-filesystem copy (via a .part sibling of outPath)
// followed by removing tmp.
func renameOrCopy(tmp, dir, outPath string) error {
	err := util.RetryableRename(tmp, outPath, util.DefaultRetryConfig())
	if err == nil {
		return nil
	}
	if !isCrossDeviceError(err) {
		return err
	}
	same, statErr := util.IsSameFilesystem(tmp, dir)
	if statErr != nil || same {
		return err
	}

	if err := copyFile(tmp, outPath); err != nil {
		return err
	}
	return os.Remove(tmp)
}

func isCrossDeviceError(err error) bool {
	var errno syscall.Errno
	return errors.As(err, &errno) && errno == syscall.EXDEV
}

// copyFile copies src to dst via a .part sibling of dst, renamed into place
// once the copy completes, so a reader never observes a partial dst.
func copyFile(src, dst string) error {
	in, err := util.RetryableOpen(src, util.DefaultRetryConfig())
	if err != nil {
		return err
	}
	defer in.Close()

	part := dst + ".part"
	out, err := util.RetryableCreate(part, util.DefaultRetryConfig())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(part)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(part)
		return err
	}
	return util.RetryableRename(part, dst, util.DefaultRetryConfig())
}

func quoteSQLLiteral(s string) string {
	out := make([]byte, 0, len(s)+2)
	out = append(out, '\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'', '\'')
			continue
		}
		out = append(out, s[i])
	}
	out = append(out, '\'')
	return string(out)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableKind(k catalog.Kind) any {
	if k == catalog.KindRegular {
		return nil
	}
	return string(k)
}

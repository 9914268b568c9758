package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/elwood/romcat/internal/util"
)

// MachineSummary is one row of a catalog listing.
type MachineSummary struct {
	MachineID    int64
	Name         string
	Description  string
	Year         string
	Manufacturer string
	CloneOf      string
	Type         string
}

// ListMachines returns every machine in the store, ordered by machine_id
// (insertion order).
func (s *Store) ListMachines(ctx context.Context) ([]MachineSummary, error) {
	var out []MachineSummary
	err := s.Query(ctx, `
		SELECT machine_id, name, COALESCE(description,''), COALESCE(year,''),
		       COALESCE(manufacturer,''), COALESCE(cloneof,''), COALESCE(machine_type,'')
		FROM machine ORDER BY machine_id`, nil, func(rows *sql.Rows) error {
		for rows.Next() {
			var m MachineSummary
			if err := rows.Scan(&m.MachineID, &m.Name, &m.Description, &m.Year,
				&m.Manufacturer, &m.CloneOf, &m.Type); err != nil {
				return err
			}
			out = append(out, m)
		}
		return nil
	})
	return out, err
}

// CatalogVersion returns the ingested catalog's build string.
func (s *Store) CatalogVersion(ctx context.Context) (string, error) {
	var build string
	found := false
	err := s.Query(ctx, `SELECT build FROM mame LIMIT 1`, nil, func(rows *sql.Rows) error {
		if rows.Next() {
			found = true
			return rows.Scan(&build)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: no catalog header", util.ErrNotFound)
	}
	return build, nil
}

// MachineName resolves a machine_id to its name.
func (s *Store) MachineName(ctx context.Context, machineID int64) (string, error) {
	var name string
	found := false
	err := s.Query(ctx, `SELECT name FROM machine WHERE machine_id = ?`, []any{machineID}, func(rows *sql.Rows) error {
		if rows.Next() {
			found = true
			return rows.Scan(&name)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("%w: machine_id %d", util.ErrNotFound, machineID)
	}
	return name, nil
}

// MachineIDByName resolves a machine name to its surrogate id.
func (s *Store) MachineIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	found := false
	err := s.Query(ctx, `SELECT machine_id FROM machine WHERE name = ?`, []any{name}, func(rows *sql.Rows) error {
		if rows.Next() {
			found = true
			return rows.Scan(&id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: machine %q", util.ErrNotFound, name)
	}
	return id, nil
}

// FindMachineByCRCs returns the id of the machine whose ROM CRCs are a
// superset of crcs with an exact match count, case-insensitively. Ties are
// broken by lowest machine_id. Returns util.ErrNotFound if no machine
// qualifies.
func (s *Store) FindMachineByCRCs(ctx context.Context, crcs []string) (int64, error) {
	dedup := map[string]bool{}
	var upper []string
	for _, c := range crcs {
		u := strings.ToUpper(c)
		if !dedup[u] {
			dedup[u] = true
			upper = append(upper, u)
		}
	}
	if len(upper) == 0 {
		return 0, fmt.Errorf("%w: no crcs given", util.ErrNotFound)
	}

	placeholders := make([]string, len(upper))
	args := make([]any, len(upper)+1)
	for i, c := range upper {
		placeholders[i] = "?"
		args[i] = c
	}
	args[len(upper)] = len(upper)

	query := fmt.Sprintf(`
		SELECT mr.machine_id
		FROM machine_rom mr JOIN rom r ON r.rom_id = mr.rom_id
		WHERE UPPER(r.crc) IN (%s)
		GROUP BY mr.machine_id
		HAVING COUNT(DISTINCT UPPER(r.crc)) = ?
		ORDER BY mr.machine_id
		LIMIT 1`, strings.Join(placeholders, ","))

	var id int64
	found := false
	err := s.Query(ctx, query, args, func(rows *sql.Rows) error {
		if rows.Next() {
			found = true
			return rows.Scan(&id)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: no machine matches given crcs", util.ErrNotFound)
	}
	return id, nil
}

package store

// schema creates the four tables this system reads and writes. There is no
// schema_version table: every ingest produces a brand-new file from
// scratch, so there is nothing to migrate across a file's lifetime.
const schema = `
CREATE TABLE mame (
  mame_id INTEGER PRIMARY KEY,
  build TEXT,
  debug INTEGER DEFAULT 0,
  mameconfig TEXT
);

CREATE TABLE machine (
  machine_id INTEGER PRIMARY KEY,
  name TEXT UNIQUE NOT NULL,
  description TEXT,
  year TEXT,
  manufacturer TEXT,
  romof TEXT,
  cloneof TEXT,
  machine_type TEXT
);

CREATE INDEX idx_machine_cloneof ON machine(cloneof);

CREATE TABLE rom (
  rom_id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  size INTEGER NOT NULL,
  crc TEXT NOT NULL,
  rom_type TEXT,
  UNIQUE(name, size, crc)
);

CREATE INDEX idx_rom_crc ON rom(crc);

CREATE TABLE machine_rom (
  machine_rom_id INTEGER PRIMARY KEY,
  machine_id INTEGER NOT NULL REFERENCES machine(machine_id),
  rom_id INTEGER NOT NULL REFERENCES rom(rom_id),
  merge TEXT,
  UNIQUE(machine_id, rom_id)
);

CREATE INDEX idx_machine_rom_machine ON machine_rom(machine_id);
CREATE INDEX idx_machine_rom_rom ON machine_rom(rom_id);
`

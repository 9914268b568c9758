package catalogxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/elwood/romcat/internal/util"
)

// Header carries the attributes of the root <mame> element.
type Header struct {
	Build      string
	Debug      bool
	MameConfig string
}

// RomEntry is one <rom> child of a machine.
type RomEntry struct {
	Name  string
	Size  int64
	CRC   string
	Merge string
	Bios  string
}

// MachineRecord is one <machine> element, fully read.
type MachineRecord struct {
	Name         string
	Description  string
	Year         string
	Manufacturer string
	CloneOf      string
	RomOf        string
	IsBios       bool
	IsDevice     bool
	Roms         []RomEntry
	DeviceRefs   []string
}

// scalarFields are the sub-elements whose trimmed character data we keep.
var scalarFields = map[string]bool{
	"description":  true,
	"year":         true,
	"manufacturer": true,
}

// Parse streams a catalog document, invoking onMachine once per closed
// <machine> element in document order. It never buffers the whole
// document - only the machine currently open.
func Parse(r io.Reader, onMachine func(*MachineRecord) error) (*Header, error) {
	dec := xml.NewDecoder(r)

	var header *Header
	var current *MachineRecord
	var capturing string
	var text strings.Builder

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return header, fmt.Errorf("%w: offset %d: %v", util.ErrIngestParseFailed, dec.InputOffset(), err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "mame":
				header = &Header{
					Build:      attrOf(t, "build"),
					Debug:      yesAttr(t, "debug"),
					MameConfig: attrOf(t, "mameconfig"),
				}
			case "machine":
				current = &MachineRecord{
					Name:     attrOf(t, "name"),
					CloneOf:  attrOf(t, "cloneof"),
					RomOf:    attrOf(t, "romof"),
					IsBios:   yesAttr(t, "isbios"),
					IsDevice: yesAttr(t, "isdevice"),
				}
			case "rom":
				if current == nil {
					continue
				}
				name := attrOf(t, "name")
				sizeStr := attrOf(t, "size")
				crc := attrOf(t, "crc")
				if name == "" || sizeStr == "" || crc == "" {
					continue
				}
				size, err := strconv.ParseInt(sizeStr, 10, 64)
				if err != nil {
					continue
				}
				current.Roms = append(current.Roms, RomEntry{
					Name:  name,
					Size:  size,
					CRC:   strings.ToUpper(crc),
					Merge: attrOf(t, "merge"),
					Bios:  attrOf(t, "bios"),
				})
			case "device_ref":
				if current == nil {
					continue
				}
				if name := attrOf(t, "name"); name != "" {
					current.DeviceRefs = append(current.DeviceRefs, name)
				}
			default:
				if scalarFields[t.Name.Local] {
					capturing = t.Name.Local
					text.Reset()
				}
			}

		case xml.CharData:
			if capturing != "" {
				text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "machine":
				if current != nil {
					if current.Name != "" {
						if err := onMachine(current); err != nil {
							return header, err
						}
					}
					current = nil
				}
			default:
				if capturing == t.Name.Local {
					assignScalar(current, capturing, strings.TrimSpace(text.String()))
					capturing = ""
				}
			}
		}
	}

	return header, nil
}

func assignScalar(m *MachineRecord, field, value string) {
	if m == nil || value == "" {
		return
	}
	switch field {
	case "description":
		m.Description = value
	case "year":
		m.Year = value
	case "manufacturer":
		m.Manufacturer = value
	}
}

func attrOf(t xml.StartElement, name string) string {
	for _, a := range t.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func yesAttr(t xml.StartElement, name string) bool {
	return attrOf(t, name) == "yes"
}

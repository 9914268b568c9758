// Package setkind implements the seven ROM-set views over a Dossier.
package setkind

import (
	"github.com/elwood/romcat/internal/dossier"
)

// Kind names one of the seven canonical ROM-set views.
type Kind string

const (
	Split          Kind = "split"
	Merged         Kind = "merged"
	MergedPlus     Kind = "mergedplus"
	MergedFull     Kind = "mergedfull"
	NonMerged      Kind = "nonmerged"
	NonMergedPlus  Kind = "nonmergedplus"
	NonMergedFull  Kind = "nonmergedfull"
)

type romKey struct {
	name string
	crc  string
}

// Derive returns the ordered ROM list for d under kind.
func Derive(d *dossier.Dossier, kind Kind) []dossier.Rom {
	switch kind {
	case Split:
		return split(d)
	case Merged:
		return deduped(d, sourceSet(dossier.SourceMachine, dossier.SourceParent, dossier.SourceClone), false)
	case MergedPlus:
		return deduped(d, sourceSet(dossier.SourceMachine, dossier.SourceParent, dossier.SourceClone, dossier.SourceDevice), false)
	case MergedFull:
		return deduped(d, sourceSet(dossier.SourceMachine, dossier.SourceParent, dossier.SourceClone, dossier.SourceDevice, dossier.SourceBios), false)
	case NonMerged:
		return nonMerged(d)
	case NonMergedPlus:
		out := nonMerged(d)
		return appendDeduped(out, d, sourceSet(dossier.SourceDevice), false)
	case NonMergedFull:
		out := nonMerged(d)
		out = appendDeduped(out, d, sourceSet(dossier.SourceDevice), false)
		return appendDeduped(out, d, sourceSet(dossier.SourceBios), false)
	default:
		return nil
	}
}

func sourceSet(sources ...dossier.Source) map[dossier.Source]bool {
	m := make(map[dossier.Source]bool, len(sources))
	for _, s := range sources {
		m[s] = true
	}
	return m
}

// deduped scans d's ROMs in order, keeping only rows whose source is in
// sources, skipping replaced rows unless includeReplaced, and emitting
// each distinct (name, crc) at most once in first-seen order.
func deduped(d *dossier.Dossier, sources map[dossier.Source]bool, includeReplaced bool) []dossier.Rom {
	return appendDeduped(nil, d, sources, includeReplaced)
}

func appendDeduped(out []dossier.Rom, d *dossier.Dossier, sources map[dossier.Source]bool, includeReplaced bool) []dossier.Rom {
	seen := map[romKey]bool{}
	for _, r := range out {
		seen[romKey{r.Name, r.CRC}] = true
	}
	for _, ri := range d.Roms {
		if !sources[ri.Source] {
			continue
		}
		if !includeReplaced && len(ri.ReplacedBy) > 0 {
			continue
		}
		k := romKey{ri.Rom.Name, ri.Rom.CRC}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, ri.Rom)
	}
	return out
}

func directRoms(d *dossier.Dossier) []dossier.RomInfo {
	var out []dossier.RomInfo
	for _, ri := range d.Roms {
		if ri.Source == dossier.SourceMachine {
			out = append(out, ri)
		}
	}
	return out
}

// split: for a clone, the target's direct ROMs not named by any parent ROM;
// for a non-clone, the target's direct ROMs as-is.
func split(d *dossier.Dossier) []dossier.Rom {
	direct := directRoms(d)
	if d.Parent == nil {
		out := make([]dossier.Rom, len(direct))
		for i, r := range direct {
			out[i] = r.Rom
		}
		return out
	}

	parentNames := map[string]bool{}
	for _, ri := range d.Roms {
		if ri.Source == dossier.SourceParent {
			parentNames[ri.Rom.Name] = true
		}
	}

	var out []dossier.Rom
	for _, r := range direct {
		if !parentNames[r.Rom.Name] {
			out = append(out, r.Rom)
		}
	}
	return out
}

// nonMerged: target's direct ROMs, plus (if a clone) the parent's ROMs not
// declared as replaced by the target and not themselves replaced.
func nonMerged(d *dossier.Dossier) []dossier.Rom {
	direct := directRoms(d)
	out := make([]dossier.Rom, len(direct))
	for i, r := range direct {
		out[i] = r.Rom
	}
	if d.Parent == nil {
		return out
	}

	replacesSet := map[string]bool{}
	for _, r := range direct {
		if r.Replaces != "" {
			replacesSet[r.Replaces] = true
		}
	}

	for _, ri := range d.Roms {
		if ri.Source != dossier.SourceParent {
			continue
		}
		if replacesSet[ri.Rom.Name] {
			continue
		}
		if len(ri.ReplacedBy) > 0 {
			continue
		}
		out = append(out, ri.Rom)
	}
	return out
}

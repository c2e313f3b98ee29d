// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "encoding/binary"

// Options controls reading behaviour, following the teacher's
// Options-struct-plus-pluggable-logger convention.
type Options struct {
	// Logger receives non-fatal diagnostics encountered while parsing.
	// Defaults to a zap-backed logger that passes warnings and above
	// (see newDefaultLogger).
	Logger Logger
}

// defaultHashSlots is the historical default directory size used by
// the original tooling; it remains the default here but, unlike the
// original writer (REDESIGN FLAG 1), is always honored rather than
// silently replaced by a hardcoded value.
const defaultHashSlots = 61

// LegacyWriteOptions controls WriteLegacyTable and WriteLegacyFile.
// NewLegacyWriteOptions returns the documented defaults for a
// sub-variant; in a zero value, HashSlots falls back to 61 and Endian
// to little-endian.
type LegacyWriteOptions struct {
	// HashSlots is the size S of the per-table hash directory. Default
	// 61. This value is written into the table header verbatim (see
	// REDESIGN FLAG 1 in the design notes: the original writer ignored
	// this option and always wrote 61).
	HashSlots int

	// Scramble enables obfuscating the name and string regions.
	Scramble bool

	// ScrambleKey overrides the key used when Scramble is true. If nil,
	// the key is computed from the table checksum.
	ScrambleKey *uint16

	// Endian selects the integer byte order for the sub-variant being
	// written. LegacySwitch is little-endian; LegacyWii and LegacyX are
	// big-endian.
	Endian binary.ByteOrder

	// SubVariant selects the float encoding: LegacyX writes base-4096
	// fixed-point floats, every other sub-variant IEEE-754. The table
	// header is the 64-byte layout for every sub-variant; the 32-byte
	// LegacyWii header is not emitted.
	SubVariant Dialect
}

// NewLegacyWriteOptions returns LegacyWriteOptions with the documented
// defaults for the given sub-variant.
func NewLegacyWriteOptions(subVariant Dialect) LegacyWriteOptions {
	endian := binary.ByteOrder(binary.LittleEndian)
	if subVariant == DialectLegacyWii || subVariant == DialectLegacyX {
		endian = binary.BigEndian
	}
	return LegacyWriteOptions{
		HashSlots:  defaultHashSlots,
		Scramble:   false,
		Endian:     endian,
		SubVariant: subVariant,
	}
}

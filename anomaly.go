// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

// Anomalies found while parsing a BDAT file. These do not prevent the
// file from being decoded, but are worth surfacing to a caller
// inspecting an unfamiliar or hand-edited file.
var (
	// AnoZeroTables is reported when a file declares no tables at all.
	AnoZeroTables = "file declares zero tables"

	// AnoZeroColumns is reported when a table declares no columns.
	AnoZeroColumns = "table declares zero columns"

	// AnoZeroRows is reported when a table declares no rows.
	AnoZeroRows = "table declares zero rows"

	// AnoLegacyWiiUnparsed is reported when a file was detected as
	// LegacyWii; its tables are not parsed since no documented body
	// layout exists to parse them against.
	AnoLegacyWiiUnparsed = "legacy-wii dialect detected, table bodies were not parsed"
)

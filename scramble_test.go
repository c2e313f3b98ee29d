// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"bytes"
	"testing"
)

var (
	scrambleInput = []byte{
		0xfb, 0x7e, 0xe4, 0xf1, 0xe4, 0xeb, 0x4b, 0xba, 0xf4, 0x75, 0xe7, 0xd4, 0xec, 0x8d,
	}
	scrambleInputNoNul = []byte{
		0xfb, 0x7e, 0xe4, 0xf1, 0xe4, 0xeb, 0x4b, 0xba, 0xf4, 0x75, 0xe7, 0xd4, 0xec,
	}
	// "MNU_qt2001_ms\0"
	scrambleExpected = []byte{
		0x4d, 0x4e, 0x55, 0x5f, 0x71, 0x74, 0x32, 0x30, 0x30, 0x31, 0x5f, 0x6d, 0x73, 0x00,
	}
	scrambleExpectedNoNul = []byte{
		0x4d, 0x4e, 0x55, 0x5f, 0x71, 0x74, 0x32, 0x30, 0x30, 0x31, 0x5f, 0x6d, 0x73,
	}
	scrambleKey uint16 = 0x49cf
)

func TestUnscramble(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []byte
	}{
		{"even length", scrambleInput, scrambleExpected},
		{"odd length", scrambleInputNoNul, scrambleExpectedNoNul},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unscramble(tt.in, scrambleKey)
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("Unscramble() = % x, want % x", got, tt.want)
			}
		})
	}
}

func TestScrambleIsUnscrambleInverse(t *testing.T) {
	got := Scramble(scrambleExpected, scrambleKey)
	if !bytes.Equal(got, scrambleInput) {
		t.Fatalf("Scramble() = % x, want % x", got, scrambleInput)
	}
}

func TestScrambleUnscrambleRoundTrip(t *testing.T) {
	data := append([]byte(nil), scrambleInput...)
	ScrambleInPlace(data, scrambleKey)
	UnscrambleInPlace(data, scrambleKey)
	if !bytes.Equal(data, scrambleInput) {
		t.Fatalf("round trip mismatch: got % x, want % x", data, scrambleInput)
	}
}

func TestTableChecksum(t *testing.T) {
	table := make([]byte, 0x20)
	table = append(table, scrambleExpected...)
	if got := tableChecksum(table); got != 1727 {
		t.Fatalf("tableChecksum() = %d, want 1727", got)
	}
}

func TestTableChecksumShortTable(t *testing.T) {
	if got := tableChecksum(make([]byte, 0x10)); got != 0 {
		t.Fatalf("tableChecksum() = %d, want 0", got)
	}
}

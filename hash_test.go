// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import "testing"

func TestMurmur3X86(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want uint32
	}{
		{"empty", "", 0x00000000},
		{"test", "test", 0xba6bd213},
		{"hello world", "Hello, world!", 0xc0363e43},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Murmur3([]byte(tt.in), 0)
			if got != tt.want {
				t.Fatalf("Murmur3(%q, 0) = %#08x, want %#08x", tt.in, got, tt.want)
			}
		})
	}
}

func TestLabelHashMatchesMurmur3(t *testing.T) {
	l := TextLabel("ITM_Sword")
	want := Murmur3([]byte("ITM_Sword"), 0)
	if got := l.Hash(); got != want {
		t.Fatalf("Label.Hash() = %#08x, want %#08x", got, want)
	}
}

func TestLegacyBucketIndexDeterministic(t *testing.T) {
	a := legacyBucketIndex("Param1", 61)
	b := legacyBucketIndex("Param1", 61)
	if a != b {
		t.Fatalf("legacyBucketIndex is not deterministic: %d != %d", a, b)
	}
	if a < 0 || a >= 61 {
		t.Fatalf("legacyBucketIndex out of range: %d", a)
	}
}

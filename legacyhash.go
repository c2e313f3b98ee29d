// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

// LegacyHashTable is the open-addressed, chained bucket directory
// written inline into a legacy table. It has S slots (default 61,
// configurable on write — see REDESIGN FLAG 1 in the design notes);
// slot i holds the file offset of the head of a singly linked list of
// column-definition records whose name hashes to i. Each definition
// record carries its own "next" pointer, so the table itself only
// needs to track the current head of each chain.
//
// The chain-walk order is part of the on-disk format other tools read,
// so insertion must reproduce it exactly: names are inserted in column
// order, and each new record is pushed onto the head of its bucket.
type LegacyHashTable struct {
	slots []uint32
}

// NewLegacyHashTable allocates a directory with the given slot count.
func NewLegacyHashTable(slotCount int) *LegacyHashTable {
	return &LegacyHashTable{slots: make([]uint32, slotCount)}
}

// SlotCount returns the number of slots in the directory.
func (h *LegacyHashTable) SlotCount() int { return len(h.slots) }

// Slots returns the head-offset array, one per slot, 0 meaning empty.
func (h *LegacyHashTable) Slots() []uint32 { return h.slots }

// legacyBucketIndex computes the bucket a name falls into: starting
// from h=0, for each byte b of the name, h = (h*7 + b) mod 256 (the
// multiply-add wraps at 8 bits on every step, not just at the end);
// the bucket is h mod S.
func legacyBucketIndex(name string, slotCount int) int {
	var h uint8
	for i := 0; i < len(name); i++ {
		h = h*7 + name[i]
	}
	return int(h) % slotCount
}

// Insert pushes offset onto the head of the chain for name's bucket,
// returning the previous head (the value to store in offset's own
// "next" field).
func (h *LegacyHashTable) Insert(name string, offset uint32) (prevHead uint32) {
	idx := legacyBucketIndex(name, len(h.slots))
	prevHead = h.slots[idx]
	h.slots[idx] = offset
	return prevHead
}

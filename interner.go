// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

// StringInterner deduplicates strings written into a region of a BDAT
// file and assigns each a stable relative offset. Repeated interns of
// the same text collapse to the same offset. BaseOffset is added to
// every returned offset so the interner can be placed anywhere in the
// file; it is typically unknown until layout planning finishes, so it
// may be set after strings have already been interned.
type StringInterner struct {
	BaseOffset int

	order   []string
	offsets map[string]int
	size    int
}

// NewStringInterner creates an interner whose region begins at
// baseOffset (0 if not yet known).
func NewStringInterner(baseOffset int) *StringInterner {
	return &StringInterner{BaseOffset: baseOffset, offsets: make(map[string]int)}
}

// Intern returns text's offset within the region plus BaseOffset,
// interning it if this is the first occurrence.
func (s *StringInterner) Intern(text string) int {
	if off, ok := s.offsets[text]; ok {
		return off + s.BaseOffset
	}
	off := s.size
	s.offsets[text] = off
	s.order = append(s.order, text)
	s.size += pad2(len(text) + 1) // +1 for the NUL terminator
	return off + s.BaseOffset
}

// Size returns the total byte size of the emitted region.
func (s *StringInterner) Size() int { return s.size }

// Emit writes the region: each string's bytes, a NUL terminator, then
// zero-padding to a 2-byte boundary.
func (s *StringInterner) Emit() []byte {
	buf := make([]byte, 0, s.size)
	for _, text := range s.order {
		buf = append(buf, text...)
		buf = append(buf, 0)
		for n := len(text) + 1; n < pad2(len(text)+1); n++ {
			buf = append(buf, 0)
		}
	}
	return buf
}

// pad2 rounds n up to the next multiple of 2.
func pad2(n int) int { return (n + 1) &^ 1 }

// pad4 rounds n up to the next multiple of 4.
func pad4(n int) int { return (n + 3) &^ 3 }

// pad32 rounds n up to the next multiple of 32.
func pad32(n int) int { return (n + 31) &^ 31 }

// pad64 rounds n up to the next multiple of 64.
func pad64(n int) int { return (n + 63) &^ 63 }

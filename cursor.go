// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

import (
	"encoding/binary"
	"io"
	"math"
)

// ByteCursor reads and writes fixed-width integers and bytes at
// absolute offsets into an in-memory buffer, endian-parameterised by
// the binary.ByteOrder supplied to each call. It performs no buffering
// and no error recovery: every out-of-range access is surfaced as
// ErrOutsideBoundary, mirroring the teacher's ReadUint32/ReadUint16-
// style boundary-checked helpers, generalised to both endiannesses and
// to writes.
type ByteCursor struct {
	data []byte
}

// NewByteCursor wraps data for cursor-style access. The slice is not
// copied; writes through the cursor mutate it in place.
func NewByteCursor(data []byte) *ByteCursor { return &ByteCursor{data: data} }

// Bytes returns the cursor's backing slice.
func (c *ByteCursor) Bytes() []byte { return c.data }

// Len returns the length of the backing slice.
func (c *ByteCursor) Len() int { return len(c.data) }

func (c *ByteCursor) bounds(offset, width int) error {
	if offset < 0 || width < 0 || offset+width > len(c.data) {
		return ErrOutsideBoundary
	}
	return nil
}

// ReadU8 reads a single byte at offset.
func (c *ByteCursor) ReadU8(offset int) (uint8, error) {
	if err := c.bounds(offset, 1); err != nil {
		return 0, err
	}
	return c.data[offset], nil
}

// ReadU16 reads a uint16 at offset using the given byte order.
func (c *ByteCursor) ReadU16(offset int, order binary.ByteOrder) (uint16, error) {
	if err := c.bounds(offset, 2); err != nil {
		return 0, err
	}
	return order.Uint16(c.data[offset:]), nil
}

// ReadU32 reads a uint32 at offset using the given byte order.
func (c *ByteCursor) ReadU32(offset int, order binary.ByteOrder) (uint32, error) {
	if err := c.bounds(offset, 4); err != nil {
		return 0, err
	}
	return order.Uint32(c.data[offset:]), nil
}

// ReadI8 reads a signed byte at offset.
func (c *ByteCursor) ReadI8(offset int) (int8, error) {
	v, err := c.ReadU8(offset)
	return int8(v), err
}

// ReadI16 reads an int16 at offset using the given byte order.
func (c *ByteCursor) ReadI16(offset int, order binary.ByteOrder) (int16, error) {
	v, err := c.ReadU16(offset, order)
	return int16(v), err
}

// ReadI32 reads an int32 at offset using the given byte order.
func (c *ByteCursor) ReadI32(offset int, order binary.ByteOrder) (int32, error) {
	v, err := c.ReadU32(offset, order)
	return int32(v), err
}

// ReadF32 reads an IEEE-754 binary32 at offset using the given byte
// order.
func (c *ByteCursor) ReadF32(offset int, order binary.ByteOrder) (float32, error) {
	v, err := c.ReadU32(offset, order)
	return math.Float32frombits(v), err
}

// ReadBytes returns a sub-slice of length n at offset. The slice
// aliases the cursor's backing array.
func (c *ByteCursor) ReadBytes(offset, n int) ([]byte, error) {
	if err := c.bounds(offset, n); err != nil {
		return nil, err
	}
	return c.data[offset : offset+n], nil
}

// WriteBytes copies p into the buffer starting at offset.
func (c *ByteCursor) WriteBytes(offset int, p []byte) error {
	if err := c.bounds(offset, len(p)); err != nil {
		return err
	}
	copy(c.data[offset:], p)
	return nil
}

// WriteU8 writes a single byte at offset.
func (c *ByteCursor) WriteU8(offset int, v uint8) error {
	if err := c.bounds(offset, 1); err != nil {
		return err
	}
	c.data[offset] = v
	return nil
}

// WriteU16 writes a uint16 at offset using the given byte order.
func (c *ByteCursor) WriteU16(offset int, v uint16, order binary.ByteOrder) error {
	if err := c.bounds(offset, 2); err != nil {
		return err
	}
	order.PutUint16(c.data[offset:], v)
	return nil
}

// WriteU32 writes a uint32 at offset using the given byte order.
func (c *ByteCursor) WriteU32(offset int, v uint32, order binary.ByteOrder) error {
	if err := c.bounds(offset, 4); err != nil {
		return err
	}
	order.PutUint32(c.data[offset:], v)
	return nil
}

// StreamCursor provides absolute-offset reads and writes over a
// seekable stream, for callers that would rather not hold the whole
// file in memory. It offers raw bytes (ReadAt, WriteAt), uint32 reads
// (ReadU32At) and Position; the other typed reads and writes of
// ByteCursor are not provided. Every read and write seeks to the given
// offset before performing its I/O, so calls may be interleaved in any
// order.
type StreamCursor struct {
	rw io.ReadWriteSeeker
}

// NewStreamCursor wraps a seekable stream for cursor-style access.
func NewStreamCursor(rw io.ReadWriteSeeker) *StreamCursor { return &StreamCursor{rw: rw} }

func (c *StreamCursor) seek(offset int64) error {
	_, err := c.rw.Seek(offset, io.SeekStart)
	if err != nil {
		return errIO(err)
	}
	return nil
}

// ReadAt reads n bytes at the given absolute offset.
func (c *StreamCursor) ReadAt(offset int64, n int) ([]byte, error) {
	if err := c.seek(offset); err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.rw, buf); err != nil {
		return nil, errIO(err)
	}
	return buf, nil
}

// ReadU32At reads a uint32 at the given absolute offset.
func (c *StreamCursor) ReadU32At(offset int64, order binary.ByteOrder) (uint32, error) {
	buf, err := c.ReadAt(offset, 4)
	if err != nil {
		return 0, err
	}
	return order.Uint32(buf), nil
}

// WriteAt writes p at the given absolute offset.
func (c *StreamCursor) WriteAt(offset int64, p []byte) error {
	if err := c.seek(offset); err != nil {
		return err
	}
	if _, err := c.rw.Write(p); err != nil {
		return errIO(err)
	}
	return nil
}

// Position returns the stream's current offset.
func (c *StreamCursor) Position() (int64, error) {
	pos, err := c.rw.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, errIO(err)
	}
	return pos, nil
}

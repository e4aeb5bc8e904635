// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

package b16

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/pco-imaging/go-pco/stamp"
)

// Encode writes m to w as a B16 file with a plain (non extended)
// header. Gray16 images round trip losslessly; everything else is
// converted through the Gray16 color model first.
func Encode(w io.Writer, m image.Image) error {
	return NewWriter(w).Write(m)
}

// NewWriter returns a Writer emitting B16 data to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Writer encodes a single B16 image, optionally embedding a binary
// timestamp into the leading pixels of the first row the way camera
// firmware does when "write binary timestamp" is enabled.
type Writer struct {
	w        io.Writer
	stamp    *stamp.Stamp
	shift    bool
	stampRow []uint16
}

// Stamp arranges for s to be burnt into the first row of the next
// image written, using the given digit shift mode.
func (w *Writer) Stamp(s stamp.Stamp, shift bool) error {
	row, err := stamp.Encode(s, shift)
	if err != nil {
		return err
	}
	w.stamp = &s
	w.shift = shift
	w.stampRow = row
	return nil
}

// Write emits the header and pixel data for m.
func (w *Writer) Write(m image.Image) error {
	b := m.Bounds()
	width, height := b.Dx(), b.Dy()
	if width < 1 || width > maxDim || height < 1 || height > maxDim {
		return fmt.Errorf("unencodable image dimensions: %dx%d", width, height)
	}
	if w.stampRow != nil && width < len(w.stampRow) {
		return fmt.Errorf("image too narrow for a stamp: %d pixels", width)
	}

	hdr := make([]byte, defaultHeaderSize)
	copy(hdr, magic)
	binary.LittleEndian.PutUint32(hdr[4:], uint32(defaultHeaderSize+width*height*2))
	binary.LittleEndian.PutUint32(hdr[8:], defaultHeaderSize)
	binary.LittleEndian.PutUint32(hdr[12:], uint32(width))
	binary.LittleEndian.PutUint32(hdr[16:], uint32(height))
	if _, err := w.w.Write(hdr); err != nil {
		return err
	}

	buf := make([]byte, width*height*2)
	if gray, ok := m.(*image.Gray16); ok && gray.Stride == width*2 && len(gray.Pix) == len(buf) {
		// Gray16 pixels are big endian; the file wants little endian.
		for i := 0; i < len(buf); i += 2 {
			buf[i] = gray.Pix[i+1]
			buf[i+1] = gray.Pix[i]
		}
	} else {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				v := color.Gray16Model.Convert(m.At(x, y)).(color.Gray16).Y
				binary.LittleEndian.PutUint16(buf[i:], v)
				i += 2
			}
		}
	}
	for i, px := range w.stampRow {
		binary.LittleEndian.PutUint16(buf[i*2:], px)
	}

	_, err := w.w.Write(buf)
	return err
}

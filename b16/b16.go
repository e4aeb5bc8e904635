// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

// Package b16 implements the PCO B16 camera image container: a small
// little endian header followed by 16 bit grayscale pixel values in
// row major order. Decoded images are *image.Gray16 and any image can
// be encoded, so B16 files interoperate with the standard image
// packages. Importing this package registers the format with
// image.Decode.
package b16

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"io/ioutil"
)

const (
	magic = "PCO-"

	// baseHeaderSize covers the six mandatory header words. The
	// extended header adds seven more.
	baseHeaderSize     = 24
	extendedHeaderSize = baseHeaderSize + 7*4

	// defaultHeaderSize is what PCO's own software writes; the pixel
	// data offset always comes from the header itself.
	defaultHeaderSize = 128

	// maxDim caps believable image dimensions. No PCO sensor comes
	// anywhere near this.
	maxDim = 1 << 16
)

// Header holds the B16 file header. The display fields are only
// meaningful when Extended is set; they carry the display scaling the
// capture software had configured and do not affect the pixel data.
type Header struct {
	FileSize   uint32
	HeaderSize uint32
	Width      int
	Height     int
	Extended   bool

	ColorMode       uint32
	BWDisplayMin    uint32
	BWDisplayMax    uint32
	BWLinLog        uint32
	ColorDisplayMin uint32
	ColorDisplayMax uint32
	ColorLinLog     uint32
}

func init() {
	image.RegisterFormat("b16", magic,
		func(r io.Reader) (image.Image, error) { return Decode(r) },
		DecodeConfig)
}

// DecodeHeader reads and validates a B16 header, leaving r positioned
// at the start of the pixel data.
func DecodeHeader(r io.Reader) (Header, error) {
	buf := make([]byte, baseHeaderSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Header{}, fmt.Errorf("reading header: %v", err)
	}
	if string(buf[:4]) != magic {
		return Header{}, errors.New("magic not found")
	}

	hdr := Header{
		FileSize:   binary.LittleEndian.Uint32(buf[4:]),
		HeaderSize: binary.LittleEndian.Uint32(buf[8:]),
		Width:      int(binary.LittleEndian.Uint32(buf[12:])),
		Height:     int(binary.LittleEndian.Uint32(buf[16:])),
		Extended:   binary.LittleEndian.Uint32(buf[20:]) != 0,
	}
	if hdr.HeaderSize < baseHeaderSize {
		return Header{}, fmt.Errorf("header size too small: %d", hdr.HeaderSize)
	}
	if hdr.Width < 1 || hdr.Width > maxDim || hdr.Height < 1 || hdr.Height > maxDim {
		return Header{}, fmt.Errorf("unbelievable image dimensions: %dx%d", hdr.Width, hdr.Height)
	}

	read := uint32(baseHeaderSize)
	if hdr.Extended {
		if hdr.HeaderSize < extendedHeaderSize {
			return Header{}, fmt.Errorf("header size too small for extended header: %d", hdr.HeaderSize)
		}
		ext := make([]byte, extendedHeaderSize-baseHeaderSize)
		if _, err := io.ReadFull(r, ext); err != nil {
			return Header{}, fmt.Errorf("reading extended header: %v", err)
		}
		hdr.ColorMode = binary.LittleEndian.Uint32(ext)
		hdr.BWDisplayMin = binary.LittleEndian.Uint32(ext[4:])
		hdr.BWDisplayMax = binary.LittleEndian.Uint32(ext[8:])
		hdr.BWLinLog = binary.LittleEndian.Uint32(ext[12:])
		hdr.ColorDisplayMin = binary.LittleEndian.Uint32(ext[16:])
		hdr.ColorDisplayMax = binary.LittleEndian.Uint32(ext[20:])
		hdr.ColorLinLog = binary.LittleEndian.Uint32(ext[24:])
		read = extendedHeaderSize
	}

	// Skip padding up to the declared pixel data offset.
	if pad := int64(hdr.HeaderSize) - int64(read); pad > 0 {
		if _, err := io.CopyN(ioutil.Discard, r, pad); err != nil {
			return Header{}, fmt.Errorf("skipping header padding: %v", err)
		}
	}
	return hdr, nil
}

// DecodeConfig returns the dimensions and color model of a B16 stream
// without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	hdr, err := DecodeHeader(r)
	if err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.Gray16Model,
		Width:      hdr.Width,
		Height:     hdr.Height,
	}, nil
}

// Decode reads a complete B16 image from r.
func Decode(r io.Reader) (*image.Gray16, error) {
	hdr, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, hdr.Width*hdr.Height*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading pixel data: %v", err)
	}

	// File pixels are little endian; Gray16 stores big endian.
	img := image.NewGray16(image.Rect(0, 0, hdr.Width, hdr.Height))
	for i := 0; i < len(buf); i += 2 {
		img.Pix[i] = buf[i+1]
		img.Pix[i+1] = buf[i]
	}
	return img, nil
}

// DecodeStampRow reads just the header and the first n pixels of the
// top row, avoiding a full image load when only the embedded binary
// timestamp is wanted. When n exceeds the image width the whole first
// row is returned.
func DecodeStampRow(r io.Reader, n int) ([]uint16, error) {
	hdr, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}
	if n > hdr.Width {
		n = hdr.Width
	}
	buf := make([]byte, n*2)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("reading stamp row: %v", err)
	}
	row := make([]uint16, n)
	for i := range row {
		row[i] = binary.LittleEndian.Uint16(buf[i*2:])
	}
	return row, nil
}

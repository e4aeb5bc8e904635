// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

// Package pco provides access to PCO camera images: the pixel data and
// the frame index and capture timestamp the camera embeds in the first
// image row. B16 and 16 bit TIFF sources are supported; images can be
// written back out as B16, TIFF, PNG or FITS.
package pco

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/tiff"

	"github.com/pco-imaging/go-pco/b16"
	"github.com/pco-imaging/go-pco/stamp"
)

type sourceType int

const (
	sourceB16 sourceType = iota
	sourceTIFF
	sourceMemory
)

// Image is a handle to a single camera image. Constructing one reads
// nothing but the file's existence; the pixel buffer is loaded on
// first access and cached for the life of the handle. An Image is not
// safe for concurrent use.
type Image struct {
	filename string
	source   sourceType
	img      *image.Gray16
	stamp    *stamp.Stamp
}

// Open returns a handle to the image at filename, inferring the source
// format from the extension (".b16", ".tif" or ".tiff"). The file must
// exist but is not read yet.
func Open(filename string) (*Image, error) {
	switch filepath.Ext(filename) {
	case ".b16":
		return OpenB16(filename)
	case ".tif", ".tiff":
		return OpenTIFF(filename)
	}
	return nil, fmt.Errorf("unknown image extension: %q", filepath.Ext(filename))
}

// OpenB16 returns a handle to a B16 file regardless of its extension.
func OpenB16(filename string) (*Image, error) {
	return newFileImage(filename, sourceB16)
}

// OpenTIFF returns a handle to a TIFF file regardless of its extension.
func OpenTIFF(filename string) (*Image, error) {
	return newFileImage(filename, sourceTIFF)
}

func newFileImage(filename string, source sourceType) (*Image, error) {
	if _, err := os.Stat(filename); err != nil {
		return nil, err
	}
	return &Image{filename: filename, source: source}, nil
}

// FromGray16 returns a handle over an in-memory frame. The handle has
// no backing file, so Reload and Filename don't apply.
func FromGray16(img *image.Gray16) *Image {
	return &Image{source: sourceMemory, img: img}
}

// Filename returns the path the handle was opened with; empty for
// in-memory images.
func (im *Image) Filename() string {
	return im.filename
}

// Gray16 returns the image's pixel data, loading it from the backing
// file on the first call. The loaded buffer is cached until the handle
// is dropped; use Reload to pick up a changed file.
func (im *Image) Gray16() (*image.Gray16, error) {
	if im.img != nil {
		return im.img, nil
	}
	return im.Reload()
}

// Reload reads the backing file again, replacing the cached pixel
// buffer. The cached stamp is kept; decoded metadata belongs to the
// handle, not the load.
func (im *Image) Reload() (*image.Gray16, error) {
	if im.source == sourceMemory {
		return nil, errors.New("no backing file to load")
	}
	f, err := os.Open(im.filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var img *image.Gray16
	switch im.source {
	case sourceB16:
		img, err = b16.Decode(f)
	case sourceTIFF:
		var m image.Image
		m, err = tiff.Decode(f)
		if err == nil {
			img = toGray16(m)
		}
	}
	if err != nil {
		return nil, err
	}
	im.img = img
	return img, nil
}

// Pixels returns the pixel values as a fresh row major 2D slice.
func (im *Image) Pixels() ([][]uint16, error) {
	img, err := im.Gray16()
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	rows := make([][]uint16, b.Dy())
	for y := range rows {
		row := make([]uint16, b.Dx())
		for x := range row {
			row[x] = img.Gray16At(b.Min.X+x, b.Min.Y+y).Y
		}
		rows[y] = row
	}
	return rows, nil
}

// StampRow returns the leading pixels of the image's first row, the
// ones a binary timestamp occupies. For an unloaded B16 source only
// the header and those pixels are read from disk; the full image still
// loads lazily later if asked for. TIFF sources load fully.
func (im *Image) StampRow() ([]uint16, error) {
	if im.img == nil && im.source == sourceB16 {
		f, err := os.Open(im.filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return b16.DecodeStampRow(f, stamp.RowPixels)
	}

	img, err := im.Gray16()
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	n := stamp.RowPixels
	if b.Dx() < n {
		n = b.Dx()
	}
	row := make([]uint16, n)
	for x := range row {
		row[x] = img.Gray16At(b.Min.X+x, b.Min.Y).Y
	}
	return row, nil
}

// Stamp decodes the embedded binary timestamp, reading from the
// backing file if needed. The first successful decode is cached for
// the life of the handle; later calls return it without consulting the
// shift flag again. Failed decodes are not cached.
func (im *Image) Stamp(shift bool) (stamp.Stamp, error) {
	if im.stamp != nil {
		return *im.stamp, nil
	}
	row, err := im.StampRow()
	if err != nil {
		return stamp.Stamp{}, err
	}
	s, err := stamp.Decode(row, shift)
	if err != nil {
		return stamp.Stamp{}, err
	}
	im.stamp = &s
	return s, nil
}

// Index returns the frame sequence number the camera embedded in the
// image.
func (im *Image) Index(shift bool) (int, error) {
	s, err := im.Stamp(shift)
	if err != nil {
		return 0, err
	}
	return s.Index, nil
}

// Timestamp returns the capture time the camera embedded in the image.
func (im *Image) Timestamp(shift bool) (time.Time, error) {
	s, err := im.Stamp(shift)
	if err != nil {
		return time.Time{}, err
	}
	return s.Timestamp, nil
}

// Timestamps decodes the embedded capture time of each named file.
// The first failure aborts the batch.
func Timestamps(filenames []string, shift bool) ([]time.Time, error) {
	ts := make([]time.Time, 0, len(filenames))
	for _, filename := range filenames {
		im, err := Open(filename)
		if err != nil {
			return nil, err
		}
		t, err := im.Timestamp(shift)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", filename, err)
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// toGray16 converts an arbitrary decoded image to Gray16 without
// copying when it already is one.
func toGray16(m image.Image) *image.Gray16 {
	if gray, ok := m.(*image.Gray16); ok {
		return gray
	}
	b := m.Bounds()
	out := image.NewGray16(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x-b.Min.X, y-b.Min.Y, color.Gray16Model.Convert(m.At(x, y)))
		}
	}
	return out
}

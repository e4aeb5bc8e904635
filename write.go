// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

package pco

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/astrogo/fitsio"
	"golang.org/x/image/tiff"

	"github.com/pco-imaging/go-pco/b16"
)

// Write saves the image to filename, picking the output format from
// the extension: ".b16", ".tif"/".tiff", ".png" or ".fits". All four
// preserve the 16 bit pixel values exactly.
func (im *Image) Write(filename string) error {
	switch filepath.Ext(filename) {
	case ".b16":
		return im.WriteB16(filename)
	case ".tif", ".tiff":
		return im.WriteTIFF(filename)
	case ".png":
		return im.WritePNG(filename)
	case ".fits":
		return im.WriteFITS(filename)
	}
	return fmt.Errorf("unknown output extension: %q", filepath.Ext(filename))
}

// WriteB16 saves the image as a B16 file.
func (im *Image) WriteB16(filename string) error {
	return im.writeFile(filename, func(w io.Writer, img *image.Gray16) error {
		return b16.Encode(w, img)
	})
}

// WriteTIFF saves the image as an uncompressed 16 bit grayscale TIFF.
func (im *Image) WriteTIFF(filename string) error {
	return im.writeFile(filename, func(w io.Writer, img *image.Gray16) error {
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Uncompressed})
	})
}

// WritePNG saves the image as a 16 bit grayscale PNG.
func (im *Image) WritePNG(filename string) error {
	return im.writeFile(filename, func(w io.Writer, img *image.Gray16) error {
		return png.Encode(w, img)
	})
}

// WriteFITS saves the image as a single 16 bit FITS HDU. Pixel values
// are stored with the usual BZERO 32768 offset so unsigned camera data
// survives FITS's signed integers. If the image's stamp has already
// been decoded it is recorded in the IMGINDEX and IMGSTAMP cards.
func (im *Image) WriteFITS(filename string) error {
	return im.writeFile(filename, im.writeFITS)
}

func (im *Image) writeFITS(w io.Writer, img *image.Gray16) error {
	cards := []fitsio.Card{
		{Name: "BZERO", Value: 32768},
		{Name: "BSCALE", Value: 1.0},
	}
	if im.stamp != nil {
		cards = append(cards,
			fitsio.Card{
				Name:    "IMGINDEX",
				Value:   im.stamp.Index,
				Comment: "frame index from binary timestamp",
			},
			fitsio.Card{
				Name:    "IMGSTAMP",
				Value:   im.stamp.Timestamp.Format("2006-01-02T15:04:05.000000"),
				Comment: "capture time from binary timestamp",
			})
	}

	fits, err := fitsio.Create(w)
	if err != nil {
		return err
	}
	defer fits.Close()

	b := img.Bounds()
	hdu := fitsio.NewImage(16, []int{b.Dx(), b.Dy()})
	defer hdu.Close()
	if err := hdu.Header().Append(cards...); err != nil {
		return err
	}

	pix := make([]int16, b.Dx()*b.Dy())
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			pix[i] = int16(img.Gray16At(x, y).Y - 32768)
			i++
		}
	}
	if err := hdu.Write(pix); err != nil {
		return err
	}
	return fits.Write(hdu)
}

func (im *Image) writeFile(filename string, encode func(io.Writer, *image.Gray16) error) error {
	img, err := im.Gray16()
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(f)
	if err := encode(bw, img); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

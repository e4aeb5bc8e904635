// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

// Package stamp decodes the binary timestamp that PCO cameras embed in
// the leading pixels of an image's first row. When the camera's "binary
// timestamp" setting is on, the firmware overwrites those pixels with
// binary coded decimal digits holding the frame index and the capture
// time, one digit per pixel.
package stamp

import (
	"time"
)

// Digit layout of a binary timestamp. Each pixel holds one decimal
// digit, most significant first within each field.
const (
	IndexDigits = 4 // frame index
	yearDigits  = 2 // year within century
	MicroDigits = 6 // fractional seconds

	// RowPixels is the number of leading pixels a row must have for a
	// stamp to be decoded from it.
	RowPixels = IndexDigits + yearDigits + 2*5 + MicroDigits
)

// Field offsets within the decoded digit sequence.
const (
	indexOff = 0
	yearOff  = indexOff + IndexDigits
	monthOff = yearOff + yearDigits
	dayOff   = monthOff + 2
	hourOff  = dayOff + 2
	minOff   = hourOff + 2
	secOff   = minOff + 2
	microOff = secOff + 2
)

// Stamp is a decoded binary timestamp: the frame sequence number the
// camera assigned at capture time and the capture time itself.
//
// The pixel data carries no time zone, so Timestamp is always UTC. The
// year is stored as two digits and interpreted as 2000+yy; stamps from
// outside the 21st century decode to the wrong century.
type Stamp struct {
	Index     int
	Timestamp time.Time
}

// Decode extracts a Stamp from the leading pixels of an image row.
//
// With shift set, each pixel value is taken to be left shifted by two
// bits (14 bit sensor data packed into 16 bit values) and is corrected
// before digit extraction. Decode is a pure function of its arguments.
//
// Rows shorter than RowPixels, pixels that do not correct to a decimal
// digit, and digit groups that do not form a valid calendar time all
// return a *DecodeError. No partial result is ever returned.
func Decode(row []uint16, shift bool) (Stamp, error) {
	ds, err := digits(row, shift)
	if err != nil {
		return Stamp{}, err
	}

	year := 2000 + number(ds[yearOff:monthOff])
	month := number(ds[monthOff:dayOff])
	if month < 1 || month > 12 {
		return Stamp{}, &DecodeError{Field: "month", Pixel: monthOff, Value: month}
	}
	day := number(ds[dayOff:hourOff])
	if day < 1 || day > daysIn(time.Month(month), year) {
		return Stamp{}, &DecodeError{Field: "day", Pixel: dayOff, Value: day}
	}
	hour := number(ds[hourOff:minOff])
	if hour > 23 {
		return Stamp{}, &DecodeError{Field: "hour", Pixel: hourOff, Value: hour}
	}
	min := number(ds[minOff:secOff])
	if min > 59 {
		return Stamp{}, &DecodeError{Field: "minute", Pixel: minOff, Value: min}
	}
	sec := number(ds[secOff:microOff])
	if sec > 59 {
		return Stamp{}, &DecodeError{Field: "second", Pixel: secOff, Value: sec}
	}
	micro := number(ds[microOff:RowPixels])

	return Stamp{
		Index: number(ds[indexOff:yearOff]),
		Timestamp: time.Date(
			year, time.Month(month), day,
			hour, min, sec, micro*1000,
			time.UTC),
	}, nil
}

// DecodeRaw extracts the stamp's digit strings without calendar
// interpretation: the index digits and the timestamp digits
// (yymmddhhmmss followed by the microsecond digits). Only digit range
// validation applies; impossible dates pass through unchecked.
func DecodeRaw(row []uint16, shift bool) (index, timestamp string, err error) {
	ds, err := digits(row, shift)
	if err != nil {
		return "", "", err
	}
	buf := make([]byte, RowPixels)
	for i, d := range ds {
		buf[i] = '0' + byte(d)
	}
	return string(buf[:yearOff]), string(buf[yearOff:]), nil
}

// digits validates the row length and converts the leading pixels to
// decimal digits, undoing the two bit packing shift if requested.
func digits(row []uint16, shift bool) ([]int, error) {
	if len(row) < RowPixels {
		return nil, &DecodeError{Field: "length", Pixel: -1, Value: len(row)}
	}
	ds := make([]int, RowPixels)
	for i := 0; i < RowPixels; i++ {
		d := row[i]
		if shift {
			d >>= 2
		}
		if d > 9 {
			return nil, &DecodeError{Field: "digit", Pixel: i, Value: int(d)}
		}
		ds[i] = int(d)
	}
	return ds, nil
}

// number concatenates decimal digits, most significant first.
func number(ds []int) int {
	n := 0
	for _, d := range ds {
		n = n*10 + d
	}
	return n
}

func daysIn(m time.Month, year int) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

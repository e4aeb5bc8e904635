// Copyright 2023 The go-pco Authors. All rights reserved.
// Use of this source code is governed by the Apache License Version 2.0;
// see the LICENSE file for further details.

package stamp

import (
	"fmt"
)

// Encode renders a Stamp as the pixel values camera firmware would
// burn into the first image row, the exact inverse of Decode. With
// shift set, each digit is left shifted by two bits to mimic 14 bit
// sensor data packed into 16 bit values.
//
// The index must fit the index digit field and the timestamp's year
// must fall in 2000-2099; the stamp format cannot represent anything
// else.
func Encode(s Stamp, shift bool) ([]uint16, error) {
	if s.Index < 0 || s.Index > 9999 {
		return nil, fmt.Errorf("stamp: index %d outside 0-9999", s.Index)
	}
	t := s.Timestamp.UTC()
	if t.Year() < 2000 || t.Year() > 2099 {
		return nil, fmt.Errorf("stamp: year %d outside 2000-2099", t.Year())
	}

	ds := make([]int, 0, RowPixels)
	ds = appendDigits(ds, s.Index, IndexDigits)
	ds = appendDigits(ds, t.Year()-2000, yearDigits)
	ds = appendDigits(ds, int(t.Month()), 2)
	ds = appendDigits(ds, t.Day(), 2)
	ds = appendDigits(ds, t.Hour(), 2)
	ds = appendDigits(ds, t.Minute(), 2)
	ds = appendDigits(ds, t.Second(), 2)
	ds = appendDigits(ds, t.Nanosecond()/1000, MicroDigits)

	row := make([]uint16, RowPixels)
	for i, d := range ds {
		px := uint16(d)
		if shift {
			px <<= 2
		}
		row[i] = px
	}
	return row, nil
}

// appendDigits appends n decimal digits of v, most significant first.
func appendDigits(ds []int, v, n int) []int {
	for i := n - 1; i >= 0; i-- {
		div := 1
		for j := 0; j < i; j++ {
			div *= 10
		}
		ds = append(ds, (v/div)%10)
	}
	return ds
}
